// Package project handles the on-disk files surrounding a measurement
// session: the engine configuration and captured plane-set files. The engine
// itself owns no persisted format; these files belong to the CLI front end.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/roofmetrics/roofcalc/internal/model"
)

// DefaultConfigDir returns the default directory for application
// configuration. On all platforms this is ~/.roofcalc/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".roofcalc")
}

// DefaultConfigPath returns the default path for the engine config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveConfig persists an EngineConfig to the given path as JSON, creating
// missing parent directories automatically.
func SaveConfig(path string, cfg model.EngineConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadConfig reads an EngineConfig from the given path. If the file does not
// exist, it returns DefaultConfig with no error.
func LoadConfig(path string) (model.EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultConfig(), nil
		}
		return model.EngineConfig{}, err
	}
	var cfg model.EngineConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.EngineConfig{}, err
	}
	return cfg, nil
}
