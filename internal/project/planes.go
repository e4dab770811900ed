package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roofmetrics/roofcalc/internal/model"
)

// SavePlanes writes a captured plane set to a JSON file.
func SavePlanes(path string, planes []model.Plane) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(planes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadPlanes reads a captured plane set from a JSON file.
func LoadPlanes(path string) ([]model.Plane, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var planes []model.Plane
	if err := json.Unmarshal(data, &planes); err != nil {
		return nil, fmt.Errorf("cannot parse plane file %s: %w", path, err)
	}
	return planes, nil
}
