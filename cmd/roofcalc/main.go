// roofcalc is a roof measurement and material estimation tool.
//
// Reads a captured roof plane set from JSON, CSV, Excel, or DXF, validates
// it, computes a measurement with audit trail, and optionally emits a
// material estimate and an export in JSON, CSV, or text-report form.
//
// Build:
//
//	go build -o roofcalc ./cmd/roofcalc
//
// Examples:
//
//	roofcalc -input planes.json -format text
//	roofcalc -input roof.csv -validate
//	roofcalc -input footprint.dxf -pitch 30 -azimuth 180 -estimate -format json -out report.json
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/roofmetrics/roofcalc/internal/engine"
	"github.com/roofmetrics/roofcalc/internal/estimate"
	"github.com/roofmetrics/roofcalc/internal/export"
	"github.com/roofmetrics/roofcalc/internal/importer"
	"github.com/roofmetrics/roofcalc/internal/model"
	"github.com/roofmetrics/roofcalc/internal/project"
)

var (
	input        = flag.String("input", "", "Plane set file (.json, .csv, .xlsx, .dxf)")
	format       = flag.String("format", "text", "Export format: json, csv, text")
	out          = flag.String("out", "", "Output path (default stdout)")
	configPath   = flag.String("config", project.DefaultConfigPath(), "Engine config file")
	sessionID    = flag.String("session", "cli-session", "Session identifier")
	userID       = flag.String("user", "cli", "User identifier")
	validateOnly = flag.Bool("validate", false, "Run pre-flight validation only")
	withEstimate = flag.Bool("estimate", false, "Print a material estimate")
	dxfPitch     = flag.Float64("pitch", 0, "Default pitch in degrees for DXF footprints")
	dxfAzimuth   = flag.Float64("azimuth", 0, "Default azimuth in degrees for DXF footprints")
	devMode      = flag.Bool("dev", false, "Verbose development logging")
)

func main() {
	flag.Parse()

	logger := buildLogger(*devMode)
	defer func() { _ = logger.Sync() }()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "roofcalc: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := project.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("cannot load config", zap.String("path", *configPath), zap.Error(err))
	}

	planes, err := loadPlanes(*input, logger)
	if err != nil {
		logger.Fatal("import failed", zap.String("input", *input), zap.Error(err))
	}
	logger.Info("planes loaded", zap.String("input", *input), zap.Int("planes", len(planes)))

	eng := engine.New(cfg, logger)

	if *validateOnly {
		printValidation(eng.Validate(planes))
		return
	}

	m, err := eng.Compute(planes, *sessionID, *userID)
	if err != nil {
		logger.Fatal("measurement failed", zap.Error(err))
	}

	if *withEstimate {
		printEstimate(estimate.New(cfg, nil).Estimate(m))
	}

	output, err := export.Export(m, export.Format(*format))
	if err != nil {
		logger.Fatal("export failed", zap.String("format", *format), zap.Error(err))
	}
	eng.Trail().Append(model.AuditExport, *userID, *sessionID,
		fmt.Sprintf("Exported measurement %s as %s", m.ID, *format))

	if *out == "" {
		fmt.Println(output)
		return
	}
	if err := os.WriteFile(*out, []byte(output), 0644); err != nil {
		logger.Fatal("cannot write output", zap.String("path", *out), zap.Error(err))
	}
	logger.Info("export written", zap.String("path", *out))
}

func buildLogger(dev bool) *zap.Logger {
	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "roofcalc: cannot build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// loadPlanes dispatches on file extension to the matching importer.
func loadPlanes(path string, logger *zap.Logger) ([]model.Plane, error) {
	var result importer.ImportResult

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return project.LoadPlanes(path)
	case ".csv":
		result = importer.ImportCSV(path)
	case ".xlsx", ".xls":
		result = importer.ImportExcel(path)
	case ".dxf":
		result = importer.ImportDXF(path, *dxfPitch, *dxfAzimuth)
	default:
		return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
	}

	for _, w := range result.Warnings {
		logger.Warn("import warning", zap.String("detail", w))
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("import errors: %s", strings.Join(result.Errors, "; "))
	}
	return result.Planes, nil
}

func printValidation(vr model.ValidationResult) {
	fmt.Printf("valid:         %v\n", vr.IsValid)
	fmt.Printf("quality score: %.0f/100\n", vr.QualityScore)
	for _, e := range vr.Errors {
		fmt.Printf("error:   %s\n", e)
	}
	for _, w := range vr.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, r := range vr.Recommendations {
		fmt.Printf("note:    %s\n", r)
	}
	if !vr.IsValid {
		os.Exit(1)
	}
}

func printEstimate(calc model.MaterialCalculation) {
	fmt.Printf("base area:         %.2f\n", calc.BaseArea)
	fmt.Printf("adjusted area:     %.2f (waste %.0f%%, complexity %.2f)\n",
		calc.AdjustedArea, calc.WastePercent, calc.ComplexityFactor)
	fmt.Printf("dominant material: %s\n", calc.DominantMaterial)
	for kind, count := range calc.MaterialUnits {
		fmt.Printf("  %s: %d\n", kind, count)
	}
	if c := calc.CostEstimate; c != nil {
		fmt.Printf("estimated cost:    %.2f %s (material %.2f, labor %.2f)\n",
			c.TotalCost, c.Currency, c.MaterialCost, c.LaborCost)
	}
	fmt.Println()
}
