package model

// UnitSystem selects the measurement unit system for estimates and reports.
type UnitSystem string

const (
	UnitMetric   UnitSystem = "metric"   // areas in square metres
	UnitImperial UnitSystem = "imperial" // areas already in square feet
)

// PitchMethod selects the slope-correction model applied to raw plane areas.
type PitchMethod string

const (
	PitchTrigonometric PitchMethod = "trigonometric"
	PitchProjection    PitchMethod = "projection"
	PitchAdvanced      PitchMethod = "advanced"
)

// EngineConfig holds construction-time engine settings. A config is owned by
// exactly one Engine instance and is immutable after construction; to change
// settings, build a new Engine.
type EngineConfig struct {
	UnitSystem         UnitSystem  `json:"unit_system"`
	AreaPrecision      int         `json:"area_precision_digits"`   // decimal digits for aggregate totals
	PitchCorrection    PitchMethod `json:"pitch_correction_method"` // slope correction model
	WasteFactorPercent float64     `json:"waste_factor_percent"`    // material overage, e.g. 10 for 10%
	QualityThreshold   float64     `json:"quality_threshold"`       // informational only, never blocks computation
	GeometryValidation bool        `json:"geometry_validation_enabled"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		UnitSystem:         UnitMetric,
		AreaPrecision:      2,
		PitchCorrection:    PitchAdvanced,
		WasteFactorPercent: 10,
		QualityThreshold:   75,
		GeometryValidation: true,
	}
}
