package engine

import "github.com/roofmetrics/roofcalc/internal/model"

// MaterialClassifier derives a plane's material type during measurement.
// The default implementation is a pitch/area heuristic standing in for a
// future sensor-based classifier; swap it with (*Engine).SetClassifier
// without touching the aggregation path.
type MaterialClassifier interface {
	// Classify is called with a plane whose Area has already been recomputed.
	Classify(p model.Plane) model.Material
}

// PitchAreaClassifier is the default heuristic: very shallow planes are
// flat roofs, steep planes are shingle, very large planes are metal, and
// anything else keeps its existing material or falls back to unknown.
type PitchAreaClassifier struct{}

func (PitchAreaClassifier) Classify(p model.Plane) model.Material {
	switch {
	case p.PitchAngleDeg < 5:
		return model.MaterialFlat
	case p.PitchAngleDeg > 45:
		return model.MaterialShingle
	case p.Area > 100:
		return model.MaterialMetal
	case p.Material != "":
		return p.Material
	default:
		return model.MaterialUnknown
	}
}
