package engine

import (
	"math"

	"github.com/roofmetrics/roofcalc/internal/model"
)

// CorrectedArea converts a raw polygon area into the slope-corrected figure
// stored in a plane's ProjectedArea field, using the selected correction
// model. All three models are monotonically decreasing in pitch over the
// working range, approximating how a horizontally-projected footprint
// compares to the sloped surface.
func CorrectedArea(area, pitchDeg float64, method model.PitchMethod) float64 {
	pitch := pitchDeg * math.Pi / 180
	switch method {
	case model.PitchTrigonometric:
		return area * math.Cos(pitch)
	case model.PitchProjection:
		return area * math.Cos(pitch) * (1 + math.Sin(pitch)*0.1)
	default: // advanced
		s := math.Sin(pitch)
		return area * math.Cos(pitch) * (1 + s*0.05) * (1 - s*s*0.02)
	}
}
