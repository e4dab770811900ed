package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/roofmetrics/roofcalc/internal/geometry"
	"github.com/roofmetrics/roofcalc/internal/model"
)

// Per-plane validation thresholds.
const (
	minConfidence     = 0.3    // below this a plane is rejected
	lowConfidence     = 0.6    // below this a plane draws a warning
	minReasonableArea = 0.5    // sq m; smaller is likely sensor noise
	maxReasonableArea = 2000.0 // sq m; larger is likely a gross misdetection
	maxSafePitchDeg   = 60.0
	minDrainPitchDeg  = 2.0
)

// ValidatePlanes checks a plane set against the engine rules and returns a
// per-call report. It is a pre-flight check: callers can run it standalone
// before committing to a full measurement. Areas are recomputed from the
// boundaries; the caller-supplied Area field is never trusted.
func ValidatePlanes(planes []model.Plane, cfg model.EngineConfig) model.ValidationResult {
	result := model.ValidationResult{
		Errors:          []string{},
		Warnings:        []string{},
		Recommendations: []string{},
	}

	if len(planes) == 0 {
		result.Errors = append(result.Errors, "No planes detected")
		return result
	}

	confidences := make([]float64, 0, len(planes))
	areas := make([]float64, 0, len(planes))
	validGeometry := 0

	for i, p := range planes {
		name := planeName(p, i)
		confidences = append(confidences, p.Confidence)

		geomOK := true
		if len(p.Boundaries) < 3 {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"%s has invalid geometry: insufficient boundary points (%d, need at least 3)",
				name, len(p.Boundaries)))
			geomOK = false
		} else if cfg.GeometryValidation {
			if len(p.Boundaries) == 3 &&
				geometry.AreCollinear(p.Boundaries[0], p.Boundaries[1], p.Boundaries[2], geometry.DefaultEpsilon) {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"%s has invalid geometry: boundary points are collinear", name))
				geomOK = false
			} else if len(p.Boundaries) >= 4 && geometry.SelfIntersects(p.Boundaries) {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"%s has invalid geometry: boundary is self-intersecting", name))
				geomOK = false
			}
		}
		if geomOK {
			validGeometry++
		}

		if p.Confidence < minConfidence {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"%s has critically low confidence (%.2f)", name, p.Confidence))
		} else if p.Confidence < lowConfidence {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s has low confidence (%.2f)", name, p.Confidence))
		}

		if geomOK {
			area, err := geometry.PolygonArea(p.Boundaries)
			if err == nil {
				areas = append(areas, area)
				if area < minReasonableArea {
					result.Warnings = append(result.Warnings, fmt.Sprintf(
						"%s area %.2f sq m is below %.1f sq m, possibly sensor noise", name, area, minReasonableArea))
				} else if area > maxReasonableArea {
					result.Warnings = append(result.Warnings, fmt.Sprintf(
						"%s area %.0f sq m exceeds %.0f sq m, possibly a misdetection", name, area, maxReasonableArea))
				}
			}
		}

		if p.PitchAngleDeg > maxSafePitchDeg {
			result.Recommendations = append(result.Recommendations, fmt.Sprintf(
				"%s pitch %.1f deg exceeds %.0f deg; steep-slope safety equipment recommended",
				name, p.PitchAngleDeg, maxSafePitchDeg))
		} else if p.PitchAngleDeg < minDrainPitchDeg {
			result.Recommendations = append(result.Recommendations, fmt.Sprintf(
				"%s pitch %.1f deg is below %.0f deg; verify drainage provisions",
				name, p.PitchAngleDeg, minDrainPitchDeg))
		}

		if len(p.Boundaries) > 0 && len(p.Boundaries) < 4 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s has only %d boundary points; low point density reduces accuracy",
				name, len(p.Boundaries)))
		}
	}

	result.IsValid = len(result.Errors) == 0
	result.QualityScore = qualityScore(confidences, areas,
		float64(validGeometry)/float64(len(planes)), result.IsValid)
	return result
}

// qualityScore combines per-plane confidence, geometric validity, and
// plane-size consistency into a 0-100 score:
//
//	avgConfidence*40 + validityRatio*30 + sizeConsistency/100*20 + errorBonus
//
// where sizeConsistency is 100 minus 50x the coefficient of variation of the
// plane areas (floored at 0), and errorBonus is 10 when no errors were found.
func qualityScore(confidences, areas []float64, validityRatio float64, errorsEmpty bool) float64 {
	avgConfidence := 0.0
	if len(confidences) > 0 {
		avgConfidence = stat.Mean(confidences, nil)
	}

	sizeConsistency := 100.0 // a single plane is perfectly consistent
	if len(areas) >= 2 {
		mean := stat.Mean(areas, nil)
		if mean > 0 {
			cov := stat.PopStdDev(areas, nil) / mean
			sizeConsistency = math.Max(0, 100-cov*50)
		}
	}

	bonus := 0.0
	if errorsEmpty {
		bonus = 10
	}

	return math.Round(avgConfidence*40 + validityRatio*30 + sizeConsistency/100*20 + bonus)
}

// planeName returns a human-readable identifier for validation messages.
func planeName(p model.Plane, index int) string {
	switch {
	case p.Label != "":
		return fmt.Sprintf("Plane %q", p.Label)
	case p.ID != "":
		return fmt.Sprintf("Plane %s", p.ID)
	default:
		return fmt.Sprintf("Plane #%d", index+1)
	}
}
