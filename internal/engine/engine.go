// Package engine contains the roof-measurement aggregator: plane validation,
// pitch correction, quality scoring, and assembly of Measurement aggregates
// with a session-scoped audit trail.
package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/roofmetrics/roofcalc/internal/audit"
	"github.com/roofmetrics/roofcalc/internal/geometry"
	"github.com/roofmetrics/roofcalc/internal/model"
)

// complianceStandards is the fixed standards list attached to every new
// measurement until a real compliance source exists.
var complianceStandards = []string{"ASTM E2832", "ICC 1100", "NRCA RM-104"}

// complianceWindow is how long a fresh compliance check stays valid.
const complianceWindow = 30 * 24 * time.Hour

// Engine computes measurements for exactly one logical session. It owns the
// session's config and audit trail; concurrent sessions must use separate
// Engine instances. An Engine is not safe for concurrent use.
type Engine struct {
	cfg        model.EngineConfig
	trail      *audit.Trail
	classifier MaterialClassifier
	log        *zap.Logger
}

// New builds an Engine for a single measurement session. A nil logger
// disables logging.
func New(cfg model.EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg,
		trail:      audit.NewTrail(),
		classifier: PitchAreaClassifier{},
		log:        logger,
	}
}

// SetClassifier replaces the material classifier used during measurement.
func (e *Engine) SetClassifier(c MaterialClassifier) {
	if c != nil {
		e.classifier = c
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() model.EngineConfig {
	return e.cfg
}

// Trail exposes the session audit trail so callers can record follow-up
// actions (exports, views) against the same session.
func (e *Engine) Trail() *audit.Trail {
	return e.trail
}

// Validate runs the pre-flight plane validation with this engine's config.
func (e *Engine) Validate(planes []model.Plane) model.ValidationResult {
	return ValidatePlanes(planes, e.cfg)
}

// Compute validates the plane set, reprocesses every plane through the
// geometry kernel and pitch corrector, and assembles a Measurement. It
// either returns a complete, internally consistent Measurement or fails
// atomically with no partial state. Caller-owned planes are never mutated;
// the Measurement holds recomputed copies.
func (e *Engine) Compute(planes []model.Plane, sessionID, userID string) (*model.Measurement, error) {
	start := time.Now()

	validation := e.Validate(planes)
	if !validation.IsValid {
		e.trail.Append(model.AuditCreate, userID, sessionID,
			"Measurement rejected: "+strings.Join(validation.Errors, "; "))
		e.log.Warn("plane set rejected",
			zap.String("session_id", sessionID),
			zap.Int("planes", len(planes)),
			zap.Strings("errors", validation.Errors))
		return nil, &InvalidInputError{Errors: validation.Errors}
	}

	e.trail.Append(model.AuditCreate, userID, sessionID,
		fmt.Sprintf("Started measurement of %d planes", len(planes)))

	processed := make([]model.Plane, 0, len(planes))
	for i, p := range planes {
		cp := clonePlane(p)
		area, err := geometry.PolygonArea(cp.Boundaries)
		if err != nil {
			// Validation already gated geometry; reaching this is a bug.
			msg := fmt.Sprintf("%s failed area computation: %v", planeName(p, i), err)
			e.trail.Append(model.AuditCreate, userID, sessionID, "Measurement failed: "+msg)
			return nil, &InvalidInputError{Errors: []string{msg}}
		}
		cp.Area = area
		cp.Perimeter = geometry.PolygonPerimeter(cp.Boundaries)
		cp.ProjectedArea = CorrectedArea(area, cp.PitchAngleDeg, e.cfg.PitchCorrection)
		cp.Material = e.classifier.Classify(cp)
		cp.Normal = planeNormal(cp.PitchAngleDeg, cp.AzimuthDeg)
		processed = append(processed, cp)
	}

	var totalArea, totalProjected float64
	for _, p := range processed {
		totalArea += p.Area
		totalProjected += p.ProjectedArea
	}
	totalArea = roundTo(totalArea, e.cfg.AreaPrecision)
	totalProjected = roundTo(totalProjected, e.cfg.AreaPrecision)

	m := &model.Measurement{
		ID:                 uuid.New().String(),
		SessionID:          sessionID,
		UserID:             userID,
		Planes:             processed,
		TotalArea:          totalArea,
		TotalProjectedArea: totalProjected,
		Accuracy:           validation.QualityScore / 100,
		Quality:            qualityMetrics(processed, validation.QualityScore, time.Since(start)),
		Compliance:         defaultCompliance(),
		Metadata:           map[string]string{},
		CreatedAt:          time.Now(),
	}

	problems, warnings := e.consistencyCheck(m)
	if len(problems) > 0 {
		e.trail.Append(model.AuditCreate, userID, sessionID,
			"Measurement failed consistency check: "+strings.Join(problems, "; "))
		return nil, &InvalidMeasurementError{Problems: problems}
	}
	if len(warnings) > 0 {
		m.Metadata["warnings"] = strings.Join(warnings, "; ")
		e.log.Warn("measurement completed with warnings",
			zap.String("measurement_id", m.ID),
			zap.Strings("warnings", warnings))
	}

	e.trail.Append(model.AuditCreate, userID, sessionID,
		fmt.Sprintf("Completed measurement %s: %.2f sq m over %d planes", m.ID, m.TotalArea, len(processed)))
	m.AuditTrail = e.trail.Entries()

	e.log.Info("measurement complete",
		zap.String("measurement_id", m.ID),
		zap.String("session_id", sessionID),
		zap.Float64("total_area", m.TotalArea),
		zap.Float64("quality_score", validation.QualityScore))
	return m, nil
}

// consistencyCheck is the coarse post-computation pass. Problems invalidate
// the measurement; warnings are advisory only and never escalate.
func (e *Engine) consistencyCheck(m *model.Measurement) (problems, warnings []string) {
	if m.TotalArea <= 0 {
		problems = append(problems, fmt.Sprintf("total area %.4f is not positive", m.TotalArea))
	}
	if m.Accuracy < 0.3 {
		problems = append(problems, fmt.Sprintf("accuracy %.2f is below the 0.30 floor", m.Accuracy))
	}

	var sumArea, sumProjected float64
	for _, p := range m.Planes {
		sumArea += p.Area
		sumProjected += p.ProjectedArea
	}
	// Totals were rounded to the configured precision, so the sums may differ
	// by up to half a unit in the last kept digit.
	tolerance := math.Max(1, math.Abs(sumArea)) * 1e-6
	tolerance = math.Max(tolerance, 0.5*math.Pow(10, -float64(e.cfg.AreaPrecision)))
	if math.Abs(m.TotalArea-sumArea) > tolerance {
		problems = append(problems, fmt.Sprintf(
			"total area %.4f does not match plane sum %.4f", m.TotalArea, sumArea))
	}
	if math.Abs(m.TotalProjectedArea-sumProjected) > tolerance {
		problems = append(problems, fmt.Sprintf(
			"total projected area %.4f does not match plane sum %.4f", m.TotalProjectedArea, sumProjected))
	}

	if m.TotalArea > 0 {
		divergence := math.Abs(m.TotalArea-m.TotalProjectedArea) / m.TotalArea
		if divergence > 0.5 {
			warnings = append(warnings, fmt.Sprintf(
				"area and projected area diverge by %.0f%%; verify pitch angles", divergence*100))
		}
	}
	return problems, warnings
}

// qualityMetrics derives the quality snapshot attached to a measurement.
func qualityMetrics(planes []model.Plane, score float64, elapsed time.Duration) model.QualityMetrics {
	confidences := make([]float64, len(planes))
	minConf := 1.0
	var totalPoints int
	for i, p := range planes {
		confidences[i] = p.Confidence
		if p.Confidence < minConf {
			minConf = p.Confidence
		}
		totalPoints += len(p.Boundaries)
	}

	avgConf := 0.0
	smoothness := 100.0
	density := 0.0
	if len(planes) > 0 {
		avgConf = stat.Mean(confidences, nil)
		smoothness = clamp((1-stat.PopStdDev(confidences, nil))*100, 0, 100)
		density = float64(totalPoints) / float64(len(planes))
	} else {
		minConf = 0
	}

	return model.QualityMetrics{
		OverallScore:       score,
		TrackingStability:  avgConf * 100,
		PointDensity:       density,
		DurationSeconds:    elapsed.Seconds(),
		LightingQuality:    minConf * 100,
		MovementSmoothness: smoothness,
	}
}

func defaultCompliance() model.Compliance {
	now := time.Now()
	return model.Compliance{
		Status:    "pending",
		Standards: append([]string(nil), complianceStandards...),
		LastCheck: now,
		NextCheck: now.Add(complianceWindow),
	}
}

// clonePlane deep-copies a plane so the caller's value is never mutated.
func clonePlane(p model.Plane) model.Plane {
	cp := p
	cp.Boundaries = make([]model.Point3, len(p.Boundaries))
	copy(cp.Boundaries, p.Boundaries)
	return cp
}

// planeNormal derives the unit normal of a plane from its pitch and azimuth.
// A flat plane points straight up; tilting by the pitch angle leans the
// normal toward the azimuth direction.
func planeNormal(pitchDeg, azimuthDeg float64) model.Vector3 {
	pitch := pitchDeg * math.Pi / 180
	azimuth := azimuthDeg * math.Pi / 180
	return model.Vector3{
		X: math.Sin(pitch) * math.Sin(azimuth),
		Y: math.Sin(pitch) * math.Cos(azimuth),
		Z: math.Cos(pitch),
	}
}

func roundTo(v float64, digits int) float64 {
	if digits < 0 {
		digits = 0
	}
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
