package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roofmetrics/roofcalc/internal/audit"
	"github.com/roofmetrics/roofcalc/internal/model"
)

func TestCompute_EndToEndThreePlaneRoof(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)
	planes := []model.Plane{
		rectPlane("primary", 10, 8, 0, 1.0),
		rectPlane("dormer", 4, 3, 0, 1.0),
		rectPlane("secondary", 6, 4, 0, 1.0),
	}
	planes[0].SurfaceType = model.SurfacePrimary
	planes[1].SurfaceType = model.SurfaceDormer
	planes[2].SurfaceType = model.SurfaceSecondary

	m, err := eng.Compute(planes, "session-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.InDelta(t, 116.0, m.TotalArea, 1e-6)
	// Zero pitch means no slope correction under every model.
	assert.InDelta(t, 116.0, m.TotalProjectedArea, 1e-6)
	assert.Greater(t, m.Quality.OverallScore, 90.0)
	assert.InDelta(t, m.Quality.OverallScore/100, m.Accuracy, 1e-9)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "session-1", m.SessionID)
	assert.Equal(t, "pending", m.Compliance.Status)
	assert.True(t, m.Compliance.NextCheck.After(m.Compliance.LastCheck))
}

func TestCompute_TotalsMatchPlaneSums(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)
	planes := []model.Plane{
		rectPlane("a", 11.3, 7.9, 35, 0.92),
		rectPlane("b", 5.5, 4.2, 22, 0.88),
		rectPlane("c", 9.1, 6.6, 41, 0.95),
	}

	m, err := eng.Compute(planes, "s", "u")
	require.NoError(t, err)

	var sumArea, sumProjected float64
	for _, p := range m.Planes {
		sumArea += p.Area
		sumProjected += p.ProjectedArea
	}
	assert.InDelta(t, sumArea, m.TotalArea, math.Max(1e-6*sumArea, 0.005))
	assert.InDelta(t, sumProjected, m.TotalProjectedArea, math.Max(1e-6*sumProjected, 0.005))
	// Projected area must reflect the slope correction, not the raw sum.
	assert.Less(t, m.TotalProjectedArea, m.TotalArea)
}

func TestCompute_InvalidInputFailsAtomically(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)
	bad := rectPlane("bad", 10, 8, 20, 0.9)
	bad.Boundaries = bad.Boundaries[:2]

	m, err := eng.Compute([]model.Plane{bad}, "s", "u")
	assert.Nil(t, m, "no partial measurement on rejection")
	require.Error(t, err)

	var inputErr *InvalidInputError
	require.True(t, errors.As(err, &inputErr))
	require.NotEmpty(t, inputErr.Errors)
	assert.Contains(t, inputErr.Errors[0], "insufficient boundary points")

	// The rejection still lands in the session audit trail.
	require.Equal(t, 1, eng.Trail().Len())
	entry := eng.Trail().Entries()[0]
	assert.Contains(t, entry.Description, "rejected")
	assert.Equal(t, model.AuditCreate, entry.Action)
}

func TestCompute_AuditTrailOrderingAndIntegrity(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)
	planes := []model.Plane{rectPlane("roof", 10, 8, 20, 0.95)}

	m, err := eng.Compute(planes, "s", "u")
	require.NoError(t, err)

	require.Len(t, m.AuditTrail, 2)
	assert.Contains(t, m.AuditTrail[0].Description, "Started")
	assert.Contains(t, m.AuditTrail[1].Description, "Completed")
	assert.False(t, m.AuditTrail[1].Timestamp.Before(m.AuditTrail[0].Timestamp))
	assert.NoError(t, audit.Verify(m.AuditTrail))
}

func TestCompute_DoesNotMutateCallerPlanes(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)
	planes := []model.Plane{rectPlane("roof", 10, 8, 30, 0.95)}

	m, err := eng.Compute(planes, "s", "u")
	require.NoError(t, err)

	assert.Zero(t, planes[0].Area, "caller plane must stay untouched")
	assert.Zero(t, planes[0].Perimeter)
	assert.Zero(t, planes[0].ProjectedArea)
	assert.Greater(t, m.Planes[0].Area, 0.0)
}

func TestCompute_MaterialHeuristic(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)

	flat := rectPlane("flat", 10, 8, 2, 0.9)
	steep := rectPlane("steep", 10, 8, 50, 0.9)
	large := rectPlane("large", 20, 10, 20, 0.9)
	keep := rectPlane("keep", 8, 6, 20, 0.9)
	keep.Material = model.MaterialTile

	m, err := eng.Compute([]model.Plane{flat, steep, large, keep}, "s", "u")
	require.NoError(t, err)

	assert.Equal(t, model.MaterialFlat, m.Planes[0].Material)
	assert.Equal(t, model.MaterialShingle, m.Planes[1].Material)
	assert.Equal(t, model.MaterialMetal, m.Planes[2].Material)
	assert.Equal(t, model.MaterialTile, m.Planes[3].Material)
}

// fixedClassifier always answers the same material.
type fixedClassifier struct{ material model.Material }

func (c fixedClassifier) Classify(model.Plane) model.Material { return c.material }

func TestCompute_ClassifierIsSwappable(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)
	eng.SetClassifier(fixedClassifier{material: model.MaterialMetal})

	m, err := eng.Compute([]model.Plane{rectPlane("roof", 10, 8, 50, 0.9)}, "s", "u")
	require.NoError(t, err)
	assert.Equal(t, model.MaterialMetal, m.Planes[0].Material,
		"custom classifier must override the pitch heuristic")
}

func TestCompute_QualityThresholdIsAdvisory(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.QualityThreshold = 90

	eng := New(cfg, nil)
	low := rectPlane("low", 10, 5, 20, 0.3) // 50 sq m at the confidence boundary

	m, err := eng.Compute([]model.Plane{low}, "s", "u")
	require.NoError(t, err, "threshold is informational and must not block computation")
	assert.Less(t, m.Quality.OverallScore, cfg.QualityThreshold)
}

func TestCompute_RespectsAreaPrecision(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.AreaPrecision = 1

	eng := New(cfg, nil)
	m, err := eng.Compute([]model.Plane{rectPlane("roof", 3.333, 3.333, 18, 0.9)}, "s", "u")
	require.NoError(t, err)

	assert.InDelta(t, m.TotalArea, math.Round(m.TotalArea*10)/10, 1e-9)
	assert.InDelta(t, m.TotalProjectedArea, math.Round(m.TotalProjectedArea*10)/10, 1e-9)
}

func TestCompute_NormalDerivedFromPitchAndAzimuth(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)

	flat := rectPlane("flat", 10, 8, 0, 1.0)
	m, err := eng.Compute([]model.Plane{flat}, "s", "u")
	require.NoError(t, err)

	n := m.Planes[0].Normal
	assert.InDelta(t, 0, n.X, 1e-9)
	assert.InDelta(t, 0, n.Y, 1e-9)
	assert.InDelta(t, 1, n.Z, 1e-9)
}

func TestCompute_DivergenceWarningForSteepPitch(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)

	// At 75 deg the slope correction cuts the area by roughly three quarters,
	// well past the 50% divergence threshold.
	m, err := eng.Compute([]model.Plane{rectPlane("steep", 10, 8, 75, 1.0)}, "s", "u")
	require.NoError(t, err, "divergence is advisory and must not fail the measurement")

	assert.InDelta(t, 80.0, m.TotalArea, 1e-6)
	assert.Less(t, m.TotalProjectedArea, m.TotalArea/2)
	assert.Contains(t, m.Metadata["warnings"], "diverge")
	assert.Contains(t, m.Metadata["warnings"], "verify pitch angles")
}

func TestCompute_NoDivergenceWarningAtModeratePitch(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)

	m, err := eng.Compute([]model.Plane{rectPlane("roof", 10, 8, 25, 1.0)}, "s", "u")
	require.NoError(t, err)
	assert.NotContains(t, m.Metadata, "warnings")
}

func TestConsistencyCheck_FlagsCorruptedMeasurements(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)

	consistent := &model.Measurement{
		TotalArea:          80,
		TotalProjectedArea: 72,
		Accuracy:           0.9,
		Planes:             []model.Plane{{Area: 80, ProjectedArea: 72}},
	}
	problems, warnings := eng.consistencyCheck(consistent)
	assert.Empty(t, problems)
	assert.Empty(t, warnings)

	nonPositive := &model.Measurement{Accuracy: 0.9}
	problems, _ = eng.consistencyCheck(nonPositive)
	require.NotEmpty(t, problems)
	assert.Contains(t, problems[0], "not positive")

	lowAccuracy := &model.Measurement{
		TotalArea:          80,
		TotalProjectedArea: 72,
		Accuracy:           0.2,
		Planes:             []model.Plane{{Area: 80, ProjectedArea: 72}},
	}
	problems, _ = eng.consistencyCheck(lowAccuracy)
	require.NotEmpty(t, problems)
	assert.Contains(t, problems[0], "below the 0.30 floor")

	mismatched := &model.Measurement{
		TotalArea:          100,
		TotalProjectedArea: 72,
		Accuracy:           0.9,
		Planes:             []model.Plane{{Area: 80, ProjectedArea: 72}},
	}
	problems, _ = eng.consistencyCheck(mismatched)
	require.NotEmpty(t, problems)
	assert.Contains(t, problems[0], "does not match plane sum")
}

func TestInvalidMeasurementError_Message(t *testing.T) {
	err := &InvalidMeasurementError{Problems: []string{"total area 0.0000 is not positive"}}
	assert.Contains(t, err.Error(), "invalid measurement")
	assert.Contains(t, err.Error(), "not positive")
}

func TestCompute_SecondCallExtendsSessionTrail(t *testing.T) {
	eng := New(model.DefaultConfig(), nil)
	planes := []model.Plane{rectPlane("roof", 10, 8, 20, 0.95)}

	first, err := eng.Compute(planes, "s", "u")
	require.NoError(t, err)
	second, err := eng.Compute(planes, "s", "u")
	require.NoError(t, err)

	// The session buffer is flushed into each measurement it produces.
	assert.Len(t, first.AuditTrail, 2)
	assert.Len(t, second.AuditTrail, 4)
	assert.Equal(t, first.AuditTrail[0].ID, second.AuditTrail[0].ID)
	assert.NotEqual(t, first.ID, second.ID, "re-measurement produces a new aggregate")
}
