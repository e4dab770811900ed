package model

import "testing"

func TestNewRectPlane_Geometry(t *testing.T) {
	p := NewRectPlane("Main", 10, 8, 25, 180, SurfacePrimary)

	if len(p.Boundaries) != 4 {
		t.Fatalf("expected 4 boundary points, got %d", len(p.Boundaries))
	}
	corners := [][2]float64{{0, 0}, {10, 0}, {10, 8}, {0, 8}}
	for i, want := range corners {
		got := p.Boundaries[i]
		if got.X != want[0] || got.Y != want[1] {
			t.Errorf("corner %d: expected (%g,%g), got (%g,%g)", i, want[0], want[1], got.X, got.Y)
		}
		if got.Z != 0 {
			t.Errorf("corner %d: expected z=0, got %g", i, got.Z)
		}
		if got.Confidence != 1.0 {
			t.Errorf("corner %d: expected confidence 1.0, got %g", i, got.Confidence)
		}
		if got.SensorAccuracy != AccuracyMedium {
			t.Errorf("corner %d: expected medium accuracy, got %s", i, got.SensorAccuracy)
		}
		if got.Timestamp.IsZero() {
			t.Errorf("corner %d: expected non-zero timestamp", i)
		}
	}
}

func TestNewRectPlane_Fields(t *testing.T) {
	p := NewRectPlane("Dormer", 4, 3, 30, 90, SurfaceDormer)

	if len(p.ID) != 8 {
		t.Errorf("expected 8-character ID, got %q", p.ID)
	}
	if p.Label != "Dormer" {
		t.Errorf("expected label 'Dormer', got %q", p.Label)
	}
	if p.PitchAngleDeg != 30 || p.AzimuthDeg != 90 {
		t.Errorf("unexpected angles: pitch %g, azimuth %g", p.PitchAngleDeg, p.AzimuthDeg)
	}
	if p.SurfaceType != SurfaceDormer {
		t.Errorf("expected dormer surface, got %s", p.SurfaceType)
	}
	if p.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %g", p.Confidence)
	}
	// Derived fields stay zero until the engine computes them.
	if p.Area != 0 || p.Perimeter != 0 || p.ProjectedArea != 0 {
		t.Error("expected derived fields to be zero on construction")
	}
	if p.Material != "" {
		t.Errorf("expected material unset, got %s", p.Material)
	}
}

func TestNewRectPlane_UniqueIDs(t *testing.T) {
	a := NewRectPlane("a", 1, 1, 0, 0, SurfaceOther)
	b := NewRectPlane("b", 1, 1, 0, 0, SurfaceOther)
	if a.ID == b.ID {
		t.Errorf("expected distinct plane IDs, both were %q", a.ID)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UnitSystem != UnitMetric {
		t.Errorf("expected metric units, got %s", cfg.UnitSystem)
	}
	if cfg.AreaPrecision != 2 {
		t.Errorf("expected 2 decimal digits, got %d", cfg.AreaPrecision)
	}
	if cfg.PitchCorrection != PitchAdvanced {
		t.Errorf("expected advanced pitch correction, got %s", cfg.PitchCorrection)
	}
	if cfg.WasteFactorPercent != 10 {
		t.Errorf("expected 10%% waste factor, got %g", cfg.WasteFactorPercent)
	}
	if cfg.QualityThreshold != 75 {
		t.Errorf("expected quality threshold 75, got %g", cfg.QualityThreshold)
	}
	if !cfg.GeometryValidation {
		t.Error("expected geometry validation enabled by default")
	}
}
