package engine

import (
	"math"
	"testing"

	"github.com/roofmetrics/roofcalc/internal/model"
)

func TestCorrectedArea_ZeroPitchIsIdentity(t *testing.T) {
	for _, method := range []model.PitchMethod{
		model.PitchTrigonometric, model.PitchProjection, model.PitchAdvanced,
	} {
		got := CorrectedArea(100, 0, method)
		if math.Abs(got-100) > 1e-9 {
			t.Errorf("%s: expected 100 at zero pitch, got %.6f", method, got)
		}
	}
}

func TestCorrectedArea_Trigonometric(t *testing.T) {
	// cos(60 deg) = 0.5
	got := CorrectedArea(100, 60, model.PitchTrigonometric)
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("expected 50, got %.6f", got)
	}
}

func TestCorrectedArea_Projection(t *testing.T) {
	pitch := 30.0
	p := pitch * math.Pi / 180
	want := 100 * math.Cos(p) * (1 + math.Sin(p)*0.1)
	got := CorrectedArea(100, pitch, model.PitchProjection)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %.6f, got %.6f", want, got)
	}
}

func TestCorrectedArea_Advanced(t *testing.T) {
	pitch := 45.0
	p := pitch * math.Pi / 180
	s := math.Sin(p)
	want := 100 * math.Cos(p) * (1 + s*0.05) * (1 - s*s*0.02)
	got := CorrectedArea(100, pitch, model.PitchAdvanced)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %.6f, got %.6f", want, got)
	}
}

func TestCorrectedArea_MonotonicallyDecreasing(t *testing.T) {
	for _, method := range []model.PitchMethod{
		model.PitchTrigonometric, model.PitchProjection, model.PitchAdvanced,
	} {
		// The projection and advanced models bump the area slightly just
		// above 0 deg before falling, so start the sweep at 10.
		prev := math.Inf(1)
		for pitch := 10.0; pitch <= 60; pitch += 5 {
			got := CorrectedArea(100, pitch, method)
			if got >= prev {
				t.Errorf("%s: not decreasing at pitch %.0f (%.6f >= %.6f)", method, pitch, got, prev)
			}
			prev = got
		}
	}
}
