// Package estimate converts a finished Measurement into a waste- and
// complexity-adjusted material bill of quantities with an optional cost
// estimate.
package estimate

import (
	"math"

	"github.com/roofmetrics/roofcalc/internal/model"
)

// Unit-kind keys used in MaterialCalculation.MaterialUnits.
const (
	UnitShingleBundles = "shingle_bundles"
	UnitMetalSheets    = "metal_sheets"
	UnitTiles          = "tiles"
)

// sqftPerSqm converts square metres to square feet.
const sqftPerSqm = 10.764

// Coverage per discrete material unit, in square feet.
const (
	sqftPerShingleBundle = 33.3
	sqftPerMetalSheet    = 36.0
	sqftPerTile          = 1.0
)

// maxComplexity caps the accumulated complexity factor.
const maxComplexity = 1.5

// Rate is a per-square-foot price pair for one material type.
type Rate struct {
	MaterialPerSqFt float64
	LaborPerSqFt    float64
}

// PricingSource supplies per-material rates. The built-in fixed table is a
// placeholder pending a real pricing feed; swap in another implementation
// without touching the estimator.
type PricingSource interface {
	Rate(m model.Material) (Rate, bool)
	Currency() string
}

// FixedPricing is the built-in placeholder rate table.
type FixedPricing struct{}

func (FixedPricing) Rate(m model.Material) (Rate, bool) {
	switch m {
	case model.MaterialShingle:
		return Rate{MaterialPerSqFt: 1.20, LaborPerSqFt: 2.50}, true
	case model.MaterialMetal:
		return Rate{MaterialPerSqFt: 3.50, LaborPerSqFt: 3.00}, true
	case model.MaterialTile:
		return Rate{MaterialPerSqFt: 4.00, LaborPerSqFt: 4.50}, true
	case model.MaterialFlat:
		return Rate{MaterialPerSqFt: 2.00, LaborPerSqFt: 2.00}, true
	default:
		return Rate{}, false
	}
}

func (FixedPricing) Currency() string { return "USD" }

// Estimator computes material calculations under one engine configuration.
type Estimator struct {
	cfg     model.EngineConfig
	pricing PricingSource
}

// New builds an Estimator. A nil pricing source falls back to the built-in
// fixed table.
func New(cfg model.EngineConfig, pricing PricingSource) *Estimator {
	if pricing == nil {
		pricing = FixedPricing{}
	}
	return &Estimator{cfg: cfg, pricing: pricing}
}

// Estimate converts a measurement's projected area into discrete material
// units and a cost estimate. The base figure is the measurement's total
// projected area, inflated by the configured waste factor and by a roof
// complexity factor.
func (e *Estimator) Estimate(m *model.Measurement) model.MaterialCalculation {
	complexity := ComplexityFactor(m.Planes)
	adjusted := m.TotalProjectedArea * (1 + e.cfg.WasteFactorPercent/100) * complexity
	dominant := DominantMaterial(m.Planes)

	sqft := toSquareFeet(adjusted, e.cfg.UnitSystem)
	units := materialUnits(sqft, dominant)

	calc := model.MaterialCalculation{
		BaseArea:         m.TotalProjectedArea,
		AdjustedArea:     adjusted,
		WastePercent:     e.cfg.WasteFactorPercent,
		ComplexityFactor: complexity,
		DominantMaterial: dominant,
		MaterialUnits:    units,
	}

	if rate, ok := e.pricing.Rate(dominant); ok {
		materialCost := sqft * rate.MaterialPerSqFt
		laborCost := sqft * rate.LaborPerSqFt
		calc.CostEstimate = &model.CostEstimate{
			MaterialCost: materialCost,
			LaborCost:    laborCost,
			TotalCost:    materialCost + laborCost,
			Currency:     e.pricing.Currency(),
		}
	}
	return calc
}

// ComplexityFactor scores how much harder a roof is to cover than a plain
// gable. It starts at 1.0 and accumulates surcharges for many planes, steep
// average pitch, small fiddly planes, and many distinct facing directions,
// capped at 1.5.
func ComplexityFactor(planes []model.Plane) float64 {
	factor := 1.0

	if n := len(planes); n > 4 {
		factor += 0.05 * float64(n-4)
	}

	if len(planes) > 0 {
		var pitchSum float64
		for _, p := range planes {
			pitchSum += p.PitchAngleDeg
		}
		if avg := pitchSum / float64(len(planes)); avg > 30 {
			factor += 0.002 * (avg - 30)
		}
	}

	for _, p := range planes {
		if p.Area < 10 {
			factor += 0.03
		}
	}

	// Distinct 45-degree azimuth buckets beyond the first two.
	buckets := map[int]bool{}
	for _, p := range planes {
		buckets[int(math.Floor(p.AzimuthDeg/45))] = true
	}
	if len(buckets) > 2 {
		factor += 0.02 * float64(len(buckets)-2)
	}

	return math.Min(factor, maxComplexity)
}

// DominantMaterial returns the material type with the largest summed plane
// area, or MaterialUnknown when no plane carries a material.
func DominantMaterial(planes []model.Plane) model.Material {
	areas := map[model.Material]float64{}
	for _, p := range planes {
		if p.Material != "" {
			areas[p.Material] += p.Area
		}
	}
	dominant := model.MaterialUnknown
	best := 0.0
	for m, a := range areas {
		if a > best {
			best = a
			dominant = m
		}
	}
	return dominant
}

// toSquareFeet converts an area to square feet. Metric input is in square
// metres; imperial input is already square feet and passes through.
func toSquareFeet(area float64, unit model.UnitSystem) float64 {
	if unit == model.UnitImperial {
		return area
	}
	return area * sqftPerSqm
}

// materialUnits converts a covered square footage into discrete purchase
// units for the dominant material. Flat and unknown roofs have no discrete
// unit conversion; they are priced by area only.
func materialUnits(sqft float64, dominant model.Material) map[string]int {
	units := map[string]int{}
	switch dominant {
	case model.MaterialShingle:
		units[UnitShingleBundles] = int(math.Ceil(sqft / sqftPerShingleBundle))
	case model.MaterialMetal:
		units[UnitMetalSheets] = int(math.Ceil(sqft / sqftPerMetalSheet))
	case model.MaterialTile:
		units[UnitTiles] = int(math.Ceil(sqft / sqftPerTile))
	}
	return units
}
