package model

import (
	"time"

	"github.com/google/uuid"
)

// SensorAccuracy describes the capture device's reported accuracy class
// for a boundary point.
type SensorAccuracy string

const (
	AccuracyLow    SensorAccuracy = "low"
	AccuracyMedium SensorAccuracy = "medium"
	AccuracyHigh   SensorAccuracy = "high"
)

// Point3 is a single captured boundary point. Points are immutable once
// captured and are owned by the Plane that references them.
type Point3 struct {
	X              float64        `json:"x"` // metres from session origin
	Y              float64        `json:"y"` // metres
	Z              float64        `json:"z"` // metres (elevation)
	Confidence     float64        `json:"confidence"` // capture confidence in [0,1]
	Timestamp      time.Time      `json:"timestamp"`
	SensorAccuracy SensorAccuracy `json:"sensor_accuracy"`
}

// Vector3 is a 3D direction vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SurfaceType classifies what a roof plane represents.
type SurfaceType string

const (
	SurfacePrimary   SurfaceType = "primary"
	SurfaceSecondary SurfaceType = "secondary"
	SurfaceDormer    SurfaceType = "dormer"
	SurfaceChimney   SurfaceType = "chimney"
	SurfaceHip       SurfaceType = "hip"
	SurfaceOther     SurfaceType = "other"
)

// Material is a roofing material type. The empty string means the material
// has not been set; MaterialUnknown means it was considered and could not
// be determined.
type Material string

const (
	MaterialShingle Material = "shingle"
	MaterialMetal   Material = "metal"
	MaterialTile    Material = "tile"
	MaterialFlat    Material = "flat"
	MaterialUnknown Material = "unknown"
)

// Plane is one captured roof surface, described by its ordered boundary
// points (perimeter order, either winding direction).
//
// Area holds the raw shoelace result and ProjectedArea the pitch-corrected
// figure. The naming is inverted from common roofing convention and is kept
// that way on purpose: downstream material and cost calculations are tuned
// against these field semantics.
type Plane struct {
	ID            string      `json:"id"`
	Label         string      `json:"label,omitempty"`
	Boundaries    []Point3    `json:"boundaries"` // >= 3 points, perimeter order
	Normal        Vector3     `json:"normal"`
	PitchAngleDeg float64     `json:"pitch_angle_deg"` // [0,90]
	AzimuthDeg    float64     `json:"azimuth_deg"`     // [0,360)
	Area          float64     `json:"area"`            // raw shoelace area (sq m), derived
	Perimeter     float64     `json:"perimeter"`       // 3D perimeter (m), derived
	ProjectedArea float64     `json:"projected_area"`  // pitch-corrected area (sq m), derived
	SurfaceType   SurfaceType `json:"surface_type"`
	Confidence    float64     `json:"confidence"` // [0,1]
	Material      Material    `json:"material,omitempty"`
}

// NewRectPlane builds a plane with an axis-aligned rectangular boundary at
// z=0, for manual entry and imported footprints. Derived fields (Area,
// Perimeter, ProjectedArea, Normal) are left zero; the engine recomputes
// them during measurement.
func NewRectPlane(label string, width, height, pitchDeg, azimuthDeg float64, surface SurfaceType) Plane {
	now := time.Now()
	corner := func(x, y float64) Point3 {
		return Point3{X: x, Y: y, Confidence: 1.0, Timestamp: now, SensorAccuracy: AccuracyMedium}
	}
	return Plane{
		ID:    uuid.New().String()[:8],
		Label: label,
		Boundaries: []Point3{
			corner(0, 0),
			corner(width, 0),
			corner(width, height),
			corner(0, height),
		},
		PitchAngleDeg: pitchDeg,
		AzimuthDeg:    azimuthDeg,
		SurfaceType:   surface,
		Confidence:    1.0,
	}
}

// QualityMetrics is a snapshot of capture quality, derived at measurement
// creation time.
type QualityMetrics struct {
	OverallScore       float64 `json:"overall_score"`       // 0-100
	TrackingStability  float64 `json:"tracking_stability"`  // 0-100
	PointDensity       float64 `json:"point_density"`       // mean boundary points per plane
	DurationSeconds    float64 `json:"duration_s"`          // processing wall time
	LightingQuality    float64 `json:"lighting_quality"`    // 0-100
	MovementSmoothness float64 `json:"movement_smoothness"` // 0-100
}

// Compliance is a placeholder verdict until a real compliance source exists.
type Compliance struct {
	Status    string    `json:"status"`
	Standards []string  `json:"standards"`
	LastCheck time.Time `json:"last_check"`
	NextCheck time.Time `json:"next_check"`
}

// AuditAction identifies the kind of operation an audit entry records.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditModify AuditAction = "modify"
	AuditExport AuditAction = "export"
	AuditSync   AuditAction = "sync"
	AuditView   AuditAction = "view"
	AuditDelete AuditAction = "delete"
)

// AuditEntry is one line in the append-only audit trail. DataHash is a
// SHA-256 digest of the description, giving tamper evidence, not
// confidentiality.
type AuditEntry struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	Action      AuditAction `json:"action"`
	UserID      string      `json:"user_id"`
	SessionID   string      `json:"session_id"`
	Description string      `json:"description"`
	DataHash    string      `json:"data_hash"`
}

// Measurement is the aggregate result of one measurement session. It owns
// recomputed copies of the input planes; TotalArea and TotalProjectedArea
// always equal the sums of the corresponding plane fields within
// floating-point tolerance. A re-measurement produces a new Measurement,
// never a mutation.
type Measurement struct {
	ID                 string            `json:"id"`
	SessionID          string            `json:"session_id"`
	UserID             string            `json:"user_id"`
	Planes             []Plane           `json:"planes"`
	TotalArea          float64           `json:"total_area"`
	TotalProjectedArea float64           `json:"total_projected_area"`
	Accuracy           float64           `json:"accuracy"` // quality score / 100 at creation
	Quality            QualityMetrics    `json:"quality_metrics"`
	AuditTrail         []AuditEntry      `json:"audit_trail"`
	Compliance         Compliance        `json:"compliance"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// ValidationResult is a per-call validation report. It is never persisted.
type ValidationResult struct {
	IsValid         bool     `json:"is_valid"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	QualityScore    float64  `json:"quality_score"` // 0-100
	Recommendations []string `json:"recommendations"`
}

// CostEstimate is a placeholder cost breakdown pending a real pricing source.
type CostEstimate struct {
	MaterialCost float64 `json:"material_cost"`
	LaborCost    float64 `json:"labor_cost"`
	TotalCost    float64 `json:"total_cost"`
	Currency     string  `json:"currency"`
}

// MaterialCalculation is the waste- and complexity-adjusted bill of
// quantities derived from a Measurement.
type MaterialCalculation struct {
	BaseArea         float64        `json:"base_area"`     // sq m or sq ft per unit system
	AdjustedArea     float64        `json:"adjusted_area"` // waste- and complexity-adjusted
	WastePercent     float64        `json:"waste_percent"`
	ComplexityFactor float64        `json:"complexity_factor"`
	DominantMaterial Material       `json:"dominant_material"`
	MaterialUnits    map[string]int `json:"material_units"` // e.g. "shingle_bundles" -> 29
	CostEstimate     *CostEstimate  `json:"cost_estimate,omitempty"`
}
