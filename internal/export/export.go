// Package export serializes measurements to JSON, CSV, and a multi-section
// text report. Exporters never mutate the measurement and never append audit
// entries; callers log exports against their own session trail.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roofmetrics/roofcalc/internal/model"
)

// Format selects an export serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
	// FormatTextReport is an accepted alias for FormatText.
	FormatTextReport Format = "text_report"
)

// Export serializes a measurement in the requested format.
func Export(m *model.Measurement, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return ExportJSON(m)
	case FormatCSV:
		return ExportCSV(m)
	case FormatText, FormatTextReport:
		return ExportText(m), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

// jsonEnvelope wraps the measurement with an export timestamp. Everything
// inside Measurement round-trips unchanged.
type jsonEnvelope struct {
	ExportedAt  time.Time         `json:"exported_at"`
	Measurement model.Measurement `json:"measurement"`
}

// ExportJSON returns the full measurement as indented JSON plus an export
// timestamp.
func ExportJSON(m *model.Measurement) (string, error) {
	data, err := json.MarshalIndent(jsonEnvelope{
		ExportedAt:  time.Now(),
		Measurement: *m,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseJSON decodes a JSON export back into a measurement and its export
// timestamp.
func ParseJSON(s string) (model.Measurement, time.Time, error) {
	var env jsonEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return model.Measurement{}, time.Time{}, err
	}
	return env.Measurement, env.ExportedAt, nil
}

// ExportCSV returns one row per plane followed by a summary row.
func ExportCSV(m *model.Measurement) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{
		"plane_id", "surface_type", "material", "area_sqm", "projected_area_sqm",
		"pitch_deg", "azimuth_deg", "confidence", "boundary_points",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, p := range m.Planes {
		row := []string{
			p.ID,
			string(p.SurfaceType),
			string(p.Material),
			fmt.Sprintf("%.2f", p.Area),
			fmt.Sprintf("%.2f", p.ProjectedArea),
			fmt.Sprintf("%.1f", p.PitchAngleDeg),
			fmt.Sprintf("%.1f", p.AzimuthDeg),
			fmt.Sprintf("%.2f", p.Confidence),
			fmt.Sprintf("%d", len(p.Boundaries)),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	summary := []string{
		"TOTAL", "", "",
		fmt.Sprintf("%.2f", m.TotalArea),
		fmt.Sprintf("%.2f", m.TotalProjectedArea),
		"", "",
		fmt.Sprintf("%.2f", m.Accuracy),
		fmt.Sprintf("%d", len(m.Planes)),
	}
	if err := w.Write(summary); err != nil {
		return "", err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ExportText renders a fixed-order multi-section report: header, overview,
// per-plane detail, quality metrics, and a compliance footer.
func ExportText(m *model.Measurement) string {
	var sb strings.Builder
	line := strings.Repeat("=", 64)

	sb.WriteString(line + "\n")
	sb.WriteString("ROOF MEASUREMENT REPORT\n")
	sb.WriteString(fmt.Sprintf("Measurement: %s\n", m.ID))
	sb.WriteString(fmt.Sprintf("Session:     %s    User: %s\n", m.SessionID, m.UserID))
	sb.WriteString(fmt.Sprintf("Created:     %s\n", m.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(line + "\n\n")

	sb.WriteString("OVERVIEW\n")
	sb.WriteString(fmt.Sprintf("  Planes:               %d\n", len(m.Planes)))
	sb.WriteString(fmt.Sprintf("  Total area:           %.2f sq m\n", m.TotalArea))
	sb.WriteString(fmt.Sprintf("  Total projected area: %.2f sq m\n", m.TotalProjectedArea))
	sb.WriteString(fmt.Sprintf("  Accuracy:             %.0f%%\n\n", m.Accuracy*100))

	sb.WriteString("PLANES\n")
	for i, p := range m.Planes {
		name := p.Label
		if name == "" {
			name = p.ID
		}
		sb.WriteString(fmt.Sprintf("  %d. %s (%s)\n", i+1, name, p.SurfaceType))
		sb.WriteString(fmt.Sprintf("     area %.2f sq m, projected %.2f sq m, perimeter %.2f m\n",
			p.Area, p.ProjectedArea, p.Perimeter))
		sb.WriteString(fmt.Sprintf("     pitch %.1f deg, azimuth %.1f deg, material %s, confidence %.2f\n",
			p.PitchAngleDeg, p.AzimuthDeg, materialLabel(p.Material), p.Confidence))
	}
	sb.WriteString("\n")

	sb.WriteString("QUALITY METRICS\n")
	q := m.Quality
	sb.WriteString(fmt.Sprintf("  Overall score:       %.0f/100\n", q.OverallScore))
	sb.WriteString(fmt.Sprintf("  Tracking stability:  %.0f/100\n", q.TrackingStability))
	sb.WriteString(fmt.Sprintf("  Point density:       %.1f points/plane\n", q.PointDensity))
	sb.WriteString(fmt.Sprintf("  Lighting quality:    %.0f/100\n", q.LightingQuality))
	sb.WriteString(fmt.Sprintf("  Movement smoothness: %.0f/100\n", q.MovementSmoothness))
	sb.WriteString(fmt.Sprintf("  Processing time:     %.3f s\n\n", q.DurationSeconds))

	sb.WriteString("COMPLIANCE\n")
	sb.WriteString(fmt.Sprintf("  Status:     %s\n", m.Compliance.Status))
	sb.WriteString(fmt.Sprintf("  Standards:  %s\n", strings.Join(m.Compliance.Standards, ", ")))
	sb.WriteString(fmt.Sprintf("  Next check: %s\n", m.Compliance.NextCheck.Format("2006-01-02")))
	sb.WriteString(line + "\n")

	return sb.String()
}

func materialLabel(m model.Material) string {
	if m == "" {
		return "unset"
	}
	return string(m)
}
