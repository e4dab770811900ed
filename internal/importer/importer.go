// Package importer reads roof plane lists from CSV, Excel, and DXF files
// produced by capture tools or filled in by hand. It supports automatic
// delimiter detection, flexible column mapping, and case-insensitive header
// recognition. Imported planes carry rectangular footprints; the engine
// recomputes all derived fields during measurement.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/roofmetrics/roofcalc/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Planes   []model.Plane
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label      int
	Width      int
	Height     int
	Pitch      int
	Azimuth    int
	Surface    int
	Material   int
	Confidence int
}

// headerAliases maps canonical column names to their accepted aliases (all
// lowercase).
var headerAliases = map[string][]string{
	"label":      {"label", "name", "plane", "plane name", "section", "description", "desc"},
	"width":      {"width", "w", "length", "len", "x"},
	"height":     {"height", "h", "depth", "d", "y", "run"},
	"pitch":      {"pitch", "pitch deg", "pitch angle", "slope", "angle"},
	"azimuth":    {"azimuth", "azimuth deg", "bearing", "facing", "orientation"},
	"surface":    {"surface", "surface type", "type", "kind"},
	"material":   {"material", "mat", "covering", "roofing"},
	"confidence": {"confidence", "conf", "quality"},
}

// DetectCSVDelimiter reads the file content and determines the most likely
// CSV delimiter. It tries comma, semicolon, tab, and pipe; the delimiter
// producing the most consistent multi-column row shape wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping. Matching
// is case-insensitive against the known aliases for each role. Returns the
// mapping and true if a header was detected, or a default positional mapping
// (label, width, height, pitch, azimuth, surface, material, confidence) and
// false if not.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Label: -1, Width: -1, Height: -1, Pitch: -1,
		Azimuth: -1, Surface: -1, Material: -1, Confidence: -1,
	}

	assign := func(role string, idx int) {
		switch role {
		case "label":
			if mapping.Label == -1 {
				mapping.Label = idx
			}
		case "width":
			if mapping.Width == -1 {
				mapping.Width = idx
			}
		case "height":
			if mapping.Height == -1 {
				mapping.Height = idx
			}
		case "pitch":
			if mapping.Pitch == -1 {
				mapping.Pitch = idx
			}
		case "azimuth":
			if mapping.Azimuth == -1 {
				mapping.Azimuth = idx
			}
		case "surface":
			if mapping.Surface == -1 {
				mapping.Surface = idx
			}
		case "material":
			if mapping.Material == -1 {
				mapping.Material = idx
			}
		case "confidence":
			if mapping.Confidence == -1 {
				mapping.Confidence = idx
			}
		}
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					assign(role, i)
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			Label: 0, Width: 1, Height: 2, Pitch: 3,
			Azimuth: 4, Surface: 5, Material: 6, Confidence: 7,
		}, false
	}

	return mapping, true
}

// parseSurface converts a surface type string to a model.SurfaceType.
// Unrecognized values fall back to SurfaceOther.
func parseSurface(s string) (model.SurfaceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "main":
		return model.SurfacePrimary, true
	case "secondary":
		return model.SurfaceSecondary, true
	case "dormer":
		return model.SurfaceDormer, true
	case "chimney":
		return model.SurfaceChimney, true
	case "hip":
		return model.SurfaceHip, true
	case "", "other":
		return model.SurfaceOther, true
	default:
		return model.SurfaceOther, false
	}
}

// parseMaterial converts a material string to a model.Material. Empty input
// leaves the material unset so the engine's classifier decides.
func parseMaterial(s string) (model.Material, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case "shingle", "shingles", "asphalt":
		return model.MaterialShingle, true
	case "metal", "steel", "standing seam":
		return model.MaterialMetal, true
	case "tile", "tiles", "clay":
		return model.MaterialTile, true
	case "flat", "membrane":
		return model.MaterialFlat, true
	case "unknown":
		return model.MaterialUnknown, true
	default:
		return "", false
	}
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a Plane from a row using the given column mapping.
// Returns the plane, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, planeCount int) (model.Plane, string, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Plane %d", planeCount+1)
	}

	widthStr := getCell(row, mapping.Width)
	if widthStr == "" {
		return model.Plane{}, fmt.Sprintf("%s: Missing width value", rowLabel), ""
	}
	width, err := strconv.ParseFloat(widthStr, 64)
	if err != nil {
		return model.Plane{}, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, widthStr), ""
	}

	heightStr := getCell(row, mapping.Height)
	if heightStr == "" {
		return model.Plane{}, fmt.Sprintf("%s: Missing height value", rowLabel), ""
	}
	height, err := strconv.ParseFloat(heightStr, 64)
	if err != nil {
		return model.Plane{}, fmt.Sprintf("%s: Invalid height '%s'", rowLabel, heightStr), ""
	}

	if width <= 0 || height <= 0 {
		return model.Plane{}, fmt.Sprintf("%s: Width and height must be positive", rowLabel), ""
	}

	pitch := 0.0
	if s := getCell(row, mapping.Pitch); s != "" {
		pitch, err = strconv.ParseFloat(s, 64)
		if err != nil || pitch < 0 || pitch > 90 {
			return model.Plane{}, fmt.Sprintf("%s: Invalid pitch '%s' (expected 0-90)", rowLabel, s), ""
		}
	}

	azimuth := 0.0
	if s := getCell(row, mapping.Azimuth); s != "" {
		azimuth, err = strconv.ParseFloat(s, 64)
		if err != nil || azimuth < 0 || azimuth >= 360 {
			return model.Plane{}, fmt.Sprintf("%s: Invalid azimuth '%s' (expected 0-359.9)", rowLabel, s), ""
		}
	}

	var warnings []string
	surface, ok := parseSurface(getCell(row, mapping.Surface))
	if !ok {
		warnings = append(warnings, fmt.Sprintf("%s: Unknown surface type '%s', defaulting to other",
			rowLabel, getCell(row, mapping.Surface)))
	}

	plane := model.NewRectPlane(label, width, height, pitch, azimuth, surface)

	material, ok := parseMaterial(getCell(row, mapping.Material))
	if ok {
		plane.Material = material
	} else {
		warnings = append(warnings, fmt.Sprintf("%s: Unknown material '%s', leaving unset",
			rowLabel, getCell(row, mapping.Material)))
	}

	if s := getCell(row, mapping.Confidence); s != "" {
		conf, err := strconv.ParseFloat(s, 64)
		if err != nil || conf < 0 || conf > 1 {
			return model.Plane{}, fmt.Sprintf("%s: Invalid confidence '%s' (expected 0-1)", rowLabel, s), ""
		}
		plane.Confidence = conf
		for i := range plane.Boundaries {
			plane.Boundaries[i].Confidence = conf
		}
	}

	return plane, "", strings.Join(warnings, "; ")
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports planes from a CSV file. It automatically detects the
// delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports planes from a CSV reader with a known
// delimiter. Useful for testing and piped input.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports planes from an Excel (.xlsx) file. Reads the first
// sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// No recognized header: if the first row is not numeric where width
		// should be, treat it as an unrecognized header and skip it.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		plane, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Planes))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Planes = append(result.Planes, plane)
	}

	return result
}
