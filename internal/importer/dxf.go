package importer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/roofmetrics/roofcalc/internal/model"
)

// point2 is a 2D footprint coordinate in metres.
type point2 struct {
	x, y float64
}

// footprint is a closed polygon, implicitly wrapping last to first.
type footprint []point2

// dxfSegment is a line segment used when chaining loose LINE and ARC
// entities into closed footprints.
type dxfSegment struct {
	start point2
	end   point2
}

// chainTolerance is the maximum endpoint distance (metres) at which two
// segments are considered connected.
const chainTolerance = 0.01

// ImportDXF imports roof planes from a DXF drawing. Each closed shape
// (LWPOLYLINE, CIRCLE, or chain of connected LINEs/ARCs) becomes one plane
// whose boundary lies at z=0. DXF files carry no slope or capture data, so
// every plane gets the supplied default pitch and azimuth and confidence
// 1.0; the largest footprint is marked primary and the rest secondary.
func ImportDXF(path string, pitchDeg, azimuthDeg float64) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var footprints []footprint
	var segments []dxfSegment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			fp := lwPolylineToFootprint(e)
			if len(fp) >= 3 {
				footprints = append(footprints, fp)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			footprints = append(footprints, circleToFootprint(e, 64))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, dxfSegment{
				start: point2{x: e.Start[0], y: e.Start[1]},
				end:   point2{x: e.End[0], y: e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	for _, chained := range chainSegments(segments, chainTolerance) {
		if len(chained) >= 3 {
			footprints = append(footprints, chained)
		}
	}

	if len(footprints) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	// Largest footprint first so the primary surface comes out on top.
	sort.Slice(footprints, func(i, j int) bool {
		return footprintArea(footprints[i]) > footprintArea(footprints[j])
	})

	now := time.Now()
	for i, fp := range footprints {
		if degenerate, w, h := isDegenerate(fp); degenerate {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f m)", w, h))
			continue
		}

		surface := model.SurfaceSecondary
		if len(result.Planes) == 0 {
			surface = model.SurfacePrimary
		}

		boundaries := make([]model.Point3, len(fp))
		for j, pt := range fp {
			boundaries[j] = model.Point3{
				X:              pt.x,
				Y:              pt.y,
				Confidence:     1.0,
				Timestamp:      now,
				SensorAccuracy: model.AccuracyMedium,
			}
		}

		result.Planes = append(result.Planes, model.Plane{
			ID:            uuid.New().String()[:8],
			Label:         fmt.Sprintf("DXF Shape %d", i+1),
			Boundaries:    boundaries,
			PitchAngleDeg: pitchDeg,
			AzimuthDeg:    azimuthDeg,
			SurfaceType:   surface,
			Confidence:    1.0,
		})
	}

	return result
}

// isDegenerate reports whether a footprint's bounding box is too small to be
// a real roof surface, returning the box dimensions for the warning message.
func isDegenerate(fp footprint) (bool, float64, float64) {
	minX, minY := fp[0].x, fp[0].y
	maxX, maxY := fp[0].x, fp[0].y
	for _, p := range fp[1:] {
		minX = math.Min(minX, p.x)
		minY = math.Min(minY, p.y)
		maxX = math.Max(maxX, p.x)
		maxY = math.Max(maxY, p.y)
	}
	w := maxX - minX
	h := maxY - minY
	return w < 0.01 || h < 0.01, w, h
}

// lwPolylineToFootprint converts a DXF LWPOLYLINE entity to a footprint.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToFootprint(lw *entity.LwPolyline) footprint {
	var fp footprint

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := point2{x: v[0], y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := point2{x: lw.Vertices[nextIdx][0], y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			// The next vertex closes the arc, so drop the duplicate.
			fp = append(fp, arcPts[:len(arcPts)-1]...)
		} else {
			fp = append(fp, current)
		}
	}

	return fp
}

// bulgeArcPoints generates points along an arc defined by two endpoints and
// a DXF bulge factor (the tangent of a quarter of the included angle).
func bulgeArcPoints(p1, p2 point2, bulge float64, numSegments int) footprint {
	mx := (p1.x + p2.x) / 2
	my := (p1.y + p2.y) / 2
	dx := p2.x - p1.x
	dy := p2.y - p1.y
	chordLen := math.Sqrt(dx*dx + dy*dy)
	if chordLen < 1e-9 {
		return footprint{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.y-cy, p1.x-cx)
	endAngle := math.Atan2(p2.y-cy, p2.x-cx)

	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else {
		if endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
	}

	var pts footprint
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, point2{
			x: cx + radius*math.Cos(angle),
			y: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// circleToFootprint approximates a circle as a regular polygon.
func circleToFootprint(c *entity.Circle, numSegments int) footprint {
	fp := make(footprint, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		fp[i] = point2{
			x: cx + r*math.Cos(angle),
			y: cy + r*math.Sin(angle),
		}
	}
	return fp
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []point2 {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]point2, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = point2{
			x: cx + r*math.Cos(angle),
			y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// pointsToSegments converts a point sequence to connected segments.
func pointsToSegments(pts []point2) []dxfSegment {
	segs := make([]dxfSegment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, dxfSegment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed footprints.
func chainSegments(segs []dxfSegment, tolerance float64) []footprint {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var footprints []footprint

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := footprint{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		// Drop the duplicate closing point on closed chains.
		if len(chain) >= 3 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			chain = chain[:len(chain)-1]
		}

		if len(chain) >= 3 {
			footprints = append(footprints, chain)
		}
	}

	return footprints
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b point2, tolerance float64) bool {
	dx := a.x - b.x
	dy := a.y - b.y
	return math.Sqrt(dx*dx+dy*dy) <= tolerance
}

// footprintArea computes the absolute polygon area via the shoelace formula.
func footprintArea(fp footprint) float64 {
	n := len(fp)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += fp[i].x * fp[j].y
		area -= fp[j].x * fp[i].y
	}
	return math.Abs(area) / 2
}
