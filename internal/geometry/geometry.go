// Package geometry provides the pure computational-geometry kernel for roof
// plane boundaries: polygon area, perimeter, collinearity, and segment
// self-intersection over ordered 3D boundary points.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/roofmetrics/roofcalc/internal/model"
)

// ErrInsufficientPoints is returned when a polygon has fewer than 3 vertices.
// The message text is load-bearing: callers match on the substring
// "insufficient boundary points".
var ErrInsufficientPoints = errors.New("insufficient boundary points")

// DefaultEpsilon is the tolerance used for collinearity tests.
const DefaultEpsilon = 1e-6

// PolygonArea computes the area of a polygon from its ordered boundary
// points using the shoelace formula over the x/y projection. The absolute
// value is returned, so winding direction is irrelevant.
func PolygonArea(points []model.Point3) (float64, error) {
	n := len(points)
	if n < 3 {
		return 0, fmt.Errorf("polygon has %d points, need at least 3: %w", n, ErrInsufficientPoints)
	}
	var sum float64
	j := n - 1
	for i := 0; i < n; i++ {
		sum += (points[j].X + points[i].X) * (points[j].Y - points[i].Y)
		j = i
	}
	return math.Abs(sum) / 2, nil
}

// PolygonPerimeter sums the 3D Euclidean distances between consecutive
// boundary points, wrapping from the last point back to the first.
// Fewer than 2 points yields 0.
func PolygonPerimeter(points []model.Point3) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		a := points[i]
		b := points[(i+1)%n]
		dx := b.X - a.X
		dy := b.Y - a.Y
		dz := b.Z - a.Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}

// AreCollinear reports whether three points are collinear in the x/y
// projection, within eps. Pass eps <= 0 to use DefaultEpsilon.
func AreCollinear(p1, p2, p3 model.Point3, eps float64) bool {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	cross := (p2.X-p1.X)*(p3.Y-p1.Y) - (p2.Y-p1.Y)*(p3.X-p1.X)
	return math.Abs(cross) < eps
}

// SelfIntersects reports whether any two non-adjacent edges of the polygon
// intersect in the x/y projection. Collinear overlap counts as an
// intersection. Polygons with fewer than 4 vertices cannot self-intersect.
//
// The test is O(n^2) over edge pairs, which is fine for roof boundaries
// (well under 50 points in practice).
func SelfIntersects(points []model.Point3) bool {
	n := len(points)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges (they share a vertex by construction).
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			if segmentsIntersect(points[i], points[(i+1)%n], points[j], points[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// orientation returns 0 if p, q, r are collinear, 1 if clockwise,
// 2 if counter-clockwise (x/y projection).
func orientation(p, q, r model.Point3) int {
	val := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	if math.Abs(val) < DefaultEpsilon {
		return 0
	}
	if val > 0 {
		return 1
	}
	return 2
}

// onSegment reports whether point q lies on segment pr, assuming the three
// points are collinear.
func onSegment(p, q, r model.Point3) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// segmentsIntersect reports whether segments p1-p2 and p3-p4 intersect,
// including collinear-overlap cases.
func segmentsIntersect(p1, p2, p3, p4 model.Point3) bool {
	o1 := orientation(p1, p2, p3)
	o2 := orientation(p1, p2, p4)
	o3 := orientation(p3, p4, p1)
	o4 := orientation(p3, p4, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear special cases
	if o1 == 0 && onSegment(p1, p3, p2) {
		return true
	}
	if o2 == 0 && onSegment(p1, p4, p2) {
		return true
	}
	if o3 == 0 && onSegment(p3, p1, p4) {
		return true
	}
	if o4 == 0 && onSegment(p3, p2, p4) {
		return true
	}
	return false
}
