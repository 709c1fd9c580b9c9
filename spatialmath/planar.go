// Package spatialmath defines the planar geometry used to build robot paths: points, directions,
// straight legs and the circular fillets that round corners between them.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// PlanarEpsilon is the distance in mm below which two planar points are considered coincident.
const PlanarEpsilon = 1e-9

// Distance returns the euclidean distance between two planar points.
func Distance(a, b r2.Point) float64 {
	return b.Sub(a).Norm()
}

// UnitDirection returns the unit vector pointing from a to b. Coincident points yield the zero vector.
func UnitDirection(a, b r2.Point) r2.Point {
	d := b.Sub(a)
	if d.Norm() < PlanarEpsilon {
		return r2.Point{}
	}
	return d.Normalize()
}

// Heading returns the angle of v measured counter-clockwise from the +X axis, in radians.
func Heading(v r2.Point) float64 {
	return math.Atan2(v.Y, v.X)
}

// TurnAngle returns the signed angle in (-pi, pi] needed to rotate direction u onto direction w.
// Positive values are left (counter-clockwise) turns.
func TurnAngle(u, w r2.Point) float64 {
	return math.Atan2(u.Cross(w), u.Dot(w))
}

// Lerp linearly interpolates between a and b, with t=0 at a and t=1 at b.
func Lerp(a, b r2.Point, t float64) r2.Point {
	return a.Add(b.Sub(a).Mul(t))
}

// PlanarPointAlmostEqual returns true if the two points are within tol of each other.
func PlanarPointAlmostEqual(a, b r2.Point, tol float64) bool {
	return Distance(a, b) <= tol
}

// PolylineLength returns the summed length of the straight legs joining pts in order.
func PolylineLength(pts []r2.Point) float64 {
	total := 0.
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	return total
}
