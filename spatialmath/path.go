package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// maxFilletTurn is the largest turn, in radians, that can still be rounded by a tangent arc.
// Anything closer to a full reversal would need a vanishing arc radius.
const maxFilletTurn = math.Pi - 1e-6

// A Path is a planar curve parametrised by arc length s in [0, Length()].
// Arguments outside that range are clamped.
type Path interface {
	Length() float64
	Start() r2.Point
	End() r2.Point
	// PointAt returns the point reached after travelling s along the path.
	PointAt(s float64) r2.Point
	// TangentAt returns the unit direction of travel at s. Degenerate paths return the zero vector.
	TangentAt(s float64) r2.Point
}

// Line is a straight path between two points.
type Line struct {
	From r2.Point
	To   r2.Point
}

// NewLine returns the straight path from a to b.
func NewLine(a, b r2.Point) *Line {
	return &Line{From: a, To: b}
}

// Length returns the length of the line.
func (l *Line) Length() float64 {
	return Distance(l.From, l.To)
}

// Start returns the first point of the line.
func (l *Line) Start() r2.Point {
	return l.From
}

// End returns the last point of the line.
func (l *Line) End() r2.Point {
	return l.To
}

// PointAt returns the point at distance s from the start of the line.
func (l *Line) PointAt(s float64) r2.Point {
	length := l.Length()
	if length < PlanarEpsilon {
		return l.From
	}
	return Lerp(l.From, l.To, clamp(s, 0, length)/length)
}

// TangentAt returns the direction of the line.
func (l *Line) TangentAt(float64) r2.Point {
	return UnitDirection(l.From, l.To)
}

func (l *Line) String() string {
	return fmt.Sprintf("line %v -> %v", l.From, l.To)
}

// Arc is a circular arc. A positive Sweep runs counter-clockwise from StartAngle.
type Arc struct {
	Center     r2.Point
	Radius     float64
	StartAngle float64
	Sweep      float64
}

// Length returns the arc length.
func (a *Arc) Length() float64 {
	return a.Radius * math.Abs(a.Sweep)
}

// Start returns the first point of the arc.
func (a *Arc) Start() r2.Point {
	return a.pointAtAngle(a.StartAngle)
}

// End returns the last point of the arc.
func (a *Arc) End() r2.Point {
	return a.pointAtAngle(a.StartAngle + a.Sweep)
}

// PointAt returns the point at arc length s from the start.
func (a *Arc) PointAt(s float64) r2.Point {
	return a.pointAtAngle(a.angleAt(s))
}

// TangentAt returns the unit direction of travel at arc length s.
func (a *Arc) TangentAt(s float64) r2.Point {
	theta := a.angleAt(s)
	if a.Sweep >= 0 {
		return r2.Point{X: -math.Sin(theta), Y: math.Cos(theta)}
	}
	return r2.Point{X: math.Sin(theta), Y: -math.Cos(theta)}
}

func (a *Arc) angleAt(s float64) float64 {
	if a.Radius < PlanarEpsilon {
		return a.StartAngle
	}
	s = clamp(s, 0, a.Length())
	return a.StartAngle + math.Copysign(s/a.Radius, a.Sweep)
}

func (a *Arc) pointAtAngle(theta float64) r2.Point {
	return a.Center.Add(r2.Point{X: math.Cos(theta), Y: math.Sin(theta)}.Mul(a.Radius))
}

func (a *Arc) String() string {
	return fmt.Sprintf("arc center %v radius %.3f sweep %.3frad", a.Center, a.Radius, a.Sweep)
}

// Fillet returns the curve rounding the corner where a path travelling in direction in turns
// to direction out. The curve leaves the incoming line setback before the corner and joins the
// outgoing line setback after it, tangent to both. Collinear directions yield a straight Line
// through the corner; the second return value is false when the turn is a (near) reversal and
// no tangent curve exists.
func Fillet(corner, in, out r2.Point, setback float64) (Path, bool) {
	entry := corner.Sub(in.Mul(setback))
	exit := corner.Add(out.Mul(setback))
	turn := TurnAngle(in, out)
	if math.Abs(turn) > maxFilletTurn {
		return nil, false
	}
	if math.Abs(turn) < 1e-9 || setback < PlanarEpsilon {
		return NewLine(entry, exit), true
	}

	radius := setback / math.Tan(math.Abs(turn)/2)
	normal := in.Ortho()
	if turn < 0 {
		normal = normal.Mul(-1)
	}
	center := entry.Add(normal.Mul(radius))
	return &Arc{
		Center:     center,
		Radius:     radius,
		StartAngle: Heading(entry.Sub(center)),
		Sweep:      turn,
	}, true
}

// CurvatureRadius returns the radius of curvature of p, which is infinite for straight paths.
func CurvatureRadius(p Path) float64 {
	if arc, ok := p.(*Arc); ok {
		return arc.Radius
	}
	return math.Inf(1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
