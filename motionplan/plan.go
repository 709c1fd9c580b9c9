package motionplan

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r2"

	"go.viam.com/trajsim/spatialmath"
	"go.viam.com/trajsim/zone"
)

// ElementKind distinguishes the two kinds of path elements in a resolved plan.
type ElementKind int

const (
	// ElementSegment is a straight, possibly shortened, leg between two waypoints.
	ElementSegment ElementKind = iota
	// ElementBlend is the rounded corner replacing an interior waypoint.
	ElementBlend
)

func (k ElementKind) String() string {
	if k == ElementBlend {
		return "blend"
	}
	return "segment"
}

// Segment is the straight leg between waypoint Index and Index+1, shortened at either end by the
// blend radius applied there.
type Segment struct {
	Index int
	// Nominal is the unshortened leg between the two programmed waypoints.
	Nominal *spatialmath.Line
	// Path is the portion of Nominal actually traversed in a straight line.
	Path        *spatialmath.Line
	CruiseSpeed float64
	EntrySpeed  float64
	ExitSpeed   float64
	Profile     *VelocityProfile
}

// BlendRegion is the corner rounding applied around an interior waypoint. The region is traversed
// at constant speed, so its entry and exit speeds are equal.
type BlendRegion struct {
	WaypointIndex   int
	Zone            zone.Zone
	RequestedRadius float64
	// Radius is the blend radius after clamping to half of the shorter adjacent leg.
	Radius     float64
	Path       spatialmath.Path
	EntrySpeed float64
	ExitSpeed  float64
	Profile    *VelocityProfile
}

// Element is one piece of the resolved path, in travel order.
type Element struct {
	Kind ElementKind
	Path spatialmath.Path
	// Profile gives distance along Path against time since StartTime.
	Profile *VelocityProfile
	// SegmentIndex is the owning segment. Blends belong to the segment that leads into them.
	SegmentIndex int
	// WaypointIndex is the waypoint being approached, or rounded for blends.
	WaypointIndex int
	StartTime     float64
}

// Duration returns how long the element takes to traverse, in seconds.
func (e *Element) Duration() float64 {
	return e.Profile.Duration()
}

// EndTime returns the time at which the element is left.
func (e *Element) EndTime() float64 {
	return e.StartTime + e.Duration()
}

// Plan is a fully resolved waypoint program: every segment is shortened by the blends around it and
// carries a velocity profile consistent with its neighbours. A Plan is immutable; its accessors hand
// out copies so that a Plan can be shared between goroutines and cached.
type Plan struct {
	waypoints      []Waypoint
	limits         Limits
	segments       []Segment
	blends         []BlendRegion
	elements       []Element
	boundarySpeeds []float64
	stops          []bool
}

// Waypoints returns the programmed waypoints.
func (p *Plan) Waypoints() []Waypoint {
	return append([]Waypoint(nil), p.waypoints...)
}

// Limits returns the kinematic limits the plan was resolved with.
func (p *Plan) Limits() Limits {
	return p.limits
}

// Segments returns one entry per pair of consecutive waypoints.
func (p *Plan) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Blends returns the blend regions in waypoint order. Waypoints that stop have none.
func (p *Plan) Blends() []BlendRegion {
	return append([]BlendRegion(nil), p.blends...)
}

// Elements returns the path elements in travel order.
func (p *Plan) Elements() []Element {
	return append([]Element(nil), p.elements...)
}

// BoundarySpeed returns the speed at which waypoint idx is passed (for blends, the constant speed
// through the blend region). Exact stops report 0.
func (p *Plan) BoundarySpeed(idx int) float64 {
	return p.boundarySpeeds[idx]
}

// IsStop reports whether the robot comes to rest at waypoint idx.
func (p *Plan) IsStop(idx int) bool {
	return p.stops[idx]
}

// PathLength returns the length of the blended path actually travelled, in mm.
func (p *Plan) PathLength() float64 {
	total := 0.
	for _, e := range p.elements {
		total += e.Path.Length()
	}
	return total
}

// NominalLength returns the length of the polyline through the programmed waypoints, in mm.
func (p *Plan) NominalLength() float64 {
	pts := make([]r2.Point, 0, len(p.waypoints))
	for _, wp := range p.waypoints {
		pts = append(pts, wp.Position)
	}
	return spatialmath.PolylineLength(pts)
}

// elementAt returns the index of the element of non-zero duration that is active at time t.
// Times past the end resolve to the last such element; -1 means the plan takes no time at all.
func (p *Plan) elementAt(t float64) int {
	// first element ending after t
	idx := sort.Search(len(p.elements), func(i int) bool {
		return p.elements[i].EndTime() > t
	})
	for i := idx; i < len(p.elements); i++ {
		if p.elements[i].Duration() > 0 {
			return i
		}
	}
	for i := len(p.elements) - 1; i >= 0; i-- {
		if p.elements[i].Duration() > 0 {
			return i
		}
	}
	return -1
}

func (p *Plan) String() string {
	return fmt.Sprintf("plan with %d waypoints, %d blends, %.3fs", len(p.waypoints), len(p.blends), TotalTime(p))
}
