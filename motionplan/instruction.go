package motionplan

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/trajsim/zone"
)

// Instruction is the resolved form of one waypoint, carrying what a controller move statement needs.
type Instruction struct {
	Index  int
	Target r2.Point
	Motion MotionType
	// Zone is the zone as programmed. AppliedRadius is the blend radius actually used, which is 0
	// whenever the robot stops at the waypoint.
	Zone          zone.Zone
	AppliedRadius float64
	ExactStop     bool
	// CommandedSpeed is the programmed speed, AchievableSpeed the highest speed reached on the move
	// towards the waypoint.
	CommandedSpeed  float64
	AchievableSpeed float64
}

// Instructions returns one instruction per waypoint, in program order.
func (p *Plan) Instructions() []Instruction {
	radii := make(map[int]float64, len(p.blends))
	for _, b := range p.blends {
		radii[b.WaypointIndex] = b.Radius
	}

	out := make([]Instruction, 0, len(p.waypoints))
	for i, wp := range p.waypoints {
		achievable := math.Min(wp.Speed, p.limits.MaxVelocity)
		if i > 0 {
			achievable = math.Min(achievable, p.segments[i-1].Profile.PeakSpeed)
		}
		out = append(out, Instruction{
			Index:           i,
			Target:          wp.Position,
			Motion:          wp.Motion,
			Zone:            wp.Zone,
			AppliedRadius:   radii[i],
			ExactStop:       p.stops[i],
			CommandedSpeed:  wp.Speed,
			AchievableSpeed: achievable,
		})
	}
	return out
}
