package motionplan

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/trajsim/zone"
)

// MotionType is the controller move instruction used to reach a waypoint.
type MotionType string

const (
	// MoveL is a linear move of the tool center point. It is the default.
	MoveL MotionType = "MoveL"
	// MoveJ is a joint move. The engine has no joint model and interpolates it linearly as well;
	// the marker is carried through to exported programs.
	MoveJ MotionType = "MoveJ"
)

// Normalize returns MoveL for the zero value and m otherwise.
func (m MotionType) Normalize() MotionType {
	if m == "" {
		return MoveL
	}
	return m
}

// Validate returns an error for unknown motion types.
func (m MotionType) Validate() error {
	switch m.Normalize() {
	case MoveL, MoveJ:
		return nil
	default:
		return errors.Errorf("unknown motion type %q", string(m))
	}
}

// Waypoint is a programmed target position together with the speed used to reach it and the
// zone used to pass it.
type Waypoint struct {
	Position r2.Point
	// Speed is the commanded TCP speed in mm/s for the move that ends at this waypoint.
	Speed  float64
	Zone   zone.Zone
	Motion MotionType
}

// NewWaypoint returns a linear-move waypoint at (x, y).
func NewWaypoint(x, y, speed float64, z zone.Zone) Waypoint {
	return Waypoint{Position: r2.Point{X: x, Y: y}, Speed: speed, Zone: z, Motion: MoveL}
}

func (wp Waypoint) validate(idx int) error {
	if math.IsNaN(wp.Position.X) || math.IsNaN(wp.Position.Y) ||
		math.IsInf(wp.Position.X, 0) || math.IsInf(wp.Position.Y, 0) {
		return newInvalidKinematicsError("waypoint %d has a non-finite position %v", idx, wp.Position)
	}
	if !positiveFinite(wp.Speed) {
		return newInvalidKinematicsError("waypoint %d speed must be positive, got %v", idx, wp.Speed)
	}
	if !wp.Zone.Valid() {
		return newUnreachableZoneError("waypoint %d uses unknown zone %q", idx, string(wp.Zone))
	}
	if err := wp.Motion.Validate(); err != nil {
		return newInvalidKinematicsError("waypoint %d: %v", idx, err)
	}
	return nil
}
