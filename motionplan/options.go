package motionplan

import (
	"math"
	"time"
)

// default values for planning.
const (
	// DefaultTimeStep is the sampling period of a trajectory trace.
	DefaultTimeStep = 20 * time.Millisecond

	// Cartesian TCP limits, mm/s and mm/s^2.
	defaultMaxVelocity     = 5000.
	defaultMaxAcceleration = 2500.
	defaultMaxDeceleration = 2500.

	// Lengths below this many mm are treated as zero.
	lengthEpsilon = 1e-9

	// Relative tolerance used when checking that speeds and distances agree.
	speedTolerance = 1e-9
)

// DefaultLimits returns the kinematic limits used when a project does not specify any.
func DefaultLimits() Limits {
	return Limits{
		MaxVelocity:     defaultMaxVelocity,
		MaxAcceleration: defaultMaxAcceleration,
		MaxDeceleration: defaultMaxDeceleration,
	}
}

// Limits are the global cartesian kinematic limits of the tool center point.
type Limits struct {
	// Maximum path speed in mm/s. Commanded waypoint speeds above this are capped.
	MaxVelocity float64 `json:"max_velocity"`

	// Maximum path acceleration in mm/s^2. Also bounds the centripetal acceleration in blends.
	MaxAcceleration float64 `json:"max_acceleration"`

	// Maximum path deceleration in mm/s^2, given as a positive number.
	MaxDeceleration float64 `json:"max_deceleration"`
}

// Validate ensures every limit is positive and finite.
func (l Limits) Validate() error {
	for _, limit := range []struct {
		name string
		val  float64
	}{
		{"max_velocity", l.MaxVelocity},
		{"max_acceleration", l.MaxAcceleration},
		{"max_deceleration", l.MaxDeceleration},
	} {
		if !positiveFinite(limit.val) {
			return newInvalidKinematicsError("%s must be positive, got %v", limit.name, limit.val)
		}
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func nonNegativeFinite(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
