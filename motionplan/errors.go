package motionplan

import (
	"github.com/pkg/errors"
)

// Errors returned while resolving or sampling a plan. They are always wrapped with context and
// should be matched with errors.Is.
var (
	// ErrInvalidKinematics is returned for negative, zero or non-finite speeds, lengths or limits.
	ErrInvalidKinematics = errors.New("invalid kinematics")
	// ErrInsufficientWaypoints is returned when a plan has fewer than two waypoints.
	ErrInsufficientWaypoints = errors.New("insufficient waypoints")
	// ErrInvalidTimeStep is returned for a non-positive sampling step.
	ErrInvalidTimeStep = errors.New("invalid time step")
	// ErrUnreachableZone is returned when a requested blend zone cannot be applied at all.
	ErrUnreachableZone = errors.New("unreachable zone")
)

func newInvalidKinematicsError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidKinematics, format, args...)
}

func newInsufficientWaypointsError(count int) error {
	return errors.Wrapf(ErrInsufficientWaypoints, "need at least 2 waypoints, got %d", count)
}

func newInvalidTimeStepError(step interface{}) error {
	return errors.Wrapf(ErrInvalidTimeStep, "time step must be positive, got %v", step)
}

func newUnreachableZoneError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUnreachableZone, format, args...)
}
