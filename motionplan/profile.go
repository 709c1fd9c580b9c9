package motionplan

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/trajsim/utils"
)

// PhaseKind identifies one constant-acceleration piece of a velocity profile.
type PhaseKind int

const (
	// PhaseAccelerate is a phase of constant positive acceleration.
	PhaseAccelerate PhaseKind = iota
	// PhaseCruise is a phase of constant speed.
	PhaseCruise
	// PhaseDecelerate is a phase of constant negative acceleration.
	PhaseDecelerate
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseAccelerate:
		return "accelerate"
	case PhaseCruise:
		return "cruise"
	case PhaseDecelerate:
		return "decelerate"
	}
	return fmt.Sprintf("PhaseKind(%d)", int(k))
}

// Phase is a stretch of motion with constant acceleration.
type Phase struct {
	Kind         PhaseKind
	Duration     float64 // s
	Distance     float64 // mm
	StartSpeed   float64 // mm/s
	EndSpeed     float64 // mm/s
	Acceleration float64 // signed, mm/s^2
}

// VelocityProfile describes how a straight stretch of path of a given length is traversed.
// Phases are ordered, contiguous in speed, and omit anything of zero duration.
type VelocityProfile struct {
	Length      float64
	EntrySpeed  float64
	CruiseSpeed float64
	// ExitSpeed is the speed actually reached at the end of the profile. It only differs from the
	// requested exit speed when Clamped is set.
	ExitSpeed float64
	PeakSpeed float64
	// Clamped is true when the requested exit speed could not be reached within Length.
	Clamped bool
	Phases  []Phase
}

// Profile computes the trapezoidal velocity profile covering length mm, starting at entrySpeed and
// finishing at exitSpeed, never exceeding cruiseSpeed, maxAccel or maxDecel. When the length is too
// short to reach cruiseSpeed the profile is triangular. When even a triangle cannot join the two
// boundary speeds, the profile spends the whole length accelerating (or decelerating) and reports the
// exit speed it does reach; callers must propagate that speed into the next boundary.
func Profile(length, entrySpeed, exitSpeed, cruiseSpeed, maxAccel, maxDecel float64) (*VelocityProfile, error) {
	if !nonNegativeFinite(length) {
		return nil, newInvalidKinematicsError("segment length must be non-negative, got %v", length)
	}
	if !positiveFinite(cruiseSpeed) {
		return nil, newInvalidKinematicsError("cruise speed must be positive, got %v", cruiseSpeed)
	}
	if !positiveFinite(maxAccel) || !positiveFinite(maxDecel) {
		return nil, newInvalidKinematicsError("acceleration limits must be positive, got %v and %v", maxAccel, maxDecel)
	}
	if !nonNegativeFinite(entrySpeed) || !nonNegativeFinite(exitSpeed) {
		return nil, newInvalidKinematicsError("boundary speeds must be non-negative, got %v and %v", entrySpeed, exitSpeed)
	}
	if exceeds(entrySpeed, cruiseSpeed) || exceeds(exitSpeed, cruiseSpeed) {
		return nil, newInvalidKinematicsError(
			"boundary speeds %v and %v must not exceed cruise speed %v", entrySpeed, exitSpeed, cruiseSpeed)
	}
	entrySpeed = math.Min(entrySpeed, cruiseSpeed)
	exitSpeed = math.Min(exitSpeed, cruiseSpeed)

	prof := &VelocityProfile{
		Length:      length,
		EntrySpeed:  entrySpeed,
		CruiseSpeed: cruiseSpeed,
		ExitSpeed:   exitSpeed,
	}

	if length < lengthEpsilon {
		// pass-through: nothing to traverse, so the speed cannot change
		prof.ExitSpeed = entrySpeed
		prof.PeakSpeed = entrySpeed
		prof.Clamped = !utils.Float64RelAlmostEqual(entrySpeed, exitSpeed, speedTolerance)
		return prof, nil
	}

	accelDist := rampDistance(entrySpeed, cruiseSpeed, maxAccel)
	decelDist := rampDistance(exitSpeed, cruiseSpeed, maxDecel)

	if accelDist+decelDist <= length {
		prof.PeakSpeed = cruiseSpeed
		prof.addRamp(entrySpeed, cruiseSpeed, maxAccel)
		prof.addCruise(cruiseSpeed, length-accelDist-decelDist)
		prof.addRamp(cruiseSpeed, exitSpeed, maxDecel)
		return prof, nil
	}

	// Triangular: the peak where accelerating from entry and decelerating to exit meet.
	peak := math.Sqrt((2*maxAccel*maxDecel*length + maxDecel*utils.Square(entrySpeed) + maxAccel*utils.Square(exitSpeed)) /
		(maxAccel + maxDecel))
	switch {
	case peak >= exitSpeed*(1-speedTolerance) && peak >= entrySpeed*(1-speedTolerance):
		peak = math.Min(math.Max(peak, math.Max(entrySpeed, exitSpeed)), cruiseSpeed)
		prof.PeakSpeed = peak
		prof.addRamp(entrySpeed, peak, maxAccel)
		prof.addRamp(peak, exitSpeed, maxDecel)
	case peak < exitSpeed:
		// exit speed is out of reach even accelerating the whole way
		reached := reachableSpeed(entrySpeed, maxAccel, length)
		prof.ExitSpeed = reached
		prof.PeakSpeed = reached
		prof.Clamped = true
		prof.addRamp(entrySpeed, reached, maxAccel)
	default:
		// entry speed is too high to slow down to the exit speed in time
		reached := math.Sqrt(math.Max(0, utils.Square(entrySpeed)-2*maxDecel*length))
		prof.ExitSpeed = reached
		prof.PeakSpeed = entrySpeed
		prof.Clamped = true
		prof.addRamp(entrySpeed, reached, maxDecel)
	}
	return prof, nil
}

// constantProfile traverses length at a single speed.
func constantProfile(length, speed float64) *VelocityProfile {
	prof := &VelocityProfile{
		Length:      length,
		EntrySpeed:  speed,
		CruiseSpeed: speed,
		ExitSpeed:   speed,
		PeakSpeed:   speed,
	}
	prof.addCruise(speed, length)
	return prof
}

// addRamp appends the constant-acceleration phase between two speeds. accel is the magnitude
// of the limit; the sign is taken from the direction of the speed change.
func (p *VelocityProfile) addRamp(from, to, accel float64) {
	if utils.Float64RelAlmostEqual(from, to, speedTolerance) {
		return
	}
	kind := PhaseAccelerate
	signed := accel
	if to < from {
		kind = PhaseDecelerate
		signed = -accel
	}
	p.Phases = append(p.Phases, Phase{
		Kind:         kind,
		Duration:     math.Abs(to-from) / accel,
		Distance:     rampDistance(from, to, accel),
		StartSpeed:   from,
		EndSpeed:     to,
		Acceleration: signed,
	})
}

func (p *VelocityProfile) addCruise(speed, dist float64) {
	if dist < lengthEpsilon || speed <= 0 {
		return
	}
	p.Phases = append(p.Phases, Phase{
		Kind:       PhaseCruise,
		Duration:   dist / speed,
		Distance:   dist,
		StartSpeed: speed,
		EndSpeed:   speed,
	})
}

// Duration returns the time needed to traverse the profile, in seconds.
func (p *VelocityProfile) Duration() float64 {
	durations := make([]float64, 0, len(p.Phases))
	for _, ph := range p.Phases {
		durations = append(durations, ph.Duration)
	}
	return floats.Sum(durations)
}

// Distance returns the summed distance of every phase, which matches Length.
func (p *VelocityProfile) Distance() float64 {
	total := 0.
	for _, ph := range p.Phases {
		total += ph.Distance
	}
	return total
}

// Phase returns the first phase of the given kind.
func (p *VelocityProfile) Phase(kind PhaseKind) (Phase, bool) {
	for _, ph := range p.Phases {
		if ph.Kind == kind {
			return ph, true
		}
	}
	return Phase{}, false
}

// At returns the distance travelled, the speed and the signed acceleration t seconds into the
// profile. Times outside the profile are clamped to its ends.
func (p *VelocityProfile) At(t float64) (dist, speed, accel float64) {
	if len(p.Phases) == 0 {
		return 0, p.EntrySpeed, 0
	}
	t = math.Max(t, 0)
	elapsed := 0.
	for _, ph := range p.Phases {
		if t <= elapsed+ph.Duration {
			tau := t - elapsed
			d := ph.StartSpeed*tau + 0.5*ph.Acceleration*tau*tau
			v := ph.StartSpeed + ph.Acceleration*tau
			v = utils.ClampF64(v, math.Min(ph.StartSpeed, ph.EndSpeed), math.Max(ph.StartSpeed, ph.EndSpeed))
			return math.Min(dist+d, p.Length), v, ph.Acceleration
		}
		elapsed += ph.Duration
		dist += ph.Distance
	}
	return p.Length, p.ExitSpeed, 0
}

// rampDistance is the distance needed to change speed between v1 and v2 at accel.
func rampDistance(v1, v2, accel float64) float64 {
	return math.Abs(utils.Square(v2)-utils.Square(v1)) / (2 * accel)
}

// reachableSpeed is the speed reached from v0 after accelerating at accel over dist.
func reachableSpeed(v0, accel, dist float64) float64 {
	return math.Sqrt(utils.Square(v0) + 2*accel*dist)
}

func exceeds(v, limit float64) bool {
	return v > limit*(1+speedTolerance)
}
