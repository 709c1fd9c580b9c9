package motionplan

import (
	"iter"
	"time"

	"github.com/golang/geo/r2"
)

// endTolerance is how close, in seconds, a step-aligned sample may get to the end of the plan before
// it is dropped in favour of the final sample.
const endTolerance = 1e-9

// Sample is the kinematic state of the tool center point at one instant.
type Sample struct {
	Time     float64 // s
	Position r2.Point
	Speed    float64 // mm/s
	// Acceleration is the signed tangential acceleration in mm/s^2.
	Acceleration float64
	// Direction is the unit direction of travel. It is the zero vector only for plans that do not move.
	Direction     r2.Point
	SegmentIndex  int
	WaypointIndex int
	// InZone is set while the path is inside a blend region.
	InZone bool
}

// A Sampler walks a resolved plan at a fixed time step.
type Sampler struct {
	plan  *Plan
	step  float64
	total float64
}

// NewSampler returns a Sampler producing one sample every timeStep.
func NewSampler(plan *Plan, timeStep time.Duration) (*Sampler, error) {
	if plan == nil || len(plan.waypoints) < 2 {
		count := 0
		if plan != nil {
			count = len(plan.waypoints)
		}
		return nil, newInsufficientWaypointsError(count)
	}
	if timeStep <= 0 {
		return nil, newInvalidTimeStepError(timeStep)
	}
	return &Sampler{plan: plan, step: timeStep.Seconds(), total: TotalTime(plan)}, nil
}

// TotalTime returns the time of the last sample.
func (s *Sampler) TotalTime() float64 {
	return s.total
}

// Samples returns the trace as a sequence: one sample at every multiple of the time step and a
// final one at the end of the plan. The sequence may be ranged over any number of times and
// always yields the same samples.
func (s *Sampler) Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for k := 0; ; k++ {
			// computed from k rather than accumulated so that long traces do not drift
			t := float64(k) * s.step
			if t >= s.total-endTolerance {
				break
			}
			if !yield(s.At(t)) {
				return
			}
		}
		yield(s.At(s.total))
	}
}

// Collect returns every sample of the trace.
func (s *Sampler) Collect() []Sample {
	out := make([]Sample, 0, int(s.total/s.step)+2)
	for sample := range s.Samples() {
		out = append(out, sample)
	}
	return out
}

// At returns the sample at time t, clamped to the duration of the plan.
func (s *Sampler) At(t float64) Sample {
	switch {
	case t < 0:
		t = 0
	case t > s.total:
		t = s.total
	}

	idx := s.plan.elementAt(t)
	if idx < 0 {
		// nothing moves; the robot stays at the start
		return Sample{Time: t, Position: s.plan.waypoints[0].Position}
	}
	e := s.plan.elements[idx]
	dist, speed, accel := e.Profile.At(t - e.StartTime)
	return Sample{
		Time:          t,
		Position:      e.Path.PointAt(dist),
		Speed:         speed,
		Acceleration:  accel,
		Direction:     e.Path.TangentAt(dist),
		SegmentIndex:  e.SegmentIndex,
		WaypointIndex: e.WaypointIndex,
		InZone:        e.Kind == ElementBlend,
	}
}

// SampleTrace samples plan with the given step and returns the full trace.
func SampleTrace(plan *Plan, timeStep time.Duration) ([]Sample, error) {
	s, err := NewSampler(plan, timeStep)
	if err != nil {
		return nil, err
	}
	return s.Collect(), nil
}
