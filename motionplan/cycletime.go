package motionplan

import "gonum.org/v1/gonum/floats"

// TotalTime returns the time in seconds needed to execute plan: the sum of every phase duration
// of every segment and blend region.
func TotalTime(plan *Plan) float64 {
	if plan == nil {
		return 0
	}
	var durations []float64
	for _, e := range plan.elements {
		for _, ph := range e.Profile.Phases {
			durations = append(durations, ph.Duration)
		}
	}
	return floats.Sum(durations)
}
