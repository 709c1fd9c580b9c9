package motionplan

import (
	"fmt"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
)

// Stats summarises a resolved plan and its trace.
type Stats struct {
	Waypoints     int
	Blends        int
	Samples       int
	CycleTime     float64 // s
	PathLength    float64 // mm
	NominalLength float64 // mm
	MaxSpeed      float64 // mm/s
	MeanSpeed     float64 // mm/s
	// P95Speed is the 95th percentile of the sampled speeds.
	P95Speed        float64 // mm/s
	MaxAcceleration float64 // mm/s^2, magnitude
}

// ComputeStats summarises plan and its sampled trace.
func ComputeStats(plan *Plan, samples []Sample) (Stats, error) {
	st := Stats{
		Waypoints:     len(plan.waypoints),
		Blends:        len(plan.blends),
		Samples:       len(samples),
		CycleTime:     TotalTime(plan),
		PathLength:    plan.PathLength(),
		NominalLength: plan.NominalLength(),
	}
	if len(samples) == 0 {
		return st, nil
	}

	speeds := make(stats.Float64Data, 0, len(samples))
	for _, s := range samples {
		speeds = append(speeds, s.Speed)
		st.MaxAcceleration = math.Max(st.MaxAcceleration, math.Abs(s.Acceleration))
	}
	var err error
	if st.MaxSpeed, err = speeds.Max(); err != nil {
		return Stats{}, err
	}
	if st.MeanSpeed, err = speeds.Mean(); err != nil {
		return Stats{}, err
	}
	if st.P95Speed, err = speeds.Percentile(95); err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (st Stats) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Waypoints", st.Waypoints},
		{"Blends", st.Blends},
		{"Samples", st.Samples},
		{"Cycle time", fmt.Sprintf("%.3f s", st.CycleTime)},
		{"Path length", fmt.Sprintf("%.1f mm", st.PathLength)},
		{"Nominal length", fmt.Sprintf("%.1f mm", st.NominalLength)},
		{"Max speed", fmt.Sprintf("%.1f mm/s", st.MaxSpeed)},
		{"Mean speed", fmt.Sprintf("%.1f mm/s", st.MeanSpeed)},
		{"P95 speed", fmt.Sprintf("%.1f mm/s", st.P95Speed)},
		{"Max acceleration", fmt.Sprintf("%.1f mm/s^2", st.MaxAcceleration)},
	})
	return t.Render()
}
