// Package trace writes sampled trajectories for external analysis tools.
package trace

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/trajsim/motionplan"
)

// Point is the exported form of one sample.
type Point struct {
	Time         float64 `json:"t"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Speed        float64 `json:"v"`
	Acceleration float64 `json:"a"`
	Segment      int     `json:"seg"`
	InZone       bool    `json:"zone"`
}

// Points converts samples to their exported form.
func Points(samples []motionplan.Sample) []Point {
	return lo.Map(samples, func(s motionplan.Sample, _ int) Point {
		return Point{
			Time:         s.Time,
			X:            s.Position.X,
			Y:            s.Position.Y,
			Speed:        s.Speed,
			Acceleration: s.Acceleration,
			Segment:      s.SegmentIndex,
			InZone:       s.InZone,
		}
	})
}

// WriteJSON writes samples as an indented JSON array.
func WriteJSON(w io.Writer, samples []motionplan.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(Points(samples)), "encoding trace")
}

// ReadJSON reads a trace written by WriteJSON.
func ReadJSON(r io.Reader) ([]Point, error) {
	var points []Point
	if err := json.NewDecoder(r).Decode(&points); err != nil {
		return nil, errors.Wrap(err, "decoding trace")
	}
	return points, nil
}

var csvHeader = []string{"t", "x", "y", "v", "a", "seg", "zone"}

// WriteCSV writes samples as CSV with a header row.
func WriteCSV(w io.Writer, samples []motionplan.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range Points(samples) {
		record := []string{
			formatFloat(p.Time),
			formatFloat(p.X),
			formatFloat(p.Y),
			formatFloat(p.Speed),
			formatFloat(p.Acceleration),
			strconv.Itoa(p.Segment),
			strconv.FormatBool(p.InZone),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
