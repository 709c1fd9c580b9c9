// Package vizplot renders plans and traces as PNG charts.
package vizplot

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/trajsim/motionplan"
)

// Default image size.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

var (
	nominalColor = color.Gray{Y: 160}
	zoneColor    = color.RGBA{R: 230, G: 120, B: 30, A: 255}
)

// segmentColor returns a distinct colour for segment idx of count, walking the hue circle.
func segmentColor(idx, count int) color.Color {
	if count < 1 {
		count = 1
	}
	return colorful.Hsv(300*float64(idx)/float64(count), 0.75, 0.85)
}

// VelocityPlot charts speed against time, one line per segment. Blend regions are drawn with the
// colour of the segment leading into them.
func VelocityPlot(title string, samples []motionplan.Sample) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "speed (mm/s)"
	p.Add(plotter.NewGrid())

	runs := splitBySegment(samples)
	for i, run := range runs {
		xys := make(plotter.XYs, len(run))
		for j, s := range run {
			xys[j] = plotter.XY{X: s.Time, Y: s.Speed}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrapf(err, "plotting segment %d", run[0].SegmentIndex)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = segmentColor(run[0].SegmentIndex, lastSegment(runs)+1)
		p.Add(line)
		if i == 0 || run[0].SegmentIndex != runs[i-1][0].SegmentIndex {
			p.Legend.Add(segmentLabel(run[0].SegmentIndex), line)
		}
	}
	p.Y.Min = 0
	return p, nil
}

// PathPlot draws the programmed polyline, the travelled path coloured by segment, the waypoints
// and the circle of every applied blend zone.
func PathPlot(title string, plan *motionplan.Plan, samples []motionplan.Sample) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (mm)"
	p.Y.Label.Text = "y (mm)"
	p.Add(plotter.NewGrid())

	wps := plan.Waypoints()
	nominal := make(plotter.XYs, len(wps))
	for i, wp := range wps {
		nominal[i] = plotter.XY{X: wp.Position.X, Y: wp.Position.Y}
	}
	nominalLine, err := plotter.NewLine(nominal)
	if err != nil {
		return nil, errors.Wrap(err, "plotting programmed path")
	}
	nominalLine.LineStyle.Color = nominalColor
	nominalLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(nominalLine)
	p.Legend.Add("programmed", nominalLine)

	runs := splitBySegment(samples)
	for _, run := range runs {
		xys := make(plotter.XYs, len(run))
		for j, s := range run {
			xys[j] = plotter.XY{X: s.Position.X, Y: s.Position.Y}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrapf(err, "plotting segment %d", run[0].SegmentIndex)
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = segmentColor(run[0].SegmentIndex, lastSegment(runs)+1)
		p.Add(line)
	}

	for _, b := range plan.Blends() {
		circle, err := plotter.NewLine(circlePoints(wps[b.WaypointIndex].Position, b.Radius))
		if err != nil {
			return nil, errors.Wrapf(err, "plotting zone of waypoint %d", b.WaypointIndex)
		}
		circle.LineStyle.Color = zoneColor
		circle.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(circle)
	}

	points, err := plotter.NewScatter(nominal)
	if err != nil {
		return nil, errors.Wrap(err, "plotting waypoints")
	}
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(3)
	p.Add(points)
	p.Legend.Add("waypoints", points)
	return p, nil
}

// WritePNG renders p as a PNG image to w.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SavePNGs writes <name>_velocity.png and <name>_path.png into dir and returns their paths.
func SavePNGs(dir, name string, plan *motionplan.Plan, samples []motionplan.Sample) (paths []string, err error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	velocity, err := VelocityPlot(name+" velocity", samples)
	if err != nil {
		return nil, err
	}
	path, err := PathPlot(name+" path", plan, samples)
	if err != nil {
		return nil, err
	}

	for _, out := range []struct {
		suffix string
		plot   *plot.Plot
	}{{"velocity", velocity}, {"path", path}} {
		filename := filepath.Join(dir, name+"_"+out.suffix+".png")
		if err := writeFile(filename, out.plot); err != nil {
			return nil, err
		}
		paths = append(paths, filename)
	}
	return paths, nil
}

func writeFile(filename string, p *plot.Plot) (err error) {
	//nolint:gosec
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return WritePNG(f, p, DefaultWidth, DefaultHeight)
}

// splitBySegment groups consecutive samples by segment and by whether they lie in a blend. The
// boundary sample is repeated so that the lines join.
func splitBySegment(samples []motionplan.Sample) [][]motionplan.Sample {
	var runs [][]motionplan.Sample
	start := 0
	for i := 1; i <= len(samples); i++ {
		if i < len(samples) &&
			samples[i].SegmentIndex == samples[start].SegmentIndex && samples[i].InZone == samples[start].InZone {
			continue
		}
		end := i + 1
		if end > len(samples) {
			end = len(samples)
		}
		runs = append(runs, samples[start:end])
		start = i
	}
	return runs
}

func lastSegment(runs [][]motionplan.Sample) int {
	if len(runs) == 0 {
		return 0
	}
	last := runs[len(runs)-1]
	return last[0].SegmentIndex
}

func segmentLabel(idx int) string {
	return fmt.Sprintf("segment %d", idx+1)
}

func circlePoints(center r2.Point, radius float64) plotter.XYs {
	const n = 48
	xys := make(plotter.XYs, n+1)
	for i := range xys {
		theta := 2 * math.Pi * float64(i) / n
		xys[i] = plotter.XY{X: center.X + radius*math.Cos(theta), Y: center.Y + radius*math.Sin(theta)}
	}
	return xys
}
