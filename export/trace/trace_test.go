package trace

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"

	"go.viam.com/trajsim/motionplan"
	"go.viam.com/trajsim/zone"
)

func sampledTrace(t *testing.T) []motionplan.Sample {
	t.Helper()
	plan, err := motionplan.Blend([]motionplan.Waypoint{
		motionplan.NewWaypoint(0, 0, 50, zone.Fine),
		motionplan.NewWaypoint(100, 0, 50, zone.Z10),
		motionplan.NewWaypoint(100, 100, 50, zone.Fine),
	}, motionplan.Limits{MaxVelocity: 1000, MaxAcceleration: 100, MaxDeceleration: 100})
	test.That(t, err, test.ShouldBeNil)
	samples, err := motionplan.SampleTrace(plan, 100*motionplan.DefaultTimeStep)
	test.That(t, err, test.ShouldBeNil)
	return samples
}

func TestPoints(t *testing.T) {
	points := Points([]motionplan.Sample{
		{Time: 0.5, Position: r2.Point{X: 1, Y: 2}, Speed: 3, Acceleration: -4, SegmentIndex: 1, InZone: true},
	})
	test.That(t, points, test.ShouldResemble, []Point{{Time: 0.5, X: 1, Y: 2, Speed: 3, Acceleration: -4, Segment: 1, InZone: true}})
	test.That(t, Points(nil), test.ShouldBeEmpty)
}

func TestJSONRoundTrip(t *testing.T) {
	samples := sampledTrace(t)
	var buf bytes.Buffer
	test.That(t, WriteJSON(&buf, samples), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldStartWith, "[\n  {\n    \"t\": 0,")

	points, err := ReadJSON(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmp.Diff(Points(samples), points), test.ShouldBeEmpty)

	_, err = ReadJSON(strings.NewReader("{"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestWriteCSV(t *testing.T) {
	samples := sampledTrace(t)
	var buf bytes.Buffer
	test.That(t, WriteCSV(&buf, samples), test.ShouldBeNil)

	records, err := csv.NewReader(&buf).ReadAll()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(records), test.ShouldEqual, len(samples)+1)
	test.That(t, records[0], test.ShouldResemble, []string{"t", "x", "y", "v", "a", "seg", "zone"})
	test.That(t, records[1], test.ShouldResemble, []string{"0", "0", "0", "0", "100", "0", "false"})
	last := records[len(records)-1]
	test.That(t, last[5], test.ShouldEqual, "1")
}
