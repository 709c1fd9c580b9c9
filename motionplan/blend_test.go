package motionplan

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/trajsim/logging"
	"go.viam.com/trajsim/spatialmath"
	"go.viam.com/trajsim/zone"
)

func testLimits() Limits {
	return Limits{MaxVelocity: 5000, MaxAcceleration: 100, MaxDeceleration: 100}
}

func TestBlendCollinear(t *testing.T) {
	wps := []Waypoint{
		NewWaypoint(0, 0, 50, zone.Fine),
		NewWaypoint(100, 0, 50, zone.Z10),
		NewWaypoint(200, 0, 50, zone.Fine),
	}
	plan, err := Blend(wps, testLimits())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, plan.BoundarySpeed(1), test.ShouldAlmostEqual, 50)
	test.That(t, plan.IsStop(1), test.ShouldBeFalse)
	test.That(t, plan.IsStop(0), test.ShouldBeTrue)
	test.That(t, plan.IsStop(2), test.ShouldBeTrue)

	segs := plan.Segments()
	test.That(t, len(segs), test.ShouldEqual, 2)
	test.That(t, segs[0].Path.Length(), test.ShouldAlmostEqual, 90)
	test.That(t, segs[1].Path.Length(), test.ShouldAlmostEqual, 90)
	test.That(t, segs[0].Nominal.Length(), test.ShouldAlmostEqual, 100)
	test.That(t, segs[0].ExitSpeed, test.ShouldAlmostEqual, 50)
	test.That(t, segs[1].EntrySpeed, test.ShouldAlmostEqual, 50)
	_, decelerates := segs[0].Profile.Phase(PhaseDecelerate)
	test.That(t, decelerates, test.ShouldBeFalse)

	blends := plan.Blends()
	test.That(t, len(blends), test.ShouldEqual, 1)
	test.That(t, blends[0].Radius, test.ShouldEqual, 10)
	test.That(t, blends[0].Path.Length(), test.ShouldAlmostEqual, 20)
	test.That(t, blends[0].EntrySpeed, test.ShouldEqual, blends[0].ExitSpeed)

	test.That(t, plan.PathLength(), test.ShouldAlmostEqual, 200)
	test.That(t, TotalTime(plan), test.ShouldAlmostEqual, 4.5)

	stopped, err := Blend([]Waypoint{wps[0], NewWaypoint(100, 0, 50, zone.Fine), wps[2]}, testLimits())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, TotalTime(stopped), test.ShouldAlmostEqual, 5)
	test.That(t, TotalTime(plan), test.ShouldBeLessThan, TotalTime(stopped))
}

func TestBlendRightAngle(t *testing.T) {
	wps := []Waypoint{
		NewWaypoint(0, 0, 50, zone.Fine),
		NewWaypoint(100, 0, 50, zone.Z10),
		NewWaypoint(100, 100, 50, zone.Fine),
	}
	plan, err := Blend(wps, testLimits())
	test.That(t, err, test.ShouldBeNil)

	blends := plan.Blends()
	test.That(t, len(blends), test.ShouldEqual, 1)
	arc, ok := blends[0].Path.(*spatialmath.Arc)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, arc.Radius, test.ShouldAlmostEqual, 10)
	test.That(t, spatialmath.PlanarPointAlmostEqual(arc.Start(), r2.Point{X: 90}, 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.PlanarPointAlmostEqual(arc.End(), r2.Point{X: 100, Y: 10}, 1e-9), test.ShouldBeTrue)

	// centripetal acceleration v^2/R stays within the acceleration limit
	speed := plan.BoundarySpeed(1)
	test.That(t, speed, test.ShouldAlmostEqual, math.Sqrt(100*10))
	test.That(t, speed*speed/arc.Radius, test.ShouldBeLessThanOrEqualTo, 100+1e-9)

	segs := plan.Segments()
	test.That(t, spatialmath.PlanarPointAlmostEqual(segs[0].Path.End(), arc.Start(), 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.PlanarPointAlmostEqual(segs[1].Path.Start(), arc.End(), 1e-9), test.ShouldBeTrue)
	test.That(t, plan.PathLength(), test.ShouldAlmostEqual, 180+10*math.Pi/2)
	test.That(t, plan.PathLength(), test.ShouldBeLessThan, plan.NominalLength())
}

func TestBlendRadiusClamped(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	wps := []Waypoint{
		NewWaypoint(0, 0, 100, zone.Fine),
		NewWaypoint(10, 0, 100, zone.Z50),
		NewWaypoint(10, 30, 100, zone.Fine),
	}
	plan, err := NewPlanner(DefaultLimits(), logger).Resolve(wps)
	test.That(t, err, test.ShouldBeNil)

	blends := plan.Blends()
	test.That(t, len(blends), test.ShouldEqual, 1)
	test.That(t, blends[0].RequestedRadius, test.ShouldEqual, 50)
	test.That(t, blends[0].Radius, test.ShouldEqual, 5)
	test.That(t, plan.Segments()[0].Path.Length(), test.ShouldAlmostEqual, 5)
	test.That(t, plan.Segments()[1].Path.Length(), test.ShouldAlmostEqual, 25)
	test.That(t, logs.FilterMessage("blend radius clamped").Len(), test.ShouldEqual, 1)

	instrs := plan.Instructions()
	test.That(t, instrs[1].Zone, test.ShouldEqual, zone.Z50)
	test.That(t, instrs[1].AppliedRadius, test.ShouldEqual, 5)
	test.That(t, instrs[1].ExactStop, test.ShouldBeFalse)
}

func TestBlendAdjacentZonesShareShortLeg(t *testing.T) {
	wps := []Waypoint{
		NewWaypoint(0, 0, 200, zone.Fine),
		NewWaypoint(100, 0, 200, zone.Z20),
		NewWaypoint(100, 30, 200, zone.Z20),
		NewWaypoint(0, 30, 200, zone.Fine),
	}
	plan, err := Blend(wps, DefaultLimits())
	test.That(t, err, test.ShouldBeNil)

	blends := plan.Blends()
	test.That(t, len(blends), test.ShouldEqual, 2)
	test.That(t, blends[0].Radius, test.ShouldEqual, 15)
	test.That(t, blends[1].Radius, test.ShouldEqual, 15)
	// the middle leg is consumed entirely by the two blends
	test.That(t, plan.Segments()[1].Path.Length(), test.ShouldAlmostEqual, 0)
	test.That(t, plan.Segments()[1].Profile.Duration(), test.ShouldEqual, 0)
	test.That(t, plan.BoundarySpeed(1), test.ShouldAlmostEqual, plan.BoundarySpeed(2))
}

func TestBlendReversal(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	wps := []Waypoint{
		NewWaypoint(0, 0, 50, zone.Fine),
		NewWaypoint(100, 0, 50, zone.Z10),
		NewWaypoint(0, 0, 50, zone.Fine),
	}
	plan, err := NewPlanner(testLimits(), logger).Resolve(wps)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, plan.Blends(), test.ShouldBeEmpty)
	test.That(t, plan.IsStop(1), test.ShouldBeTrue)
	test.That(t, plan.BoundarySpeed(1), test.ShouldEqual, 0)
	test.That(t, logs.FilterMessage("path reverses at waypoint, stopping instead of blending").Len(), test.ShouldEqual, 1)
}

func TestBlendZeroLengthSegment(t *testing.T) {
	t.Run("blending into a duplicate waypoint", func(t *testing.T) {
		wps := []Waypoint{
			NewWaypoint(0, 0, 50, zone.Fine),
			NewWaypoint(100, 0, 50, zone.Fine),
			NewWaypoint(100, 0, 50, zone.Z10),
			NewWaypoint(200, 0, 50, zone.Fine),
		}
		_, err := Blend(wps, testLimits())
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, errors.Is(err, ErrUnreachableZone), test.ShouldBeTrue)
	})

	t.Run("blending out of a duplicate waypoint", func(t *testing.T) {
		wps := []Waypoint{
			NewWaypoint(0, 0, 50, zone.Fine),
			NewWaypoint(100, 0, 50, zone.Z5),
			NewWaypoint(100, 0, 50, zone.Fine),
			NewWaypoint(200, 0, 50, zone.Fine),
		}
		_, err := Blend(wps, testLimits())
		test.That(t, errors.Is(err, ErrUnreachableZone), test.ShouldBeTrue)
	})

	t.Run("exact stops pass through", func(t *testing.T) {
		wps := []Waypoint{
			NewWaypoint(0, 0, 50, zone.Fine),
			NewWaypoint(0, 0, 50, zone.Fine),
			NewWaypoint(100, 0, 50, zone.Fine),
		}
		plan, err := Blend(wps, testLimits())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, plan.Segments()[0].Profile.Duration(), test.ShouldEqual, 0)
		test.That(t, TotalTime(plan), test.ShouldAlmostEqual, 2.5)
	})
}

func TestBlendInvalidInput(t *testing.T) {
	good := []Waypoint{NewWaypoint(0, 0, 50, zone.Fine), NewWaypoint(100, 0, 50, zone.Fine)}

	for _, tc := range []struct {
		name      string
		waypoints []Waypoint
		limits    Limits
		expected  error
	}{
		{"no waypoints", nil, testLimits(), ErrInsufficientWaypoints},
		{"one waypoint", good[:1], testLimits(), ErrInsufficientWaypoints},
		{"zero velocity limit", good, Limits{MaxAcceleration: 1, MaxDeceleration: 1}, ErrInvalidKinematics},
		{"infinite acceleration", good, Limits{MaxVelocity: 1, MaxAcceleration: math.Inf(1), MaxDeceleration: 1}, ErrInvalidKinematics},
		{
			"zero speed",
			[]Waypoint{good[0], NewWaypoint(100, 0, 0, zone.Fine)},
			testLimits(),
			ErrInvalidKinematics,
		},
		{
			"nan position",
			[]Waypoint{good[0], NewWaypoint(math.NaN(), 0, 50, zone.Fine)},
			testLimits(),
			ErrInvalidKinematics,
		},
		{
			"unknown zone",
			[]Waypoint{good[0], NewWaypoint(100, 0, 50, zone.Zone("z7"))},
			testLimits(),
			ErrUnreachableZone,
		},
		{
			"unknown motion",
			[]Waypoint{good[0], {Position: r2.Point{X: 1}, Speed: 50, Zone: zone.Fine, Motion: "MoveC"}},
			testLimits(),
			ErrInvalidKinematics,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := Blend(tc.waypoints, tc.limits)
			test.That(t, plan, test.ShouldBeNil)
			test.That(t, errors.Is(err, tc.expected), test.ShouldBeTrue)
		})
	}
}

func TestBlendSpeedCappedByLimits(t *testing.T) {
	wps := []Waypoint{
		NewWaypoint(0, 0, 10000, zone.Fine),
		NewWaypoint(0, 5000, 10000, zone.Fine),
	}
	plan, err := Blend(wps, DefaultLimits())
	test.That(t, err, test.ShouldBeNil)
	seg := plan.Segments()[0]
	test.That(t, seg.CruiseSpeed, test.ShouldEqual, 5000)
	test.That(t, seg.Profile.PeakSpeed, test.ShouldBeLessThanOrEqualTo, 5000)

	instrs := plan.Instructions()
	test.That(t, instrs[1].CommandedSpeed, test.ShouldEqual, 10000)
	test.That(t, instrs[1].AchievableSpeed, test.ShouldBeLessThanOrEqualTo, 5000)
	test.That(t, instrs[0].Motion, test.ShouldEqual, MoveL)
}

func TestBlendBoundaryContinuity(t *testing.T) {
	wps := []Waypoint{
		NewWaypoint(0, 0, 300, zone.Fine),
		NewWaypoint(200, 0, 300, zone.Z50),
		NewWaypoint(220, 150, 800, zone.Z20),
		NewWaypoint(400, 160, 150, zone.Fine),
		NewWaypoint(410, 0, 1000, zone.Z5),
		NewWaypoint(600, 20, 1000, zone.Z1),
		NewWaypoint(600, 25, 400, zone.Z0),
		NewWaypoint(0, 25, 400, zone.Fine),
	}
	plan, err := Blend(wps, DefaultLimits())
	test.That(t, err, test.ShouldBeNil)

	segs := plan.Segments()
	for i := range wps {
		if plan.IsStop(i) {
			test.That(t, plan.BoundarySpeed(i), test.ShouldEqual, 0)
		}
		if i > 0 {
			test.That(t, segs[i-1].ExitSpeed, test.ShouldAlmostEqual, plan.BoundarySpeed(i), 1e-6)
		}
		if i < len(segs) {
			test.That(t, segs[i].EntrySpeed, test.ShouldEqual, plan.BoundarySpeed(i))
		}
	}
	for _, b := range plan.Blends() {
		test.That(t, b.EntrySpeed, test.ShouldEqual, b.ExitSpeed)
		test.That(t, b.EntrySpeed, test.ShouldBeGreaterThan, 0)
		test.That(t, b.Radius, test.ShouldBeLessThanOrEqualTo, b.RequestedRadius)
	}

	// consecutive elements join without gaps
	elems := plan.Elements()
	for i := 1; i < len(elems); i++ {
		test.That(t, spatialmath.PlanarPointAlmostEqual(elems[i-1].Path.End(), elems[i].Path.Start(), 1e-6), test.ShouldBeTrue)
		test.That(t, elems[i].StartTime, test.ShouldAlmostEqual, elems[i-1].EndTime(), 1e-9)
	}
}
