package motionplan

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/trajsim/logging"
	"go.viam.com/trajsim/spatialmath"
	"go.viam.com/trajsim/utils"
)

// Planner resolves waypoint programs into blended plans under a fixed set of kinematic limits.
// A Planner holds no state between calls and may be used concurrently.
type Planner struct {
	limits Limits
	logger logging.Logger
}

// NewPlanner returns a Planner using the given limits. Limits are validated by Resolve.
func NewPlanner(limits Limits, logger logging.Logger) *Planner {
	return &Planner{limits: limits, logger: logger}
}

// Blend resolves waypoints with the given limits without logging.
func Blend(waypoints []Waypoint, limits Limits) (*Plan, error) {
	return NewPlanner(limits, logging.NewBlankLogger("blend")).Resolve(waypoints)
}

// corner is the per-waypoint outcome of blending.
type corner struct {
	stop   bool
	radius float64
	path   spatialmath.Path
	// speed cap from the adjoining cruise speeds and the centripetal limit
	capSpeed float64
}

// Resolve builds the blended plan for waypoints. The first waypoint is the start position and the
// last one the final position; the robot is at rest at both, so their zones are not blended.
func (pl *Planner) Resolve(waypoints []Waypoint) (*Plan, error) {
	if len(waypoints) < 2 {
		return nil, newInsufficientWaypointsError(len(waypoints))
	}
	if err := pl.limits.Validate(); err != nil {
		return nil, err
	}
	wps := make([]Waypoint, len(waypoints))
	for i, wp := range waypoints {
		if err := wp.validate(i); err != nil {
			return nil, err
		}
		wp.Motion = wp.Motion.Normalize()
		wps[i] = wp
	}

	nominal := make([]*spatialmath.Line, len(wps)-1)
	dirs := make([]r2.Point, len(wps)-1)
	cruise := make([]float64, len(wps)-1)
	for k := range nominal {
		nominal[k] = spatialmath.NewLine(wps[k].Position, wps[k+1].Position)
		dirs[k] = nominal[k].TangentAt(0)
		cruise[k] = math.Min(wps[k+1].Speed, pl.limits.MaxVelocity)
	}
	if err := checkZeroLengthSegments(wps, nominal); err != nil {
		return nil, err
	}

	corners, err := pl.resolveCorners(wps, nominal, dirs, cruise)
	if err != nil {
		return nil, err
	}
	speeds := pl.boundarySpeeds(corners, nominal)

	plan := &Plan{
		waypoints:      wps,
		limits:         pl.limits,
		boundarySpeeds: speeds,
		stops:          make([]bool, len(wps)),
	}
	for i, c := range corners {
		plan.stops[i] = c.stop
	}

	now := 0.
	for k, leg := range nominal {
		if c := corners[k]; k > 0 && !c.stop {
			blend := BlendRegion{
				WaypointIndex:   k,
				Zone:            wps[k].Zone,
				RequestedRadius: wps[k].Zone.Radius(),
				Radius:          c.radius,
				Path:            c.path,
				EntrySpeed:      speeds[k],
				ExitSpeed:       speeds[k],
				Profile:         constantProfile(c.path.Length(), speeds[k]),
			}
			plan.blends = append(plan.blends, blend)
			plan.elements = append(plan.elements, Element{
				Kind:          ElementBlend,
				Path:          blend.Path,
				Profile:       blend.Profile,
				SegmentIndex:  k - 1,
				WaypointIndex: k,
				StartTime:     now,
			})
			now += blend.Profile.Duration()
		}

		start := wps[k].Position.Add(dirs[k].Mul(corners[k].radius))
		end := wps[k+1].Position.Sub(dirs[k].Mul(corners[k+1].radius))
		shortened := spatialmath.NewLine(start, end)
		length := math.Max(0, leg.Length()-corners[k].radius-corners[k+1].radius)

		prof, err := Profile(length, speeds[k], speeds[k+1], cruise[k], pl.limits.MaxAcceleration, pl.limits.MaxDeceleration)
		if err != nil {
			return nil, err
		}
		if prof.Clamped && !utils.Float64RelAlmostEqual(prof.ExitSpeed, speeds[k+1], 1e-6) {
			pl.logger.Warnw("segment profile clamped", "segment", k, "exit", speeds[k+1], "reached", prof.ExitSpeed)
		}
		plan.segments = append(plan.segments, Segment{
			Index:       k,
			Nominal:     leg,
			Path:        shortened,
			CruiseSpeed: cruise[k],
			EntrySpeed:  speeds[k],
			ExitSpeed:   prof.ExitSpeed,
			Profile:     prof,
		})
		plan.elements = append(plan.elements, Element{
			Kind:          ElementSegment,
			Path:          shortened,
			Profile:       prof,
			SegmentIndex:  k,
			WaypointIndex: k + 1,
			StartTime:     now,
		})
		now += prof.Duration()
	}

	pl.logger.Debugw("plan resolved",
		"waypoints", len(wps), "blends", len(plan.blends), "cycle_time", now, "path_length", plan.PathLength())
	return plan, nil
}

// checkZeroLengthSegments rejects zero-length legs that touch a waypoint asking to be blended: there
// is no leg on that side of the corner to blend into.
func checkZeroLengthSegments(wps []Waypoint, legs []*spatialmath.Line) error {
	for k, leg := range legs {
		if leg.Length() >= lengthEpsilon {
			continue
		}
		if z := wps[k+1].Zone; !z.IsExactStop() {
			return newUnreachableZoneError("waypoint %d: zone %s needs a leg to blend into but segment %d has zero length", k+1, z, k)
		}
		if z := wps[k].Zone; k > 0 && !z.IsExactStop() {
			return newUnreachableZoneError("waypoint %d: zone %s needs a leg to blend into but segment %d has zero length", k, z, k)
		}
	}
	return nil
}

// resolveCorners decides, for every waypoint, whether the robot stops on it or rounds it, and how.
func (pl *Planner) resolveCorners(wps []Waypoint, legs []*spatialmath.Line, dirs []r2.Point, cruise []float64) ([]corner, error) {
	corners := make([]corner, len(wps))
	corners[0] = corner{stop: true}
	corners[len(wps)-1] = corner{stop: true}

	for i := 1; i < len(wps)-1; i++ {
		z := wps[i].Zone
		if z.IsExactStop() {
			corners[i] = corner{stop: true}
			continue
		}

		radius := utils.MinF64(z.Radius(), legs[i-1].Length()/2, legs[i].Length()/2)
		if radius < z.Radius() {
			pl.logger.Debugw("blend radius clamped", "waypoint", i, "zone", z, "requested", z.Radius(), "applied", radius)
		}
		if radius < lengthEpsilon {
			return nil, newUnreachableZoneError("waypoint %d: zone %s leaves no room to blend", i, z)
		}

		path, ok := spatialmath.Fillet(wps[i].Position, dirs[i-1], dirs[i], radius)
		if !ok {
			// reversing direction cannot be rounded; the robot has to stop to turn around
			pl.logger.Warnw("path reverses at waypoint, stopping instead of blending", "waypoint", i, "zone", z)
			corners[i] = corner{stop: true}
			continue
		}

		centripetal := math.Sqrt(pl.limits.MaxAcceleration * spatialmath.CurvatureRadius(path))
		corners[i] = corner{
			radius:   radius,
			path:     path,
			capSpeed: utils.MinF64(cruise[i-1], cruise[i], centripetal),
		}
	}
	return corners, nil
}

// boundarySpeeds propagates the tightest feasible speed at each waypoint with one forward pass
// (reachable by accelerating from the previous waypoint) and one backward pass (able to slow
// down for the next one). Constraints only ever tighten, so two passes suffice.
func (pl *Planner) boundarySpeeds(corners []corner, legs []*spatialmath.Line) []float64 {
	speeds := make([]float64, len(corners))
	for i, c := range corners {
		if !c.stop {
			speeds[i] = c.capSpeed
		}
	}
	lengths := make([]float64, len(legs))
	for k, leg := range legs {
		lengths[k] = math.Max(0, leg.Length()-corners[k].radius-corners[k+1].radius)
	}

	for k := range legs {
		speeds[k+1] = math.Min(speeds[k+1], reachableSpeed(speeds[k], pl.limits.MaxAcceleration, lengths[k]))
	}
	for k := len(legs) - 1; k >= 0; k-- {
		speeds[k] = math.Min(speeds[k], reachableSpeed(speeds[k+1], pl.limits.MaxDeceleration, lengths[k]))
	}
	return speeds
}
