// Package config defines simulation projects: the waypoint program, kinematic limits and sampling
// settings read from a project file.
package config

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/trajsim/motionplan"
	"go.viam.com/trajsim/zone"
)

// CurrentVersion is the project format version written by this release.
const CurrentVersion = "1.0.0"

// supportedVersions are the project format versions this release can read.
var supportedVersions = mustConstraint("^1")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// Project is a simulation project file.
type Project struct {
	Name string `json:"name" jsonschema:"description=Name of the project. Also used as the RAPID module name"`
	// Version is the format version of the file. Empty means CurrentVersion.
	Version string `json:"version,omitempty"`
	// Tool is the RAPID tool data name. Empty means tool0.
	Tool string `json:"tool,omitempty"`
	// TimeStep is the sampling period of the trace. Zero means motionplan.DefaultTimeStep. Files
	// may give it as a duration string ("20ms") or as a number of seconds.
	TimeStep  time.Duration     `json:"time_step,omitempty"`
	Limits    *Limits           `json:"limits,omitempty"`
	Waypoints []*WaypointConfig `json:"waypoints"`
}

// Limits overrides some or all of the default kinematic limits. Unset values keep their default.
type Limits struct {
	MaxVelocity     float64 `json:"max_velocity,omitempty"`
	MaxAcceleration float64 `json:"max_acceleration,omitempty"`
	MaxDeceleration float64 `json:"max_deceleration,omitempty"`
}

// WaypointConfig is one programmed waypoint.
type WaypointConfig struct {
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Speed  float64   `json:"speed"`
	Zone   zone.Zone `json:"zone"`
	Motion string    `json:"motion,omitempty"`
}

// Validate ensures all parts of the waypoint are valid.
func (wc *WaypointConfig) Validate(path string) error {
	var errs error
	if wc.Speed <= 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.Errorf("speed must be positive, got %v", wc.Speed)))
	}
	if wc.Zone == "" {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "zone"))
	} else if !wc.Zone.Valid() {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.Errorf("unknown zone %q", string(wc.Zone))))
	}
	if err := motionplan.MotionType(wc.Motion).Validate(); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
	}
	return errs
}

// Waypoint converts the configuration to an engine waypoint.
func (wc *WaypointConfig) Waypoint() motionplan.Waypoint {
	return motionplan.Waypoint{
		Position: r2.Point{X: wc.X, Y: wc.Y},
		Speed:    wc.Speed,
		Zone:     wc.Zone,
		Motion:   motionplan.MotionType(wc.Motion).Normalize(),
	}
}

// Validate ensures all parts of the project are valid. Every problem found is reported, not only
// the first one.
func (p *Project) Validate(path string) error {
	var errs error
	if p.Name == "" {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "name"))
	}
	if p.Version != "" {
		v, err := semver.NewVersion(p.Version)
		switch {
		case err != nil:
			errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.Wrap(err, "version")))
		case !supportedVersions.Check(v):
			errs = multierr.Append(errs, utils.NewConfigValidationError(path,
				errors.Errorf("project version %s is not supported, need %s", v, supportedVersions)))
		}
	}
	if p.TimeStep < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.Errorf("time_step must be positive, got %v", p.TimeStep)))
	}
	if err := p.MotionLimits().Validate(); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(fmt.Sprintf("%s.limits", path), err))
	}
	if len(p.Waypoints) < 2 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("need at least 2 waypoints, got %d", len(p.Waypoints))))
	}
	for i, wc := range p.Waypoints {
		wpPath := fmt.Sprintf("%s.waypoints.%d", path, i)
		if wc == nil {
			errs = multierr.Append(errs, utils.NewConfigValidationError(wpPath, errors.New("waypoint is empty")))
			continue
		}
		errs = multierr.Append(errs, wc.Validate(wpPath))
	}
	return errs
}

// MotionLimits returns the kinematic limits of the project, filling in defaults.
func (p *Project) MotionLimits() motionplan.Limits {
	limits := motionplan.DefaultLimits()
	if p.Limits == nil {
		return limits
	}
	if p.Limits.MaxVelocity != 0 {
		limits.MaxVelocity = p.Limits.MaxVelocity
	}
	if p.Limits.MaxAcceleration != 0 {
		limits.MaxAcceleration = p.Limits.MaxAcceleration
	}
	if p.Limits.MaxDeceleration != 0 {
		limits.MaxDeceleration = p.Limits.MaxDeceleration
	}
	return limits
}

// Step returns the sampling period, filling in the default.
func (p *Project) Step() time.Duration {
	if p.TimeStep == 0 {
		return motionplan.DefaultTimeStep
	}
	return p.TimeStep
}

// EngineWaypoints returns the waypoints in engine form.
func (p *Project) EngineWaypoints() []motionplan.Waypoint {
	out := make([]motionplan.Waypoint, 0, len(p.Waypoints))
	for _, wc := range p.Waypoints {
		out = append(out, wc.Waypoint())
	}
	return out
}

// Request returns the simulation request described by the project.
func (p *Project) Request() motionplan.Request {
	return motionplan.Request{
		Waypoints: p.EngineWaypoints(),
		Limits:    p.MotionLimits(),
		TimeStep:  p.Step(),
	}
}
