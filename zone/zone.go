// Package zone defines the precision zones a robot may use when passing a waypoint. A zone names
// the radius around the programmed point inside which the controller is allowed to round the
// corner instead of stopping on it.
package zone

import (
	"strings"

	"github.com/pkg/errors"
)

// Zone identifies a precision zone. The zero value is not a valid zone.
type Zone string

// The known zones, in order of increasing radius.
const (
	Fine Zone = "fine"
	Z0   Zone = "z0"
	Z1   Zone = "z1"
	Z5   Zone = "z5"
	Z10  Zone = "z10"
	Z20  Zone = "z20"
	Z50  Zone = "z50"
)

// radii in mm.
var radii = map[Zone]float64{
	Fine: 0,
	Z0:   0.3,
	Z1:   1,
	Z5:   5,
	Z10:  10,
	Z20:  20,
	Z50:  50,
}

var ordered = []Zone{Fine, Z0, Z1, Z5, Z10, Z20, Z50}

// All returns every known zone ordered by increasing radius.
func All() []Zone {
	return append([]Zone(nil), ordered...)
}

// Parse returns the zone with the given name. Matching ignores case and surrounding space.
func Parse(name string) (Zone, error) {
	z := Zone(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := radii[z]; !ok {
		return "", errors.Errorf("unknown zone %q", name)
	}
	return z, nil
}

// Valid returns true if z is one of the known zones.
func (z Zone) Valid() bool {
	_, ok := radii[z]
	return ok
}

// Radius returns the blend radius of the zone in mm. Unknown zones report 0.
func (z Zone) Radius() float64 {
	return radii[z]
}

// IsExactStop returns true if the robot must come to rest on a waypoint using this zone.
func (z Zone) IsExactStop() bool {
	return z == Fine || z.Radius() == 0
}

func (z Zone) String() string {
	return string(z)
}

// MarshalText implements encoding.TextMarshaler.
func (z Zone) MarshalText() ([]byte, error) {
	if !z.Valid() {
		return nil, errors.Errorf("unknown zone %q", string(z))
	}
	return []byte(z), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (z *Zone) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// Names returns the names of every known zone, in order of increasing radius.
func Names() []string {
	names := make([]string, 0, len(ordered))
	for _, z := range ordered {
		names = append(names, string(z))
	}
	return names
}
