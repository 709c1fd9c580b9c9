package config

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"

	"go.viam.com/trajsim/zone"
)

var zoneType = reflect.TypeOf(zone.Zone(""))

// Schema returns the JSON schema of project files.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		ExpandedStruct: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case zoneType:
				return &jsonschema.Schema{
					Type:        "string",
					Description: "Precision zone. fine stops on the waypoint",
					Enum:        lo.ToAnySlice(zone.Names()),
				}
			case durationType:
				return &jsonschema.Schema{
					OneOf: []*jsonschema.Schema{
						{Type: "string", Description: "Duration such as 20ms"},
						{Type: "number", Description: "Seconds"},
					},
				}
			default:
				return nil
			}
		},
	}
	return r.Reflect(&Project{})
}

// SchemaJSON returns the indented JSON schema of project files.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
