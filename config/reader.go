package config

import (
	"bytes"
	"io"
	"reflect"
	"time"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"go.viam.com/trajsim/logging"
)

// Read reads a project from the given file, substituting environment variables first.
func Read(filePath string, logger logging.Logger) (*Project, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a project from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Project, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var attrs map[string]interface{}
	if err := json5.Unmarshal(raw, &attrs); err != nil {
		return nil, errors.Wrapf(err, "cannot parse project %q", originalPath)
	}

	var proj Project
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &proj,
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			durationHook,
			numberHook,
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, errors.Wrapf(err, "cannot decode project %q", originalPath)
	}
	if err := proj.Validate("project"); err != nil {
		return nil, errors.Wrapf(err, "invalid project %q", originalPath)
	}

	logger.Debugw("read project", "path", originalPath, "name", proj.Name, "waypoints", len(proj.Waypoints))
	return &proj, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// durationHook accepts "20ms" style strings and plain numbers of seconds for durations.
func durationHook(f, t reflect.Type, data interface{}) (interface{}, error) {
	if t != durationType {
		return data, nil
	}
	switch f.Kind() {
	case reflect.String:
		return time.ParseDuration(data.(string))
	case reflect.Float64, reflect.Float32, reflect.Int, reflect.Int64:
		secs, err := cast.ToFloat64E(data)
		if err != nil {
			return nil, err
		}
		return time.Duration(secs * float64(time.Second)), nil
	default:
		return data, nil
	}
}

// numberHook accepts numeric strings, which is what a quoted "${VAR}" placeholder expands to.
func numberHook(f, t reflect.Type, data interface{}) (interface{}, error) {
	if t.Kind() != reflect.Float64 || f.Kind() != reflect.String {
		return data, nil
	}
	return cast.ToFloat64E(data)
}
