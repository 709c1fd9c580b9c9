package utils

import (
	"reflect"

	"github.com/pkg/errors"
)

// NewUnexpectedTypeError is used when a value does not have the type T.
func NewUnexpectedTypeError[T any](actual interface{}) error {
	return errors.Errorf("expected %v but got %T", reflect.TypeFor[T](), actual)
}
