package binder

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnsatisfied is returned by a Binder that found no value for the
// argument. It is not a failure by itself: the caller decides whether the
// argument is required.
var ErrUnsatisfied = errors.New("binder: unsatisfied argument")

// UnsatisfiedError reports a required argument without a value.
type UnsatisfiedError struct {
	Argument Argument
}

func (e *UnsatisfiedError) Error() string {
	return fmt.Sprintf("binder: required argument '%s' not specified", e.Argument.BindingName())
}

func (e *UnsatisfiedError) Unwrap() error {
	return ErrUnsatisfied
}

// ConversionError reports a value that was found but could not be converted
// to the declared type of the argument.
type ConversionError struct {
	Argument string
	Value    string
	Type     reflect.Type
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("binder: failed to convert argument '%s' value '%s' to %v: %v", e.Argument, e.Value, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func conversionError(arg Argument, value string, err error) error {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce
	}

	return &ConversionError{Argument: arg.BindingName(), Value: value, Type: arg.Type, Err: err}
}
