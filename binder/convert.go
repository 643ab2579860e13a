package binder

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ConvertFunc converts a request value to a custom type.
type ConvertFunc func(string) (any, error)

var (
	durationType        = TypeOf[time.Duration]()
	timeType            = TypeOf[time.Time]()
	textUnmarshalerType = TypeOf[encoding.TextUnmarshaler]()
)

var (
	// ErrUnsupportedType is wrapped when no conversion exists for a type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidConversion is wrapped when a custom converter returns a value
	// that is not of its type.
	ErrInvalidConversion = errors.New("invalid conversion result")
)

// Converter converts request strings to declared argument types.
type Converter struct {
	custom      map[reflect.Type]ConvertFunc
	timeLayouts []string
}

// NewConverter returns a converter using spf13/cast for the built-in kinds.
func NewConverter() *Converter {
	return &Converter{custom: make(map[reflect.Type]ConvertFunc)}
}

// Convert converts value to t. Custom converters are tried first.
func (c *Converter) Convert(value string, t reflect.Type) (any, error) {
	if t == nil {
		return value, nil
	}

	if fn, ok := c.custom[t]; ok {
		v, err := fn(value)
		if err != nil {
			return nil, err
		}

		if rv := reflect.ValueOf(v); !rv.IsValid() || !rv.Type().AssignableTo(t) {
			return nil, fmt.Errorf("%w: converter for %v returned %T", ErrInvalidConversion, t, v)
		}

		return v, nil
	}

	switch t {
	case durationType:
		return cast.ToDurationE(value)
	case timeType:
		return c.toTime(value)
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(value)); err != nil {
			return nil, err
		}

		return ptr.Elem().Interface(), nil
	}

	rv := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.String:
		rv.SetString(value)

	case reflect.Bool:
		b, err := cast.ToBoolE(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}

		rv.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(decimal(value))
		if err != nil {
			return nil, err
		}

		if rv.OverflowInt(n) {
			return nil, fmt.Errorf("value %d overflows %v", n, t)
		}

		rv.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(decimal(value))
		if err != nil {
			return nil, err
		}

		if rv.OverflowUint(n) {
			return nil, fmt.Errorf("value %d overflows %v", n, t)
		}

		rv.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}

		if rv.OverflowFloat(f) {
			return nil, fmt.Errorf("value %v overflows %v", f, t)
		}

		rv.SetFloat(f)

	case reflect.Pointer:
		elem, err := c.Convert(value, t.Elem())
		if err != nil {
			return nil, err
		}

		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(reflect.ValueOf(elem))

		return ptr.Interface(), nil

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			rv.SetBytes([]byte(value))
			break
		}

		return c.ConvertAll(strings.Split(value, ","), t)

	case reflect.Interface:
		if t.NumMethod() > 0 {
			return nil, fmt.Errorf("%w %v", ErrUnsupportedType, t)
		}

		return value, nil

	default:
		return nil, fmt.Errorf("%w %v", ErrUnsupportedType, t)
	}

	return rv.Interface(), nil
}

// ConvertAll converts every value to the element type of the slice type t.
func (c *Converter) ConvertAll(values []string, t reflect.Type) (any, error) {
	if t.Kind() != reflect.Slice {
		if len(values) == 0 {
			return nil, ErrUnsatisfied
		}

		return c.Convert(values[0], t)
	}

	slice := reflect.MakeSlice(t, 0, len(values))

	for _, v := range values {
		elem, err := c.Convert(v, t.Elem())
		if err != nil {
			return nil, err
		}

		slice = reflect.Append(slice, reflect.ValueOf(elem))
	}

	return slice.Interface(), nil
}

func (c *Converter) toTime(value string) (any, error) {
	value = strings.TrimSpace(value)

	for _, layout := range c.timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return cast.ToTimeE(value)
}

// decimal drops leading zeros so that cast does not read the value as octal.
func decimal(s string) string {
	s = strings.TrimSpace(s)

	sign := ""
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}

	for len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9' {
		s = s[1:]
	}

	return sign + s
}
