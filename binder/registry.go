package binder

import (
	"errors"
	"reflect"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type typedKey struct {
	typ        reflect.Type
	annotation Annotation
}

// Registry holds the binders available to resolve handler arguments.
//
// A binder is resolved in the following order, stopping at the first hit:
//
//  1. a binder registered for the argument type and one of its annotations
//  2. a binder registered for one of the argument annotations
//  3. a binder registered for the exact argument type
//  4. the fallback binder, which reads the argument name from the request
//
// A Registry is configured once by New and never modified afterwards, so it
// is safe for concurrent use.
type Registry struct {
	typed     map[typedKey]Binder
	annotated map[Annotation]Binder
	types     map[reflect.Type]Binder
	fallback  Binder

	conv *Converter
	log  *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithAnnotationBinder registers b for arguments carrying annotation.
func WithAnnotationBinder(annotation Annotation, b Binder) Option {
	return func(r *Registry) {
		r.annotated[annotation] = b
	}
}

// WithTypedBinder registers b for arguments of type t carrying annotation.
func WithTypedBinder(t reflect.Type, annotation Annotation, b Binder) Option {
	return func(r *Registry) {
		r.typed[typedKey{typ: t, annotation: annotation}] = b
	}
}

// WithTypeBinder registers b for arguments of exact type t.
func WithTypeBinder(t reflect.Type, b Binder) Option {
	return func(r *Registry) {
		r.types[t] = b
	}
}

// WithFallback replaces the named-parameter fallback binder. A nil binder
// disables the fallback.
func WithFallback(b Binder) Option {
	return func(r *Registry) {
		r.fallback = b
	}
}

// WithConverter registers a conversion for a custom type.
func WithConverter(t reflect.Type, fn ConvertFunc) Option {
	return func(r *Registry) {
		r.conv.custom[t] = fn
	}
}

// WithTimeLayouts sets the layouts tried before the generic time parsing.
func WithTimeLayouts(layouts ...string) Option {
	return func(r *Registry) {
		r.conv.timeLayouts = append(r.conv.timeLayouts, layouts...)
	}
}

// WithLogger sets the logger used to trace binding decisions.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// New returns a registry with the default binders registered. Options are
// applied afterwards, so they may replace any default.
func New(opts ...Option) *Registry {
	r := &Registry{
		typed:     make(map[typedKey]Binder),
		annotated: make(map[Annotation]Binder),
		types:     make(map[reflect.Type]Binder),
		conv:      NewConverter(),
		log:       zap.NewNop(),
	}

	r.registerDefaults()

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Converter returns the converter shared by the default binders.
func (r *Registry) Converter() *Converter {
	return r.conv
}

// FindBinder returns the binder for arg, or false when none applies.
func (r *Registry) FindBinder(arg Argument) (Binder, bool) {
	if arg.Type != nil {
		for _, an := range arg.Annotations {
			if b, ok := r.typed[typedKey{typ: arg.Type, annotation: an}]; ok {
				return b, true
			}
		}
	}

	for _, an := range arg.Annotations {
		if b, ok := r.annotated[an]; ok {
			return b, true
		}
	}

	if arg.Type != nil {
		if b, ok := r.types[arg.Type]; ok {
			return b, true
		}
	}

	if r.fallback != nil {
		return r.fallback, true
	}

	return nil, false
}

// Bind resolves a single argument. It returns ErrUnsatisfied when no binder
// applies or the binder found no value.
func (r *Registry) Bind(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	b, ok := r.FindBinder(arg)
	if !ok {
		return nil, ErrUnsatisfied
	}

	return b.Bind(ctx, arg)
}

// BindAll resolves every argument in order. Unsatisfied optional arguments
// take their default value, or the zero value of their type. The first
// failure stops the binding: a required argument without value yields an
// *UnsatisfiedError, a conversion failure a *ConversionError.
func (r *Registry) BindAll(ctx *fasthttp.RequestCtx, args []Argument) ([]any, error) {
	values := make([]any, len(args))

	for i, arg := range args {
		v, err := r.Bind(ctx, arg)

		switch {
		case err == nil:
			values[i] = v

		case errors.Is(err, ErrUnsatisfied) && arg.Optional:
			v, err = r.optionalValue(arg)
			if err != nil {
				return nil, err
			}

			r.log.Debug("argument not bound, using default",
				zap.Stringer("argument", arg), zap.Any("value", v))

			values[i] = v

		case errors.Is(err, ErrUnsatisfied):
			r.log.Debug("required argument not bound", zap.Stringer("argument", arg))

			return nil, &UnsatisfiedError{Argument: arg}

		default:
			r.log.Debug("argument binding failed", zap.Stringer("argument", arg), zap.Error(err))

			return nil, err
		}
	}

	return values, nil
}

func (r *Registry) optionalValue(arg Argument) (any, error) {
	if len(arg.Default) > 0 {
		v, err := r.conv.Convert(arg.Default, arg.Type)
		if err != nil {
			return nil, conversionError(arg, arg.Default, err)
		}

		return v, nil
	}

	if arg.Type == nil {
		return nil, nil
	}

	return reflect.Zero(arg.Type).Interface(), nil
}
