package binder

import "github.com/valyala/fasthttp"

// Binder resolves the value of an argument from a request.
//
// It returns ErrUnsatisfied when the request holds no value for the argument
// and a *ConversionError when a value was found but could not be converted.
// A Binder must not modify the request.
type Binder interface {
	Bind(ctx *fasthttp.RequestCtx, arg Argument) (any, error)
}

// BinderFunc adapts a function to the Binder interface.
type BinderFunc func(ctx *fasthttp.RequestCtx, arg Argument) (any, error)

// Bind calls fn(ctx, arg).
func (fn BinderFunc) Bind(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	return fn(ctx, arg)
}
