package urirouter

import "github.com/valyala/fasthttp"

// Middleware wraps a request handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// MiddlewareFunc is a step run around a request handler.
type MiddlewareFunc func(*fasthttp.RequestCtx)

// Before returns a middleware calling fn before the handler.
func Before(fn MiddlewareFunc) Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			fn(ctx)
			next(ctx)
		}
	}
}

// After returns a middleware calling fn after the handler.
func After(fn MiddlewareFunc) Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			next(ctx)
			fn(ctx)
		}
	}
}
