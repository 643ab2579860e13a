package urirouter

import (
	"github.com/fasthttp/urirouter/binder"
	"github.com/fasthttp/urirouter/uritemplate"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ActionFunc handles a request with the values of its declared arguments,
// in declaration order.
type ActionFunc func(ctx *fasthttp.RequestCtx, args []any)

// NewBinders returns the default binder registry, which also binds the
// *uritemplate.MatchInfo of the matched route. The options are applied last.
func NewBinders(opts ...binder.Option) *binder.Registry {
	opts = append([]binder.Option{
		binder.WithTypeBinder(binder.TypeOf[*uritemplate.MatchInfo](), binder.BinderFunc(bindMatchInfo)),
	}, opts...)

	return binder.New(opts...)
}

func bindMatchInfo(ctx *fasthttp.RequestCtx, _ binder.Argument) (any, error) {
	info, ok := ctx.UserValue(MatchInfoParam).(*uritemplate.MatchInfo)
	if !ok || info == nil {
		return nil, binder.ErrUnsatisfied
	}

	return info, nil
}

// Action returns a request handler that binds args from the request before
// calling fn. When an argument can not be bound, fn is not called and the
// error is passed to BindError.
func (r *Router) Action(args []binder.Argument, fn ActionFunc) fasthttp.RequestHandler {
	if fn == nil {
		panic("action must not be nil")
	}

	if r.Binders == nil {
		r.Binders = NewBinders(binder.WithLogger(r.Logger))
	}

	binders := r.Binders
	args = append([]binder.Argument(nil), args...)

	return func(ctx *fasthttp.RequestCtx) {
		values, err := binders.BindAll(ctx, args)
		if err != nil {
			r.bindError(ctx, err)
			return
		}

		fn(ctx, values)
	}
}

func (r *Router) bindError(ctx *fasthttp.RequestCtx, err error) {
	r.Logger.Debug("action arguments not bound",
		zap.ByteString("method", ctx.Method()),
		zap.ByteString("path", ctx.Path()),
		zap.Error(err),
	)

	if r.BindError != nil {
		r.BindError(ctx, err)
		return
	}

	ctx.Error(err.Error(), fasthttp.StatusBadRequest)
}
