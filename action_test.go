package urirouter

import (
	"errors"
	"testing"

	"github.com/fasthttp/urirouter/binder"
	"github.com/fasthttp/urirouter/uritemplate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap/zaptest"
)

func serve(r *Router, method, uri string) *fasthttp.RequestCtx {
	ctx := new(fasthttp.RequestCtx)
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)

	r.Handler(ctx)

	return ctx
}

func TestRouterAction(t *testing.T) {
	r := New()
	r.Logger = zaptest.NewLogger(t)

	var got []any

	r.GET("/books/{id}{?max}", r.Action([]binder.Argument{
		binder.Arg[int]("id", binder.PathVariable),
		binder.Arg[int]("max", binder.QueryValue).OrElse("10"),
		binder.Arg[string]("acceptLanguage", binder.Header).AsOptional(),
		binder.Arg[*uritemplate.MatchInfo]("info"),
	}, func(ctx *fasthttp.RequestCtx, args []any) {
		got = args
		ctx.SetStatusCode(fasthttp.StatusOK)
	}))

	ctx := serve(r, fasthttp.MethodGet, "/books/42?max=5")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.Len(t, got, 4)
	assert.Equal(t, 42, got[0])
	assert.Equal(t, 5, got[1])
	assert.Equal(t, "", got[2])

	info, ok := got[3].(*uritemplate.MatchInfo)
	require.True(t, ok)
	assert.Equal(t, "/books/42", info.URI())
	assert.Equal(t, map[string]string{"id": "42"}, info.Values())

	got = nil
	ctx = serve(r, fasthttp.MethodGet, "/books/7")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, []any{7, 10, "", got[3]}, got)
}

func TestRouterAction_bindError(t *testing.T) {
	r := New()

	called := false
	r.GET("/books/{id}", r.Action([]binder.Argument{
		binder.Arg[int]("id", binder.PathVariable),
		binder.Arg[string]("token", binder.Header).Named("X-Token"),
	}, func(ctx *fasthttp.RequestCtx, args []any) {
		called = true
	}))

	ctx := serve(r, fasthttp.MethodGet, "/books/abc")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.False(t, called)

	ctx = new(fasthttp.RequestCtx)
	ctx.Request.SetRequestURI("/books/1")
	r.Handler(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "X-Token")
	assert.False(t, called)

	ctx = new(fasthttp.RequestCtx)
	ctx.Request.SetRequestURI("/books/1")
	ctx.Request.Header.Set("X-Token", "secret")
	r.Handler(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.True(t, called)
}

func TestRouterAction_customBindError(t *testing.T) {
	r := New()

	var bindErr error
	r.BindError = func(ctx *fasthttp.RequestCtx, err error) {
		bindErr = err
		ctx.SetStatusCode(fasthttp.StatusUnprocessableEntity)
	}

	r.GET("/books/{id}", r.Action([]binder.Argument{
		binder.Arg[int]("id", binder.PathVariable),
	}, func(ctx *fasthttp.RequestCtx, args []any) {}))

	ctx := serve(r, fasthttp.MethodGet, "/books/abc")
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())

	var convErr *binder.ConversionError
	require.True(t, errors.As(bindErr, &convErr))
	assert.Equal(t, "id", convErr.Argument)
	assert.Equal(t, "abc", convErr.Value)
}

func TestRouterAction_customBinders(t *testing.T) {
	type isbn string

	r := New()
	r.Binders = NewBinders(binder.WithConverter(binder.TypeOf[isbn](), func(s string) (any, error) {
		if len(s) != 13 {
			return nil, errors.New("isbn must have 13 digits")
		}

		return isbn(s), nil
	}))

	var got any
	r.GET("/isbn/{isbn}", r.Action([]binder.Argument{
		binder.Arg[isbn]("isbn", binder.PathVariable),
	}, func(ctx *fasthttp.RequestCtx, args []any) {
		got = args[0]
	}))

	ctx := serve(r, fasthttp.MethodGet, "/isbn/9780385121675")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, isbn("9780385121675"), got)

	ctx = serve(r, fasthttp.MethodGet, "/isbn/123")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestRouterAction_nil(t *testing.T) {
	r := New()

	assert.Panics(t, func() {
		r.Action(nil, nil)
	})
}
