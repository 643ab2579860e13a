package binder

import (
	"context"
	"errors"
	"reflect"

	"github.com/goccy/go-json"
	gotilsconv "github.com/savsgio/gotils/strconv"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

// Cookies is bound to every cookie sent with the request, by name.
type Cookies map[string]string

var (
	bytesType = TypeOf[[]byte]()
)

func (r *Registry) registerDefaults() {
	r.annotated[Body] = BinderFunc(r.bindBody)
	r.annotated[Header] = BinderFunc(r.bindHeader)
	r.annotated[CookieValue] = BinderFunc(r.bindCookie)
	r.annotated[QueryValue] = BinderFunc(r.bindQuery)
	r.annotated[PathVariable] = BinderFunc(r.bindPathVariable)
	r.annotated[RequestAttribute] = BinderFunc(r.bindAttribute)

	r.typed[typedKey{typ: TypeOf[*fasthttp.Cookie](), annotation: CookieValue}] = BinderFunc(bindCookieObject)

	r.types[TypeOf[*fasthttp.RequestCtx]()] = BinderFunc(func(ctx *fasthttp.RequestCtx, _ Argument) (any, error) {
		return ctx, nil
	})
	r.types[TypeOf[context.Context]()] = BinderFunc(func(ctx *fasthttp.RequestCtx, _ Argument) (any, error) {
		return ctx, nil
	})
	r.types[TypeOf[*fasthttp.Request]()] = BinderFunc(func(ctx *fasthttp.RequestCtx, _ Argument) (any, error) {
		return &ctx.Request, nil
	})
	r.types[TypeOf[*fasthttp.RequestHeader]()] = BinderFunc(func(ctx *fasthttp.RequestCtx, _ Argument) (any, error) {
		return &ctx.Request.Header, nil
	})
	r.types[TypeOf[*fasthttp.URI]()] = BinderFunc(func(ctx *fasthttp.RequestCtx, _ Argument) (any, error) {
		return ctx.URI(), nil
	})
	r.types[TypeOf[*fasthttp.Args]()] = BinderFunc(func(ctx *fasthttp.RequestCtx, _ Argument) (any, error) {
		return ctx.QueryArgs(), nil
	})
	r.types[TypeOf[Cookies]()] = BinderFunc(bindCookies)

	r.fallback = BinderFunc(r.bindNamed)
}

// convertValues converts the values found for arg. Slice typed arguments
// receive every value, other arguments the first one.
func (r *Registry) convertValues(arg Argument, values [][]byte) (any, error) {
	if len(values) == 0 {
		return nil, ErrUnsatisfied
	}

	if arg.Type == nil {
		return string(values[0]), nil
	}

	if arg.Type.Kind() == reflect.Slice && arg.Type != bytesType {
		strs := make([]string, len(values))
		for i := range values {
			strs[i] = string(values[i])
		}

		v, err := r.conv.ConvertAll(strs, arg.Type)
		if err != nil {
			return nil, conversionError(arg, strs[0], err)
		}

		return v, nil
	}

	return r.convertString(arg, string(values[0]))
}

func (r *Registry) convertString(arg Argument, value string) (any, error) {
	if len(value) == 0 && arg.Type != nil && arg.Type.Kind() != reflect.String && arg.Type != bytesType {
		return nil, ErrUnsatisfied
	}

	v, err := r.conv.Convert(value, arg.Type)
	if err != nil {
		return nil, conversionError(arg, value, err)
	}

	return v, nil
}

func (r *Registry) bindHeader(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	name := arg.BindingName()

	values := ctx.Request.Header.PeekAll(name)
	if len(values) == 0 && len(arg.Value) == 0 {
		values = ctx.Request.Header.PeekAll(Hyphenate(name))
	}

	return r.convertValues(arg, values)
}

func (r *Registry) bindCookie(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	value, ok := cookie(ctx, arg)
	if !ok {
		return nil, ErrUnsatisfied
	}

	return r.convertString(arg, value)
}

func bindCookieObject(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	value, ok := cookie(ctx, arg)
	if !ok {
		return nil, ErrUnsatisfied
	}

	c := &fasthttp.Cookie{}
	c.SetKey(arg.BindingName())
	c.SetValue(value)

	return c, nil
}

func cookie(ctx *fasthttp.RequestCtx, arg Argument) (string, bool) {
	name := arg.BindingName()

	value := ctx.Request.Header.Cookie(name)
	if len(value) == 0 && len(arg.Value) == 0 {
		value = ctx.Request.Header.Cookie(Hyphenate(name))
	}

	if len(value) == 0 {
		return "", false
	}

	return string(value), true
}

func bindCookies(ctx *fasthttp.RequestCtx, _ Argument) (any, error) {
	cookies := make(Cookies)

	ctx.Request.Header.VisitAllCookie(func(key, value []byte) {
		cookies[string(key)] = string(value)
	})

	return cookies, nil
}

func (r *Registry) bindQuery(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	return r.convertValues(arg, ctx.QueryArgs().PeekMulti(arg.BindingName()))
}

func (r *Registry) bindPathVariable(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	return r.bindUserValue(ctx, arg)
}

func (r *Registry) bindAttribute(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	return r.bindUserValue(ctx, arg)
}

func (r *Registry) bindUserValue(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	v := ctx.UserValue(arg.BindingName())
	if v == nil {
		return nil, ErrUnsatisfied
	}

	if arg.Type == nil || reflect.TypeOf(v).AssignableTo(arg.Type) {
		return v, nil
	}

	switch s := v.(type) {
	case string:
		return r.convertString(arg, s)
	case []byte:
		return r.convertString(arg, gotilsconv.B2S(s))
	}

	return nil, conversionError(arg, "", ErrUnsupportedType)
}

func (r *Registry) bindBody(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil, ErrUnsatisfied
	}

	if len(arg.Value) > 0 {
		res := gjson.GetBytes(body, arg.Value)
		if !res.Exists() || res.Type == gjson.Null {
			return nil, ErrUnsatisfied
		}

		if res.Type == gjson.JSON || arg.Type == nil || !isScalar(arg.Type) {
			return r.decode(arg, []byte(res.Raw))
		}

		return r.convertString(arg, res.String())
	}

	if arg.Type == nil {
		return string(body), nil
	}

	switch {
	case arg.Type.Kind() == reflect.String:
		return r.convertString(arg, string(body))
	case arg.Type == bytesType:
		return append([]byte(nil), body...), nil
	}

	return r.decode(arg, body)
}

func (r *Registry) decode(arg Argument, data []byte) (any, error) {
	if arg.Type == nil {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, conversionError(arg, gotilsconv.B2S(data), err)
		}

		return v, nil
	}

	ptr := reflect.New(arg.Type)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, conversionError(arg, gotilsconv.B2S(data), err)
	}

	return ptr.Elem().Interface(), nil
}

// bindNamed looks the argument name up in the query string, then in the
// route parameters, then in the form body.
func (r *Registry) bindNamed(ctx *fasthttp.RequestCtx, arg Argument) (any, error) {
	name := arg.BindingName()
	if len(name) == 0 {
		return nil, ErrUnsatisfied
	}

	if values := ctx.QueryArgs().PeekMulti(name); len(values) > 0 {
		return r.convertValues(arg, values)
	}

	v, err := r.bindUserValue(ctx, arg)
	if !errors.Is(err, ErrUnsatisfied) {
		return v, err
	}

	return r.convertValues(arg, ctx.PostArgs().PeekMulti(name))
}

func isScalar(t reflect.Type) bool {
	if t == durationType || t == timeType || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}

	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}

	return false
}
