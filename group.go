package urirouter

import (
	"strings"

	"github.com/fasthttp/urirouter/uritemplate"
	"github.com/valyala/fasthttp"
)

// Group returns a new group.
// Path auto-correction, including trailing slashes, is enabled by default.
func (g *Group) Group(path string) *Group {
	validatePath(path)

	if path == "/" {
		return g
	}

	if strings.HasSuffix(path, "/") {
		panic("group path must not end with a trailing slash")
	}

	return &Group{
		router:     g.router,
		prefix:     g.prefix.Nest(parsePath(path)),
		middleware: append([]Middleware(nil), g.middleware...),
	}
}

// Prefix returns the template every route of the group starts with.
func (g *Group) Prefix() *uritemplate.MatchTemplate {
	return g.prefix
}

func (g *Group) template(path string) *uritemplate.MatchTemplate {
	validatePath(path)

	return g.prefix.Nest(parsePath(path))
}

// GET is a shortcut for group.Handle(fasthttp.MethodGet, path, handler)
func (g *Group) GET(path string, handler fasthttp.RequestHandler) {
	g.Handle(fasthttp.MethodGet, path, handler)
}

// HEAD is a shortcut for group.Handle(fasthttp.MethodHead, path, handler)
func (g *Group) HEAD(path string, handler fasthttp.RequestHandler) {
	g.Handle(fasthttp.MethodHead, path, handler)
}

// POST is a shortcut for group.Handle(fasthttp.MethodPost, path, handler)
func (g *Group) POST(path string, handler fasthttp.RequestHandler) {
	g.Handle(fasthttp.MethodPost, path, handler)
}

// PUT is a shortcut for group.Handle(fasthttp.MethodPut, path, handler)
func (g *Group) PUT(path string, handler fasthttp.RequestHandler) {
	g.Handle(fasthttp.MethodPut, path, handler)
}

// PATCH is a shortcut for group.Handle(fasthttp.MethodPatch, path, handler)
func (g *Group) PATCH(path string, handler fasthttp.RequestHandler) {
	g.Handle(fasthttp.MethodPatch, path, handler)
}

// DELETE is a shortcut for group.Handle(fasthttp.MethodDelete, path, handler)
func (g *Group) DELETE(path string, handler fasthttp.RequestHandler) {
	g.Handle(fasthttp.MethodDelete, path, handler)
}

// CONNECT is a shortcut for group.Handle(fasthttp.MethodConnect, path, handler)
func (g *Group) CONNECT(path string, handler fasthttp.RequestHandler) {
	g.Handle(fasthttp.MethodConnect, path, handler)
}

// OPTIONS is a shortcut for group.Handle(fasthttp.MethodOptions, path, handler)
func (g *Group) OPTIONS(path string, handler fasthttp.RequestHandler) {
	g.Handle(fasthttp.MethodOptions, path, handler)
}

// TRACE is a shortcut for group.Handle(fasthttp.MethodTrace, path, handler)
func (g *Group) TRACE(path string, handler fasthttp.RequestHandler) {
	g.Handle(fasthttp.MethodTrace, path, handler)
}

// ANY is a shortcut for group.Handle(router.MethodWild, path, handler)
//
// WARNING: Use only for routes where the request method is not important
func (g *Group) ANY(path string, handler fasthttp.RequestHandler) {
	g.Handle(MethodWild, path, handler)
}

// ServeFiles serves files from the given file system root.
// The path must end with "/{filepath:.*}", files are then served from the local
// path /defined/root/dir/{filepath:.*}.
// For example if root is "/etc" and {filepath:.*} is "passwd", the local file
// "/etc/passwd" would be served.
// Internally a fasthttp.FSHandler is used, therefore http.NotFound is used instead
// Use:
//
//	router.ServeFiles("/src/{filepath:.*}", "./")
func (g *Group) ServeFiles(path string, rootPath string) {
	g.router.ServeFiles(g.template(path).String(), rootPath)
}

// ServeFilesCustom serves files from the given file system settings.
// The path must end with "/{filepath:.*}", files are then served from the local
// path /defined/root/dir/{filepath:.*}.
// For example if root is "/etc" and {filepath:.*} is "passwd", the local file
// "/etc/passwd" would be served.
// Internally a fasthttp.FSHandler is used, therefore http.NotFound is used instead
// of the Router's NotFound handler.
// Use:
//
//	router.ServeFilesCustom("/src/{filepath:.*}", *customFS)
func (g *Group) ServeFilesCustom(path string, fs *fasthttp.FS) {
	g.router.ServeFilesCustom(g.template(path).String(), fs)
}

// Handle registers a new request handler with the given path and method.
// The path is nested under the group prefix, so the variables of both
// are matched.
//
// For GET, POST, PUT, PATCH and DELETE requests the respective shortcut
// functions can be used.
//
// This function is intended for bulk loading and to allow the usage of less
// frequently used, non-standardized or custom methods (e.g. for internal
// communication with a proxy).
func (g *Group) Handle(method, path string, handler fasthttp.RequestHandler) {
	tpl := g.template(path)

	if handler != nil {
		handler = g.applyMiddleware(handler)
	}

	g.router.HandleTemplate(method, tpl, handler)
}

// AddMiddleware appends m to the middleware wrapping the handlers registered
// afterwards.
func (g *Group) AddMiddleware(m Middleware) {
	g.middleware = append(g.middleware, m)
}

// Use is AddMiddleware for several middleware at once.
func (g *Group) Use(middleware ...Middleware) {
	g.middleware = append(g.middleware, middleware...)
}

func (g *Group) applyMiddleware(handler fasthttp.RequestHandler) fasthttp.RequestHandler {
	if len(g.middleware) == 0 {
		return handler
	}

	for i := len(g.middleware) - 1; i >= 0; i-- {
		handler = g.middleware[i](handler)
	}

	return handler
}
