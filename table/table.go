// Copyright 2020-present Sergio Andres Virviescas Santana, fasthttp
// Use of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

// Package table stores URI template routes per HTTP method.
package table

import (
	"sort"
	"strings"

	"github.com/fasthttp/urirouter/uritemplate"
	"github.com/valyala/fasthttp"
)

// MethodWild wild HTTP method
const MethodWild = "*"

// Route is a compiled template bound to a handler.
type Route struct {
	Method   string
	Template *uritemplate.MatchTemplate
	Handler  fasthttp.RequestHandler
}

// Table holds the routes of every method, each list ordered from the most to
// the least specific template.
type Table struct {
	routes map[string][]*Route
}

// New returns an empty table.
func New() *Table {
	return &Table{
		routes: make(map[string][]*Route),
	}
}

// Add adds the template with the given handler to the method routes.
//
// WARNING: Not concurrency-safe!
func (t *Table) Add(method string, tpl *uritemplate.MatchTemplate, handler fasthttp.RequestHandler) *Route {
	path := tpl.String()

	switch {
	case !strings.HasPrefix(path, "/"):
		panic("path must begin with '/' in path '" + path + "'")
	case handler == nil:
		panic("handler must not be nil")
	}

	routes := t.routes[method]

	for _, r := range routes {
		switch {
		case r.Template.String() == path:
			panic("a handle is already registered for path '" + path + "'")
		case r.Template.Pattern() == tpl.Pattern():
			panic("path '" + path + "' conflicts with existing path '" + r.Template.String() + "'")
		}
	}

	route := &Route{Method: method, Template: tpl, Handler: handler}
	routes = append(routes, route)

	// Equally specific templates keep their registration order
	sort.SliceStable(routes, func(i, j int) bool {
		return uritemplate.Compare(routes[i].Template, routes[j].Template) < 0
	})

	t.routes[method] = routes

	return route
}

// Routes returns the routes registered for method in matching order.
func (t *Table) Routes(method string) []*Route {
	return append([]*Route(nil), t.routes[method]...)
}

// Methods returns the methods with at least one route.
func (t *Table) Methods() []string {
	methods := make([]string, 0, len(t.routes))
	for method := range t.routes {
		methods = append(methods, method)
	}

	sort.Strings(methods)

	return methods
}

// Find returns the first route of method, then of MethodWild, matching path.
func (t *Table) Find(method, path string) (*Route, *uritemplate.MatchInfo) {
	if r, info := find(t.routes[method], path); r != nil {
		return r, info
	}

	if method != MethodWild {
		return find(t.routes[MethodWild], path)
	}

	return nil, nil
}

// Has reports whether a route of method matches path, ignoring MethodWild.
func (t *Table) Has(method, path string) bool {
	r, _ := find(t.routes[method], path)

	return r != nil
}

func find(routes []*Route, path string) (*Route, *uritemplate.MatchInfo) {
	for _, r := range routes {
		if info, ok := r.Template.Match(path); ok {
			return r, info
		}
	}

	return nil, nil
}

// Get returns the route registered for the given method and path. The matched
// variables are saved as ctx.UserValue.
// If no route can be found, a TSR (trailing slash redirect) recommendation is
// made if a route exists with an extra (without the) trailing slash for the
// given path.
func (t *Table) Get(method, path string, ctx *fasthttp.RequestCtx) (*Route, *uritemplate.MatchInfo, bool) {
	r, info := t.Find(method, path)
	if r == nil {
		return nil, nil, t.tsr(method, path)
	}

	if ctx != nil {
		info.Visit(func(name, value string) {
			ctx.SetUserValue(name, value)
		})
	}

	return r, info, false
}

func (t *Table) tsr(method, path string) bool {
	if path == "/" {
		return false
	}

	if strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	} else {
		path += "/"
	}

	r, _ := t.Find(method, path)

	return r != nil
}

// FindCaseInsensitivePath makes a case-insensitive lookup of the given path
// among the routes without path variables.
// It can optionally also fix trailing slashes.
// It returns the case-corrected path and a bool indicating whether the lookup
// was successful.
func (t *Table) FindCaseInsensitivePath(method, path string, fixTrailingSlash bool) (string, bool) {
	if fixed, ok := t.findInsensitive(method, path); ok {
		return fixed, true
	}

	if !fixTrailingSlash || path == "/" {
		return "", false
	}

	if strings.HasSuffix(path, "/") {
		return t.findInsensitive(method, path[:len(path)-1])
	}

	return t.findInsensitive(method, path+"/")
}

func (t *Table) findInsensitive(method, path string) (string, bool) {
	for _, m := range [...]string{method, MethodWild} {
		for _, r := range t.routes[m] {
			literal, ok := r.Template.Literal()
			if ok && strings.EqualFold(literal, path) {
				return literal, true
			}
		}

		if method == MethodWild {
			break
		}
	}

	return "", false
}
