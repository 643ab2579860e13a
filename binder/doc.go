// Package binder resolves handler arguments from fasthttp requests.
//
// An Argument describes what a handler expects: a name, a declared type and
// the annotations telling where the value comes from (a header, a cookie, the
// query string, a route parameter or the body). A Registry picks the Binder
// of each argument and converts the raw request value to the declared type.
package binder
