// Package uritemplate parses RFC 6570 style URI templates, expands them and
// compiles them into regular expressions that match request paths.
//
// Besides the RFC operators, variables accept a ':' modifier: digits bound
// the captured length ({id:4}), anything else is used as the regex of the
// capture ({id:[0-9]+}).
package uritemplate
