package binder

import (
	"reflect"
	"strings"
	"unicode"
)

// Annotation tags an argument with the source its value is bound from.
type Annotation string

// Binding annotations known by the default registry.
const (
	Body             Annotation = "Body"
	CookieValue      Annotation = "CookieValue"
	Header           Annotation = "Header"
	QueryValue       Annotation = "QueryValue"
	PathVariable     Annotation = "PathVariable"
	RequestAttribute Annotation = "RequestAttribute"
)

// Argument describes a handler argument to bind.
type Argument struct {
	// Name is the argument name, used when Value is empty.
	Name string

	// Type is the declared type the bound value must have.
	Type reflect.Type

	// TypeParameters holds generic type arguments, e.g. the element of an
	// optional wrapper. It is informative only.
	TypeParameters []reflect.Type

	// Annotations lists the annotations present on the argument.
	Annotations []Annotation

	// Value is the annotation member, e.g. the header name of a Header
	// annotated argument.
	Value string

	// Optional arguments fall back to Default, or to the zero value of Type,
	// when nothing can be bound.
	Optional bool
	Default  string
}

// Arg returns an argument of type T.
func Arg[T any](name string, annotations ...Annotation) Argument {
	return Argument{
		Name:        name,
		Type:        TypeOf[T](),
		Annotations: annotations,
	}
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Has reports whether the argument carries the annotation.
func (a Argument) Has(annotation Annotation) bool {
	for _, an := range a.Annotations {
		if an == annotation {
			return true
		}
	}

	return false
}

// BindingName returns the name looked up in the request.
func (a Argument) BindingName() string {
	if len(a.Value) > 0 {
		return a.Value
	}

	return a.Name
}

// Named returns a copy of the argument with the annotation member set.
func (a Argument) Named(value string) Argument {
	a.Value = value
	return a
}

// OrElse returns a copy of the argument that is optional and defaults to def.
func (a Argument) OrElse(def string) Argument {
	a.Optional = true
	a.Default = def

	return a
}

// AsOptional returns a copy of the argument that is optional.
func (a Argument) AsOptional() Argument {
	a.Optional = true
	return a
}

func (a Argument) String() string {
	var b strings.Builder

	for _, an := range a.Annotations {
		b.WriteByte('@')
		b.WriteString(string(an))
		b.WriteByte(' ')
	}

	if a.Type != nil {
		b.WriteString(a.Type.String())
		b.WriteByte(' ')
	}

	b.WriteString(a.Name)

	return b.String()
}

// Hyphenate converts a camel case name into its lower case hyphenated form,
// e.g. xMyHeader to x-my-header.
func Hyphenate(name string) string {
	runes := []rune(name)

	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range runes {
		if r == '_' {
			r = '-'
		}

		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if prev != '-' && prev != '_' && (unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower) {
				b.WriteByte('-')
			}
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
