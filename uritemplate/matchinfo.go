package uritemplate

import "strings"

// MatchInfo is the result of a successful match: the matched path and the
// captured variable values in declaration order.
type MatchInfo struct {
	uri       string
	names     []string
	values    map[string]string
	variables []Variable
}

// URI returns the matched path.
func (m *MatchInfo) URI() string {
	return m.uri
}

// Get returns the value captured for name.
func (m *MatchInfo) Get(name string) (string, bool) {
	v, ok := m.values[name]

	return v, ok
}

// Len returns the number of captured values.
func (m *MatchInfo) Len() int {
	return len(m.names)
}

// Names returns the names of the captured variables in declaration order.
func (m *MatchInfo) Names() []string {
	return append([]string(nil), m.names...)
}

// Values returns a copy of the captured values.
func (m *MatchInfo) Values() map[string]string {
	values := make(map[string]string, len(m.values))
	for k, v := range m.values {
		values[k] = v
	}

	return values
}

// Visit calls fn for every captured value in declaration order.
func (m *MatchInfo) Visit(fn func(name, value string)) {
	for _, name := range m.names {
		fn(name, m.values[name])
	}
}

// Variables returns every variable of the matched template, including those
// without a captured value.
func (m *MatchInfo) Variables() []Variable {
	return append([]Variable(nil), m.variables...)
}

// Equal reports whether both results hold the same path and the same
// values in the same order.
func (m *MatchInfo) Equal(o *MatchInfo) bool {
	if m == nil || o == nil {
		return m == o
	}

	if m.uri != o.uri || len(m.names) != len(o.names) {
		return false
	}

	for i, name := range m.names {
		if o.names[i] != name || o.values[name] != m.values[name] {
			return false
		}
	}

	return true
}

func (m *MatchInfo) String() string {
	var b strings.Builder

	b.WriteString(m.uri)
	b.WriteString(" {")

	for i, name := range m.names {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(m.values[name])
	}

	b.WriteByte('}')

	return b.String()
}
