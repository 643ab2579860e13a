package uritemplate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// variablePattern is the character class captured by a variable without a
// custom regex: anything but a path, query, fragment or parameter separator.
const variablePattern = `[^/?#&;+]`

// reservedPattern is captured by '+' variables, which may span separators.
const reservedPattern = `[\S]`

const groupPrefix = "urivar"

// Variable describes a template variable as seen by the matcher.
type Variable struct {
	Name         string
	Operator     byte
	ModifierChar byte
	Modifier     string
	Query        bool
}

// Optional reports whether a match may succeed without a value for v.
func (v Variable) Optional() bool {
	if v.Query || v.Modifier == "?" {
		return true
	}

	switch v.Operator {
	case OperatorPath, OperatorFragment, OperatorQuery, OperatorQueryAnd, OperatorMatrix:
		return true
	}

	return false
}

// Exploded reports whether the variable carries the '*' explode modifier.
func (v Variable) Exploded() bool {
	return v.ModifierChar == ModifierExplode
}

// MatchTemplate is a Template compiled into a single regular expression used
// to match request paths. It is immutable once built and safe for
// concurrent use.
type MatchTemplate struct {
	tpl *Template

	pattern   string
	re        *regexp.Regexp
	variables []Variable
	groups    []int

	// literal is the whole path when the template has no path variables.
	literal string
	exact   bool
}

// matchBuilder receives the segments from the parser and writes the pattern
// alongside. It only lives until the template is compiled.
type matchBuilder struct {
	segments  []Segment
	variables []Variable
	names     []string
	pattern   *bytebufferpool.ByteBuffer
	literal   *bytebufferpool.ByteBuffer
	groups    int
}

func newMatchBuilder() *matchBuilder {
	return &matchBuilder{
		pattern: bytebufferpool.Get(),
		literal: bytebufferpool.Get(),
	}
}

func (b *matchBuilder) release() {
	bytebufferpool.Put(b.pattern)
	bytebufferpool.Put(b.literal)

	b.pattern = nil
	b.literal = nil
}

func (b *matchBuilder) Raw(seg Segment) {
	b.segments = append(b.segments, seg)

	if seg.query {
		return
	}

	b.pattern.WriteString(regexp.QuoteMeta(seg.value))
	b.literal.WriteString(seg.value)
}

func (b *matchBuilder) Variable(seg Segment) error {
	v := Variable{
		Name:         seg.value,
		Operator:     seg.operator,
		ModifierChar: seg.modifierChar,
		Modifier:     seg.modifier,
		Query:        seg.query,
	}

	b.segments = append(b.segments, seg)
	b.variables = append(b.variables, v)

	switch {
	case seg.query:
		b.names = append(b.names, "")
		return nil
	case seg.operator != OperatorNone && seg.operator != OperatorReserved &&
		seg.operator != OperatorPath && seg.operator != OperatorLabel:
		b.names = append(b.names, "")
		return nil
	}

	body := variablePattern
	if seg.operator == OperatorReserved {
		body = reservedPattern
	}

	quantifier := "+?"
	operatorQuantifier := ""
	mod := seg.modifier

	if seg.modifierChar == ModifierPrefix {
		switch {
		case mod == "?":
		case mod[0] == '?':
			return errors.New("unsupported modifier '" + mod + "' of variable '" + v.Name + "'")
		case isDigits(mod):
			quantifier = "{1," + mod + "}"
		default:
			n := len(mod)
			if mod[n-1] == '*' || (n > 1 && mod[n-1] == '?' && (mod[n-2] == '*' || mod[n-2] == '+')) {
				operatorQuantifier = "?"
			}

			body = strings.TrimPrefix(mod, "^")
			quantifier = ""

			if _, err := regexp.Compile(body); err != nil {
				return errors.New("invalid regex '" + body + "' of variable '" + v.Name + "': " + err.Error())
			}
		}
	}

	name := groupPrefix + strconv.Itoa(b.groups)
	b.groups++
	b.names = append(b.names, name)

	p := b.pattern
	if seg.operator == OperatorNone || seg.operator == OperatorReserved {
		p.WriteString(regexp.QuoteMeta(seg.previousDelimiter))
	}
	p.WriteString("(?:")
	if seg.operator == OperatorPath || seg.operator == OperatorLabel {
		p.WriteByte('\\')
		p.WriteByte(seg.operator)
		p.WriteString(operatorQuantifier)
	}
	p.WriteString("(?P<")
	p.WriteString(name)
	p.WriteByte('>')
	p.WriteString(body)
	p.WriteString(quantifier)
	p.WriteString("))")

	if seg.operator == OperatorPath || mod == "?" {
		p.WriteByte('?')
	}

	return nil
}

func (b *matchBuilder) build(raw string) (*MatchTemplate, error) {
	t := &MatchTemplate{
		tpl:       &Template{raw: raw, segments: b.segments},
		pattern:   b.pattern.String(),
		variables: b.variables,
		groups:    make([]int, len(b.variables)),
		literal:   b.literal.String(),
	}

	if b.groups == 0 {
		t.exact = true

		for i := range t.groups {
			t.groups[i] = -1
		}

		return t, nil
	}

	re, err := regexp.Compile("^(?:" + t.pattern + ")$")
	if err != nil {
		return nil, &ParseError{Template: raw, Reason: err.Error(), Err: err}
	}

	t.re = re

	for i, name := range b.names {
		t.groups[i] = -1
		if len(name) > 0 {
			t.groups[i] = re.SubexpIndex(name)
		}
	}

	return t, nil
}

// ParseMatch parses text and compiles it for matching.
func ParseMatch(text string) (*MatchTemplate, error) {
	b := newMatchBuilder()
	defer b.release()

	if err := parse(text, b); err != nil {
		return nil, err
	}

	return b.build(text)
}

// MustParseMatch is like ParseMatch but panics if the template is invalid.
func MustParseMatch(text string) *MatchTemplate {
	t, err := ParseMatch(text)
	if err != nil {
		panic(err)
	}

	return t
}

// Match matches the whole path against the template. The path must not
// contain the query string or fragment.
//
// Optional variables that did not take part in the match are absent from the
// result.
func (t *MatchTemplate) Match(path string) (*MatchInfo, bool) {
	if t.exact {
		if path != t.literal {
			return nil, false
		}

		return &MatchInfo{uri: path, variables: t.variables}, true
	}

	loc := t.re.FindStringSubmatchIndex(path)
	if loc == nil {
		return nil, false
	}

	info := &MatchInfo{
		uri:       path,
		variables: t.variables,
		names:     make([]string, 0, len(t.groups)),
		values:    make(map[string]string, len(t.groups)),
	}

	for i, g := range t.groups {
		if g < 0 || loc[2*g] < 0 {
			continue
		}

		name := t.variables[i].Name
		if _, ok := info.values[name]; !ok {
			info.names = append(info.names, name)
		}

		info.values[name] = path[loc[2*g]:loc[2*g+1]]
	}

	return info, true
}

// Nest appends child to t and compiles the result. The variables of the
// result are those of t followed by those of child. Its pattern starts with
// the pattern of t, less the trailing slash when child begins with a path,
// query or fragment expression.
func (t *MatchTemplate) Nest(child *MatchTemplate) *MatchTemplate {
	if child == nil {
		return t
	}

	suffix, trim := nestedSuffix(t.tpl.raw, child.tpl.raw)
	if len(suffix) == 0 {
		return t
	}

	raw, segments := t.tpl.raw, t.tpl.segments
	pattern, literal := t.pattern, t.literal

	if trim {
		// the dropped slash is the last character of both the pattern and the literal
		if trimmed, ok := trimTrailingSlash(segments); ok {
			raw, segments = raw[:len(raw)-1], trimmed
			pattern, literal = pattern[:len(pattern)-1], literal[:len(literal)-1]
		}
	}

	pathSegs, querySegs := splitQuery(segments)
	pathVars := len(pathSegs) - countRaw(pathSegs)

	b := newMatchBuilder()
	defer b.release()

	b.segments = append(b.segments, pathSegs...)
	b.variables = append(b.variables, t.variables[:pathVars]...)
	b.pattern.WriteString(pattern)
	b.literal.WriteString(literal)

	for i := 0; i < pathVars; i++ {
		name := ""
		if t.groups[i] >= 0 {
			name = t.re.SubexpNames()[t.groups[i]]
			b.groups++
		}

		b.names = append(b.names, name)
	}

	if err := parse(suffix, b); err != nil {
		// suffix only differs from an already parsed template by a leading slash
		panic(err)
	}

	for i, seg := range querySegs {
		b.segments = append(b.segments, seg)

		if seg.variable {
			b.variables = append(b.variables, t.variables[pathVars+i-countRaw(querySegs[:i])])
			b.names = append(b.names, "")
		}
	}

	nested, err := b.build(raw + suffix)
	if err != nil {
		panic(err)
	}

	return nested
}

func countRaw(segments []Segment) int {
	n := 0
	for i := range segments {
		if !segments[i].variable {
			n++
		}
	}

	return n
}

// Template returns the parsed template.
func (t *MatchTemplate) Template() *Template {
	return t.tpl
}

// String returns the template text.
func (t *MatchTemplate) String() string {
	return t.tpl.raw
}

// Pattern returns the unanchored regular expression source. Variables are
// captured by named groups in declaration order.
func (t *MatchTemplate) Pattern() string {
	return t.pattern
}

// Literal returns the path matched by a template without path variables.
// The boolean is false when the template has any.
func (t *MatchTemplate) Literal() (string, bool) {
	return t.literal, t.exact
}

// Variables returns the template variables in declaration order.
func (t *MatchTemplate) Variables() []Variable {
	return append([]Variable(nil), t.variables...)
}

// VariableNames returns the variable names in declaration order.
func (t *MatchTemplate) VariableNames() []string {
	names := make([]string, len(t.variables))
	for i := range t.variables {
		names[i] = t.variables[i].Name
	}

	return names
}

// Expand fills the template variables, see Template.Expand.
func (t *MatchTemplate) Expand(values map[string]any) string {
	return t.tpl.Expand(values)
}

// Compare orders templates from the most to the least specific: more literal
// characters first, then fewer path variables.
func Compare(a, b *MatchTemplate) int {
	if a == b {
		return 0
	}

	rawA, varsA := a.specificity()
	rawB, varsB := b.specificity()

	switch {
	case rawA > rawB:
		return -1
	case rawA < rawB:
		return 1
	case varsA < varsB:
		return -1
	case varsA > varsB:
		return 1
	}

	return 0
}

func (t *MatchTemplate) specificity() (raw, vars int) {
	for _, seg := range t.tpl.segments {
		switch {
		case !seg.variable:
			raw += len(seg.value)
		case !seg.query:
			vars++
		}
	}

	return raw, vars
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return len(s) > 0
}
