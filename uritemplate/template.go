package uritemplate

// Template is a parsed URI template. It is immutable and safe for concurrent use.
type Template struct {
	raw      string
	segments []Segment
}

type segmentList struct {
	segments []Segment
}

func (l *segmentList) Raw(seg Segment) {
	l.segments = append(l.segments, seg)
}

func (l *segmentList) Variable(seg Segment) error {
	l.segments = append(l.segments, seg)

	return nil
}

// Parse parses text into a Template.
func Parse(text string) (*Template, error) {
	l := &segmentList{}
	if err := parse(text, l); err != nil {
		return nil, err
	}

	return &Template{raw: text, segments: l.segments}, nil
}

// MustParse is like Parse but panics if the template cannot be parsed.
func MustParse(text string) *Template {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}

	return t
}

// String returns the template text.
func (t *Template) String() string {
	return t.raw
}

// Segments returns a copy of the parsed segments in template order.
func (t *Template) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// Nest appends child to t, as done when a group prefix and a route path are
// combined. Query segments of t stay at the end of the result.
func (t *Template) Nest(child *Template) *Template {
	if child == nil {
		return t
	}

	suffix, trim := nestedSuffix(t.raw, child.raw)
	if len(suffix) == 0 {
		return t
	}

	raw, segments := t.raw, t.segments
	if trim {
		if trimmed, ok := trimTrailingSlash(segments); ok {
			raw, segments = raw[:len(raw)-1], trimmed
		}
	}

	pathSegs, querySegs := splitQuery(segments)

	l := &segmentList{segments: append([]Segment(nil), pathSegs...)}
	if err := parse(suffix, l); err != nil {
		// suffix only differs from an already parsed template by a leading slash
		panic(err)
	}

	l.segments = append(l.segments, querySegs...)

	return &Template{raw: raw + suffix, segments: l.segments}
}

// nestedSuffix returns the text appended to parent when child is nested in
// it. Expressions whose operator starts a segment, query or fragment replace
// the trailing slash of parent, trim reports that it must be dropped. Any
// other child is separated from parent by exactly one slash.
func nestedSuffix(parent, child string) (suffix string, trim bool) {
	switch {
	case len(child) == 0 || child == "/" && len(parent) > 0:
		return "", false
	case len(parent) == 0:
		return child, false
	}

	slash := parent[len(parent)-1] == '/'

	switch child[0] {
	case '{':
		if len(child) > 1 {
			switch child[1] {
			case OperatorPath, OperatorQuery, OperatorQueryAnd, OperatorFragment:
				return child, slash
			}
		}
	case '/':
		if slash {
			return child[1:], false
		}

		return child, false
	}

	if slash {
		return child, false
	}

	return "/" + child, false
}

// trimTrailingSlash drops the trailing slash of the last path segment. It
// reports false when that segment is a variable or has no trailing slash.
func trimTrailingSlash(segments []Segment) ([]Segment, bool) {
	path, query := splitQuery(segments)

	n := len(path)
	if n == 0 || path[n-1].variable || path[n-1].value[len(path[n-1].value)-1] != '/' {
		return segments, false
	}

	trimmed := append([]Segment(nil), path[:n-1]...)
	if v := path[n-1].value; len(v) > 1 {
		trimmed = append(trimmed, rawSegment(v[:len(v)-1], false))
	}

	return append(trimmed, query...), true
}

func splitQuery(segments []Segment) (path, query []Segment) {
	for i := range segments {
		if segments[i].query {
			return segments[:i], segments[i:]
		}
	}

	return segments, nil
}
