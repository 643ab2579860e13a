package uritemplate

import "strings"

// Operator characters recognized at the start of a variable expression.
const (
	OperatorNone     byte = 0
	OperatorReserved byte = '+'
	OperatorFragment byte = '#'
	OperatorLabel    byte = '.'
	OperatorPath     byte = '/'
	OperatorMatrix   byte = ';'
	OperatorQuery    byte = '?'
	OperatorQueryAnd byte = '&'
)

// Modifier characters recognized inside a variable expression.
const (
	ModifierNone    byte = 0
	ModifierPrefix  byte = ':'
	ModifierExplode byte = '*'
)

// Segment is one literal or variable unit of a parsed template.
type Segment struct {
	value    string
	variable bool

	prefix            string
	delimiter         string
	previousDelimiter string
	repeatPrefix      bool
	encode            bool

	modifier     string
	modifierChar byte
	operator     byte
	query        bool
	index        int
}

// IsVariable reports whether the segment is a variable expression.
func (s Segment) IsVariable() bool { return s.variable }

// IsQuery reports whether the segment belongs to the query or fragment part.
func (s Segment) IsQuery() bool { return s.query }

// Value returns the literal text for raw segments and the variable name otherwise.
func (s Segment) Value() string { return s.value }

// Prefix returns the text written before the first defined variable of the
// expression, if any.
func (s Segment) Prefix() string { return s.prefix }

// Delimiter returns the separator used between the items of an expanded
// list or map.
func (s Segment) Delimiter() string { return s.delimiter }

// PreviousDelimiter returns the separator from the previous variable of the same expression.
func (s Segment) PreviousDelimiter() string { return s.previousDelimiter }

// RepeatPrefix reports whether the variable name is written in front of every
// expanded value, as the ';', '?' and '&' operators do.
func (s Segment) RepeatPrefix() bool { return s.repeatPrefix }

// Encode reports whether reserved characters are percent-encoded on expansion.
func (s Segment) Encode() bool { return s.encode }

// Modifier returns the modifier text following the modifier char.
func (s Segment) Modifier() string { return s.modifier }

// ModifierChar returns ':' or '*' when the variable carries a modifier.
func (s Segment) ModifierChar() byte { return s.modifierChar }

// Operator returns the expression operator, OperatorNone when absent.
func (s Segment) Operator() byte { return s.operator }

// Len returns the length of the literal text, 0 for variables.
func (s Segment) Len() int {
	if s.variable {
		return 0
	}

	return len(s.value)
}

// String renders the segment back to template syntax.
func (s Segment) String() string {
	if !s.variable {
		return s.value
	}

	var b strings.Builder

	b.WriteByte('{')
	if s.operator != OperatorNone {
		b.WriteByte(s.operator)
	}
	b.WriteString(s.value)
	if s.modifierChar != ModifierNone {
		b.WriteByte(s.modifierChar)
		b.WriteString(s.modifier)
	}
	b.WriteByte('}')

	return b.String()
}

func rawSegment(value string, query bool) Segment {
	return Segment{value: value, query: query}
}

// variableSegment derives the expansion attributes of a variable from its
// operator, following RFC 6570 section 3.2.
func variableSegment(name string, operator, modChar byte, modifier string, index int, previous string, query bool) Segment {
	s := Segment{
		value:             name,
		variable:          true,
		modifier:          modifier,
		modifierChar:      modChar,
		operator:          operator,
		previousDelimiter: previous,
		query:             query,
		index:             index,
		encode:            operator != OperatorReserved && operator != OperatorFragment,
		delimiter:         ",",
	}

	switch operator {
	case OperatorNone, OperatorReserved:
	case OperatorQueryAnd:
		s.prefix = "&"
	default:
		s.prefix = string(operator)
	}

	switch operator {
	case OperatorMatrix, OperatorQuery, OperatorQueryAnd:
		s.repeatPrefix = true
	}

	if modChar == ModifierExplode {
		s.delimiter = listDelimiter(operator)
	}

	return s
}

// listDelimiter is the separator placed between the variables of one
// expression and between the items of an exploded value.
func listDelimiter(operator byte) string {
	switch operator {
	case OperatorMatrix:
		return ";"
	case OperatorQuery, OperatorQueryAnd:
		return "&"
	case OperatorLabel, OperatorPath:
		return string(operator)
	default:
		return ","
	}
}
