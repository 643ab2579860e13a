package uritemplate

import "github.com/valyala/bytebufferpool"

// SegmentConsumer observes every segment produced while a template is parsed.
//
// Template collects the segments; MatchTemplate also builds its regular
// expression from them in the same pass.
type SegmentConsumer interface {
	Raw(seg Segment)
	Variable(seg Segment) error
}

type parseState uint8

const (
	stateText parseState = iota
	stateVarStart
	stateVarContent
	stateVarModifier
)

// ParseSegments decomposes text into segments, handing each of them to c in
// template order.
func ParseSegments(text string, c SegmentConsumer) error {
	return parse(text, c)
}

func parse(text string, c SegmentConsumer) error {
	buf := bytebufferpool.Get()
	mod := bytebufferpool.Get()

	defer bytebufferpool.Put(buf)
	defer bytebufferpool.Put(mod)

	state := stateText
	query := false
	start := 0
	depth := 0
	index := 0
	operator := OperatorNone
	modChar := ModifierNone

	flushRaw := func() {
		if buf.Len() > 0 {
			c.Raw(rawSegment(buf.String(), query))
			buf.Reset()
		}
	}

	endVariable := func(pos int) error {
		name := buf.String()

		switch {
		case len(name) == 0:
			return newParseError(text, start, "variable name must not be empty")
		case modChar == ModifierPrefix && mod.Len() == 0:
			return newParseError(text, pos, "modifier of variable '"+name+"' must not be empty")
		case modChar == ModifierExplode && mod.Len() > 0:
			return newParseError(text, pos, "unexpected '"+mod.String()+"' after explode modifier of variable '"+name+"'")
		}

		previous := ""
		if index > 0 {
			previous = listDelimiter(operator)
		}

		seg := variableSegment(name, operator, modChar, mod.String(), index, previous, query)
		if err := c.Variable(seg); err != nil {
			return wrapParseError(text, start, err)
		}

		buf.Reset()
		mod.Reset()
		modChar = ModifierNone
		depth = 0

		return nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]

		switch state {
		case stateText:
			switch ch {
			case '{':
				flushRaw()

				state = stateVarStart
				start = i
				index = 0
				operator = OperatorNone

			case '}':
				return newParseError(text, i, "unexpected '}' outside of a variable")

			case '?', '#':
				if !query {
					flushRaw()
					query = true
				}

				buf.WriteByte(ch)

			default:
				buf.WriteByte(ch)
			}

		case stateVarStart:
			switch ch {
			case ' ':
				continue

			case OperatorMatrix, OperatorQuery, OperatorQueryAnd, OperatorFragment:
				query = true
				operator = ch
				state = stateVarContent

			case OperatorReserved, OperatorLabel, OperatorPath:
				operator = ch
				state = stateVarContent

			case '=', ',', '!', '@', '|':
				return newParseError(text, i, "reserved operator '"+string(ch)+"'")

			case '}':
				return newParseError(text, start, "variable name must not be empty")

			default:
				state = stateVarContent
				i--
			}

		case stateVarContent:
			switch ch {
			case ModifierPrefix, ModifierExplode:
				modChar = ch
				state = stateVarModifier

			case ',':
				if err := endVariable(i); err != nil {
					return err
				}

				index++

			case '}':
				if err := endVariable(i); err != nil {
					return err
				}

				state = stateText

			case '{':
				return newParseError(text, i, "the char '{' is not allowed in the variable name")

			default:
				if !isNameChar(ch) {
					return newParseError(text, i, "invalid char '"+string(ch)+"' in variable name")
				}

				buf.WriteByte(ch)
			}

		case stateVarModifier:
			switch ch {
			case ' ':
				continue

			case '{':
				depth++
				mod.WriteByte(ch)

			case '}':
				if depth > 0 {
					depth--
					mod.WriteByte(ch)

					continue
				}

				if err := endVariable(i); err != nil {
					return err
				}

				state = stateText

			case ',':
				if depth > 0 {
					mod.WriteByte(ch)

					continue
				}

				if err := endVariable(i); err != nil {
					return err
				}

				index++
				state = stateVarContent

			default:
				mod.WriteByte(ch)
			}
		}
	}

	if state != stateText {
		return newParseError(text, start, "unterminated variable")
	}

	flushRaw()

	return nil
}

func isNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '-', c == '.', c == '%':
		return true
	}

	return false
}
