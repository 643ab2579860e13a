package uritemplate

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cast"
	"github.com/valyala/bytebufferpool"
)

const upperhex = "0123456789ABCDEF"

// Expand fills the template variables from values and returns the resulting
// URI. Missing and nil values are omitted together with their prefix.
//
// Scalars are stringified with spf13/cast, slices and arrays expand as lists
// and maps as key/value pairs in key order.
func (t *Template) Expand(values map[string]any) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	exprHasContent := false

	for _, seg := range t.segments {
		if !seg.variable {
			buf.WriteString(seg.value)
			continue
		}

		if seg.index == 0 {
			exprHasContent = false
		}

		if expandVariable(buf, seg, values[seg.value], exprHasContent) {
			exprHasContent = true
		}
	}

	return buf.String()
}

type pair struct {
	key, value string
}

// expandVariable writes the expansion of one variable and reports whether
// anything was written.
func expandVariable(buf *bytebufferpool.ByteBuffer, seg Segment, value any, exprHasContent bool) bool {
	scalar, list, pairs, ok := expansionValue(value)
	if !ok {
		return false
	}

	if exprHasContent {
		buf.WriteString(seg.previousDelimiter)
	} else {
		buf.WriteString(seg.prefix)
	}

	explode := seg.modifierChar == ModifierExplode
	named := seg.repeatPrefix
	reserved := !seg.encode

	switch {
	case list == nil && pairs == nil:
		if seg.modifierChar == ModifierPrefix {
			scalar = truncate(scalar, seg.modifier)
		}

		if named {
			writeName(buf, seg, scalar == "")
		}

		escapeTo(buf, scalar, reserved)

	case list != nil && explode:
		for i, item := range list {
			if i > 0 {
				buf.WriteString(seg.delimiter)
			}

			if named {
				writeName(buf, seg, item == "")
			}

			escapeTo(buf, item, reserved)
		}

	case list != nil:
		if named {
			writeName(buf, seg, false)
		}

		for i, item := range list {
			if i > 0 {
				buf.WriteByte(',')
			}

			escapeTo(buf, item, reserved)
		}

	case explode:
		for i, p := range pairs {
			if i > 0 {
				buf.WriteString(seg.delimiter)
			}

			escapeTo(buf, p.key, reserved)
			if !named || len(p.value) > 0 {
				buf.WriteByte('=')
			}
			escapeTo(buf, p.value, reserved)
		}

	default:
		if named {
			writeName(buf, seg, false)
		}

		for i, p := range pairs {
			if i > 0 {
				buf.WriteByte(',')
			}

			escapeTo(buf, p.key, reserved)
			buf.WriteByte(',')
			escapeTo(buf, p.value, reserved)
		}
	}

	return true
}

// writeName writes "name=", or only "name" for an empty ';' value.
func writeName(buf *bytebufferpool.ByteBuffer, seg Segment, empty bool) {
	buf.WriteString(seg.value)

	if empty && seg.operator == OperatorMatrix {
		return
	}

	buf.WriteByte('=')
}

// expansionValue classifies v as a scalar, a list or a map. Empty lists and
// maps count as undefined.
func expansionValue(v any) (string, []string, []pair, bool) {
	if v == nil {
		return "", nil, nil, false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", nil, nil, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes()), nil, nil, true
		}

		list := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if item, ok := stringOf(rv.Index(i)); ok {
				list = append(list, item)
			}
		}

		return "", list, nil, len(list) > 0

	case reflect.Map:
		pairs := make([]pair, 0, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			value, ok := stringOf(iter.Value())
			if !ok {
				continue
			}

			key, _ := stringOf(iter.Key())
			pairs = append(pairs, pair{key: key, value: value})
		}

		sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

		return "", nil, pairs, len(pairs) > 0
	}

	s, _ := stringOf(rv)

	return s, nil, nil, true
}

func stringOf(rv reflect.Value) (string, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}

		rv = rv.Elem()
	}

	v := rv.Interface()

	if s, err := cast.ToStringE(v); err == nil {
		return s, true
	}

	return fmt.Sprint(v), true
}

// truncate applies a ":N" prefix modifier, counted in characters.
func truncate(s, modifier string) string {
	n, err := strconv.Atoi(modifier)
	if err != nil || n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}

	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}

	return s
}

// escapeTo percent-encodes s. Unreserved characters are always kept;
// reserved characters and existing escapes are kept only for the '+' and
// '#' operators.
func escapeTo(buf *bytebufferpool.ByteBuffer, s string, reserved bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case isUnreserved(c):
			buf.WriteByte(c)
		case reserved && isReserved(c):
			buf.WriteByte(c)
		case reserved && c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			buf.WriteByte(c)
		default:
			buf.WriteByte('%')
			buf.WriteByte(upperhex[c>>4])
			buf.WriteByte(upperhex[c&15])
		}
	}
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}

	return c == '-' || c == '.' || c == '_' || c == '~'
}

func isReserved(c byte) bool {
	switch c {
	case ':', '/', '?', '#', '[', ']', '@', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	}

	return false
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
