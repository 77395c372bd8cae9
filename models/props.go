package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Props is an attribute bag attached to a node or edge. It serializes to a
// canonical JSON form: keys sorted, ASCII-only escapes, no insignificant
// whitespace. Canonical output is what keeps rebuilds byte-identical.
type Props map[string]any

// Canonical renders the props bag as canonical JSON.
func (p Props) Canonical() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONString(&b, k)
		b.WriteByte(':')
		writeJSONValue(&b, p[k])
	}
	b.WriteByte('}')
	return b.String()
}

func writeJSONValue(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		writeJSONString(b, t)
	case *string:
		if t == nil {
			b.WriteString("null")
		} else {
			writeJSONString(b, *t)
		}
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case int:
		b.WriteString(strconv.Itoa(t))
	case *int:
		if t == nil {
			b.WriteString("null")
		} else {
			b.WriteString(strconv.Itoa(*t))
		}
	case float64:
		b.WriteString(FormatFloat(t))
	case *float64:
		if t == nil {
			b.WriteString("null")
		} else {
			b.WriteString(FormatFloat(*t))
		}
	default:
		// Props only carry scalars; anything else is a programming error.
		panic(fmt.Sprintf("props: unsupported value type %T", v))
	}
}

// writeJSONString escapes to pure ASCII so props_json diffs cleanly across
// tools and locales.
func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r > 0x7e {
				if r > 0xffff {
					r1, r2 := utf16.EncodeRune(r)
					fmt.Fprintf(b, `\u%04x\u%04x`, r1, r2)
				} else {
					fmt.Fprintf(b, `\u%04x`, r)
				}
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}
