package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Version identifies the canonical format produced by Marshal.
const Version = "v1"

const (
	indentUnit   = "    "
	keySeparator = ": "
	itemSep      = ","
)

// Marshal returns the canonical form of v.
//
// v is first normalized through encoding/json, so anything json.Marshal
// accepts is accepted here, and the canonical bytes describe exactly the
// value the receiving side decodes from the JSON request body. Numbers keep
// the type the receiver sees: literals without a fraction or exponent stay
// integers, everything else is formatted as a shortest round-trip float.
//
// Absent payloads (see IsAbsent) marshal to an empty, non-nil slice.
func Marshal(v any) ([]byte, error) {
	if isEmptyRaw(v) {
		return []byte{}, nil
	}

	tree, err := normalize(v)
	if err != nil {
		return nil, err
	}

	if absentTree(tree) {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	if err := encode(&buf, tree, 0); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// IsAbsent reports whether v counts as "no payload": a value whose JSON
// form is null or an empty object. That covers nil, empty maps of any
// element type and structs whose fields are all omitted. An absent payload
// contributes nothing to a signature and is left out of the request body.
func IsAbsent(v any) bool {
	switch m := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(m) == 0
	}

	if isEmptyRaw(v) {
		return true
	}

	tree, err := normalize(v)
	if err != nil {
		return false
	}

	return absentTree(tree)
}

func isEmptyRaw(v any) bool {
	raw, ok := v.(json.RawMessage)
	return ok && len(bytes.TrimSpace(raw)) == 0
}

// absentTree reports whether a normalized value is null or {}.
func absentTree(tree any) bool {
	switch t := tree.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	}

	return false
}

// normalize converts v into a tree of map[string]any, []any, string, bool,
// nil and json.Number.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}

	return tree, nil
}

func encode(buf *bytes.Buffer, v any, depth int) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")

	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}

	case string:
		writeString(buf, val)

	case json.Number:
		s, err := formatNumber(val)
		if err != nil {
			return err
		}

		buf.WriteString(s)

	case map[string]any:
		return encodeObject(buf, val, depth)

	case []any:
		return encodeArray(buf, val, depth)

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}

	return nil
}

func encodeObject(buf *bytes.Buffer, m map[string]any, depth int) error {
	if len(m) == 0 {
		buf.WriteString("{}")
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	// Byte order of UTF-8 strings is code point order.
	slices.Sort(keys)

	buf.WriteByte('{')

	for i, k := range keys {
		if i > 0 {
			buf.WriteString(itemSep)
		}

		newline(buf, depth+1)
		writeString(buf, k)
		buf.WriteString(keySeparator)

		if err := encode(buf, m[k], depth+1); err != nil {
			return err
		}
	}

	newline(buf, depth)
	buf.WriteByte('}')

	return nil
}

func encodeArray(buf *bytes.Buffer, items []any, depth int) error {
	if len(items) == 0 {
		buf.WriteString("[]")
		return nil
	}

	buf.WriteByte('[')

	for i, item := range items {
		if i > 0 {
			buf.WriteString(itemSep)
		}

		newline(buf, depth+1)

		if err := encode(buf, item, depth+1); err != nil {
			return err
		}
	}

	newline(buf, depth)
	buf.WriteByte(']')

	return nil
}

func newline(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(indentUnit, depth))
}

const hexDigits = "0123456789abcdef"

// writeString writes s as an ASCII-only JSON string literal.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				buf.WriteRune(r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				writeEscape(buf, hi)
				writeEscape(buf, lo)
			default:
				writeEscape(buf, r)
			}
		}
	}

	buf.WriteByte('"')
}

func writeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexDigits[(r>>12)&0xf])
	buf.WriteByte(hexDigits[(r>>8)&0xf])
	buf.WriteByte(hexDigits[(r>>4)&0xf])
	buf.WriteByte(hexDigits[r&0xf])
}

// formatNumber renders a JSON number literal the way the verifying side
// prints the value it decoded from that literal.
func formatNumber(n json.Number) (string, error) {
	lit := n.String()
	if lit == "" {
		return "", ErrInvalidNumber
	}

	if !strings.ContainsAny(lit, ".eE") {
		return formatInteger(lit)
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedValue, lit)
	}

	return FormatFloat(f)
}

func formatInteger(lit string) (string, error) {
	digits := strings.TrimPrefix(lit, "-")
	if digits == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidNumber, lit)
	}

	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidNumber, lit)
		}
	}

	if len(digits) > 1 && digits[0] == '0' {
		return "", fmt.Errorf("%w: %q", ErrInvalidNumber, lit)
	}

	if digits == "0" {
		return "0", nil
	}

	return lit, nil
}
