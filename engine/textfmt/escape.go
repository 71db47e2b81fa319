package textfmt

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

var simpleEscapes = map[byte]string{
	'0':  "\x00",
	'a':  "\a",
	'b':  "\b",
	't':  "\t",
	'\t': "\t",
	'n':  "\n",
	'v':  "\v",
	'f':  "\f",
	'r':  "\r",
	'e':  "\x1b",
	' ':  " ",
	'"':  "\"",
	'/':  "/",
	'\\': "\\",
	'N':  "\u0085",
	'_':  "\u00a0",
	'L':  "\u2028",
	'P':  "\u2029",
}

var hexEscapeWidth = map[byte]int{'x': 2, 'u': 4, 'U': 8}

// decodeDoubleQuoted decodes the body of a single-line YAML double-quoted
// scalar. It reports false for unknown or truncated escapes.
func decodeDoubleQuoted(raw string) (string, bool) {
	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(raw) {
			return "", false
		}
		if s, ok := simpleEscapes[raw[i]]; ok {
			sb.WriteString(s)
			continue
		}
		width, ok := hexEscapeWidth[raw[i]]
		if !ok || i+1+width > len(raw) {
			return "", false
		}
		code, err := strconv.ParseUint(raw[i+1:i+1+width], 16, 32)
		if err != nil || !utf8.ValidRune(rune(code)) {
			return "", false
		}
		// \x above 0x7f is ambiguous between a code point and a raw byte.
		if raw[i] == 'x' && code > 0x7f {
			return "", false
		}
		sb.WriteRune(rune(code))
		i += width
	}
	return sb.String(), true
}
