// Package textfmt applies a readability pass to serialized recipe YAML:
// blank lines between sections and process steps, and block literals in
// place of escaped multi-line strings.
package textfmt

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	sectionRe     = regexp.MustCompile(`^(Input|Process|ParentRecipeTrustInfo):(\s|$)`)
	processRe     = regexp.MustCompile(`^\s*Process:\s*$`)
	stepRe        = regexp.MustCompile(`^\s*- Processor:(\s|$)`)
	quotedKeyRe   = regexp.MustCompile(`^( *)((?:- )*)("(?:[^"\\]|\\.)*"|[^\s"'#&*!|>%@` + "`" + `][^"]*?): "((?:[^"\\]|\\.)*)"$`)
	quotedItemRe  = regexp.MustCompile(`^( *)((?:- )+)"((?:[^"\\]|\\.)*)"$`)
	blockHeaderRe = regexp.MustCompile(`(?:^ *(?:- +)*|: +)([|>][0-9+-]{0,2})\s*$`)
)

const tabWidth = 4

// blockState tracks a block scalar whose content lines must pass untouched.
type blockState struct {
	active bool
	indent int
	keep   bool
}

// Format returns text with structural blank lines inserted and escaped
// multi-line double-quoted scalars rewritten as block literals. Format is
// idempotent. An empty input returns an empty output; any other output ends
// with a newline.
func Format(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	out := make([]string, 0, len(lines)+16)
	var block blockState

	for _, line := range lines {
		afterKeep := false
		if block.active {
			if strings.TrimSpace(line) == "" || indentOf(line) > block.indent {
				out = append(out, line)
				continue
			}
			afterKeep = block.keep
			block = blockState{}
		}

		if sectionRe.MatchString(line) && needsGap(out, afterKeep) {
			out = append(out, "")
		}
		if stepRe.MatchString(line) {
			if processRe.MatchString(lastNonBlank(out)) {
				out = trimTrailingBlank(out)
			} else if needsGap(out, afterKeep) {
				out = append(out, "")
			}
		}

		if rewritten, ok := rewriteQuoted(line); ok {
			out = append(out, rewritten...)
			block = openBlock(rewritten[0])
			continue
		}
		out = append(out, line)
		block = openBlock(line)
	}
	return strings.Join(out, "\n") + "\n"
}

// needsGap reports whether a blank line must precede the next line. A blank
// line directly after a keep-chomped block would become part of its value.
func needsGap(out []string, afterKeep bool) bool {
	return !afterKeep && len(out) > 0 && out[len(out)-1] != ""
}

func lastNonBlank(out []string) string {
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != "" {
			return out[i]
		}
	}
	return ""
}

func trimTrailingBlank(out []string) []string {
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

// openBlock reports the block scalar started by line, if any. Its content is
// every following line indented past the owning key or dash.
func openBlock(line string) blockState {
	m := blockHeaderRe.FindStringSubmatch(line)
	if m == nil || strings.HasPrefix(strings.TrimLeft(line, " "), "#") {
		return blockState{}
	}
	keep := strings.Contains(m[1], "+")
	rest := strings.TrimLeft(line, " ")
	for strings.HasPrefix(rest, "- ") {
		rest = strings.TrimLeft(rest[1:], " ")
	}
	col := len(line) - len(rest)
	if !strings.HasPrefix(rest, "|") && !strings.HasPrefix(rest, ">") {
		// key: | at column col; content must be indented past the key.
		return blockState{active: true, indent: col, keep: keep}
	}
	// bare "- |" item; content is indented past the dash.
	indent := strings.LastIndex(line[:col], "-")
	return blockState{active: true, indent: indent, keep: keep}
}

// rewriteQuoted turns a `key: "a\nb"` or `- "a\nb"` line into a block
// literal. Lines without an escaped newline, or whose decoded content cannot
// be carried by a literal block, are left alone.
func rewriteQuoted(line string) ([]string, bool) {
	prefix, raw, contentIndent, ok := matchQuoted(line)
	if !ok || !hasEscapedNewline(raw) {
		return nil, false
	}
	decoded, ok := decodeDoubleQuoted(raw)
	if !ok {
		return nil, false
	}
	decoded = strings.ReplaceAll(decoded, "\t", strings.Repeat(" ", tabWidth))
	if !literalSafe(decoded) {
		return nil, false
	}

	body := strings.TrimRight(decoded, "\n")
	trailing := len(decoded) - len(body)
	if strings.TrimLeft(body, "\n") == "" {
		return nil, false
	}

	header := "|"
	switch {
	case trailing == 0:
		header = "|-"
	case trailing > 1:
		header = "|+"
	}
	contentLines := strings.Split(body, "\n")
	for _, l := range contentLines {
		if l != "" {
			if strings.HasPrefix(l, " ") {
				header = "|2" + strings.TrimPrefix(header, "|")
			}
			break
		}
	}

	pad := strings.Repeat(" ", contentIndent)
	result := make([]string, 0, len(contentLines)+trailing)
	result = append(result, prefix+header)
	for _, l := range contentLines {
		if l == "" {
			result = append(result, "")
			continue
		}
		result = append(result, pad+l)
	}
	for i := 1; i < trailing; i++ {
		result = append(result, "")
	}
	return result, true
}

// matchQuoted splits a quoted scalar line into the text preceding the
// opening quote, the raw escaped content, and the indentation block content
// would need.
func matchQuoted(line string) (prefix, raw string, contentIndent int, ok bool) {
	if m := quotedKeyRe.FindStringSubmatch(line); m != nil {
		keyColumn := len(m[1]) + len(m[2])
		return m[1] + m[2] + m[3] + ": ", m[4], keyColumn + 2, true
	}
	if m := quotedItemRe.FindStringSubmatch(line); m != nil {
		dashColumn := len(m[1]) + len(m[2]) - 2
		return m[1] + m[2], m[3], dashColumn + 2, true
	}
	return "", "", 0, false
}

func hasEscapedNewline(raw string) bool {
	for i := 0; i < len(raw)-1; i++ {
		if raw[i] == '\\' {
			if raw[i+1] == 'n' {
				return true
			}
			i++
		}
	}
	return false
}

func literalSafe(s string) bool {
	for _, r := range s {
		if r == '\n' {
			continue
		}
		if !unicode.IsPrint(r) {
			return false
		}
	}
	for _, l := range strings.Split(s, "\n") {
		if l != "" && strings.TrimLeft(l, " ") == "" {
			return false
		}
	}
	return true
}
