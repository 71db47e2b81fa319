package plistcodec

import (
	"bytes"
	"encoding/base64"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/compozy/plistyaml/engine/document"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
`

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

type xmlWriter struct {
	buf      bytes.Buffer
	depth    int
	sortKeys bool
}

func encodeXML(v document.Value, sortKeys bool) ([]byte, error) {
	w := &xmlWriter{sortKeys: sortKeys}
	w.buf.WriteString(xmlHeader)
	w.value(v)
	w.buf.WriteString("</plist>\n")
	return w.buf.Bytes(), nil
}

func (w *xmlWriter) line(s string) {
	w.buf.WriteString(strings.Repeat("\t", w.depth))
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func (w *xmlWriter) simple(tag, text string) {
	w.line("<" + tag + ">" + xmlEscaper.Replace(text) + "</" + tag + ">")
}

func (w *xmlWriter) value(v document.Value) {
	switch v.Kind() {
	case document.KindBool:
		if v.AsBool() {
			w.line("<true/>")
		} else {
			w.line("<false/>")
		}
	case document.KindInt:
		w.simple("integer", strconv.FormatInt(v.AsInt(), 10))
	case document.KindFloat:
		w.simple("real", formatReal(v.AsFloat()))
	case document.KindString:
		w.simple("string", v.AsString())
	case document.KindTime:
		w.simple("date", v.AsTime().UTC().Format(time.RFC3339))
	case document.KindBytes:
		w.data(v.AsBytes())
	case document.KindSequence:
		items := v.Items()
		if len(items) == 0 {
			w.line("<array/>")
			return
		}
		w.line("<array>")
		w.depth++
		for _, item := range items {
			w.value(item)
		}
		w.depth--
		w.line("</array>")
	case document.KindMapping:
		fields := v.Fields()
		if len(fields) == 0 {
			w.line("<dict/>")
			return
		}
		if w.sortKeys {
			slices.SortStableFunc(fields, func(a, b document.Field) int {
				return strings.Compare(a.Key, b.Key)
			})
		}
		w.line("<dict>")
		w.depth++
		for _, f := range fields {
			w.simple("key", f.Key)
			w.value(f.Value)
		}
		w.depth--
		w.line("</dict>")
	}
}

// data writes base64 lines at the element's own indentation, narrowing the
// line as nesting grows.
func (w *xmlWriter) data(raw []byte) {
	w.line("<data>")
	width := max(16, 76-8*w.depth)
	chunk := width / 4 * 3
	for start := 0; start < len(raw); start += chunk {
		end := min(start+chunk, len(raw))
		w.line(base64.StdEncoding.EncodeToString(raw[start:end]))
	}
	w.line("</data>")
}

// formatReal spells floats the way Python's repr does.
func formatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
