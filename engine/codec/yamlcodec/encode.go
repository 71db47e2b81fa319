// Package yamlcodec reads YAML into ordered documents with gopkg.in/yaml.v3
// node trees and writes them back with goccy/go-yaml.
package yamlcodec

import (
	"encoding/base64"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/compozy/plistyaml/engine/codec"
	"github.com/compozy/plistyaml/engine/document"
	"github.com/goccy/go-yaml"
)

// Options configures the YAML writer.
type Options struct {
	// Indent is the number of spaces per nesting level.
	Indent int
}

// DefaultOptions returns the block-style writer settings recipes use.
func DefaultOptions() Options {
	return Options{Indent: 2}
}

// Codec is a YAML format adapter. It is safe for concurrent use.
type Codec struct {
	opts       Options
	encodeOpts []yaml.EncodeOption
}

var _ codec.Codec = (*Codec)(nil)

// New builds a codec from explicit writer options.
func New(opts Options) *Codec {
	if opts.Indent <= 0 {
		opts.Indent = DefaultOptions().Indent
	}
	return &Codec{
		opts: opts,
		encodeOpts: []yaml.EncodeOption{
			yaml.Indent(opts.Indent),
			yaml.IndentSequence(false),
		},
	}
}

// defaultCodec is built once per process; every caller shares it.
var defaultCodec = sync.OnceValue(func() *Codec {
	return New(DefaultOptions())
})

// Default returns the shared codec configured with DefaultOptions.
func Default() *Codec {
	return defaultCodec()
}

// Options returns the writer settings.
func (c *Codec) Options() Options { return c.opts }

func (c *Codec) Format() codec.Format { return codec.FormatYAML }

// Decode parses exactly one YAML document. An empty input decodes to an
// empty mapping.
func (c *Codec) Decode(data []byte) (document.Value, error) {
	return decode(data)
}

// Encode writes v as block-style YAML with mappings in document order and
// sequences flush with their parent key. Binary data and timestamps carry
// explicit !!binary and !!timestamp tags. Strings a literal block cannot
// carry are double-quoted. Output that would not decode back to v fails with
// UnsupportedValueError.
func (c *Codec) Encode(v document.Value) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(toNative(v), c.encodeOpts...)
	if err != nil {
		return nil, codec.NewUnsupportedValueError(codec.FormatYAML, document.Root().String(), err.Error())
	}
	back, err := decode(out)
	if err != nil {
		return nil, codec.NewUnsupportedValueError(codec.FormatYAML, document.Root().String(), err.Error())
	}
	if path, ok := firstDifference(v, back, document.Root()); ok {
		return nil, codec.NewUnsupportedValueError(codec.FormatYAML, path.String(), "value does not survive a YAML round trip")
	}
	return out, nil
}

// rawScalar is spliced into the output as already-serialized YAML.
type rawScalar string

func (s rawScalar) MarshalYAML() ([]byte, error) { return []byte(s), nil }

func toNative(v document.Value) any {
	switch v.Kind() {
	case document.KindBytes:
		return rawScalar(binaryTag + " " + base64.StdEncoding.EncodeToString(v.AsBytes()))
	case document.KindTime:
		return rawScalar(timestampTag + " " + v.AsTime().UTC().Format(time.RFC3339Nano))
	case document.KindString:
		if s := v.AsString(); needsDoubleQuotes(s) {
			return rawScalar(strconv.Quote(s))
		}
		return v.AsString()
	case document.KindSequence:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toNative(item)
		}
		return out
	case document.KindMapping:
		fields := v.Fields()
		out := make(yaml.MapSlice, len(fields))
		for i, f := range fields {
			out[i] = yaml.MapItem{Key: f.Key, Value: toNative(f.Value)}
		}
		return out
	default:
		return document.ToNative(v)
	}
}

// needsDoubleQuotes reports whether s holds text that neither a plain scalar
// nor the writer's literal blocks reproduce: carriage returns, tabs and other
// non-printable runes, whitespace-only lines, a newline-only value, or a
// multi-line value whose first content line is indented.
func needsDoubleQuotes(s string) bool {
	for _, r := range s {
		if r != '\n' && !unicode.IsPrint(r) {
			return true
		}
	}
	if !strings.Contains(s, "\n") {
		return false
	}
	if strings.TrimLeft(s, "\n") == "" {
		return true
	}
	lines := strings.Split(s, "\n")
	for _, l := range lines {
		if l != "" && strings.TrimLeft(l, " ") == "" {
			return true
		}
	}
	for _, l := range lines {
		if l != "" {
			return strings.HasPrefix(l, " ")
		}
	}
	return false
}

// firstDifference returns the location of the first value in b that does
// not match a.
func firstDifference(a, b document.Value, path document.Path) (document.Path, bool) {
	if a.Kind() != b.Kind() {
		return path, true
	}
	switch a.Kind() {
	case document.KindSequence:
		ai, bi := a.Items(), b.Items()
		if len(ai) != len(bi) {
			return path, true
		}
		for i := range ai {
			if p, ok := firstDifference(ai[i], bi[i], path.Index(i)); ok {
				return p, true
			}
		}
		return path, false
	case document.KindMapping:
		af, bf := a.Fields(), b.Fields()
		if len(af) != len(bf) {
			return path, true
		}
		for i := range af {
			if af[i].Key != bf[i].Key {
				return path.Key(af[i].Key), true
			}
			if p, ok := firstDifference(af[i].Value, bf[i].Value, path.Key(af[i].Key)); ok {
				return p, true
			}
		}
		return path, false
	default:
		return path, !document.Equal(a, b)
	}
}
