// Package codec defines the format adapter contract shared by the YAML,
// JSON and property list readers/writers, plus their error taxonomy.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/compozy/plistyaml/engine/document"
)

// Format names a serialized document format.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatPlist Format = "plist"
)

// Formats lists every supported format.
var Formats = []Format{FormatYAML, FormatJSON, FormatPlist}

func (f Format) String() string { return string(f) }

// ParseFormat resolves a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "plist", "xml", "recipe":
		return FormatPlist, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected yaml, json or plist)", s)
	}
}

// Detect guesses a format from a file name suffix.
func Detect(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".plist", ".recipe":
		return FormatPlist, true
	default:
		return "", false
	}
}

// Codec reads and writes whole documents in one format.
type Codec interface {
	Format() Format
	Decode(data []byte) (document.Value, error)
	Encode(v document.Value) ([]byte, error)
}

// Set holds one codec per format.
type Set struct {
	codecs map[Format]Codec
}

// NewSet builds a codec set. Later codecs replace earlier ones of the same
// format.
func NewSet(codecs ...Codec) *Set {
	s := &Set{codecs: make(map[Format]Codec, len(codecs))}
	for _, c := range codecs {
		s.codecs[c.Format()] = c
	}
	return s
}

// Get returns the codec for f.
func (s *Set) Get(f Format) (Codec, error) {
	c, ok := s.codecs[f]
	if !ok {
		return nil, fmt.Errorf("no codec registered for %s", f)
	}
	return c, nil
}
