// Package plistcodec reads and writes Apple property lists. XML plists keep
// dictionary order in both directions; binary and OpenStep plists go through
// howett.net/plist.
package plistcodec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/compozy/plistyaml/engine/codec"
	"github.com/compozy/plistyaml/engine/document"
	"howett.net/plist"
)

// OutputFormat selects the property list encoding written by Encode.
type OutputFormat string

const (
	OutputXML    OutputFormat = "xml"
	OutputBinary OutputFormat = "binary"
)

var binaryMagic = []byte("bplist")

// Options configures the property list writer.
type Options struct {
	Format OutputFormat
	// SortKeys writes dictionary keys in ascending order instead of document
	// order. Binary output is always sorted.
	SortKeys bool
}

func DefaultOptions() Options {
	return Options{Format: OutputXML, SortKeys: true}
}

// Codec is a property list format adapter.
type Codec struct {
	opts Options
}

var _ codec.Codec = (*Codec)(nil)

func New(opts Options) *Codec {
	if opts.Format == "" {
		opts.Format = OutputXML
	}
	return &Codec{opts: opts}
}

func (c *Codec) Format() codec.Format { return codec.FormatPlist }

func (c *Codec) Options() Options { return c.opts }

// Decode reads an XML, binary, OpenStep or GNUstep property list.
func (c *Codec) Decode(data []byte) (document.Value, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return decodeXML(data)
	}
	return decodeNative(data)
}

func decodeNative(data []byte) (document.Value, error) {
	var native any
	if _, err := plist.Unmarshal(data, &native); err != nil {
		return document.Value{}, codec.NewMalformedError(codec.FormatPlist, 0, err)
	}
	v, err := document.FromNative(native)
	if err != nil {
		return document.Value{}, codec.NewMalformedError(codec.FormatPlist, 0, err)
	}
	return v, nil
}

// Encode writes v. The document must not contain nulls.
func (c *Codec) Encode(v document.Value) ([]byte, error) {
	if err := checkEncodable(v, document.Root()); err != nil {
		return nil, err
	}
	switch c.opts.Format {
	case OutputBinary:
		out, err := plist.Marshal(toPlistNative(v), plist.BinaryFormat)
		if err != nil {
			return nil, codec.NewUnsupportedValueError(codec.FormatPlist, document.Root().String(), err.Error())
		}
		return out, nil
	case OutputXML:
		return encodeXML(v, c.opts.SortKeys)
	default:
		return nil, fmt.Errorf("unknown plist output format %q", c.opts.Format)
	}
}

// IsBinary reports whether data is a binary property list.
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, binaryMagic)
}

func checkEncodable(v document.Value, path document.Path) error {
	switch v.Kind() {
	case document.KindNull:
		return codec.NewUnsupportedValueError(codec.FormatPlist, path.String(), "property lists cannot represent null")
	case document.KindString:
		if strings.ContainsFunc(v.AsString(), isForbiddenControl) {
			return codec.NewUnsupportedValueError(codec.FormatPlist, path.String(), "strings cannot contain control characters")
		}
	case document.KindSequence:
		for i, item := range v.Items() {
			if err := checkEncodable(item, path.Index(i)); err != nil {
				return err
			}
		}
	case document.KindMapping:
		for _, f := range v.Fields() {
			if strings.ContainsFunc(f.Key, isForbiddenControl) {
				return codec.NewUnsupportedValueError(codec.FormatPlist, path.Key(f.Key).String(), "keys cannot contain control characters")
			}
			if err := checkEncodable(f.Value, path.Key(f.Key)); err != nil {
				return err
			}
		}
	}
	return nil
}

func isForbiddenControl(r rune) bool {
	return r < 0x20 && r != '\t' && r != '\n' && r != '\r'
}

// toPlistNative converts v into the map/slice shapes howett.net/plist knows.
func toPlistNative(v document.Value) any {
	switch v.Kind() {
	case document.KindSequence:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toPlistNative(item)
		}
		return out
	case document.KindMapping:
		fields := v.Fields()
		out := make(map[string]any, len(fields))
		for _, f := range fields {
			out[f.Key] = toPlistNative(f.Value)
		}
		return out
	default:
		return document.ToNative(v)
	}
}
