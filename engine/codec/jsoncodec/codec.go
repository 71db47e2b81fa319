// Package jsoncodec reads JSON into ordered documents with tidwall/gjson and
// writes indented JSON with tidwall/pretty.
package jsoncodec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/compozy/plistyaml/engine/codec"
	"github.com/compozy/plistyaml/engine/document"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Options configures the JSON writer.
type Options struct {
	// Indent is the number of spaces per nesting level.
	Indent int
	// Width is the column budget for arrays kept on a single line.
	Width int
}

func DefaultOptions() Options {
	return Options{Indent: 2, Width: 80}
}

// Codec is a JSON format adapter.
type Codec struct {
	opts   Options
	pretty *pretty.Options
}

var _ codec.Codec = (*Codec)(nil)

func New(opts Options) *Codec {
	if opts.Indent <= 0 {
		opts.Indent = DefaultOptions().Indent
	}
	return &Codec{
		opts: opts,
		pretty: &pretty.Options{
			Width:    opts.Width,
			Indent:   strings.Repeat(" ", opts.Indent),
			SortKeys: false,
		},
	}
}

func (c *Codec) Format() codec.Format { return codec.FormatJSON }

// Decode parses one JSON value, keeping object member order.
func (c *Codec) Decode(data []byte) (document.Value, error) {
	if !gjson.ValidBytes(data) {
		return document.Value{}, codec.NewMalformedError(codec.FormatJSON, 0, errors.New("invalid JSON"))
	}
	return extract(gjson.ParseBytes(data), document.Root())
}

func extract(r gjson.Result, path document.Path) (document.Value, error) {
	switch r.Type {
	case gjson.Null:
		return document.Null(), nil
	case gjson.False:
		return document.Bool(false), nil
	case gjson.True:
		return document.Bool(true), nil
	case gjson.String:
		return document.String(r.Str), nil
	case gjson.Number:
		return number(r.Raw, path)
	case gjson.JSON:
		if r.IsArray() {
			return array(r, path)
		}
		return object(r, path)
	default:
		return document.Value{}, codec.NewMalformedError(codec.FormatJSON, 0, fmt.Errorf("unexpected token at %s", path))
	}
}

func number(raw string, path document.Path) (document.Value, error) {
	if !strings.ContainsAny(raw, ".eE") {
		i, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			return document.Int(i), nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return document.Value{}, codec.NewUnsupportedValueError(
				codec.FormatJSON, path.String(), fmt.Sprintf("integer %s overflows int64", raw),
			)
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return document.Value{}, codec.NewMalformedError(codec.FormatJSON, 0, fmt.Errorf("bad number %q at %s", raw, path))
	}
	return document.Float(f), nil
}

func array(r gjson.Result, path document.Path) (document.Value, error) {
	var items []document.Value
	var err error
	i := 0
	r.ForEach(func(_, value gjson.Result) bool {
		var item document.Value
		item, err = extract(value, path.Index(i))
		if err != nil {
			return false
		}
		items = append(items, item)
		i++
		return true
	})
	if err != nil {
		return document.Value{}, err
	}
	return document.Sequence(items...), nil
}

func object(r gjson.Result, path document.Path) (document.Value, error) {
	var fields []document.Field
	seen := make(map[string]struct{})
	var err error
	r.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if _, dup := seen[k]; dup {
			err = codec.NewDuplicateKeyError(codec.FormatJSON, k, 0)
			return false
		}
		seen[k] = struct{}{}
		var v document.Value
		v, err = extract(value, path.Key(k))
		if err != nil {
			return false
		}
		fields = append(fields, document.F(k, v))
		return true
	})
	if err != nil {
		return document.Value{}, err
	}
	return document.Mapping(fields...), nil
}

// Encode writes v as indented JSON in document order, ending with a newline.
func (c *Codec) Encode(v document.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v, document.Root()); err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(buf.Bytes(), c.pretty), nil
}

func writeValue(buf *bytes.Buffer, v document.Value, path document.Path) error {
	switch v.Kind() {
	case document.KindNull:
		buf.WriteString("null")
	case document.KindBool:
		buf.WriteString(strconv.FormatBool(v.AsBool()))
	case document.KindInt:
		buf.WriteString(strconv.FormatInt(v.AsInt(), 10))
	case document.KindFloat:
		s, err := formatFloat(v.AsFloat())
		if err != nil {
			return codec.NewUnsupportedValueError(codec.FormatJSON, path.String(), err.Error())
		}
		buf.WriteString(s)
	case document.KindString:
		return writeString(buf, v.AsString())
	case document.KindBytes:
		return writeString(buf, base64.StdEncoding.EncodeToString(v.AsBytes()))
	case document.KindTime:
		return writeString(buf, v.AsTime().UTC().Format(time.RFC3339))
	case document.KindSequence:
		buf.WriteByte('[')
		for i, item := range v.Items() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item, path.Index(i)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case document.KindMapping:
		buf.WriteByte('{')
		for i, f := range v.Fields() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, f.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeValue(buf, f.Value, path.Key(f.Key)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// formatFloat keeps integral floats distinguishable from integers.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%v has no JSON representation", f)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, 64), nil
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}
