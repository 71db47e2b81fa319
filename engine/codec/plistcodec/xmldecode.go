package plistcodec

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/compozy/plistyaml/engine/codec"
	"github.com/compozy/plistyaml/engine/document"
)

// xmlDecoder walks the XML token stream directly so dictionary order and
// repeated keys are visible.
type xmlDecoder struct {
	dec *xml.Decoder
}

func decodeXML(data []byte) (document.Value, error) {
	d := &xmlDecoder{dec: xml.NewDecoder(bytes.NewReader(data))}
	d.dec.Strict = true
	for {
		tok, err := d.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return document.Value{}, d.malformed(errors.New("no plist element found"))
			}
			return document.Value{}, d.malformed(err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "plist" {
			return d.value(start)
		}
		return d.plistBody()
	}
}

func (d *xmlDecoder) line() int {
	line, _ := d.dec.InputPos()
	return line
}

func (d *xmlDecoder) malformed(err error) error {
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) {
		return codec.NewMalformedError(codec.FormatPlist, syntax.Line, errors.New(syntax.Msg))
	}
	return codec.NewMalformedError(codec.FormatPlist, d.line(), err)
}

// next returns the next start or end element, skipping whitespace, comments
// and processing instructions.
func (d *xmlDecoder) next() (xml.Token, error) {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, d.malformed(io.ErrUnexpectedEOF)
			}
			return nil, d.malformed(err)
		}
		switch t := tok.(type) {
		case xml.StartElement, xml.EndElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, d.malformed(fmt.Errorf("unexpected text %q", strings.TrimSpace(string(t))))
			}
		}
	}
}

func (d *xmlDecoder) plistBody() (document.Value, error) {
	tok, err := d.next()
	if err != nil {
		return document.Value{}, err
	}
	switch t := tok.(type) {
	case xml.EndElement:
		return document.Mapping(), nil
	case xml.StartElement:
		v, err := d.value(t)
		if err != nil {
			return document.Value{}, err
		}
		tok, err := d.next()
		if err != nil {
			return document.Value{}, err
		}
		if end, ok := tok.(xml.EndElement); !ok || end.Name.Local != "plist" {
			return document.Value{}, d.malformed(errors.New("plist element must contain exactly one value"))
		}
		return v, nil
	}
	return document.Value{}, d.malformed(errors.New("unexpected token"))
}

func (d *xmlDecoder) value(start xml.StartElement) (document.Value, error) {
	switch start.Name.Local {
	case "dict":
		return d.dict()
	case "array":
		return d.array()
	case "true", "false":
		if _, err := d.text(start); err != nil {
			return document.Value{}, err
		}
		return document.Bool(start.Name.Local == "true"), nil
	case "string":
		s, err := d.text(start)
		if err != nil {
			return document.Value{}, err
		}
		return document.String(s), nil
	case "integer":
		s, err := d.text(start)
		if err != nil {
			return document.Value{}, err
		}
		return d.integer(strings.TrimSpace(s))
	case "real":
		s, err := d.text(start)
		if err != nil {
			return document.Value{}, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return document.Value{}, d.malformed(fmt.Errorf("invalid real %q", s))
		}
		return document.Float(f), nil
	case "date":
		s, err := d.text(start)
		if err != nil {
			return document.Value{}, err
		}
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
		if err != nil {
			return document.Value{}, d.malformed(fmt.Errorf("invalid date %q", s))
		}
		return document.Time(t.UTC()), nil
	case "data":
		s, err := d.text(start)
		if err != nil {
			return document.Value{}, err
		}
		raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(s), ""))
		if err != nil {
			return document.Value{}, d.malformed(fmt.Errorf("invalid base64 data: %w", err))
		}
		return document.Bytes(raw), nil
	default:
		return document.Value{}, d.malformed(fmt.Errorf("unknown element <%s>", start.Name.Local))
	}
}

func (d *xmlDecoder) integer(s string) (document.Value, error) {
	base := 10
	digits := s
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimLeft(digits, "+-")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 16
		digits = digits[2:]
	}
	if neg {
		digits = "-" + digits
	}
	i, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return document.Value{}, d.malformed(fmt.Errorf("invalid integer %q", s))
	}
	return document.Int(i), nil
}

// text reads character data up to the end of start.
func (d *xmlDecoder) text(start xml.StartElement) (string, error) {
	var sb strings.Builder
	for {
		tok, err := d.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", d.malformed(io.ErrUnexpectedEOF)
			}
			return "", d.malformed(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return sb.String(), nil
		case xml.StartElement:
			return "", d.malformed(fmt.Errorf("unexpected <%s> inside <%s>", t.Name.Local, start.Name.Local))
		}
	}
}

func (d *xmlDecoder) dict() (document.Value, error) {
	var fields []document.Field
	seen := make(map[string]struct{})
	for {
		tok, err := d.next()
		if err != nil {
			return document.Value{}, err
		}
		if _, ok := tok.(xml.EndElement); ok {
			return document.Mapping(fields...), nil
		}
		start := tok.(xml.StartElement)
		if start.Name.Local != "key" {
			return document.Value{}, d.malformed(fmt.Errorf("expected <key>, found <%s>", start.Name.Local))
		}
		line := d.line()
		key, err := d.text(start)
		if err != nil {
			return document.Value{}, err
		}
		if _, dup := seen[key]; dup {
			return document.Value{}, codec.NewDuplicateKeyError(codec.FormatPlist, key, line)
		}
		seen[key] = struct{}{}

		tok, err = d.next()
		if err != nil {
			return document.Value{}, err
		}
		vstart, ok := tok.(xml.StartElement)
		if !ok {
			return document.Value{}, d.malformed(fmt.Errorf("missing value for key %q", key))
		}
		v, err := d.value(vstart)
		if err != nil {
			return document.Value{}, err
		}
		fields = append(fields, document.F(key, v))
	}
}

func (d *xmlDecoder) array() (document.Value, error) {
	var items []document.Value
	for {
		tok, err := d.next()
		if err != nil {
			return document.Value{}, err
		}
		if _, ok := tok.(xml.EndElement); ok {
			return document.Sequence(items...), nil
		}
		v, err := d.value(tok.(xml.StartElement))
		if err != nil {
			return document.Value{}, err
		}
		items = append(items, v)
	}
}
