package yamlcodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/compozy/plistyaml/engine/codec"
	"github.com/compozy/plistyaml/engine/document"
	"gopkg.in/yaml.v3"
)

const (
	nullTag      = "!!null"
	boolTag      = "!!bool"
	strTag       = "!!str"
	intTag       = "!!int"
	floatTag     = "!!float"
	timestampTag = "!!timestamp"
	binaryTag    = "!!binary"
	mergeTag     = "!!merge"
)

// rxAnyOctalYaml11 matches YAML 1.1 style octal literals, including the
// invalid 8 and 9 digits that make yaml.v3 fall back to a float tag.
var rxAnyOctalYaml11 = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`^[-+]?0[0-9_]+$`)
})

// rxDecimalInt matches plain integers that yaml.v3 resolves as floats once
// they overflow uint64.
var rxDecimalInt = regexp.MustCompile(`^[-+]?[0-9]+$`)

var rxErrLine = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

var timestampLayouts = []string{
	"2006-1-2T15:4:5.999999999Z07:00",
	"2006-1-2t15:4:5.999999999Z07:00",
	"2006-1-2 15:4:5.999999999",
	"2006-1-2",
}

type decoder struct {
	// extractingAliases guards against anchors that contain themselves.
	extractingAliases map[*yaml.Node]bool
}

func decode(data []byte) (document.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return document.Mapping(), nil
		}
		return document.Value{}, malformed(err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return document.Value{}, codec.NewMalformedError(
			codec.FormatYAML, extra.Line, errors.New("expected a single YAML document"),
		)
	} else if !errors.Is(err, io.EOF) {
		return document.Value{}, malformed(err)
	}
	d := &decoder{extractingAliases: make(map[*yaml.Node]bool)}
	return d.extract(&root)
}

// malformed converts a yaml.v3 error, whose text is the only carrier of the
// line number, into a MalformedError.
func malformed(err error) error {
	msg := err.Error()
	if m := rxErrLine.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return codec.NewMalformedError(codec.FormatYAML, line, errors.New(m[2]))
	}
	return codec.NewMalformedError(codec.FormatYAML, 0, errors.New(strings.TrimPrefix(msg, "yaml: ")))
}

func (d *decoder) errorf(yn *yaml.Node, format string, args ...any) error {
	return codec.NewMalformedError(codec.FormatYAML, yn.Line, fmt.Errorf(format, args...))
}

func (d *decoder) extract(yn *yaml.Node) (document.Value, error) {
	switch yn.Kind {
	case yaml.DocumentNode:
		if len(yn.Content) == 0 {
			return document.Mapping(), nil
		}
		return d.extract(yn.Content[0])
	case yaml.SequenceNode:
		return d.sequence(yn)
	case yaml.MappingNode:
		return d.mapping(yn)
	case yaml.ScalarNode:
		return d.scalar(yn)
	case yaml.AliasNode:
		return d.alias(yn)
	default:
		return document.Value{}, d.errorf(yn, "unknown yaml node kind: %d", yn.Kind)
	}
}

func (d *decoder) alias(yn *yaml.Node) (document.Value, error) {
	if d.extractingAliases[yn] {
		return document.Value{}, d.errorf(yn, "anchor %q value contains itself", yn.Value)
	}
	d.extractingAliases[yn] = true
	defer delete(d.extractingAliases, yn)
	return d.extract(yn.Alias)
}

func (d *decoder) sequence(yn *yaml.Node) (document.Value, error) {
	items := make([]document.Value, 0, len(yn.Content))
	for _, c := range yn.Content {
		item, err := d.extract(c)
		if err != nil {
			return document.Value{}, err
		}
		items = append(items, item)
	}
	return document.Sequence(items...), nil
}

// fieldList accumulates mapping entries while tracking which keys were
// written explicitly and which arrived through a merge key.
type fieldList struct {
	fields   []document.Field
	index    map[string]int
	explicit map[string]bool
}

func (l *fieldList) set(key string, v document.Value) {
	if pos, ok := l.index[key]; ok {
		l.fields[pos].Value = v
		return
	}
	l.index[key] = len(l.fields)
	l.fields = append(l.fields, document.F(key, v))
}

func (d *decoder) mapping(yn *yaml.Node) (document.Value, error) {
	list := &fieldList{index: make(map[string]int), explicit: make(map[string]bool)}
	for i := 0; i+1 < len(yn.Content); i += 2 {
		yk, yv := yn.Content[i], yn.Content[i+1]
		if isMerge(yk) {
			if err := d.merge(yv, list); err != nil {
				return document.Value{}, err
			}
			continue
		}
		key, err := d.key(yk)
		if err != nil {
			return document.Value{}, err
		}
		if list.explicit[key] {
			return document.Value{}, codec.NewDuplicateKeyError(codec.FormatYAML, key, yk.Line)
		}
		list.explicit[key] = true
		value, err := d.extract(yv)
		if err != nil {
			return document.Value{}, err
		}
		list.set(key, value)
	}
	return document.Mapping(list.fields...), nil
}

// merge applies a "<<" value. Explicit keys always win, and among merged
// mappings the earlier one takes precedence.
func (d *decoder) merge(yn *yaml.Node, list *fieldList) error {
	switch yn.Kind {
	case yaml.AliasNode:
		if d.extractingAliases[yn] {
			return d.errorf(yn, "anchor %q value contains itself", yn.Value)
		}
		d.extractingAliases[yn] = true
		defer delete(d.extractingAliases, yn)
		return d.merge(yn.Alias, list)
	case yaml.MappingNode:
		merged, err := d.mapping(yn)
		if err != nil {
			return err
		}
		for _, f := range merged.Fields() {
			if _, ok := list.index[f.Key]; ok {
				continue
			}
			list.set(f.Key, f.Value)
		}
		return nil
	case yaml.SequenceNode:
		for _, c := range yn.Content {
			if err := d.merge(c, list); err != nil {
				return err
			}
		}
		return nil
	default:
		return d.errorf(yn, "map merge requires map or sequence of maps as the value")
	}
}

func (d *decoder) key(yn *yaml.Node) (string, error) {
	switch yn.Kind {
	case yaml.ScalarNode:
		return yn.Value, nil
	case yaml.AliasNode:
		if yn.Alias.Kind != yaml.ScalarNode {
			return "", d.errorf(yn, "invalid map key: %v", yn.Alias.ShortTag())
		}
		return yn.Alias.Value, nil
	default:
		return "", d.errorf(yn, "invalid map key: %v", yn.ShortTag())
	}
}

func isMerge(yn *yaml.Node) bool {
	return yn.Kind == yaml.ScalarNode && yn.Value == "<<" && (yn.Tag == "" || yn.Tag == "!" || yn.ShortTag() == mergeTag)
}

func (d *decoder) scalar(yn *yaml.Node) (document.Value, error) {
	tag := yn.ShortTag()
	explicit := yn.Style&yaml.TaggedStyle != 0
	if !explicit && tag == floatTag && rxAnyOctalYaml11().MatchString(yn.Value) {
		tag = strTag
	}
	if !explicit && tag == floatTag && rxDecimalInt.MatchString(yn.Value) {
		tag = intTag
	}
	switch tag {
	case nullTag:
		return document.Null(), nil
	case boolTag:
		switch yn.Value {
		case "true", "True", "TRUE":
			return document.Bool(true), nil
		case "false", "False", "FALSE":
			return document.Bool(false), nil
		}
		return document.Value{}, d.errorf(yn, "cannot decode %q as %s", yn.Value, tag)
	case intTag:
		return d.integer(yn)
	case floatTag:
		return d.float(yn)
	case timestampTag:
		if !explicit {
			// Unquoted dates stay text so a round trip keeps their spelling.
			return document.String(yn.Value), nil
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, yn.Value); err == nil {
				return document.Time(t), nil
			}
		}
		return document.Value{}, d.errorf(yn, "cannot decode %q as %s", yn.Value, tag)
	case binaryTag:
		data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(yn.Value), ""))
		if err != nil {
			return document.Value{}, d.errorf(yn, "!!binary value contains invalid base64 data")
		}
		return document.Bytes(data), nil
	default:
		return document.String(yn.Value), nil
	}
}

func (d *decoder) integer(yn *yaml.Node) (document.Value, error) {
	i, err := strconv.ParseInt(yn.Value, 0, 64)
	if err == nil {
		return document.Int(i), nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return document.Value{}, codec.NewUnsupportedValueError(
			codec.FormatYAML, fmt.Sprintf("line %d", yn.Line), fmt.Sprintf("integer %s overflows int64", yn.Value),
		)
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(yn.Value, "_", ""), 64); err == nil {
		return document.Float(f), nil
	}
	return document.Value{}, d.errorf(yn, "cannot decode %q as %s", yn.Value, intTag)
}

func (d *decoder) float(yn *yaml.Node) (document.Value, error) {
	switch yn.Value {
	case ".inf", ".Inf", ".INF", "+.inf", "+.Inf", "+.INF":
		return document.Float(math.Inf(1)), nil
	case "-.inf", "-.Inf", "-.INF":
		return document.Float(math.Inf(-1)), nil
	case ".nan", ".NaN", ".NAN":
		return document.Float(math.NaN()), nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(yn.Value, "_", ""), 64)
	if err != nil {
		return document.Value{}, d.errorf(yn, "cannot decode %q as %s: %v", yn.Value, floatTag, err)
	}
	return document.Float(f), nil
}
