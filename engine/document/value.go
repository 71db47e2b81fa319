package document

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrDuplicateField is returned when a mapping is built with a repeated key.
var ErrDuplicateField = errors.New("duplicate mapping key")

// Kind identifies which member of the value union a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindTime
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Field is one key/value entry of an ordered mapping.
type Field struct {
	Key   string
	Value Value
}

// Value is an immutable node of an ordered document tree. The zero Value is
// Null. Mapping and Sequence values own their backing slices; accessors
// return copies so callers cannot mutate a shared tree.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	bytes  []byte
	t      time.Time
	items  []Value
	fields []Field
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bytes returns a binary data value. The slice is copied.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, bytes: append([]byte{}, b...)}
}

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Sequence returns an ordered list value.
func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, items: append([]Value{}, items...)}
}

// Mapping returns an ordered mapping from fields already known to carry
// unique keys. Use NewMapping when the keys come from untrusted input.
func Mapping(fields ...Field) Value {
	return Value{kind: KindMapping, fields: append([]Field{}, fields...)}
}

// NewMapping builds an ordered mapping and rejects repeated keys.
func NewMapping(fields []Field) (Value, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Key]; ok {
			return Value{}, fmt.Errorf("%w: %q", ErrDuplicateField, f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	return Mapping(fields...), nil
}

// F is shorthand for building a Field.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

func (v Value) Kind() Kind       { return v.kind }
func (v Value) IsNull() bool     { return v.kind == KindNull }
func (v Value) AsBool() bool     { return v.b }
func (v Value) AsInt() int64     { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsString() string { return v.s }
func (v Value) AsTime() time.Time {
	return v.t
}

// AsBytes returns a copy of the binary payload.
func (v Value) AsBytes() []byte {
	if v.kind != KindBytes {
		return nil
	}
	return append([]byte{}, v.bytes...)
}

// Items returns a copy of the sequence elements, or nil for non-sequences.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return append([]Value{}, v.items...)
}

// Fields returns a copy of the mapping entries, or nil for non-mappings.
func (v Value) Fields() []Field {
	if v.kind != KindMapping {
		return nil
	}
	return append([]Field{}, v.fields...)
}

// Len reports the number of elements of a sequence or entries of a mapping.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.fields)
	default:
		return 0
	}
}

// Keys returns mapping keys in order.
func (v Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	keys := make([]string, len(v.fields))
	for i, f := range v.fields {
		keys[i] = f.Key
	}
	return keys
}

// Get looks up a mapping key.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Equal reports whether a and b have the same structure, scalar values and
// mapping key order.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f || (math.IsNaN(a.f) && math.IsNaN(b.f))
	case KindString:
		return a.s == b.s
	case KindBytes:
		return string(a.bytes) == string(b.bytes)
	case KindTime:
		return a.t.Equal(b.t)
	case KindSequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Key != b.fields[i].Key || !Equal(a.fields[i].Value, b.fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// Equal is the method form of the package-level Equal.
func (v Value) Equal(other Value) bool { return Equal(v, other) }

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bytes))
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindSequence:
		return fmt.Sprintf("sequence(%d)", len(v.items))
	case KindMapping:
		return fmt.Sprintf("mapping%v", v.Keys())
	}
	return "unknown"
}
