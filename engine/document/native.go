package document

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
)

// FromNative converts a nested Go structure into a Value. Ordered mappings
// are expressed as yaml.MapSlice; plain Go maps carry no order, so their keys
// are emitted in ascending order.
func FromNative(in any) (Value, error) {
	return fromNative(in, Root())
}

func fromNative(in any, path Path) (Value, error) {
	switch v := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return fromUnsigned(uint64(v), path)
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return fromUnsigned(v, path)
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	case []byte:
		return Bytes(v), nil
	case time.Time:
		return Time(v), nil
	case []any:
		items := make([]Value, 0, len(v))
		for i, item := range v {
			iv, err := fromNative(item, path.Index(i))
			if err != nil {
				return Value{}, err
			}
			items = append(items, iv)
		}
		return Value{kind: KindSequence, items: items}, nil
	case yaml.MapSlice:
		fields := make([]Field, 0, len(v))
		for _, item := range v {
			key, ok := item.Key.(string)
			if !ok {
				key = fmt.Sprint(item.Key)
			}
			fv, err := fromNative(item.Value, path.Key(key))
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: key, Value: fv})
		}
		m, err := NewMapping(fields)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", path, err)
		}
		return m, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			fv, err := fromNative(v[k], path.Key(k))
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: k, Value: fv})
		}
		return Value{kind: KindMapping, fields: fields}, nil
	default:
		return Value{}, fmt.Errorf("%s: unsupported native type %T", path, in)
	}
}

func fromUnsigned(u uint64, path Path) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("%s: integer %d overflows int64", path, u)
	}
	return Int(int64(u)), nil
}

// ToNative converts a Value back into nested Go values: yaml.MapSlice for
// mappings, []any for sequences, and Go scalars otherwise.
func ToNative(v Value) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBytes:
		return v.AsBytes()
	case KindTime:
		return v.t
	case KindSequence:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = ToNative(item)
		}
		return out
	case KindMapping:
		out := make(yaml.MapSlice, len(v.fields))
		for i, f := range v.fields {
			out[i] = yaml.MapItem{Key: f.Key, Value: ToNative(f.Value)}
		}
		return out
	}
	return nil
}
