// Package normalize rebuilds document trees for a target format: it is the
// single place where values are coerced between formats and where nulls are
// stripped for formats that cannot represent them.
package normalize

import (
	"encoding/base64"
	"time"

	"github.com/compozy/plistyaml/engine/document"
)

// Target is the format a document is being prepared for.
type Target string

const (
	TargetYAML  Target = "yaml"
	TargetJSON  Target = "json"
	TargetPlist Target = "plist"
)

// Normalize recursively rebuilds mappings and sequences and coerces scalars
// the target cannot carry. For JSON, binary data becomes base64 text and
// timestamps become RFC 3339 text. YAML and property lists carry both
// natively, so every scalar passes through for them.
func Normalize(v document.Value, target Target) document.Value {
	switch v.Kind() {
	case document.KindMapping:
		fields := v.Fields()
		for i := range fields {
			fields[i].Value = Normalize(fields[i].Value, target)
		}
		return document.Mapping(fields...)
	case document.KindSequence:
		items := v.Items()
		for i := range items {
			items[i] = Normalize(items[i], target)
		}
		return document.Sequence(items...)
	case document.KindBytes:
		if target != TargetJSON {
			return v
		}
		return document.String(base64.StdEncoding.EncodeToString(v.AsBytes()))
	case document.KindTime:
		if target != TargetJSON {
			return v
		}
		return document.String(v.AsTime().UTC().Format(time.RFC3339))
	default:
		return v
	}
}

// PruneNulls drops every null mapping entry and sequence element at any
// depth. Remaining entries keep their order; false, 0 and "" are kept.
func PruneNulls(v document.Value) document.Value {
	switch v.Kind() {
	case document.KindMapping:
		fields := v.Fields()
		kept := fields[:0]
		for _, f := range fields {
			if f.Value.IsNull() {
				continue
			}
			f.Value = PruneNulls(f.Value)
			kept = append(kept, f)
		}
		return document.Mapping(kept...)
	case document.KindSequence:
		items := v.Items()
		kept := items[:0]
		for _, item := range items {
			if item.IsNull() {
				continue
			}
			kept = append(kept, PruneNulls(item))
		}
		return document.Sequence(kept...)
	default:
		return v
	}
}

// ContainsNull reports whether a null appears anywhere in v, including v.
func ContainsNull(v document.Value) bool {
	switch v.Kind() {
	case document.KindNull:
		return true
	case document.KindMapping:
		for _, f := range v.Fields() {
			if ContainsNull(f.Value) {
				return true
			}
		}
	case document.KindSequence:
		for _, item := range v.Items() {
			if ContainsNull(item) {
				return true
			}
		}
	}
	return false
}
