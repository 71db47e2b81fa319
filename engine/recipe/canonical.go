// Package recipe puts automation recipe documents into canonical key order.
package recipe

import (
	"slices"

	"github.com/compozy/plistyaml/engine/document"
)

// Recognized recipe keys.
const (
	KeyComment               = "Comment"
	KeyDescription           = "Description"
	KeyIdentifier            = "Identifier"
	KeyMinimumVersion        = "MinimumVersion"
	KeyInput                 = "Input"
	KeyProcess               = "Process"
	KeyParentRecipeTrustInfo = "ParentRecipeTrustInfo"
	KeyName                  = "NAME"
	KeyProcessor             = "Processor"
	KeyArguments             = "Arguments"
)

var topLevelPriority = []string{
	KeyComment,
	KeyDescription,
	KeyIdentifier,
	KeyMinimumVersion,
	KeyInput,
	KeyProcess,
}

// RankFunc assigns a sort band to a key. Keys in the same band keep their
// original relative order.
type RankFunc func(key string) int

// TopLevelRank orders the priority keys first, then unlisted keys, then
// ParentRecipeTrustInfo.
func TopLevelRank(key string) int {
	if i := slices.Index(topLevelPriority, key); i >= 0 {
		return i
	}
	if key == KeyParentRecipeTrustInfo {
		return len(topLevelPriority) + 1
	}
	return len(topLevelPriority)
}

// InputRank moves NAME ahead of the other input variables.
func InputRank(key string) int {
	if key == KeyName {
		return 0
	}
	return 1
}

// StepRank orders a process step as Processor, others, Comment, Arguments.
func StepRank(key string) int {
	switch key {
	case KeyProcessor:
		return 0
	case KeyComment:
		return 2
	case KeyArguments:
		return 3
	default:
		return 1
	}
}

// Reorder returns a new mapping with fields stably sorted by rank.
// Non-mapping values are returned unchanged.
func Reorder(v document.Value, rank RankFunc) document.Value {
	if v.Kind() != document.KindMapping {
		return v
	}
	fields := v.Fields()
	slices.SortStableFunc(fields, func(a, b document.Field) int {
		return rank(a.Key) - rank(b.Key)
	})
	return document.Mapping(fields...)
}

// Canonicalize reorders a recipe: each process step, then the input block,
// then the top level. The source value is not modified.
func Canonicalize(doc document.Value) document.Value {
	if doc.Kind() != document.KindMapping {
		return doc
	}
	fields := doc.Fields()
	for i := range fields {
		switch fields[i].Key {
		case KeyProcess:
			fields[i].Value = canonicalSteps(fields[i].Value)
		case KeyInput:
			fields[i].Value = Reorder(fields[i].Value, InputRank)
		}
	}
	return Reorder(document.Mapping(fields...), TopLevelRank)
}

func canonicalSteps(process document.Value) document.Value {
	if process.Kind() != document.KindSequence {
		return process
	}
	steps := process.Items()
	for i := range steps {
		steps[i] = Reorder(steps[i], StepRank)
	}
	return document.Sequence(steps...)
}
