package recipe

import (
	"testing"

	"github.com/compozy/plistyaml/engine/document"
	"github.com/stretchr/testify/assert"
)

func keyed(keys ...string) document.Value {
	fields := make([]document.Field, len(keys))
	for i, k := range keys {
		fields[i] = document.F(k, document.String(k+"-value"))
	}
	return document.Mapping(fields...)
}

func TestCanonicalize(t *testing.T) {
	t.Run("Should order top-level priority keys", func(t *testing.T) {
		doc := keyed("Process", "Comment", "Input", "Description", "Identifier", "MinimumVersion")
		out := Canonicalize(doc)
		assert.Equal(t,
			[]string{"Comment", "Description", "Identifier", "MinimumVersion", "Input", "Process"},
			out.Keys(),
		)
	})

	t.Run("Should place ParentRecipeTrustInfo after every other key", func(t *testing.T) {
		doc := keyed("Description", "ParentRecipeTrustInfo", "Input")
		assert.Equal(t, []string{"Description", "Input", "ParentRecipeTrustInfo"}, Canonicalize(doc).Keys())
	})

	t.Run("Should keep ParentRecipeTrustInfo after unlisted keys and Process", func(t *testing.T) {
		doc := keyed("ParentRecipeTrustInfo", "Zeta", "Process", "Alpha")
		assert.Equal(t, []string{"Process", "Zeta", "Alpha", "ParentRecipeTrustInfo"}, Canonicalize(doc).Keys())
	})

	t.Run("Should keep unlisted keys in source order", func(t *testing.T) {
		doc := keyed("Zeta", "ParentRecipe", "Alpha", "Identifier")
		assert.Equal(t, []string{"Identifier", "Zeta", "ParentRecipe", "Alpha"}, Canonicalize(doc).Keys())
	})

	t.Run("Should order process steps", func(t *testing.T) {
		doc := document.Mapping(document.F("Process", document.Sequence(
			keyed("Arguments", "Processor", "Comment"),
			keyed("Arguments", "Extra", "Comment", "Other"),
			keyed("Other", "Extra"),
		)))
		process, _ := Canonicalize(doc).Get("Process")
		steps := process.Items()
		assert.Equal(t, []string{"Processor", "Comment", "Arguments"}, steps[0].Keys())
		assert.Equal(t, []string{"Extra", "Other", "Comment", "Arguments"}, steps[1].Keys())
		assert.Equal(t, []string{"Other", "Extra"}, steps[2].Keys())
	})

	t.Run("Should move NAME first in the input block", func(t *testing.T) {
		doc := document.Mapping(document.F("Input", keyed("OTHER_KEY", "NAME")))
		input, _ := Canonicalize(doc).Get("Input")
		assert.Equal(t, []string{"NAME", "OTHER_KEY"}, input.Keys())
	})

	t.Run("Should leave the input block alone without NAME", func(t *testing.T) {
		doc := document.Mapping(document.F("Input", keyed("B", "A")))
		input, _ := Canonicalize(doc).Get("Input")
		assert.Equal(t, []string{"B", "A"}, input.Keys())
	})

	t.Run("Should not modify the source document", func(t *testing.T) {
		doc := document.Mapping(
			document.F("Process", document.Sequence(keyed("Arguments", "Processor"))),
			document.F("Comment", document.String("c")),
		)
		_ = Canonicalize(doc)
		assert.Equal(t, []string{"Process", "Comment"}, doc.Keys())
		process, _ := doc.Get("Process")
		assert.Equal(t, []string{"Arguments", "Processor"}, process.Items()[0].Keys())
	})

	t.Run("Should pass through documents of unexpected shape", func(t *testing.T) {
		seq := document.Sequence(document.Int(1))
		assert.True(t, document.Equal(seq, Canonicalize(seq)))

		doc := document.Mapping(
			document.F("Process", document.String("not a list")),
			document.F("Input", document.Sequence(document.Int(1))),
		)
		out := Canonicalize(doc)
		process, _ := out.Get("Process")
		assert.Equal(t, "not a list", process.AsString())
	})

	t.Run("Should be stable when applied twice", func(t *testing.T) {
		doc := keyed("Process", "ParentRecipeTrustInfo", "X", "Comment")
		once := Canonicalize(doc)
		assert.True(t, document.Equal(once, Canonicalize(once)))
	})
}

func TestRanks(t *testing.T) {
	t.Run("Should rank unlisted keys between priority keys and trust info", func(t *testing.T) {
		assert.Less(t, TopLevelRank(KeyProcess), TopLevelRank("Other"))
		assert.Less(t, TopLevelRank("Other"), TopLevelRank(KeyParentRecipeTrustInfo))
	})

	t.Run("Should rank Arguments after Comment", func(t *testing.T) {
		assert.Less(t, StepRank(KeyComment), StepRank(KeyArguments))
		assert.Less(t, StepRank(KeyProcessor), StepRank("Other"))
	})
}
