package jsoncodec

import (
	"math"
	"testing"

	"github.com/compozy/plistyaml/engine/codec"
	"github.com/compozy/plistyaml/engine/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	c := New(DefaultOptions())

	t.Run("Should keep member order and scalar types", func(t *testing.T) {
		v, err := c.Decode([]byte(`{"z": 1, "a": 1.0, "m": "s", "t": true, "n": null, "l": [1, "x"]}`))
		require.NoError(t, err)
		expected := document.Mapping(
			document.F("z", document.Int(1)),
			document.F("a", document.Float(1)),
			document.F("m", document.String("s")),
			document.F("t", document.Bool(true)),
			document.F("n", document.Null()),
			document.F("l", document.Sequence(document.Int(1), document.String("x"))),
		)
		assert.True(t, document.Equal(expected, v), "got %v", v)
	})

	t.Run("Should report duplicate keys", func(t *testing.T) {
		_, err := c.Decode([]byte(`{"a": {"b": 1, "b": 2}}`))
		require.ErrorIs(t, err, codec.ErrDuplicateKey)
	})

	t.Run("Should report malformed input", func(t *testing.T) {
		_, err := c.Decode([]byte(`{"a": `))
		require.ErrorIs(t, err, codec.ErrMalformed)
		_, err = c.Decode(nil)
		require.ErrorIs(t, err, codec.ErrMalformed)
	})

	t.Run("Should reject integers outside the int64 range with their path", func(t *testing.T) {
		_, err := c.Decode([]byte(`{"ids": [1, 12345678901234567890]}`))
		require.ErrorIs(t, err, codec.ErrUnsupportedValue)
		assert.NotErrorIs(t, err, codec.ErrMalformed)
		var unsupported *codec.UnsupportedValueError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, document.Root().Key("ids").Index(1).String(), unsupported.Path)
	})

	t.Run("Should keep the int64 bounds as integers", func(t *testing.T) {
		v, err := c.Decode([]byte(`[9223372036854775807, -9223372036854775808, 1e30]`))
		require.NoError(t, err)
		items := v.Items()
		assert.Equal(t, int64(math.MaxInt64), items[0].AsInt())
		assert.Equal(t, int64(math.MinInt64), items[1].AsInt())
		assert.Equal(t, document.KindFloat, items[2].Kind())
	})
}

func TestEncode(t *testing.T) {
	c := New(DefaultOptions())

	t.Run("Should write indented JSON in document order", func(t *testing.T) {
		doc := document.Mapping(
			document.F("b", document.Int(1)),
			document.F("a", document.Mapping(document.F("html", document.String("<a&b>")))),
		)
		out, err := c.Encode(doc)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": {\n    \"html\": \"<a&b>\"\n  }\n}\n", string(out))
	})

	t.Run("Should keep integral floats as floats", func(t *testing.T) {
		out, err := c.Encode(document.Sequence(document.Float(2), document.Float(0.25), document.Float(1e21)))
		require.NoError(t, err)
		v, err := c.Decode(out)
		require.NoError(t, err)
		for _, item := range v.Items() {
			assert.Equal(t, document.KindFloat, item.Kind())
		}
	})

	t.Run("Should reject NaN with its path", func(t *testing.T) {
		_, err := c.Encode(document.Mapping(document.F("x", document.Sequence(document.Float(math.NaN())))))
		require.ErrorIs(t, err, codec.ErrUnsupportedValue)
		assert.Contains(t, err.Error(), "x[0]")
	})

	t.Run("Should be idempotent on its own output", func(t *testing.T) {
		doc := document.Mapping(
			document.F("s", document.String("quote \" and \\ and \n")),
			document.F("n", document.Null()),
			document.F("e", document.Sequence()),
			document.F("o", document.Mapping()),
		)
		first, err := c.Encode(doc)
		require.NoError(t, err)
		decoded, err := c.Decode(first)
		require.NoError(t, err)
		assert.True(t, document.Equal(doc, decoded))
		second, err := c.Encode(decoded)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	})
}

func TestFormatFloat(t *testing.T) {
	t.Run("Should format common values", func(t *testing.T) {
		cases := map[float64]string{
			0:      "0.0",
			1:      "1.0",
			-2.5:   "-2.5",
			1e21:   "1e+21",
			1.5e-7: "1.5e-07",
		}
		for in, expected := range cases {
			got, err := formatFloat(in)
			require.NoError(t, err)
			assert.Equal(t, expected, got)
		}
	})
}
