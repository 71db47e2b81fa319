package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIProvider(t *testing.T) {
	t.Run("Should map flags to nested paths", func(t *testing.T) {
		data, err := NewCLIProvider(map[string]any{
			"sort-keys": false,
			"no-color":  true,
			"verbose":   true,
		}).Load()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"plist": map[string]any{"sort_keys": false},
			"cli":   map[string]any{"no_color": true},
		}, data)
	})

	t.Run("Should return empty map for nil flags", func(t *testing.T) {
		data, err := NewCLIProvider(nil).Load()
		require.NoError(t, err)
		assert.Empty(t, data)
	})
}

func TestSetNested(t *testing.T) {
	t.Run("Should report conflicts with scalar values", func(t *testing.T) {
		m := map[string]any{"plist": "xml"}
		err := setNested(m, "plist.format", "binary")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `key "plist" is not a map`)
	})
}

func TestFilterNilValues(t *testing.T) {
	t.Run("Should drop nil leaves and empty sections", func(t *testing.T) {
		got := filterNilValues(map[string]any{
			"log":   map[string]any{"level": nil},
			"batch": map[string]any{"workers": 3, "strict": nil},
			"yaml":  nil,
		})
		assert.Equal(t, map[string]any{"batch": map[string]any{"workers": 3}}, got)
	})
}

func TestGenerateEnvMappings(t *testing.T) {
	t.Run("Should expose env and flag names for every leaf setting", func(t *testing.T) {
		envs := GenerateEnvToConfigMap()
		assert.Equal(t, "plist.sort_keys", envs["PLISTYAML_PLIST_SORT_KEYS"])
		assert.Equal(t, "recipe.yaml_suffix", envs["PLISTYAML_RECIPE_YAML_SUFFIX"])
		flags := GenerateFlagToConfigMap()
		assert.Equal(t, "batch.workers", flags["workers"])
		assert.Equal(t, "cli.output", flags["output"])
		assert.Equal(t, "PLISTYAML_LOG_LEVEL", GetEnvVarForConfigPath("log.level"))
		assert.Empty(t, GetEnvVarForConfigPath("log"))
	})
}
