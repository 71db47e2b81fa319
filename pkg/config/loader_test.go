package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(environ ...string) *loader {
	l := NewService().(*loader)
	l.environ = func() []string { return environ }
	return l
}

func TestLoader_Load(t *testing.T) {
	t.Run("Should load built-in defaults", func(t *testing.T) {
		l := newTestLoader()
		cfg, err := l.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, SourceDefault, l.GetSource("plist.sort_keys"))
	})

	t.Run("Should apply YAML file over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plistyaml.yaml")
		content := "plist:\n  format: binary\nbatch:\n  workers: 8\nlog:\n  level:\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		l := newTestLoader()
		cfg, err := l.Load(context.Background(), NewYAMLProvider(path))
		require.NoError(t, err)
		assert.Equal(t, "binary", cfg.Plist.Format)
		assert.Equal(t, 8, cfg.Batch.Workers)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, SourceYAML, l.GetSource("plist.format"))
		assert.Equal(t, SourceDefault, l.GetSource("log.level"))
	})

	t.Run("Should let environment override YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plistyaml.yaml")
		require.NoError(t, os.WriteFile(path, []byte("batch:\n  workers: 8\n"), 0o600))
		l := newTestLoader(
			"PLISTYAML_BATCH_WORKERS=2",
			"PLISTYAML_PLIST_SORT_KEYS=false",
			"PLISTYAML_RECIPE_PLIST_SUFFIXES=.recipe,.pkg.recipe",
			"PLISTYAML_UNKNOWN_SETTING=1",
			"HOME=/root",
		)
		cfg, err := l.Load(context.Background(), NewYAMLProvider(path))
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Batch.Workers)
		assert.False(t, cfg.Plist.SortKeys)
		assert.Equal(t, []string{".recipe", ".pkg.recipe"}, cfg.Recipe.PlistSuffixes)
		assert.Equal(t, SourceEnv, l.GetSource("batch.workers"))
		assert.Equal(t, SourceEnv, l.GetSource("recipe.plist_suffixes"))
	})

	t.Run("Should let CLI flags override environment", func(t *testing.T) {
		l := newTestLoader("PLISTYAML_LOG_LEVEL=warn", "PLISTYAML_OUTPUT=json")
		cfg, err := l.Load(context.Background(), NewCLIProvider(map[string]any{
			"log-level": "debug",
			"workers":   16,
			"dry-run":   true,
		}))
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 16, cfg.Batch.Workers)
		assert.Equal(t, "json", cfg.CLI.Output)
		assert.Equal(t, SourceCLI, l.GetSource("log.level"))
		assert.Equal(t, SourceEnv, l.GetSource("cli.output"))
	})

	t.Run("Should ignore a missing YAML file", func(t *testing.T) {
		l := newTestLoader()
		cfg, err := l.Load(context.Background(), NewYAMLProvider(filepath.Join(t.TempDir(), "absent.yaml")))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("Should reject malformed YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("plist: [\n"), 0o600))
		_, err := newTestLoader().Load(context.Background(), NewYAMLProvider(path))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML file")
	})

	t.Run("Should reject invalid values", func(t *testing.T) {
		_, err := newTestLoader("PLISTYAML_PLIST_FORMAT=openstep").Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
	})
}

func TestLoader_Validate(t *testing.T) {
	l := newTestLoader()

	t.Run("Should accept defaults", func(t *testing.T) {
		assert.NoError(t, l.Validate(Default()))
	})

	t.Run("Should reject nil configuration", func(t *testing.T) {
		assert.Error(t, l.Validate(nil))
	})

	t.Run("Should reject malformed suffixes", func(t *testing.T) {
		cfg := Default()
		cfg.Recipe.PlistSuffixes = []string{"recipe"}
		assert.Error(t, l.Validate(cfg))
	})

	t.Run("Should reject a yaml recipe suffix without yaml extension", func(t *testing.T) {
		cfg := Default()
		cfg.Recipe.YAMLSuffix = ".recipe.yml"
		err := l.Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must end with .yaml")
	})

	t.Run("Should reject suffixes shared between formats", func(t *testing.T) {
		cfg := Default()
		cfg.Recipe.PlistSuffixes = []string{".recipe.yaml"}
		assert.Error(t, l.Validate(cfg))
	})

	t.Run("Should reject out of range workers", func(t *testing.T) {
		cfg := Default()
		cfg.Batch.Workers = 0
		assert.Error(t, l.Validate(cfg))
	})
}

func TestTransformEnvKey(t *testing.T) {
	cases := map[string]string{
		"PLISTYAML_LOG_LEVEL":       "log.level",
		"PLISTYAML_PLIST_SORT_KEYS": "plist.sort_keys",
		"PLISTYAML_OUTPUT":          "output",
		"PLISTYAML_":                "",
	}
	for in, want := range cases {
		t.Run("Should transform "+in, func(t *testing.T) {
			assert.Equal(t, want, transformEnvKey(in))
		})
	}
}
