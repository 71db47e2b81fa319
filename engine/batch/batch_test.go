package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/compozy/plistyaml/engine/codec"
	"github.com/compozy/plistyaml/engine/convert"
	"github.com/compozy/plistyaml/pkg/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestExpand(t *testing.T) {
	osFs := afero.NewOsFs()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.recipe.yaml":         "a: 1\n",
		"nested/b.recipe.yaml":  "b: 1\n",
		"nested/deep/c.yaml":    "c: 1\n",
		"nested/notes.txt":      "x",
		"other/d.recipe.plist":  "<plist/>",
		"other/keep.yaml/e.txt": "x",
	})

	t.Run("Should expand directories to yaml files recursively", func(t *testing.T) {
		files, err := Expand(osFs, []string{filepath.Join(dir, "nested")})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "nested", "b.recipe.yaml"),
			filepath.Join(dir, "nested", "deep", "c.yaml"),
		}, files)
	})

	t.Run("Should expand globs to files only", func(t *testing.T) {
		files, err := Expand(osFs, []string{filepath.Join(dir, "**", "*.yaml")})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.recipe.yaml"),
			filepath.Join(dir, "nested", "b.recipe.yaml"),
			filepath.Join(dir, "nested", "deep", "c.yaml"),
		}, files)
	})

	t.Run("Should de-duplicate and sort overlapping arguments", func(t *testing.T) {
		files, err := Expand(osFs, []string{
			filepath.Join(dir, "nested", "deep", "c.yaml"),
			filepath.Join(dir, "nested"),
			filepath.Join(dir, "a.recipe.yaml"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.recipe.yaml"),
			filepath.Join(dir, "nested", "b.recipe.yaml"),
			filepath.Join(dir, "nested", "deep", "c.yaml"),
		}, files)
	})

	t.Run("Should keep missing literal paths", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.yaml")
		files, err := Expand(osFs, []string{missing})
		require.NoError(t, err)
		assert.Equal(t, []string{missing}, files)
	})

	t.Run("Should reject invalid patterns", func(t *testing.T) {
		_, err := Expand(osFs, []string{filepath.Join(dir, "[*.yaml")})
		assert.Error(t, err)
	})
}

func TestExpand_MemFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	for name, content := range map[string]string{
		"/w/a.recipe.yaml":     "a: 1\n",
		"/w/sub/b.yaml":        "b: 1\n",
		"/w/sub/notes.txt":     "x",
		"/w/other/keep.yaml/e": "x",
		"/elsewhere/c.yaml":    "c: 1\n",
	} {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	t.Run("Should expand directories on the given filesystem", func(t *testing.T) {
		files, err := Expand(fs, []string{"/w/sub"})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join("/w", "sub", "b.yaml")}, files)
	})

	t.Run("Should expand globs below their base directory", func(t *testing.T) {
		files, err := Expand(fs, []string{"/w/**/*.yaml"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join("/w", "a.recipe.yaml"),
			filepath.Join("/w", "sub", "b.yaml"),
		}, files)
	})

	t.Run("Should keep literal files and missing paths", func(t *testing.T) {
		files, err := Expand(fs, []string{"/elsewhere/c.yaml", "/w/missing.yaml"})
		require.NoError(t, err)
		assert.Equal(t, []string{"/elsewhere/c.yaml", "/w/missing.yaml"}, files)
	})

	t.Run("Should return nothing for a glob under a missing directory", func(t *testing.T) {
		files, err := Expand(fs, []string{"/nowhere/*.yaml"})
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestRunner_Tidy(t *testing.T) {
	ctx := logger.ContextWithLogger(context.Background(), logger.NewForTests())

	t.Run("Should report every file in input order", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"a.recipe.yaml": "Process:\n- Processor: A\n- Processor: B\nIdentifier: com.x\n",
			"b.yaml":        "z: 1\ny: 2\n",
			"c.yaml":        "k: 1\nk: 2\n",
			"notes.txt":     "x",
		})
		paths := []string{
			filepath.Join(dir, "a.recipe.yaml"),
			filepath.Join(dir, "b.yaml"),
			filepath.Join(dir, "c.yaml"),
			filepath.Join(dir, "missing.yaml"),
			filepath.Join(dir, "notes.txt"),
		}
		runner := NewRunner(convert.New(afero.NewOsFs(), nil, convert.DefaultOptions()), 3)
		reports, err := runner.Tidy(ctx, paths)
		require.NoError(t, err)
		require.Len(t, reports, len(paths))
		for i, r := range reports {
			assert.Equal(t, paths[i], r.Input)
		}
		assert.Equal(t, convert.StatusWritten, reports[0].Status)
		assert.Equal(t, convert.StatusWritten, reports[1].Status)
		assert.ErrorIs(t, reports[2].Err, codec.ErrDuplicateKey)
		assert.ErrorIs(t, reports[3].Err, convert.ErrInputNotFound)
		assert.Equal(t, convert.StatusSkipped, reports[4].Status)
		assert.True(t, AnyFailed(reports))

		data, err := os.ReadFile(paths[0])
		require.NoError(t, err)
		assert.Equal(t, "Identifier: com.x\n\nProcess:\n- Processor: A\n\n- Processor: B\n", string(data))
	})

	t.Run("Should abort on malformed source", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"bad.yaml": "a: [1, 2\n",
		})
		runner := NewRunner(convert.New(afero.NewOsFs(), nil, convert.DefaultOptions()), 1)
		_, err := runner.Tidy(ctx, []string{filepath.Join(dir, "bad.yaml")})
		require.Error(t, err)
		assert.ErrorIs(t, err, codec.ErrMalformed)
	})

	t.Run("Should clamp worker count", func(t *testing.T) {
		runner := NewRunner(convert.New(afero.NewMemMapFs(), nil, convert.DefaultOptions()), 0)
		assert.Equal(t, 1, runner.workers)
		reports, err := runner.Tidy(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, reports)
		assert.False(t, AnyFailed(reports))
	})
}
