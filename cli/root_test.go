package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/compozy/plistyaml/cli/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	root := RootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--env-file=", "--log-level=disabled"}, args...))
	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRootCmd_Conversions(t *testing.T) {
	t.Run("Should convert YAML to a property list and report the output", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "app.recipe.yaml")
		write(t, in, "Identifier: com.x\nInput:\n  NAME: Foo\n")
		res := run(t, "yaml-plist", in)
		require.NoError(t, res.err)
		out := filepath.Join(dir, "app.recipe")
		assert.Equal(t, "Wrote to: "+out+"\n", res.stdout)
		assert.Empty(t, res.stderr)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<key>Identifier</key>")
	})

	t.Run("Should write binary property lists when requested", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "data.json")
		write(t, in, `{"a": 1}`)
		res := run(t, "json-plist", "--plist-format", "binary", in)
		require.NoError(t, res.err)
		data, err := os.ReadFile(filepath.Join(dir, "data"))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("bplist")))
	})

	t.Run("Should round trip a recipe through plist-yaml", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "app.recipe.yaml")
		write(t, in, "Process:\n- Processor: A\n- Processor: B\nIdentifier: com.x\n")
		require.NoError(t, run(t, "yaml-plist", in).err)
		res := run(t, "plist-yaml", filepath.Join(dir, "app.recipe"), filepath.Join(dir, "out.yaml"))
		require.NoError(t, res.err)
		data, err := os.ReadFile(filepath.Join(dir, "out.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "Identifier: com.x\n\nProcess:\n- Processor: A\n\n- Processor: B\n", string(data))
	})

	t.Run("Should report missing input on stderr without failing", func(t *testing.T) {
		in := filepath.Join(t.TempDir(), "missing.yaml")
		res := run(t, "yaml-plist", in)
		require.NoError(t, res.err)
		assert.Empty(t, res.stdout)
		assert.Equal(t, "ERROR: "+in+" not found\n", res.stderr)
	})

	t.Run("Should fail on malformed source", func(t *testing.T) {
		in := filepath.Join(t.TempDir(), "bad.yaml")
		write(t, in, "a: [1, 2\n")
		res := run(t, "yaml-plist", in)
		require.Error(t, res.err)
		var cliErr *helpers.CliError
		require.ErrorAs(t, res.err, &cliErr)
		assert.Equal(t, "MALFORMED_SOURCE", cliErr.Code)
		assert.Contains(t, res.stderr, "Error: Source document could not be parsed")
	})

	t.Run("Should convert with detected formats", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "a.yaml")
		write(t, in, "name: demo\n")
		res := run(t, "convert", in, filepath.Join(dir, "a.json"))
		require.NoError(t, res.err)
		data, err := os.ReadFile(filepath.Join(dir, "a.json"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"name": "demo"}`, string(data))
	})

	t.Run("Should reject undetectable formats", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "a.txt")
		write(t, in, "name: demo\n")
		res := run(t, "convert", in, filepath.Join(dir, "a.out"))
		var cliErr *helpers.CliError
		require.ErrorAs(t, res.err, &cliErr)
		assert.Equal(t, "UNKNOWN_FORMAT", cliErr.Code)
	})

	t.Run("Should print JSON reports", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "a.yaml")
		write(t, in, "b: 1\n")
		res := run(t, "--output", "json", "tidy", in)
		require.NoError(t, res.err)
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &record))
		assert.Equal(t, "written", record["status"])
		assert.Equal(t, "tidy", record["operation"])
		assert.Equal(t, "Wrote to: "+in, record["message"])
	})
}

func TestRootCmd_Tidy(t *testing.T) {
	t.Run("Should tidy only YAML files found under a directory", func(t *testing.T) {
		dir := t.TempDir()
		write(t, filepath.Join(dir, "a.recipe.yaml"), "Process:\n- Processor: A\nIdentifier: com.x\n")
		write(t, filepath.Join(dir, "sub", "b.yaml"), "z: 1\n")
		write(t, filepath.Join(dir, "notes.txt"), "x")
		res := run(t, "tidy", "--workers", "2", dir)
		require.NoError(t, res.err)
		assert.Equal(t,
			"Wrote to: "+filepath.Join(dir, "a.recipe.yaml")+"\n"+
				"Wrote to: "+filepath.Join(dir, "sub", "b.yaml")+"\n",
			res.stdout)
	})

	t.Run("Should skip non YAML files given explicitly", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		write(t, path, "x")
		res := run(t, "tidy", path)
		require.NoError(t, res.err)
		assert.Equal(t, "Not processing "+path+"\n", res.stdout)
	})

	t.Run("Should fail strict batches with failed files", func(t *testing.T) {
		dir := t.TempDir()
		write(t, filepath.Join(dir, "dup.yaml"), "a: 1\na: 2\n")
		res := run(t, "tidy", "--strict", filepath.Join(dir, "dup.yaml"))
		require.Error(t, res.err)
		assert.ErrorIs(t, res.err, helpers.ErrBatchFailed)
		assert.Contains(t, res.stderr, "ERROR: Duplicate key found in "+filepath.Join(dir, "dup.yaml"))
	})

	t.Run("Should not fail lenient batches", func(t *testing.T) {
		dir := t.TempDir()
		write(t, filepath.Join(dir, "dup.yaml"), "a: 1\na: 2\n")
		res := run(t, "tidy", filepath.Join(dir, "dup.yaml"))
		require.NoError(t, res.err)
	})
}

func TestRootCmd_Config(t *testing.T) {
	t.Run("Should show configuration merged from file and flags", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plistyaml.yaml")
		write(t, path, "batch:\n  workers: 7\nplist:\n  format: binary\n")
		res := run(t, "--config", path, "--no-color", "config", "show", "--format", "json")
		require.NoError(t, res.err)
		var cfg map[string]map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &cfg))
		assert.Equal(t, float64(7), cfg["batch"]["workers"])
		assert.Equal(t, "binary", cfg["plist"]["format"])
		assert.Equal(t, true, cfg["cli"]["no_color"])
	})

	t.Run("Should show value sources", func(t *testing.T) {
		res := run(t, "--no-color", "config", "show", "--sources")
		require.NoError(t, res.err)
		assert.Regexp(t, `cli\.no_color\s+cli\s+PLISTYAML_NO_COLOR`, res.stdout)
		assert.Regexp(t, `plist\.format\s+default\s+PLISTYAML_PLIST_FORMAT`, res.stdout)
	})

	t.Run("Should fail for a missing config file", func(t *testing.T) {
		res := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "config", "show")
		require.Error(t, res.err)
	})
}

func TestVersionCmd(t *testing.T) {
	t.Run("Should print version information as JSON", func(t *testing.T) {
		res := run(t, "--output", "json", "version")
		require.NoError(t, res.err)
		var info map[string]string
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
		assert.Contains(t, info, "version")
		assert.Contains(t, info, "commit_hash")
	})

	t.Run("Should print version information as text", func(t *testing.T) {
		res := run(t, "version")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "plistyaml ")
	})
}
