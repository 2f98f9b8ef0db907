package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archdb/archdb/internal/pipeline"
)

func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestResolveCommand(t *testing.T) {
	archDir := writeDir(t, map[string]string{
		"base.yaml":  "name: base\nw: 1\n",
		"child.yaml": "name: child\n$inherits: base.yaml#/\n",
	})
	outDir := t.TempDir()

	stdout, _, err := execute(t, "resolve", archDir, outDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "resolved 2 record(s)")

	assert.FileExists(t, filepath.Join(outDir, "child.yaml"))
	assert.FileExists(t, filepath.Join(outDir, pipeline.ManifestName))
	assert.FileExists(t, filepath.Join(outDir, pipeline.IndexName))
}

func TestResolveCommandJSON(t *testing.T) {
	archDir := writeDir(t, map[string]string{
		"rec.yaml": "name: rec\n",
	})
	outDir := t.TempDir()

	stdout, _, err := execute(t, "--format", "json", "resolve", archDir, outDir, "--no-progress")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["record_count"])
	assert.Equal(t, outDir, data["out_dir"])
	assert.NotEmpty(t, data["run_id"])
}

func TestResolveCommandProgressOnStderr(t *testing.T) {
	archDir := writeDir(t, map[string]string{
		"rec.yaml": "name: rec\n",
	})
	outDir := t.TempDir()

	_, stderr, err := execute(t, "resolve", archDir, outDir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "pass 1")

	_, stderr, err = execute(t, "resolve", archDir, outDir, "--no-progress")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "pass 1")
}

func TestResolveCommandCycleExitsFailure(t *testing.T) {
	archDir := writeDir(t, map[string]string{
		"a.yaml": "name: a\n$inherits: b.yaml#/\n",
		"b.yaml": "name: b\n$inherits: a.yaml#/\n",
	})
	outDir := t.TempDir()

	stdout, _, err := execute(t, "resolve", archDir, outDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "CYCLE_ERROR")
}

func TestResolveCommandValidationExitsFailure(t *testing.T) {
	archDir := writeDir(t, map[string]string{
		"rec.yaml": "name: rec\n$schema: inst.yaml#/\nwidth: wide\n",
	})
	schemaDir := writeDir(t, map[string]string{
		"inst.yaml": "type: object\nproperties:\n  width:\n    type: integer\n",
	})
	outDir := t.TempDir()

	stdout, _, err := execute(t, "resolve", archDir, outDir, "--schema-dir", schemaDir, "--no-progress")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "VALIDATION_ERROR")
}

func TestResolveCommandMissingArchDir(t *testing.T) {
	stdout, _, err := execute(t, "resolve", filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "COMMAND_ERROR")
}

func TestResolveCommandArgCount(t *testing.T) {
	_, _, err := execute(t, "resolve", "only-one")
	require.Error(t, err)
}
