package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archdb/archdb/internal/ir"
)

func TestMergeCommand(t *testing.T) {
	baseDir := writeDir(t, map[string]string{
		"cpu.yaml": "name: cpu\nwidth: 32\n",
	})
	overlayDir := writeDir(t, map[string]string{
		"cpu.yaml": "width: 64\n",
	})
	outDir := t.TempDir()

	stdout, _, err := execute(t, "merge", baseDir, overlayDir, outDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "merged into")

	data, err := os.ReadFile(filepath.Join(outDir, "cpu.yaml"))
	require.NoError(t, err)
	docs, err := ir.DecodeDocuments(data)
	require.NoError(t, err)
	w, _ := docs[0].(*ir.Object).Get("width")
	assert.Equal(t, ir.Int(64), w)
}

func TestMergeCommandMissingBaseDir(t *testing.T) {
	stdout, _, err := execute(t, "merge", filepath.Join(t.TempDir(), "nope"), t.TempDir(), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "COMMAND_ERROR")
}

func TestMergeCommandArgCount(t *testing.T) {
	_, _, err := execute(t, "merge", "a", "b")
	require.Error(t, err)
}

func TestMergeThenResolve(t *testing.T) {
	baseDir := writeDir(t, map[string]string{
		"base.yaml":  "name: base\nw: 1\n",
		"child.yaml": "name: child\n$inherits: base.yaml#/\n",
	})
	overlayDir := writeDir(t, map[string]string{
		"child.yaml": "extra: 2\n",
	})
	mergedDir := t.TempDir()
	outDir := t.TempDir()

	_, _, err := execute(t, "merge", baseDir, overlayDir, mergedDir)
	require.NoError(t, err)

	_, _, err = execute(t, "resolve", mergedDir, outDir, "--no-progress")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "child.yaml"))
	require.NoError(t, err)
	docs, err := ir.DecodeDocuments(data)
	require.NoError(t, err)
	child := docs[0].(*ir.Object)

	w, _ := child.Get("w")
	assert.Equal(t, ir.Int(1), w, "inherited key")
	extra, _ := child.Get("extra")
	assert.Equal(t, ir.Int(2), extra, "overlay key")
	childOf, _ := child.Get(ir.KeyChildOf)
	assert.Equal(t, ir.String("base.yaml#/"), childOf)
}
