package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/strscan/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readDoc(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(b)
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cli")
	require.NoError(t, generateCLIDocs(cli.NewRootCmd(), dir))

	for _, name := range []string{"index.md", "scan.md", "status.md", "recipes.md", "repl.md", "history.md", "version.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	index := readDoc(t, dir, "index.md")
	assert.Contains(t, index, "<!-- Code generated by scripts/gendocs. DO NOT EDIT. -->")
	assert.Contains(t, index, "[`scan`](scan.md)")
	assert.Contains(t, index, "| `keep_going` | `STRSCAN_KEEP_GOING` | Continue scanning after lines that do not match |")
	assert.Contains(t, index, "| `-o`, `--output` |")

	scan := readDoc(t, dir, "scan.md")
	assert.Contains(t, scan, "strscan scan [file...] [flags]")
	assert.Contains(t, scan, "| `--keep-going` | false | `keep_going` |")
	assert.Contains(t, scan, "| `--follow` | false |  |", "command-only flags have no config key")
	assert.Contains(t, scan, "\n# Parse HTTP status lines with the built-in recipe\n", "examples are dedented")
}

func TestGenerateRecipeDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateRecipeDocs(dir))

	doc := readDoc(t, dir, "index.md")
	assert.Contains(t, doc, "| `until:ARG` |")
	assert.Contains(t, doc, "| `http-status` | `lit:HTTP/ version=word code=u16 reason=rest` |")
}

func TestDedent(t *testing.T) {
	assert.Equal(t, "a\n  b\n\nc", dedent("\n  a\n    b\n\n  c\n"))
	assert.Equal(t, "", dedent("\n\n"))
	assert.Equal(t, "x", dedent("x"))
}
