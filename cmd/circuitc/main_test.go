package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smasher164/circuit/check"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return dir
}

func TestRunTypes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.cir": "fn main(x: u8) -> u8 {\n\tlet y = x + 1;\n\ty\n}\n",
	})
	*showTypes = true
	defer func() { *showTypes = false }()
	var out bytes.Buffer
	require.NoError(t, run(&out, dir))
	assert.Contains(t, out.String(), "fn main(x: u8) -> u8\n")
	assert.Contains(t, out.String(), "2:6\ty: u8\n")
}

func TestRunReportsErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.cir": "fn a(x: u8, y: i8) -> u8 { x + y }\n",
		"b.cir": "fn b(w: Witness) { constrain w; }\n",
	})
	var out bytes.Buffer
	err := run(&out, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, check.SignednessMismatch)
	assert.ErrorIs(t, err, check.NonBooleanConstraint)
	lines := strings.Split(err.Error(), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "a.cir:1:"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "b.cir:1:"), lines[1])
}

func TestRunChecksPastResolveErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.cir": "fn a() -> Field { missing }\n",
		"b.cir": "fn b(w: Witness) { constrain w; }\n",
	})
	var out bytes.Buffer
	err := run(&out, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, check.NonBooleanConstraint)
	lines := strings.Split(err.Error(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a.cir:1:19: undefined: missing", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "b.cir:1:"), lines[1])
}

func TestRunParseOnly(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.cir": "fn main() {}\n"})
	*parseOnly = true
	defer func() { *parseOnly = false }()
	var out bytes.Buffer
	require.NoError(t, run(&out, dir))
	assert.Contains(t, out.String(), "FnDecl")
}
