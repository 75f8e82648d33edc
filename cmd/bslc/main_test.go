package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blender/bslc/bslc"
)

func TestParseModeAcceptsAllFourAndRejectsOther(t *testing.T) {
	for _, name := range []string{"cpp", "BSL", "msl", "GLSL"} {
		_, err := parseMode(name)
		assert.NoError(t, err)
	}
	_, err := parseMode("fortran")
	assert.Error(t, err)
}

func TestCompileOneWritesThreeOutputs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "shader.bsl")
	require.NoError(t, os.WriteFile(input, []byte("int x;\n"), 0o644))

	ok := compileOne(input, dir, bslc.BSL)
	assert.True(t, ok)

	for _, suffix := range []string{".out", ".meta", ".infos"} {
		_, err := os.Stat(filepath.Join(dir, "shader"+suffix))
		assert.NoError(t, err)
	}
}
