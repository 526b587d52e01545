package cargoharness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMatrixFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "matrix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMatrixFile(t *testing.T) {
	path := writeMatrixFile(t, `
example: inspect
matrix:
  - features: default
    profile: release
  - features: minimal
    profile: debug
smoke:
  - default
`)

	matrix, smoke, example, err := LoadMatrixFile(path)
	require.NoError(t, err)

	assert.Equal(t, "inspect", example)

	require.Len(t, matrix, 2)
	assert.Equal(t, "default/release", matrix[0].Label())
	assert.Equal(t, "minimal/debug", matrix[1].Label())

	require.Len(t, smoke, 1)
	assert.Equal(t, "default", smoke[0].Name)
}

func TestLoadMatrixFileDefaults(t *testing.T) {
	path := writeMatrixFile(t, `{}`)

	matrix, smoke, example, err := LoadMatrixFile(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultMatrix(), matrix)
	assert.Equal(t, DefaultSmokeSets(), smoke)
	assert.Equal(t, DefaultExample, example)
}

func TestLoadMatrixFileUnknownFeatureSet(t *testing.T) {
	path := writeMatrixFile(t, `
matrix:
  - features: simd
    profile: debug
`)

	_, _, _, err := LoadMatrixFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simd")
}

func TestLoadMatrixFileUnknownProfile(t *testing.T) {
	path := writeMatrixFile(t, `
matrix:
  - features: default
    profile: bench
`)

	_, _, _, err := LoadMatrixFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bench")
}

func TestLoadMatrixFileMissing(t *testing.T) {
	_, _, _, err := LoadMatrixFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
