package cargoharness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `[package]
name = "phdrs"
version = "0.1.0"
edition = "2018"

[features]
default = ["std"]
std = ["alloc"]
alloc = []

[dependencies]
libc = "0.2"
`

func writeCrate(t *testing.T, manifest string, examples ...string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0o644))

	for _, name := range examples {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "examples"), 0o755))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "examples", name+".rs"), []byte("fn main() {}\n"), 0o644))
	}

	return dir
}

func TestLoadManifest(t *testing.T) {
	dir := writeCrate(t, testManifest)

	manifest, err := LoadManifest(dir)
	require.NoError(t, err)

	assert.Equal(t, "phdrs", manifest.Package.Name)
	assert.True(t, manifest.HasFeature("std"))
	assert.True(t, manifest.HasFeature("alloc"))
	assert.True(t, manifest.HasFeature("default"))
	assert.False(t, manifest.HasFeature("simd"))
}

func TestLoadManifestMissing(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	require.Error(t, err)
}

func TestHasExample(t *testing.T) {
	dir := writeCrate(t, testManifest, "dump_phdrs")

	manifest, err := LoadManifest(dir)
	require.NoError(t, err)

	assert.True(t, manifest.HasExample(dir, "dump_phdrs"))
	assert.False(t, manifest.HasExample(dir, "other"))
}

func TestHasExampleFromManifestEntry(t *testing.T) {
	withEntry := testManifest + `
[[example]]
name = "dump_phdrs"
`
	dir := writeCrate(t, withEntry)

	manifest, err := LoadManifest(dir)
	require.NoError(t, err)

	assert.True(t, manifest.HasExample(dir, "dump_phdrs"))
}

func TestManifestCheck(t *testing.T) {
	t.Run("passes for matching crate", func(t *testing.T) {
		dir := writeCrate(t, testManifest, "dump_phdrs")
		cfg, err := NewRunConfig(Options{SourceDir: dir, Runner: &fakeRunner{}})
		require.NoError(t, err)

		check := &ManifestCheck{Matrix: DefaultMatrix(), Smoke: DefaultSmokeSets()}
		result := check.Run(context.Background(), cfg)
		assert.True(t, result.Success(), "check should pass: %v", result.Err)
	})

	t.Run("fails on undeclared matrix feature", func(t *testing.T) {
		noAlloc := `[package]
name = "phdrs"

[features]
default = []
`
		dir := writeCrate(t, noAlloc, "dump_phdrs")
		cfg, err := NewRunConfig(Options{SourceDir: dir, Runner: &fakeRunner{}})
		require.NoError(t, err)

		check := &ManifestCheck{Matrix: DefaultMatrix(), Smoke: nil}
		result := check.Run(context.Background(), cfg)
		require.False(t, result.Success())
		assert.Contains(t, result.Err.Error(), `"alloc"`)
	})

	t.Run("fails on missing example", func(t *testing.T) {
		dir := writeCrate(t, testManifest)
		cfg, err := NewRunConfig(Options{SourceDir: dir, Runner: &fakeRunner{}})
		require.NoError(t, err)

		check := &ManifestCheck{Matrix: DefaultMatrix(), Smoke: DefaultSmokeSets()}
		result := check.Run(context.Background(), cfg)
		require.False(t, result.Success())
		assert.Contains(t, result.Err.Error(), "dump_phdrs")
	})
}
