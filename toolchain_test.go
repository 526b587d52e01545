package cargoharness

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallerURL(t *testing.T) {
	spec := ToolchainSpec{
		HostTriple: "x86_64-unknown-linux-gnu",
		Channel:    "stable",
		DistServer: "https://static.rust-lang.org",
	}

	url := InstallerURL(spec)
	expected := "https://static.rust-lang.org/rustup/dist/x86_64-unknown-linux-gnu/rustup-init"
	if runtime.GOOS == "windows" {
		expected += ".exe"
	}

	if url != expected {
		t.Errorf("InstallerURL() = %s, expected %s", url, expected)
	}
}

func TestEnsureInstallRoot(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "toolchain")
		require.NoError(t, ensureInstallRoot(root))

		_, err := os.Stat(filepath.Join(root, installRootMarker))
		assert.NoError(t, err, "marker file should exist")
	})

	t.Run("accepts empty directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, ensureInstallRoot(root))
	})

	t.Run("accepts harness-owned directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, ensureInstallRoot(root))
		require.NoError(t, os.WriteFile(filepath.Join(root, "leftover"), []byte("x"), 0o644))

		assert.NoError(t, ensureInstallRoot(root))
	})

	t.Run("rejects foreign non-empty directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "precious"), []byte("x"), 0o644))

		assert.Error(t, ensureInstallRoot(root))
	})
}

func newInstallerTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if filepath.Base(r.URL.Path) != exeName("rustup-init") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("#!/bin/sh\nexit 0\n"))
	}))
	t.Cleanup(server.Close)
	return server
}

func installerTestConfig(t *testing.T, runner CommandRunner, distServer string) *RunConfig {
	t.Helper()

	cfg, err := NewRunConfig(Options{
		SourceDir:   t.TempDir(),
		InstallRoot: filepath.Join(t.TempDir(), "toolchain"),
		Runner:      runner,
		Toolchain: ToolchainSpec{
			HostTriple:   "x86_64-unknown-linux-gnu",
			Channel:      "stable",
			NoModifyPath: true,
			DistServer:   distServer,
		},
	})
	require.NoError(t, err)
	return cfg
}

func TestToolchainInstallerRun(t *testing.T) {
	server := newInstallerTestServer(t)
	runner := &fakeRunner{}
	cfg := installerTestConfig(t, runner, server.URL)

	installer := &ToolchainInstaller{Client: server.Client()}
	result := installer.Run(context.Background(), cfg)

	require.True(t, result.Success(), "install should pass: %v", result.Err)

	// Installer payload was written into the harness-owned root, executable.
	installerPath := filepath.Join(cfg.InstallRoot, exeName("rustup-init"))
	info, err := os.Stat(installerPath)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.NotZero(t, info.Mode()&0o100, "rustup-init should be executable")
	}

	// Non-interactive install, then the rustfmt component, in that order.
	require.Len(t, runner.commands, 2)

	install := runner.commands[0]
	assert.Equal(t, installerPath, install.Path)
	assert.Equal(t, []string{
		"-y",
		"--default-host", "x86_64-unknown-linux-gnu",
		"--default-toolchain", "stable",
		"--no-modify-path",
	}, install.Args)
	assert.Equal(t, cfg.Env, install.Env)

	component := runner.commands[1]
	assert.Equal(t, cfg.RustupPath(), component.Path)
	assert.Equal(t, []string{"component", "add", "rustfmt"}, component.Args)
}

func TestToolchainInstallerDownloadFailure(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	runner := &fakeRunner{}
	cfg := installerTestConfig(t, runner, server.URL)

	installer := &ToolchainInstaller{Client: server.Client()}
	result := installer.Run(context.Background(), cfg)

	require.False(t, result.Success())
	assert.Equal(t, 1, result.ExitCode)
	assert.Empty(t, runner.commands, "no install may run after a failed download")
}

func TestToolchainInstallerInstallFailureSkipsComponent(t *testing.T) {
	server := newInstallerTestServer(t)
	runner := &fakeRunner{fail: map[string]int{"toolchain install": 1}}
	cfg := installerTestConfig(t, runner, server.URL)

	installer := &ToolchainInstaller{Client: server.Client()}
	result := installer.Run(context.Background(), cfg)

	require.False(t, result.Success())
	require.Len(t, runner.commands, 1, "component add must not run after a failed install")
}

func TestToolchainCheck(t *testing.T) {
	cfg := testConfig(t, &fakeRunner{})

	check := &ToolchainCheck{}
	result := check.Run(context.Background(), cfg)
	require.False(t, result.Success(), "empty install root has no toolchain binaries")

	require.NoError(t, os.MkdirAll(cfg.BinDir, 0o755))
	for _, tool := range []string{"cargo", "rustup", "cargo-fmt"} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.BinDir, exeName(tool)), []byte("bin"), 0o755))
	}

	result = check.Run(context.Background(), cfg)
	assert.True(t, result.Success(), "all binaries present: %v", result.Err)
}

func TestCheckRequiredTools(t *testing.T) {
	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, exeName("cargo")), []byte("bin"), 0o755))

	err := CheckRequiredTools(binDir, []ToolRequirement{
		{Name: "cargo", Purpose: "build driver"},
		{Name: "missing-tool", Optional: true},
	})
	assert.NoError(t, err, "optional tools must not fail the check")

	err = CheckRequiredTools(binDir, []ToolRequirement{
		{Name: "cargo"},
		{Name: "rustup", Purpose: "toolchain manager"},
		{Name: "cargo-fmt"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rustup (toolchain manager)")
	assert.Contains(t, err.Error(), "cargo-fmt")
}
