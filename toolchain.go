package cargoharness

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// ToolchainInstaller fetches rustup-init and installs the requested toolchain
// into the harness-owned install root.
//
// The installer never touches a pre-existing system toolchain or shell
// profile: CARGO_HOME and RUSTUP_HOME point inside the install root, the
// installer runs with --no-modify-path, and the extended PATH lives only in
// the RunConfig environment.
//
// It also installs the rustfmt component so the formatting gate can run
// before any build step.
type ToolchainInstaller struct {
	// Client performs the rustup-init download. Nil means a client pinned to
	// TLS 1.2 minimum; connections that cannot satisfy the pin fail closed.
	Client *http.Client
}

// Name implements Step.
func (s *ToolchainInstaller) Name() string {
	return "toolchain install"
}

// Run downloads and executes rustup-init non-interactively, then adds the
// rustfmt component. Any non-zero exit aborts the pipeline; there is no
// partial-toolchain continuation.
func (s *ToolchainInstaller) Run(ctx context.Context, cfg *RunConfig) *StepResult {
	if err := ensureInstallRoot(cfg.InstallRoot); err != nil {
		return failResult(s.Name(), err)
	}

	installerPath := filepath.Join(cfg.InstallRoot, exeName("rustup-init"))
	if err := s.download(ctx, cfg, installerPath); err != nil {
		return failResult(s.Name(), fmt.Errorf("downloading rustup-init: %w", err))
	}

	args := []string{
		"-y",
		"--default-host", cfg.Toolchain.HostTriple,
		"--default-toolchain", cfg.Toolchain.Channel,
	}
	if cfg.Toolchain.NoModifyPath {
		args = append(args, "--no-modify-path")
	}

	result := cfg.Runner.Run(ctx, Command{
		Step: s.Name(),
		Path: installerPath,
		Args: args,
		Dir:  cfg.InstallRoot,
		Env:  cfg.Env,
	})
	if !result.Success() {
		result.Err = StepError(s.Name(), result.Output, result.Err)
		return result
	}

	component := cfg.Runner.Run(ctx, Command{
		Step: s.Name(),
		Path: cfg.RustupPath(),
		Args: []string{"component", "add", "rustfmt"},
		Dir:  cfg.InstallRoot,
		Env:  cfg.Env,
	})
	component.Output = append(result.Output, component.Output...)
	if !component.Success() {
		component.Err = StepError(s.Name(), component.Output, component.Err)
	}

	return component
}

// InstallerURL returns the rustup-init download location for the spec.
func InstallerURL(spec ToolchainSpec) string {
	name := "rustup-init"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return fmt.Sprintf("%s/rustup/dist/%s/%s", spec.DistServer, spec.HostTriple, name)
}

func (s *ToolchainInstaller) download(ctx context.Context, cfg *RunConfig, dest string) error {
	client := s.Client
	if client == nil {
		client = newPinnedClient()
	}

	url := InstallerURL(cfg.Toolchain)
	cfg.Logger.Debug().Str("url", url).Msg("fetching installer")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

// newPinnedClient builds an HTTP client whose TLS handshake requires at least
// TLS 1.2. There is no downgrade path: a peer that cannot satisfy the pin
// fails the connection.
func newPinnedClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// ensureInstallRoot verifies the install root is empty or harness-owned and
// drops the ownership marker. A non-empty directory without the marker is
// rejected rather than reused.
func ensureInstallRoot(root string) error {
	entries, err := os.ReadDir(root)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(root, 0o755); mkErr != nil {
			return mkErr
		}
	case err != nil:
		return err
	case len(entries) > 0:
		if _, markErr := os.Stat(filepath.Join(root, installRootMarker)); markErr != nil {
			return fmt.Errorf("install root %s is not empty and not harness-owned", root)
		}
	}

	return os.WriteFile(filepath.Join(root, installRootMarker), nil, 0o644)
}
