package cargoharness

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ToolchainSpec describes the toolchain to install.
//
// The spec is resolved once at run start and never mutated afterwards:
//   - HostTriple: the Rust target triple of the build host
//   - Channel: the release channel ("stable", "beta", "nightly", or a version)
//   - NoModifyPath: suppress shell profile edits by the installer
//   - DistServer: base URL of the distribution endpoint
type ToolchainSpec struct {
	HostTriple   string // Rust host triple (e.g. "x86_64-unknown-linux-gnu")
	Channel      string // Toolchain channel (e.g. "stable")
	NoModifyPath bool   // Pass --no-modify-path to the installer
	DistServer   string // Distribution endpoint base URL
}

// DefaultDistServer is the official Rust distribution endpoint.
const DefaultDistServer = "https://static.rust-lang.org"

// DefaultToolchainSpec returns a spec for the stable channel on the current
// host, with shell profile modification suppressed.
func DefaultToolchainSpec() ToolchainSpec {
	return ToolchainSpec{
		HostTriple:   HostTriple(),
		Channel:      "stable",
		NoModifyPath: true,
		DistServer:   DefaultDistServer,
	}
}

// HostTriple maps the current GOOS/GOARCH to a Rust host triple.
func HostTriple() string {
	arch := map[string]string{
		"amd64": "x86_64",
		"arm64": "aarch64",
		"386":   "i686",
	}[runtime.GOARCH]
	if arch == "" {
		arch = runtime.GOARCH
	}

	switch runtime.GOOS {
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	default:
		return arch + "-unknown-linux-gnu"
	}
}

// StepResult contains the outcome of a single pipeline step.
//
// A result is ephemeral: the driver inspects it once to decide whether the
// run continues, and a failed result terminates the run with ExitCode as the
// harness exit status.
type StepResult struct {
	Step     string   // Name of the step that produced this result
	ExitCode int      // Subprocess exit status (0 on success)
	Output   []string // Captured combined output lines
	Err      error    // Error if the step failed, nil otherwise
}

// Success reports whether the step passed.
func (r *StepResult) Success() bool {
	return r != nil && r.Err == nil && r.ExitCode == 0
}

// Options configures construction of a RunConfig.
type Options struct {
	// SourceDir is the root of the crate under test (contains Cargo.toml).
	SourceDir string

	// InstallRoot is the harness-owned toolchain directory. Empty means a
	// unique job-local directory under the system temp dir.
	InstallRoot string

	// Toolchain describes what to install. Zero value means
	// DefaultToolchainSpec().
	Toolchain ToolchainSpec

	// Example is the example binary used for smoke runs.
	Example string

	// Verbose enables command-line echoing at debug level.
	Verbose bool

	// Runner executes subprocesses. Nil means the real executor.
	Runner CommandRunner

	// Logger receives step progress. Nil means a disabled logger.
	Logger *zerolog.Logger
}

// RunConfig is the immutable per-run configuration handed to every step.
//
// It carries the resolved toolchain paths and the environment overrides
// (CARGO_HOME, RUSTUP_HOME, extended PATH) that isolate the run from any
// pre-existing toolchain. It is constructed once at startup and never
// modified afterwards; steps receive it read-only.
type RunConfig struct {
	SourceDir   string
	InstallRoot string
	Toolchain   ToolchainSpec
	Example     string
	Verbose     bool

	// Resolved toolchain layout inside InstallRoot.
	CargoHome  string
	RustupHome string
	BinDir     string

	// Env is the full subprocess environment: the parent environment plus
	// the isolation overrides, with BinDir first on PATH.
	Env []string

	Runner CommandRunner
	Logger zerolog.Logger
}

// installRootMarker tags a directory as created by this harness. A non-empty
// install root without the marker is rejected.
const installRootMarker = ".cargo-harness"

// NewRunConfig resolves Options into a RunConfig.
//
// The install root defaults to a unique job-local directory so repeated runs
// never share toolchain state. The environment overrides are computed here,
// once, and reused verbatim by every subsequent step.
func NewRunConfig(opts Options) (*RunConfig, error) {
	if opts.SourceDir == "" {
		return nil, fmt.Errorf("source directory is required")
	}

	sourceDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving source directory: %w", err)
	}

	spec := opts.Toolchain
	if spec == (ToolchainSpec{}) {
		spec = DefaultToolchainSpec()
	}
	if spec.DistServer == "" {
		spec.DistServer = DefaultDistServer
	}
	if spec.HostTriple == "" {
		spec.HostTriple = HostTriple()
	}
	if spec.Channel == "" {
		spec.Channel = "stable"
	}

	installRoot := opts.InstallRoot
	if installRoot == "" {
		installRoot = filepath.Join(os.TempDir(), "cargo-harness-"+uuid.NewString())
	}
	installRoot, err = filepath.Abs(installRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving install root: %w", err)
	}

	example := opts.Example
	if example == "" {
		example = DefaultExample
	}

	runner := opts.Runner
	if runner == nil {
		runner = NewExecRunner(os.Stdout)
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	cargoHome := filepath.Join(installRoot, "cargo")
	rustupHome := filepath.Join(installRoot, "rustup")
	binDir := filepath.Join(cargoHome, "bin")

	cfg := &RunConfig{
		SourceDir:   sourceDir,
		InstallRoot: installRoot,
		Toolchain:   spec,
		Example:     example,
		Verbose:     opts.Verbose,
		CargoHome:   cargoHome,
		RustupHome:  rustupHome,
		BinDir:      binDir,
		Env:         overrideEnv(os.Environ(), cargoHome, rustupHome, binDir),
		Runner:      runner,
		Logger:      logger,
	}

	return cfg, nil
}

// CargoPath returns the absolute path of the installed cargo binary.
// The absolute path keeps command resolution inside the install root
// regardless of the parent PATH.
func (c *RunConfig) CargoPath() string {
	return filepath.Join(c.BinDir, exeName("cargo"))
}

// RustupPath returns the absolute path of the installed rustup binary.
func (c *RunConfig) RustupPath() string {
	return filepath.Join(c.BinDir, exeName("rustup"))
}

// overrideEnv rebuilds an environment with the toolchain isolation variables
// applied and the toolchain bin directory first on PATH.
func overrideEnv(base []string, cargoHome, rustupHome, binDir string) []string {
	env := make([]string, 0, len(base)+3)

	sawPath := false
	for _, kv := range base {
		key := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			key = kv[:i]
		}
		switch key {
		case "CARGO_HOME", "RUSTUP_HOME":
			continue
		case "PATH":
			sawPath = true
			env = append(env, "PATH="+binDir+string(os.PathListSeparator)+kv[len("PATH="):])
		default:
			env = append(env, kv)
		}
	}

	if !sawPath {
		env = append(env, "PATH="+binDir)
	}

	env = append(env,
		"CARGO_HOME="+cargoHome,
		"RUSTUP_HOME="+rustupHome,
	)

	return env
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
