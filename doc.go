// Package cargoharness provides build verification for Cargo-based native libraries.
//
// This package is the Go equivalent of the shell-based CI scripts that Rust
// crates traditionally carry: it installs an isolated toolchain, enforces a
// formatting gate, and exercises the crate under a fixed matrix of feature
// and profile combinations.
//
// # Pipeline Stages
//
// A run executes these stages in order, stopping at the first failure:
//
//   - Toolchain install - rustup and the requested channel, job-local
//   - Toolchain check   - cargo/rustup/rustfmt reachable in the install root
//   - Manifest check    - matrix features and smoke example exist in Cargo.toml
//   - Formatting gate   - cargo fmt in check-only mode
//   - Test matrix       - cargo test per (feature set, profile) entry
//   - Example smoke     - cargo run --release --example per smoke feature set
//
// # Basic Usage
//
// Build a run configuration and execute the default pipeline:
//
//	cfg, err := cargoharness.NewRunConfig(cargoharness.Options{
//	    SourceDir: "/path/to/crate",
//	    Toolchain: cargoharness.DefaultToolchainSpec(),
//	})
//	if err != nil {
//	    return err
//	}
//
//	pipeline := cargoharness.NewPipeline(cfg, cargoharness.DefaultMatrix(), cargoharness.DefaultSmokeSets())
//	results, err := pipeline.Run(ctx)
//
// # Architecture
//
// The pipeline is an ordered list of typed steps executed by a small driver
// loop:
//
//	Pipeline
//	├── ToolchainInstaller (rustup-init download + install)
//	├── ToolchainCheck     (installed binaries reachable)
//	├── ManifestCheck      (Cargo.toml introspection)
//	├── FormattingGate     (cargo fmt --check)
//	├── TestStep × N       (one per MatrixEntry, declaration order)
//	└── SmokeStep × M      (one per smoke feature set)
//
// Each step implements the Step interface and reports a StepResult. The
// driver never reorders, parallelizes, or retries steps: a non-zero exit
// anywhere halts the run and becomes the harness exit status.
//
// # Isolation
//
// The toolchain is installed into a harness-owned directory; CARGO_HOME,
// RUSTUP_HOME, and PATH overrides live in the RunConfig and are passed to
// every subprocess. No pre-existing toolchain or shell profile is touched.
//
// # Requirements
//
// Requires Go 1.25 or later and network access to the Rust dist server
// (TLS 1.2 minimum, fail closed).
package cargoharness
