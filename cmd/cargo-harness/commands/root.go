package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// Execute runs the root command and returns the process exit status: 0 only
// if every pipeline step succeeded, otherwise the first failing step's own
// status.
func Execute(ctx context.Context, version, commit string) int {
	rootCmd := newRootCommand(version, commit)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var runErr *runError
		if errors.As(err, &runErr) {
			return runErr.code
		}
		log.Error().Err(err).Msg("Command execution failed")
		return 1
	}
	return 0
}

func newRootCommand(version, commit string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cargo-harness",
		Short: "Build verification harness for Cargo-based native libraries",
		Long: `cargo-harness installs an isolated Rust toolchain, enforces a formatting
gate, and exercises a crate under a fixed matrix of feature sets and build
profiles, followed by example smoke runs.

Every stage is a hard gate: the first failure halts the run and becomes the
harness exit status.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newMatrixCommand())

	return rootCmd
}

// runError carries a pipeline exit status through cobra's error return.
type runError struct {
	code int
	err  error
}

func (e *runError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("run failed with exit code %d", e.code)
}

func (e *runError) Unwrap() error { return e.err }
