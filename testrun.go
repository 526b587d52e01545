package cargoharness

import (
	"context"
	"strings"
)

// TestStep compiles and runs the crate's test suite under one matrix entry.
//
// Each step links a fresh test binary for its (feature set, profile) pair;
// artifacts are not required to be shared across entries. The run is an
// atomic gate: a non-zero exit stops the pipeline and later entries are
// never attempted.
type TestStep struct {
	Entry MatrixEntry
}

// Name implements Step.
func (s *TestStep) Name() string {
	return "test " + s.Entry.Label()
}

// Run implements Step.
func (s *TestStep) Run(ctx context.Context, cfg *RunConfig) *StepResult {
	args := []string{"test"}
	args = append(args, s.Entry.Profile.CargoArgs()...)
	args = append(args, s.Entry.Features.CargoArgs()...)

	if cfg.Verbose {
		cfg.Logger.Debug().Str("dir", cfg.SourceDir).Msg("cargo " + strings.Join(args, " "))
	}

	result := cfg.Runner.Run(ctx, Command{
		Step: s.Name(),
		Path: cfg.CargoPath(),
		Args: args,
		Dir:  cfg.SourceDir,
		Env:  cfg.Env,
	})

	if !result.Success() {
		result.Err = StepError(s.Name(), result.Output, result.Err)
	}

	return result
}
