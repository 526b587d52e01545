package cargoharness

import (
	"context"
	"strings"
)

// SmokeStep builds and executes the crate's example binary against the
// compiled library as an end-to-end functional check.
//
// Smoke runs happen after the full test matrix passes, always under the
// release profile, once per configured feature set. Success is exit status
// zero; the harness does not interpret the example's output.
type SmokeStep struct {
	Features FeatureSet
}

// Name implements Step.
func (s *SmokeStep) Name() string {
	return "example " + s.Features.Name
}

// Run implements Step.
func (s *SmokeStep) Run(ctx context.Context, cfg *RunConfig) *StepResult {
	args := []string{"run", "--release", "--example", cfg.Example}
	args = append(args, s.Features.CargoArgs()...)

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
