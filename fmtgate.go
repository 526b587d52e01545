package cargoharness

import "context"

// FormattingGate runs the formatting checker over the whole source tree in
// check-only mode.
//
// Violations are reported, never rewritten; the source tree is not modified
// for the remainder of the run once this gate passes. The gate runs before
// any build or test step so cheap static checks fail the run before
// expensive dynamic ones start.
type FormattingGate struct{}

// Name implements Step.
func (s *FormattingGate) Name() string {
	return "formatting gate"
}

// Run implements Step.
func (s *FormattingGate) Run(ctx context.Context, cfg *RunConfig) *StepResult {
	if cfg.Verbose {
		cfg.Logger.Debug().Str("dir", cfg.SourceDir).Msg("cargo fmt --all -- --check")
	}

	result := cfg.Runner.Run(ctx, Command{
		Step: s.Name(),
		Path: cfg.CargoPath(),
		Args: []string{"fmt", "--all", "--", "--check"},
		Dir:  cfg.SourceDir,
		Env:  cfg.Env,
	})

	if !result.Success() {
		result.Err = StepError(s.Name(), result.Output, result.Err)
	}

	return result
}
