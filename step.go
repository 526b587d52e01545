package cargoharness

import "context"

// Step defines the interface every pipeline stage must implement.
//
// Steps are executed strictly sequentially, in registration order, by a
// Pipeline. A step must be side-effect-free on failure beyond its own
// subprocess exit; the driver handles abort semantics.
//
// # Step Lifecycle
//
//  1. Name() - used for logs and result attribution
//  2. Run()  - executes the stage, blocking until its subprocess terminates
//
// # Thread Safety
//
// Step implementations should be stateless; all per-run state lives in the
// RunConfig and the returned StepResult.
type Step interface {
	// Name returns the human-readable name of this step.
	//
	// Examples: "toolchain install", "formatting gate", "test default/debug".
	Name() string

	// Run executes the step and reports its result.
	//
	// A nil-error result with exit code 0 lets the pipeline continue; any
	// other result halts the run. Run must honor ctx cancellation through
	// the subprocess invocation.
	Run(ctx context.Context, cfg *RunConfig) *StepResult
}

// Pipeline is an ordered list of steps executed by a fail-fast driver loop.
//
// The pipeline never reorders or parallelizes: a later step's preconditions
// (toolchain present, formatting clean, earlier matrix entries passed) are
// guaranteed solely by the abort-on-failure of every earlier step.
type Pipeline struct {
	cfg   *RunConfig
	steps []Step
}

// NewPipeline assembles the standard verification pipeline:
// toolchain install, toolchain check, manifest check, formatting gate, one
// test step per matrix entry in declaration order, then one smoke step per
// smoke feature set.
func NewPipeline(cfg *RunConfig, matrix []MatrixEntry, smoke []FeatureSet) *Pipeline {
	p := &Pipeline{cfg: cfg}

	p.Register(&ToolchainInstaller{})
	p.Register(&ToolchainCheck{})
	p.Register(&ManifestCheck{Matrix: matrix, Smoke: smoke})
	p.Register(&FormattingGate{})
	for _, entry := range matrix {
		p.Register(&TestStep{Entry: entry})
	}
	for _, features := range smoke {
		p.Register(&SmokeStep{Features: features})
	}

	return p
}

// NewEmptyPipeline creates a pipeline with no steps registered, for callers
// that assemble a custom stage list.
func NewEmptyPipeline(cfg *RunConfig) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Register appends a step. Steps run in registration order.
//
// Not thread-safe. Register all steps before calling Run.
func (p *Pipeline) Register(step Step) {
	p.steps = append(p.steps, step)
}

// Steps returns a copy of the registered steps.
func (p *Pipeline) Steps() []Step {
	return append([]Step{}, p.steps...)
}

// Run executes every step in order and stops at the first failure.
//
// # Return Values
//
// Returns the results for all steps executed, up to and including the first
// failure, plus that failure's error. On a fully successful run the error is
// nil and every result has exit code 0.
//
// # Context Cancellation
//
// If the context is canceled between steps, processing stops immediately and
// a result carrying the context error is appended. Cancellation during a
// step is surfaced by the subprocess termination itself.
func (p *Pipeline) Run(ctx context.Context) ([]*StepResult, error) {
	var results []*StepResult

	for _, step := range p.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			results = append(results, failResult(step.Name(), ctxErr))
			return results, ctxErr
		}

		p.cfg.Logger.Info().Str("step", step.Name()).Msg("step started")

		result := step.Run(ctx, p.cfg)
		if result == nil {
			result = &StepResult{Step: step.Name()}
		}
		results = append(results, result)

		if !result.Success() {
			p.cfg.Logger.Error().
				Str("step", step.Name()).
				Int("exit_code", result.ExitCode).
				Msg("step failed, aborting run")
			return results, result.Err
		}

		p.cfg.Logger.Info().Str("step", step.Name()).Msg("step passed")
	}

	return results, nil
}

// ExitCode derives the harness exit status from a Run outcome: 0 when every
// step passed, otherwise the failing step's own status.
func ExitCode(results []*StepResult, err error) int {
	if err == nil {
		return 0
	}
	if len(results) == 0 {
		return 1
	}

	last := results[len(results)-1]
	if last.ExitCode != 0 {
		return last.ExitCode
	}
	return 1
}
