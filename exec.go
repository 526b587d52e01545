package cargoharness

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// Command describes one blocking subprocess invocation.
type Command struct {
	Step string   // Name of the step issuing the command
	Path string   // Executable path (absolute where isolation matters)
	Args []string // Arguments, excluding the executable
	Dir  string   // Working directory
	Env  []string // Full environment, nil means inherit
}

// CommandRunner executes commands on behalf of pipeline steps.
//
// The runner is the pipeline's only process boundary: every build, test, and
// install invocation goes through it. Tests inject a fake runner to verify
// step ordering and fail-fast behavior without spawning real subprocesses.
type CommandRunner interface {
	// Run executes the command and blocks until it terminates. The returned
	// result carries the exit status and captured combined output; Err is
	// non-nil whenever the exit status is non-zero or the process could not
	// be started.
	Run(ctx context.Context, cmd Command) *StepResult
}

// ExecRunner runs commands with os/exec, teeing combined output to a writer
// so the user sees the concatenation of sequential step outputs as they
// happen.
type ExecRunner struct {
	stdout io.Writer
}

// NewExecRunner creates the real command executor. Output is streamed to w
// in addition to being captured in each StepResult.
func NewExecRunner(w io.Writer) *ExecRunner {
	if w == nil {
		w = io.Discard
	}
	return &ExecRunner{stdout: w}
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(ctx context.Context, command Command) *StepResult {
	cmd := exec.CommandContext(ctx, command.Path, command.Args...)
	cmd.Dir = command.Dir
	if command.Env != nil {
		cmd.Env = command.Env
	}

	var buf bytes.Buffer
	out := io.MultiWriter(&buf, r.stdout)
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()

	result := &StepResult{
		Step:   command.Step,
		Output: splitOutputLines(buf.String()),
	}

	if err != nil {
		result.ExitCode = exitStatus(err)
		result.Err = err
	}

	return result
}

// exitStatus extracts the subprocess exit code from a Run error. Errors that
// carry no exit status (start failures, cancellation) map to 1 so the
// fail-fast contract still yields a non-zero harness status.
func exitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

func splitOutputLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
