package cargoharness

import (
	"fmt"
	"strings"
)

// StepError creates a standardized step failure with output context.
//
// This helper formats failures consistently across all steps, including the
// captured subprocess output for debugging.
//
// # Format
//
// With error and output:
//
//	formatting gate failed: exit status 1
//
//	Step output:
//	Diff in src/lib.rs at line 10:
//	...
//
// With error but no output:
//
//	formatting gate failed: exit status 1
func StepError(step string, output []string, err error) error {
	outputStr := strings.Join(output, "\n")

	var prefix string
	if err != nil {
		prefix = fmt.Sprintf("%s failed: %v", step, err)
	} else {
		prefix = fmt.Sprintf("%s failed", step)
	}

	if outputStr != "" {
		return fmt.Errorf("%s\n\nStep output:\n%s", prefix, outputStr)
	}

	return fmt.Errorf("%s", prefix)
}

// failResult builds a StepResult for a step that failed without producing a
// subprocess exit status.
func failResult(step string, err error) *StepResult {
	return &StepResult{
		Step:     step,
		ExitCode: 1,
		Err:      err,
	}
}
