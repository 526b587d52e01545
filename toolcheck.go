package cargoharness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ToolRequirement describes a toolchain binary the pipeline depends on.
//
// Requirements are resolved against the harness-owned install root, not the
// process PATH: the check verifies the isolation actually produced the
// binaries the later steps will invoke.
type ToolRequirement struct {
	// Name is the tool binary name (e.g. "cargo", "rustup").
	Name string

	// Optional indicates this tool won't fail the check if missing.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

// requiredTools lists the binaries the remaining pipeline stages invoke.
func requiredTools() []ToolRequirement {
	return []ToolRequirement{
		{Name: "cargo", Purpose: "build and test driver"},
		{Name: "rustup", Purpose: "toolchain manager"},
		{Name: "cargo-fmt", Purpose: "formatting gate"},
	}
}

// CheckRequiredTools verifies each requirement is present in binDir.
//
// Returns nil if all required tools are available, or a single error listing
// every missing required tool. Optional tools never cause errors.
func CheckRequiredTools(binDir string, requirements []ToolRequirement) error {
	var missing []string

	for _, req := range requirements {
		path := filepath.Join(binDir, exeName(req.Name))
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			continue
		}
		if req.Optional {
			continue
		}
		if req.Purpose != "" {
			missing = append(missing, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
		} else {
			missing = append(missing, req.Name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	if len(missing) == 1 {
		return fmt.Errorf("%s not found in %s", missing[0], binDir)
	}

	return fmt.Errorf("missing toolchain binaries in %s: %s", binDir, strings.Join(missing, ", "))
}

// ToolchainCheck verifies the freshly installed toolchain is usable before
// any build cost is incurred.
type ToolchainCheck struct{}

// Name implements Step.
func (s *ToolchainCheck) Name() string {
	return "toolchain check"
}

// Run implements Step.
func (s *ToolchainCheck) Run(_ context.Context, cfg *RunConfig) *StepResult {
	if err := CheckRequiredTools(cfg.BinDir, requiredTools()); err != nil {
		return failResult(s.Name(), err)
	}
	return &StepResult{Step: s.Name()}
}
