//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target runs the full check sequence.
var Default = Check

// Build compiles the harness binary.
func Build() error {
	return sh.RunV("go", "build", "-o", "bin/cargo-harness", "./cmd/cargo-harness")
}

// Test runs the Go test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet across the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and tests, then builds.
func Check() error {
	mg.SerialDeps(Vet, Test)
	return Build()
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm("bin")
}
