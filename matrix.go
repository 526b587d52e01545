package cargoharness

import "fmt"

// FeatureSet names a predeclared combination of crate features.
//
// Feature sets are fixed values, not free-form user input: each one maps to
// an exact set of cargo flags. The reduced-runtime sets disable the crate's
// default features and optionally re-enable the allocator-backed subset.
type FeatureSet struct {
	// Name identifies the set in logs, labels, and matrix manifests.
	Name string

	// NoDefaultFeatures disables the crate's default feature bundle.
	NoDefaultFeatures bool

	// Features are explicit feature names passed via --features.
	Features []string
}

// The predeclared feature sets.
var (
	// FeatureSetDefault builds with the crate's default feature bundle.
	FeatureSetDefault = FeatureSet{Name: "default"}

	// FeatureSetAllocOnly builds the reduced-runtime configuration that keeps
	// dynamic allocation available.
	FeatureSetAllocOnly = FeatureSet{
		Name:              "alloc-only",
		NoDefaultFeatures: true,
		Features:          []string{"alloc"},
	}

	// FeatureSetMinimal builds the reduced-runtime configuration with no
	// allocator support at all.
	FeatureSetMinimal = FeatureSet{
		Name:              "minimal",
		NoDefaultFeatures: true,
	}
)

// FeatureSetByName resolves one of the predeclared feature sets.
func FeatureSetByName(name string) (FeatureSet, error) {
	switch name {
	case FeatureSetDefault.Name:
		return FeatureSetDefault, nil
	case FeatureSetAllocOnly.Name:
		return FeatureSetAllocOnly, nil
	case FeatureSetMinimal.Name:
		return FeatureSetMinimal, nil
	}
	return FeatureSet{}, fmt.Errorf("unknown feature set: %q", name)
}

// CargoArgs returns the cargo flags selecting this feature set.
func (f FeatureSet) CargoArgs() []string {
	var args []string
	if f.NoDefaultFeatures {
		args = append(args, "--no-default-features")
	}
	for _, feature := range f.Features {
		args = append(args, "--features", feature)
	}
	return args
}

// Profile selects the optimization/assertion posture of a build.
type Profile string

// Supported build profiles.
const (
	ProfileDebug   Profile = "debug"
	ProfileRelease Profile = "release"
)

// ProfileByName resolves a profile name.
func ProfileByName(name string) (Profile, error) {
	switch Profile(name) {
	case ProfileDebug, ProfileRelease:
		return Profile(name), nil
	}
	return "", fmt.Errorf("unknown profile: %q", name)
}

// CargoArgs returns the cargo flags selecting this profile. Debug is cargo's
// default and needs no flag.
func (p Profile) CargoArgs() []string {
	if p == ProfileRelease {
		return []string{"--release"}
	}
	return nil
}

// MatrixEntry is one (feature set, profile) combination under test.
type MatrixEntry struct {
	Features FeatureSet
	Profile  Profile
}

// Label returns a short human-readable identifier for the entry.
func (e MatrixEntry) Label() string {
	return fmt.Sprintf("%s/%s", e.Features.Name, e.Profile)
}

// DefaultMatrix returns the verification matrix in execution order.
//
// This is a fixed enumeration, not a cross-product: the reduced-runtime sets
// are exercised exactly as listed. Default-feature builds validate the common
// path; the two reduced-runtime sets validate that the crate degrades
// correctly without host-runtime facilities, with and without an allocator
// (those are materially different code paths and are tested independently).
func DefaultMatrix() []MatrixEntry {
	return []MatrixEntry{
		{Features: FeatureSetDefault, Profile: ProfileDebug},
		{Features: FeatureSetDefault, Profile: ProfileRelease},
		{Features: FeatureSetAllocOnly, Profile: ProfileDebug},
		{Features: FeatureSetAllocOnly, Profile: ProfileRelease},
		{Features: FeatureSetMinimal, Profile: ProfileDebug},
		{Features: FeatureSetMinimal, Profile: ProfileRelease},
	}
}

// DefaultExample is the example binary used for smoke runs.
const DefaultExample = "dump_phdrs"

// DefaultSmokeSets returns the feature sets that get an example smoke run,
// one per default-vs-reduced-runtime axis. The minimal set is excluded: the
// example prints through facilities the no-allocator build does not provide.
func DefaultSmokeSets() []FeatureSet {
	return []FeatureSet{
		FeatureSetDefault,
		FeatureSetAllocOnly,
	}
}
