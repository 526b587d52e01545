package cargoharness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Manifest is the subset of a Cargo.toml the harness inspects.
type Manifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Features map[string][]string `toml:"features"`
	Examples []struct {
		Name string `toml:"name"`
	} `toml:"example"`
}

// LoadManifest parses the crate manifest at the root of sourceDir.
func LoadManifest(sourceDir string) (*Manifest, error) {
	path := filepath.Join(sourceDir, "Cargo.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading crate manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &m, nil
}

// HasFeature reports whether the crate declares the named feature.
func (m *Manifest) HasFeature(name string) bool {
	_, ok := m.Features[name]
	return ok
}

// HasExample reports whether the crate provides the named example, either as
// an [[example]] manifest entry or as examples/<name>.rs.
func (m *Manifest) HasExample(sourceDir, name string) bool {
	for _, example := range m.Examples {
		if example.Name == name {
			return true
		}
	}

	info, err := os.Stat(filepath.Join(sourceDir, "examples", name+".rs"))
	return err == nil && info.Mode().IsRegular()
}

// ManifestCheck validates the configured matrix against the crate manifest.
//
// It catches drift between the harness configuration and the crate (a renamed
// feature, a removed example) before any compile cost is paid.
type ManifestCheck struct {
	Matrix []MatrixEntry
	Smoke  []FeatureSet
}

// Name implements Step.
func (s *ManifestCheck) Name() string {
	return "manifest check"
}

// Run implements Step.
func (s *ManifestCheck) Run(_ context.Context, cfg *RunConfig) *StepResult {
	manifest, err := LoadManifest(cfg.SourceDir)
	if err != nil {
		return failResult(s.Name(), err)
	}

	for _, entry := range s.Matrix {
		for _, feature := range entry.Features.Features {
			if !manifest.HasFeature(feature) {
				return failResult(s.Name(), fmt.Errorf(
					"matrix entry %s needs feature %q, which crate %s does not declare",
					entry.Label(), feature, manifest.Package.Name))
			}
		}
	}

	for _, features := range s.Smoke {
		for _, feature := range features.Features {
			if !manifest.HasFeature(feature) {
				return failResult(s.Name(), fmt.Errorf(
					"smoke set %s needs feature %q, which crate %s does not declare",
					features.Name, feature, manifest.Package.Name))
			}
		}
	}

	if len(s.Smoke) > 0 && !manifest.HasExample(cfg.SourceDir, cfg.Example) {
		return failResult(s.Name(), fmt.Errorf(
			"crate %s has no example named %q", manifest.Package.Name, cfg.Example))
	}

	return &StepResult{Step: s.Name()}
}
