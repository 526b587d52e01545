package cargoharness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MatrixFile is an optional YAML manifest overriding the built-in matrix and
// smoke coverage. It is the authoritative place to widen or narrow which
// feature configurations receive an example run:
//
//	example: dump_phdrs
//	matrix:
//	  - features: default
//	    profile: debug
//	  - features: alloc-only
//	    profile: release
//	smoke:
//	  - default
//	  - alloc-only
type MatrixFile struct {
	Example string `yaml:"example"`
	Matrix  []struct {
		Features string `yaml:"features"`
		Profile  string `yaml:"profile"`
	} `yaml:"matrix"`
	Smoke []string `yaml:"smoke"`
}

// LoadMatrixFile parses and resolves a matrix manifest.
//
// Feature sets and profiles are referenced by their predeclared names; an
// unknown name is an error rather than a silently skipped entry. Sections
// left empty fall back to the built-in defaults, so a manifest may override
// only the smoke list.
func LoadMatrixFile(path string) ([]MatrixEntry, []FeatureSet, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("reading matrix manifest: %w", err)
	}

	var file MatrixFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, "", fmt.Errorf("parsing %s: %w", path, err)
	}

	matrix := DefaultMatrix()
	if len(file.Matrix) > 0 {
		matrix = matrix[:0]
		for i, raw := range file.Matrix {
			features, err := FeatureSetByName(raw.Features)
			if err != nil {
				return nil, nil, "", fmt.Errorf("matrix entry %d: %w", i+1, err)
			}
			profile, err := ProfileByName(raw.Profile)
			if err != nil {
				return nil, nil, "", fmt.Errorf("matrix entry %d: %w", i+1, err)
			}
			matrix = append(matrix, MatrixEntry{Features: features, Profile: profile})
		}
	}

	smoke := DefaultSmokeSets()
	if len(file.Smoke) > 0 {
		smoke = smoke[:0]
		for i, name := range file.Smoke {
			features, err := FeatureSetByName(name)
			if err != nil {
				return nil, nil, "", fmt.Errorf("smoke entry %d: %w", i+1, err)
			}
			smoke = append(smoke, features)
		}
	}

	example := file.Example
	if example == "" {
		example = DefaultExample
	}

	return matrix, smoke, example, nil
}
