package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestName is the manifest file written at the output root after a
// fully successful run. Its presence is the consumers' signal that the
// output tree is complete and consistent.
const ManifestName = "manifest.yaml"

// Manifest enumerates everything a run produced, so downstream generators
// can enumerate records without re-walking the source tree.
type Manifest struct {
	RunID       string   `yaml:"run_id"`
	RecordCount int      `yaml:"record_count"`
	Paths       []string `yaml:"paths"`
}

// WriteManifest publishes the manifest at the output root. This must be the
// last step of a run.
func WriteManifest(outDir string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(outDir, ManifestName), data, 0o644)
}

// LoadManifest reads a previously published manifest.
func LoadManifest(outDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(outDir, ManifestName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
