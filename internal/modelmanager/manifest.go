// Package modelmanager resolves on-device model ids to local paths,
// downloading and validating weights on miss, and tracks a YAML
// manifest of what's on disk next to the weights themselves.
//
// Grounded on the teacher's internal/marketplace package: Installer's
// download-to-temp-dir-then-atomic-rename staging pattern, Verifier's
// checksum computation, and the on-disk manifest file convention, all
// generalised from plugin binaries to model weight archives.
package modelmanager

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestFilename is written next to every downloaded model's weights.
const ManifestFilename = "model.yaml"

// Manifest describes one downloaded model's id, checksum, size, download
// time and source URL, persisted as YAML alongside its weights.
type Manifest struct {
	ModelID      string    `yaml:"model_id"`
	Checksum     string    `yaml:"checksum"`
	WeightsSize  int64     `yaml:"weights_size"`
	DownloadedAt time.Time `yaml:"downloaded_at"`
	SourceURL    string    `yaml:"source_url"`
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("modelmanager: parse manifest %s: %w", path, err)
	}
	return &m, nil
}

func writeManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("modelmanager: marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func manifestPath(modelDir string) string {
	return filepath.Join(modelDir, ManifestFilename)
}
