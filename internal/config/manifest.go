package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"skillrouter/internal/catalog"
)

// Manifest is the tool registration input produced by an external
// skill-discovery process. The router never scans skill packages itself; it
// only consumes the metadata listed here.
type Manifest struct {
	Tools []catalog.ToolRecord `yaml:"tools" json:"tools"`
}

// LoadManifest reads a YAML or JSON tool manifest (by extension).
func LoadManifest(path string) (Manifest, error) {
	var m Manifest

	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("failed to read manifest: %w", err)
	}

	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return m, fmt.Errorf("failed to parse manifest: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return m, fmt.Errorf("failed to parse manifest: %w", err)
		}
	}

	return m, nil
}
