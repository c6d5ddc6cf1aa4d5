package cluster

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// CheckFile is the on-disk form of a set of check descriptors.
type CheckFile struct {
	Checks []Check `yaml:"checks"`
}

// LoadChecks reads check descriptors from a YAML file and registers them in
// file order.
func LoadChecks(path string) (*Registry, error) {
	cleanedPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanedPath)
	if err != nil {
		return nil, err
	}
	return ParseChecks(data)
}

// ParseChecks decodes YAML check descriptors.
func ParseChecks(data []byte) (*Registry, error) {
	var file CheckFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding checks: %w", err)
	}
	if len(file.Checks) == 0 {
		return nil, fmt.Errorf("decoding checks: no checks defined")
	}
	return NewRegistry(file.Checks...)
}
