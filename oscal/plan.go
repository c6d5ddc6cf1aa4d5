package oscal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/complytime/complybeacon/evidencekit/internal/schema"
)

// ErrInvalidPlan is returned for plans that cannot be decoded or lack an identifier.
var ErrInvalidPlan = errors.New("invalid assessment plan")

var planValidator = schema.MustLoad(schema.AssessmentPlan)

// LoadPlan reads an assessment plan in JSON or, for .yaml and .yml files, YAML.
func LoadPlan(path string) (*AssessmentPlanDocument, error) {
	cleanedPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanedPath)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}

	switch strings.ToLower(filepath.Ext(cleanedPath)) {
	case ".yaml", ".yml":
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPlan, path, err)
		}
	}

	plan, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return plan, nil
}

// ParsePlan validates and decodes a JSON assessment plan.
func ParsePlan(data []byte) (*AssessmentPlanDocument, error) {
	if err := planValidator.Validate(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	var plan AssessmentPlanDocument
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return &plan, nil
}
