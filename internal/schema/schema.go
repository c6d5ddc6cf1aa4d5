package schema

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var files embed.FS

const baseURL = "https://complytime.dev/schemas/evidencekit/"

// Embedded schema names.
const (
	AnsibleCheckReport = "ansible-check-report.json"
	AssessmentPlan     = "assessment-plan.json"
)

// Validator checks raw JSON documents against one compiled schema.
type Validator struct {
	name   string
	schema *jsonschema.Schema
}

// Load compiles the embedded schema with the given name.
func Load(name string) (*Validator, error) {
	raw, err := files.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}

	url := baseURL + name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return &Validator{name: name, schema: compiled}, nil
}

// MustLoad is like Load but panics if the embedded schema does not compile.
func MustLoad(name string) *Validator {
	v, err := Load(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Name returns the schema file name.
func (v *Validator) Name() string {
	return v.name
}

// Validate decodes data and validates it. Invalid JSON and schema violations
// are both reported as errors.
func (v *Validator) Validate(data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.schema.Validate(inst); err != nil {
		return fmt.Errorf("does not match %s: %w", v.name, err)
	}
	return nil
}
