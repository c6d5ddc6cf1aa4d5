// Package oscal assembles OSCAL assessment results from an Ansible check
// report and the assessment plan it was run against.
package oscal

import (
	"encoding/json"
	"time"
)

// OSCALVersion is the model version stamped on produced documents.
const OSCALVersion = "1.0.0"

// DocumentVersion is the version of the produced document.
const DocumentVersion = "1.0.0"

// AssessmentResultsDocument is the root of an assessment results file.
type AssessmentResultsDocument struct {
	AssessmentResults AssessmentResults `json:"assessment-results"`
}

type AssessmentResults struct {
	UUID       string     `json:"uuid"`
	Metadata   Metadata   `json:"metadata"`
	ImportAp   ImportAp   `json:"import-ap"`
	Results    []Result   `json:"results"`
	BackMatter BackMatter `json:"back-matter"`
}

// Metadata carries the roles, parties and responsible parties of the plan
// verbatim.
type Metadata struct {
	Title              string            `json:"title"`
	LastModified       time.Time         `json:"last-modified"`
	Version            string            `json:"version"`
	OSCALVersion       string            `json:"oscal-version"`
	Roles              []json.RawMessage `json:"roles"`
	Parties            []json.RawMessage `json:"parties"`
	ResponsibleParties []json.RawMessage `json:"responsible-parties"`
}

// ImportAp points back at the assessment plan.
type ImportAp struct {
	Href string `json:"href"`
}

type Result struct {
	UUID             string           `json:"uuid"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Start            time.Time        `json:"start"`
	End              time.Time        `json:"end"`
	ReviewedControls ReviewedControls `json:"reviewed-controls"`
	Observations     []Observation    `json:"observations"`
	Findings         []Finding        `json:"findings"`
	Risks            []Risk           `json:"risks"`
}

type ReviewedControls struct {
	ControlSelections []ControlSelection `json:"control-selections"`
}

type ControlSelection struct {
	Description     string              `json:"description,omitempty"`
	IncludeControls []SelectControlByID `json:"include-controls"`
}

type SelectControlByID struct {
	ControlID string `json:"control-id"`
}

type Observation struct {
	UUID             string             `json:"uuid"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Methods          []string           `json:"methods"`
	Collected        time.Time          `json:"collected"`
	RelevantEvidence []RelevantEvidence `json:"relevant-evidence"`
}

type RelevantEvidence struct {
	Href        string `json:"href"`
	Description string `json:"description"`
}

// Finding states whether the objective of one control is satisfied.
type Finding struct {
	UUID                string               `json:"uuid"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	Target              FindingTarget        `json:"target"`
	RelatedObservations []RelatedObservation `json:"related-observations"`
}

type FindingTarget struct {
	Type     string          `json:"type"`
	TargetID string          `json:"target-id"`
	Status   ObjectiveStatus `json:"status"`
}

type ObjectiveStatus struct {
	State string `json:"state"`
}

// Objective states.
const (
	StateSatisfied    = "satisfied"
	StateNotSatisfied = "not-satisfied"
)

type RelatedObservation struct {
	ObservationUUID string `json:"observation-uuid"`
}

type Risk struct {
	UUID                 string                `json:"uuid"`
	Title                string                `json:"title"`
	Description          string                `json:"description"`
	Statement            string                `json:"statement"`
	Status               string                `json:"status"`
	RelatedRiskResponses []RelatedRiskResponse `json:"related-risk-responses"`
}

type RelatedRiskResponse struct {
	RiskResponseUUID string `json:"risk-response-uuid"`
}

type BackMatter struct {
	Resources []Resource `json:"resources"`
}

type Resource struct {
	UUID        string  `json:"uuid"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Rlinks      []Rlink `json:"rlinks,omitempty"`
}

type Rlink struct {
	Href      string `json:"href"`
	MediaType string `json:"media-type,omitempty"`
	Hashes    []Hash `json:"hashes,omitempty"`
}

type Hash struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value"`
}

// AssessmentPlanDocument is the subset of an OSCAL assessment plan read by
// the assembler.
type AssessmentPlanDocument struct {
	AssessmentPlan AssessmentPlan `json:"assessment-plan"`
}

type AssessmentPlan struct {
	UUID     string       `json:"uuid"`
	Metadata PlanMetadata `json:"metadata"`
}

type PlanMetadata struct {
	Title              string            `json:"title"`
	Roles              []json.RawMessage `json:"roles"`
	Parties            []json.RawMessage `json:"parties"`
	ResponsibleParties []json.RawMessage `json:"responsible-parties"`
}
