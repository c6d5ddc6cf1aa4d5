package oscal

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/in-toto/go-witness/cryptoutil"

	"github.com/complytime/complybeacon/evidencekit/ansible"
)

var (
	// ErrNoPlays is returned when the report has no play to assess.
	ErrNoPlays = errors.New("report does not contain any plays")
	// ErrNoTasks is returned when the assessed play carries no tasks sequence.
	ErrNoTasks = errors.New("play does not contain a tasks sequence")
)

const (
	resultTitle          = "Automated Assessment from Ansible Check Report"
	evidenceDescription  = "The Ansible check mode report used as evidence for this assessment."
	unknownPlanTitle     = "Unknown Plan"
	methodTest           = "TEST"
	riskStatusOpen       = "open"
	targetTypeObjective  = "objective-id"
	mediaTypeJSON        = "application/json"
	satisfiedDescription = "Control is satisfied and correctly implemented."
	driftDescription     = "Control is NOT satisfied. The system configuration has drifted from the baseline."
)

// hashAlgorithms maps digest names onto OSCAL hash algorithm names.
var hashAlgorithms = map[string]string{
	"sha1":   "SHA-1",
	"sha224": "SHA-224",
	"sha256": "SHA-256",
	"sha384": "SHA-384",
	"sha512": "SHA-512",
}

// Assembler builds assessment results documents.
type Assembler struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Assembler)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// WithClock replaces the time source used for every timestamp.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithIDGenerator replaces the generator of document identifiers.
func WithIDGenerator(newID func() string) Option {
	return func(a *Assembler) {
		a.newID = newID
	}
}

func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble produces one result covering the tasks of the first play of
// report. Every control-tagged task yields an observation and a finding; a
// task that reported a change also yields an open risk and a POA&M reference
// in the back-matter.
func (a *Assembler) Assemble(report *ansible.Report, plan *AssessmentPlanDocument) (*AssessmentResultsDocument, error) {
	if report == nil || len(report.Plays) == 0 {
		return nil, ErrNoPlays
	}
	if plan == nil || plan.AssessmentPlan.UUID == "" {
		return nil, fmt.Errorf("%w: missing uuid", ErrInvalidPlan)
	}
	play := report.Plays[0]
	if play.Tasks == nil {
		return nil, fmt.Errorf("play %q: %w", play.Play.Name, ErrNoTasks)
	}
	if extra := len(report.Plays) - 1; extra > 0 {
		a.logger.Warn("only the first play is assessed", "ignored", extra)
	}

	start := a.now()
	meta := plan.AssessmentPlan.Metadata
	title := meta.Title
	if title == "" {
		title = unknownPlanTitle
	}

	evidence := Resource{
		UUID:        a.newID(),
		Description: evidenceDescription,
		Rlinks: []Rlink{{
			Href:      report.Source.Path,
			MediaType: mediaTypeJSON,
			Hashes:    hashes(report.Source.Digest),
		}},
	}
	resources := []Resource{evidence}

	result := Result{
		UUID:         a.newID(),
		Title:        resultTitle,
		Start:        start,
		Observations: []Observation{},
		Findings:     []Finding{},
		Risks:        []Risk{},
	}

	controls := []SelectControlByID{}
	seen := make(map[string]bool)
	satisfied := 0
	for _, task := range play.Tasks {
		controlID, err := ansible.ParseControlID(task.Task.Tags)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", task.Task.Name, err)
		}
		if controlID == "" {
			continue
		}
		if !seen[controlID] {
			seen[controlID] = true
			controls = append(controls, SelectControlByID{ControlID: controlID})
		}

		taskName := task.Task.Name
		if taskName == "" {
			taskName = "Task for " + controlID
		}
		compliant := !task.IsChanged()

		observation := Observation{
			UUID:        a.newID(),
			Title:       "Observation for " + controlID,
			Description: fmt.Sprintf("Automated check performed by Ansible task: '%s'", taskName),
			Methods:     []string{methodTest},
			Collected:   a.now(),
			RelevantEvidence: []RelevantEvidence{{
				Href:        "#" + evidence.UUID,
				Description: fmt.Sprintf("Ansible check mode report for task related to %s.", controlID),
			}},
		}
		result.Observations = append(result.Observations, observation)

		finding := Finding{
			UUID:  a.newID(),
			Title: "Finding for " + controlID,
			Target: FindingTarget{
				Type:     targetTypeObjective,
				TargetID: controlID,
			},
			RelatedObservations: []RelatedObservation{{ObservationUUID: observation.UUID}},
		}
		if compliant {
			satisfied++
			finding.Description = satisfiedDescription
			finding.Target.Status.State = StateSatisfied
		} else {
			finding.Description = driftDescription
			finding.Target.Status.State = StateNotSatisfied
		}
		result.Findings = append(result.Findings, finding)

		if compliant {
			continue
		}
		riskID, poamID := a.newID(), a.newID()
		result.Risks = append(result.Risks, Risk{
			UUID:  riskID,
			Title: "Configuration Drift Detected for " + controlID,
			Description: fmt.Sprintf("The Ansible check mode report indicated a 'changed' state for the task "+
				"implementing %s, meaning the system is not compliant with its intended configuration.", controlID),
			Statement:            fmt.Sprintf("The system's implementation of %s is non-compliant.", controlID),
			Status:               riskStatusOpen,
			RelatedRiskResponses: []RelatedRiskResponse{{RiskResponseUUID: poamID}},
		})
		resources = append(resources, Resource{
			UUID:  poamID,
			Title: "POA&M for " + controlID,
			Description: fmt.Sprintf("This is a reference to a separate POA&M file that would track the "+
				"remediation for the finding related to %s.", controlID),
		})
	}

	result.Description = describe(play, len(result.Findings), satisfied)
	result.ReviewedControls = ReviewedControls{
		ControlSelections: []ControlSelection{{
			Description:     "Controls exercised by tagged tasks of the check run.",
			IncludeControls: controls,
		}},
	}
	result.End = a.now()

	return &AssessmentResultsDocument{
		AssessmentResults: AssessmentResults{
			UUID: a.newID(),
			Metadata: Metadata{
				Title:              "Assessment Results for " + title,
				LastModified:       start,
				Version:            DocumentVersion,
				OSCALVersion:       OSCALVersion,
				Roles:              orEmpty(meta.Roles),
				Parties:            orEmpty(meta.Parties),
				ResponsibleParties: orEmpty(meta.ResponsibleParties),
			},
			ImportAp:   ImportAp{Href: "#" + plan.AssessmentPlan.UUID},
			Results:    []Result{result},
			BackMatter: BackMatter{Resources: resources},
		},
	}, nil
}

func describe(play ansible.Play, findings, satisfied int) string {
	name := play.Play.Name
	if name == "" {
		return fmt.Sprintf("Ansible check mode run: %d of %d controls satisfied.", satisfied, findings)
	}
	return fmt.Sprintf("Ansible check mode run of play '%s': %d of %d controls satisfied.", name, satisfied, findings)
}

func hashes(digest cryptoutil.DigestSet) []Hash {
	if len(digest) == 0 {
		return nil
	}
	names, err := digest.ToNameMap()
	if err != nil {
		return nil
	}
	out := make([]Hash, 0, len(names))
	for name, value := range names {
		algorithm, ok := hashAlgorithms[name]
		if !ok {
			continue
		}
		out = append(out, Hash{Algorithm: algorithm, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Algorithm < out[j].Algorithm })
	return out
}

func orEmpty(v []json.RawMessage) []json.RawMessage {
	if v == nil {
		return []json.RawMessage{}
	}
	return v
}
