package ansible

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/complytime/complybeacon/evidencekit/evidence"
	"github.com/complytime/complybeacon/evidencekit/internal/metrics"
)

const (
	// HostnameEnv names the environment variable holding the assessed host.
	HostnameEnv = "TARGET_HOST"
	// DefaultHostname is reported when HostnameEnv is unset.
	DefaultHostname = "rhel9-host.example.com"
)

const unnamedTask = "N/A"

// Parser derives evidence records from a check report.
type Parser struct {
	logger   *slog.Logger
	observer *metrics.EvidenceObserver
}

type Option func(*Parser)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

func WithObserver(observer *metrics.EvidenceObserver) Option {
	return func(p *Parser) {
		p.observer = observer
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:   slog.Default(),
		observer: metrics.NewNoopObserver(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Evidence parses report with a default Parser.
func Evidence(report *Report) ([]evidence.Record, error) {
	return NewParser().Evidence(context.Background(), report)
}

// Evidence returns one record per control-tagged task, in the order tasks
// appear across all plays. Untagged tasks are skipped; a tagged task whose
// tags do not name exactly one control, first, aborts the parse.
func (p *Parser) Evidence(ctx context.Context, report *Report) ([]evidence.Record, error) {
	if report == nil || len(report.Plays) == 0 {
		return nil, ErrNoPlays
	}

	records := []evidence.Record{}
	for _, play := range report.Plays {
		for _, task := range play.Tasks {
			controlID, err := ParseControlID(task.Task.Tags)
			if err != nil {
				return nil, fmt.Errorf("task %q: %w", task.Task.Name, err)
			}
			if controlID == "" {
				p.logger.Debug("skipping untagged task", "play", play.Play.Name, "task", task.Task.Name)
				p.observer.Skipped(ctx, attribute.String("task", task.Task.Name))
				continue
			}

			record := TaskRecord(controlID, task)
			records = append(records, record)
			p.observer.Recorded(ctx,
				attribute.String(evidence.POLICY_RULE_ID, record.CheckID),
				attribute.String(evidence.POLICY_EVALUATION_RESULT, record.Result()))
		}
	}
	return records, nil
}

// TaskRecord builds the evidence record of a single tagged task.
func TaskRecord(controlID string, task TaskResult) evidence.Record {
	name := task.Task.Name
	if name == "" {
		name = unnamedTask
	}

	pass := !task.IsChanged()
	details := fmt.Sprintf("Task '%s': ", name)
	if pass {
		details += "Configuration is compliant."
	} else {
		details += "Configuration drift detected."
		if diff := task.DiffJSON(); diff != nil {
			details += " Diff: " + string(diff)
		}
	}
	return evidence.Record{CheckID: controlID, Pass: pass, Details: details}
}

// NewEvidenceReport wraps records into a host evidence report.
func NewEvidenceReport(records []evidence.Record, hostname string) evidence.Report {
	report := evidence.NewReport(evidence.TypeAnsibleCheck)
	if hostname == "" {
		hostname = DefaultHostname
	}
	report.Hostname = hostname
	for _, r := range records {
		report.Add(r)
	}
	return report
}
