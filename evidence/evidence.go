package evidence

import "time"

// Evidence types written by the collectors.
const (
	TypeOpenShiftRuntime = "openshift_runtime_evidence"
	TypeAnsibleCheck     = "ansible_check_report"
)

// CollectorVersion is stamped on every report as `evidence_collector_version`.
const CollectorVersion = "1.0.0"

// Record is a single compliance determination keyed by a check identifier.
// The check identifier correlates to a control in an external mapping.
type Record struct {
	CheckID string `json:"check_id"`
	Pass    bool   `json:"pass"`
	Details string `json:"details"`
}

// Report is the flat evidence document produced by a collector.
//
// Exactly one of ClusterID or Hostname identifies the subject, depending on
// the collector that produced the report.
type Report struct {
	EvidenceType     string    `json:"evidence_type"`
	Timestamp        time.Time `json:"timestamp"`
	ClusterID        string    `json:"cluster_id,omitempty"`
	Hostname         string    `json:"hostname,omitempty"`
	CollectorVersion string    `json:"evidence_collector_version"`
	Checks           []Record  `json:"checks"`
}

// NewReport returns an empty report of the given type stamped with the
// current UTC time.
func NewReport(evidenceType string) Report {
	return Report{
		EvidenceType:     evidenceType,
		Timestamp:        time.Now().UTC(),
		CollectorVersion: CollectorVersion,
		Checks:           []Record{},
	}
}

// Add appends a record, preserving insertion order.
func (r *Report) Add(record Record) {
	r.Checks = append(r.Checks, record)
}

// Subject returns the identifier of whatever the report describes.
func (r Report) Subject() string {
	if r.ClusterID != "" {
		return r.ClusterID
	}
	return r.Hostname
}

// Summary counts passing and failing records.
func (r Report) Summary() (passed, failed int) {
	for _, c := range r.Checks {
		if c.Pass {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
