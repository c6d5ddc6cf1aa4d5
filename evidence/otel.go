package evidence

import "go.opentelemetry.io/otel/attribute"

// Evaluation results as named by the policy.evaluation.result attribute.
const (
	ResultPassed = "Passed"
	ResultFailed = "Failed"
)

// Compliance verdicts as named by the compliance.status attribute.
const (
	StatusCompliant    = "COMPLIANT"
	StatusNonCompliant = "NON_COMPLIANT"
)

// Result maps the pass flag onto the evaluation result vocabulary.
func (r Record) Result() string {
	if r.Pass {
		return ResultPassed
	}
	return ResultFailed
}

// Status maps the pass flag onto the compliance verdict vocabulary.
func (r Record) Status() string {
	if r.Pass {
		return StatusCompliant
	}
	return StatusNonCompliant
}

// EngineName identifies the source of the determinations in this report.
func (r Report) EngineName() string {
	switch r.EvidenceType {
	case TypeOpenShiftRuntime:
		return "openshift"
	case TypeAnsibleCheck:
		return "ansible"
	default:
		return "unknown"
	}
}

func (r Report) targetType() string {
	if r.ClusterID != "" {
		return "cluster"
	}
	return "host"
}

// RecordAttributes describes one record of the report with the compliance
// semantic conventions consumed by the rest of the pipeline.
func (r Report) RecordAttributes(record Record) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(EVIDENCE_TYPE, r.EvidenceType),
		attribute.String(EVIDENCE_COLLECTOR_VERSION, r.CollectorVersion),
		attribute.String(POLICY_ENGINE_NAME, r.EngineName()),
		attribute.String(POLICY_RULE_ID, record.CheckID),
		attribute.String(POLICY_EVALUATION_RESULT, record.Result()),
		attribute.String(POLICY_EVALUATION_MESSAGE, record.Details),
		attribute.String(POLICY_TARGET_ID, r.Subject()),
		attribute.String(POLICY_TARGET_TYPE, r.targetType()),
		attribute.String(COMPLIANCE_STATUS, record.Status()),
	}
}
