package emit

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"

	"github.com/complytime/complybeacon/evidencekit/evidence"
)

const loggerName = "evidencekit"

// Emitter writes every record of an evidence report as one log record.
type Emitter struct {
	logger log.Logger
}

// NewEmitter returns an Emitter logging through provider, or through the
// global provider when provider is nil.
func NewEmitter(provider log.LoggerProvider) *Emitter {
	if provider == nil {
		provider = global.GetLoggerProvider()
	}
	return &Emitter{logger: provider.Logger(loggerName)}
}

// Emit logs the records of report in order. The record is the body; the
// report context and the determination are attributes.
func (e *Emitter) Emit(ctx context.Context, report evidence.Report) error {
	for _, r := range report.Checks {
		body, err := json.Marshal(r)
		if err != nil {
			return err
		}

		record := log.Record{}
		record.SetEventName(report.EvidenceType)
		record.SetTimestamp(report.Timestamp)
		record.SetObservedTimestamp(time.Now())
		record.SetSeverity(log.SeverityInfo)
		if !r.Pass {
			record.SetSeverity(log.SeverityWarn)
		}

		attrs := report.RecordAttributes(r)
		logAttrs := make([]log.KeyValue, 0, len(attrs))
		for _, attr := range attrs {
			logAttrs = append(logAttrs, log.KeyValueFromAttribute(attr))
		}
		record.AddAttributes(logAttrs...)
		record.SetBody(log.StringValue(string(body)))

		e.logger.Emit(ctx, record)
	}
	return nil
}
