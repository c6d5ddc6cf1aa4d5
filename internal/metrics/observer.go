package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// EvidenceObserver counts what the collectors produce and what they had to
// leave out.
type EvidenceObserver struct {
	meter         metric.Meter
	recordedCount metric.Int64Counter
	skippedCount  metric.Int64Counter
	queryFailures metric.Int64Counter
}

func NewEvidenceObserver(meter metric.Meter) (*EvidenceObserver, error) {
	recorded, err := meter.Int64Counter("evidence.records",
		metric.WithDescription("Evidence records produced"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter("evidence.tasks.skipped",
		metric.WithDescription("Dry-run tasks without a control identifier"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("evidence.queries.failed",
		metric.WithDescription("Cluster queries that returned no data"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}
	return &EvidenceObserver{
		meter:         meter,
		recordedCount: recorded,
		skippedCount:  skipped,
		queryFailures: failures,
	}, nil
}

// NewNoopObserver returns an observer that discards every measurement.
func NewNoopObserver() *EvidenceObserver {
	// noop instruments never fail to register
	observer, _ := NewEvidenceObserver(noop.NewMeterProvider().Meter("noop"))
	return observer
}

func (o *EvidenceObserver) Recorded(ctx context.Context, attrs ...attribute.KeyValue) {
	o.recordedCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (o *EvidenceObserver) Skipped(ctx context.Context, attrs ...attribute.KeyValue) {
	o.skippedCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (o *EvidenceObserver) QueryFailed(ctx context.Context, attrs ...attribute.KeyValue) {
	o.queryFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}
