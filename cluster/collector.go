package cluster

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/complytime/complybeacon/evidencekit/evidence"
	"github.com/complytime/complybeacon/evidencekit/internal/metrics"
)

// UnknownClusterID is reported when the cluster identity cannot be read.
const UnknownClusterID = "unknown"

var clusterVersionQuery = Query{Resource: "clusterversion", Name: "version"}

// Collector runs every registered check against a live cluster.
type Collector struct {
	client   *Client
	registry *Registry
	logger   *slog.Logger
	observer *metrics.EvidenceObserver
}

// Option configures a Collector.
type Option func(*Collector)

// WithRegistry replaces the default checks.
func WithRegistry(r *Registry) Option {
	return func(c *Collector) {
		c.registry = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

func WithObserver(observer *metrics.EvidenceObserver) Option {
	return func(c *Collector) {
		c.observer = observer
	}
}

func NewCollector(client *Client, opts ...Option) *Collector {
	c := &Collector{
		client:   client,
		registry: DefaultRegistry(),
		logger:   slog.Default(),
		observer: metrics.NewNoopObserver(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClusterID reads spec.clusterID from the cluster version. Any failure
// degrades to UnknownClusterID.
func (c *Collector) ClusterID(ctx context.Context) string {
	result := c.client.Get(ctx, clusterVersionQuery)
	if !result.OK() {
		c.logger.Warn("could not read cluster identity", "err", result.Err)
		c.observer.QueryFailed(ctx, attribute.String("query", clusterVersionQuery.String()))
		return UnknownClusterID
	}
	id, found, err := unstructured.NestedString(result.Object, "spec", "clusterID")
	if err != nil || !found || id == "" {
		c.logger.Warn("cluster version has no cluster id", "err", err)
		return UnknownClusterID
	}
	return id
}

// Collect evaluates every check in registration order. Each check issues its
// own query, and a failing query only fails the check that owns it.
func (c *Collector) Collect(ctx context.Context) (evidence.Report, error) {
	report := evidence.NewReport(evidence.TypeOpenShiftRuntime)
	report.ClusterID = c.ClusterID(ctx)

	for _, check := range c.registry.Checks() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := c.client.Get(ctx, check.Query)
		if result.Err != nil {
			c.logger.Warn("query failed",
				"check", check.ID,
				"query", check.Query.String(),
				"err", result.Err)
			c.observer.QueryFailed(ctx,
				attribute.String(evidence.POLICY_RULE_ID, string(check.ID)),
				attribute.String("query", check.Query.String()))
		}

		record := check.Record(result)
		report.Add(record)
		c.observer.Recorded(ctx, report.RecordAttributes(record)...)
		c.logger.Debug("check evaluated", "check", check.ID, "control", check.Control, "pass", record.Pass)
	}

	// A cancelled context can surface as a failed final query; never report it
	// as a complete run.
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}
