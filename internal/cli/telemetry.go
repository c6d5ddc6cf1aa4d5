package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/complytime/complybeacon/evidencekit/emit"
	"github.com/complytime/complybeacon/evidencekit/evidence"
	"github.com/complytime/complybeacon/evidencekit/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// Telemetry exports evidence when an OTLP endpoint is configured and is inert
// otherwise.
type Telemetry struct {
	Observer *metrics.EvidenceObserver
	emitter  *emit.Emitter
	shutdown emit.ShutdownFunc
}

// StartTelemetry connects to the endpoint given by --otel-endpoint, if any.
func StartTelemetry(ctx context.Context, cmd *cobra.Command, serviceName string) (*Telemetry, error) {
	endpoint, err := cmd.Flags().GetString(FlagOTelEndpoint)
	if err != nil {
		return nil, err
	}
	if endpoint == "" {
		return &Telemetry{Observer: metrics.NewNoopObserver()}, nil
	}

	slog.Info("configuring evidence export", "endpoint", endpoint)
	shutdown, err := emit.Setup(ctx, endpoint, serviceName)
	if err != nil {
		return nil, err
	}
	observer, err := metrics.NewEvidenceObserver(emit.Meter())
	if err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}
	return &Telemetry{
		Observer: observer,
		emitter:  emit.NewEmitter(nil),
		shutdown: shutdown,
	}, nil
}

// Export emits every record of report.
func (t *Telemetry) Export(ctx context.Context, report evidence.Report) error {
	if t.emitter == nil {
		return nil
	}
	return t.emitter.Emit(ctx, report)
}

// Shutdown flushes pending telemetry. It does not inherit cancellation from
// ctx so records are flushed after an interrupt.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.shutdown == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := t.shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("flushing telemetry: %w", err)
	}
	return nil
}
