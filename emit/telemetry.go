// Package emit exports evidence records and collector metrics over OTLP so
// the rest of the compliance pipeline can enrich them.
package emit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	olog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentationName = "github.com/complytime/complybeacon/evidencekit"

const metricInterval = 3 * time.Second

// ShutdownFunc flushes and stops the telemetry pipeline.
type ShutdownFunc func(context.Context) error

// Meter returns the meter evidence metrics are recorded with.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Setup connects to the collector at endpoint and registers global log and
// meter providers that export to it.
func Setup(ctx context.Context, endpoint, serviceName string) (ShutdownFunc, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}

	shutdown, err := otelSDKSetup(ctx, conn, serviceName)
	if err != nil {
		return nil, errors.Join(err, conn.Close())
	}
	return func(ctx context.Context) error {
		return errors.Join(shutdown(ctx), conn.Close())
	}, nil
}

// otelSDKSetup completes setup of the OTel SDK with providers.
func otelSDKSetup(ctx context.Context, conn *grpc.ClientConn, serviceName string) (ShutdownFunc, error) {
	var shutdownFuncs []func(context.Context) error
	shutDown := func(ctx context.Context) error {
		eg, egCtx := errgroup.WithContext(ctx)
		for _, fn := range shutdownFuncs {
			eg.Go(func() error {
				return fn(egCtx)
			})
		}
		shutdownFuncs = nil
		if err := eg.Wait(); err != nil {
			return fmt.Errorf("error during opentelemetry shutdown: %w", err)
		}
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	logExporter, err := otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, errors.Join(err, meterProvider.Shutdown(ctx))
	}

	logProvider := olog.NewLoggerProvider(
		olog.WithProcessor(olog.NewSimpleProcessor(logExporter)),
		olog.WithResource(res),
	)
	global.SetLoggerProvider(logProvider)

	shutdownFuncs = append(shutdownFuncs, logProvider.Shutdown, meterProvider.Shutdown)
	return shutDown, nil
}
