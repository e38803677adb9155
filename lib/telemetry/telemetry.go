// Package telemetry installs the process wide otel trace and metric providers.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

var (
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
)

// Setup installs global providers for the signals c enables. Signals without an endpoint keep
// the global no-op provider.
func Setup(ctx context.Context, c Config) error {
	if !c.Enabled() {
		slog.Debug("no otlp endpoint configured, traces and otel metrics are not exported")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	r, err := newResource(c.ServiceName)
	if err != nil {
		return fmt.Errorf("otel resource: %w", err)
	}

	if c.Traces.Enabled() {
		tp, err := newTraceProvider(ctx, r, c)
		if err != nil {
			return fmt.Errorf("trace provider: %w", err)
		}
		otel.SetTracerProvider(tp)
		tracerProvider = tp
	}

	if c.Metrics.Enabled() {
		mp, err := newMetricProvider(ctx, r, c)
		if err != nil {
			return fmt.Errorf("metric provider: %w", err)
		}
		otel.SetMeterProvider(mp)
		meterProvider = mp
	}

	return nil
}

// Shutdown flushes and stops the providers installed by Setup.
func Shutdown(ctx context.Context) error {
	var errlist []error
	if tracerProvider != nil {
		err := tracerProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
		tracerProvider = nil
	}
	if meterProvider != nil {
		err := meterProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
		meterProvider = nil
	}
	return errors.Join(errlist...)
}
