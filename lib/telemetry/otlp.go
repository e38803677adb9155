package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Protocol string

const (
	ProtocolNone Protocol = ""
	ProtocolGrpc Protocol = "grpc"
	ProtocolHttp Protocol = "http"
)

// Endpoint is the collector one signal is exported to. The zero value exports nothing.
type Endpoint struct {
	Protocol Protocol
	Url      string
	Headers  map[string]string
}

func (e Endpoint) Enabled() bool {
	return e.Protocol != ProtocolNone && e.Url != ""
}

// Config selects what Setup exports.
type Config struct {
	ServiceName string
	Traces      Endpoint
	Metrics     Endpoint
	// MetricInterval is the export period of metrics, 0 falls back to 5 seconds.
	MetricInterval time.Duration
}

func (c Config) Enabled() bool {
	return c.Traces.Enabled() || c.Metrics.Enabled()
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newSpanExporter(ctx context.Context, e Endpoint) (trace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	slog.Info(
		"span exporter initialized",
		"protocol", e.Protocol,
		"endpoint", e.Url,
		"headers", len(e.Headers) > 0,
	)
	if e.Protocol == ProtocolGrpc {
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(e.Url),
			otlptracegrpc.WithHeaders(e.Headers),
		)
	}
	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(e.Url),
		otlptracehttp.WithHeaders(e.Headers),
	)
}

func newMetricExporter(ctx context.Context, e Endpoint) (metric.Exporter, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	slog.Info(
		"metric exporter initialized",
		"protocol", e.Protocol,
		"endpoint", e.Url,
		"headers", len(e.Headers) > 0,
	)
	if e.Protocol == ProtocolGrpc {
		return otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(e.Url),
			otlpmetricgrpc.WithHeaders(e.Headers),
		)
	}
	return otlpmetrichttp.New(
		ctx,
		otlpmetrichttp.WithEndpointURL(e.Url),
		otlpmetrichttp.WithHeaders(e.Headers),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, c Config) (*trace.TracerProvider, error) {
	exporter, err := newSpanExporter(ctx, c.Traces)
	if err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, c Config) (*metric.MeterProvider, error) {
	exporter, err := newMetricExporter(ctx, c.Metrics)
	if err != nil {
		return nil, err
	}

	interval := c.MetricInterval
	if interval <= 0 {
		interval = time.Second * 5
	}
	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
		metric.WithResource(r),
	), nil
}
