package telemetry

import (
	"context"
	"fmt"
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

const (
	ProtocolGrpc = "grpc"
	ProtocolHttp = "http"
)

const defaultMetricInterval = 15 * time.Second

// ExporterConfig describes one otlp collector, an empty Protocol leaves
// the signal unexported.
type ExporterConfig struct {
	Protocol string            `json:"protocol"`
	Endpoint string            `json:"endpoint"`
	Headers  map[string]string `json:"headers"`
}

func (c ExporterConfig) enabled() bool {
	return c.Protocol != ""
}

func (c ExporterConfig) validate(signal string) error {
	if !c.enabled() {
		return nil
	}
	if c.Protocol != ProtocolGrpc && c.Protocol != ProtocolHttp {
		return fmt.Errorf("%s exporter: unknown protocol %q", signal, c.Protocol)
	}
	if c.Endpoint == "" {
		return fmt.Errorf("%s exporter: missing endpoint", signal)
	}
	return nil
}

// Config is read from telemetry.json5.
type Config struct {
	Traces  ExporterConfig `json:"traces"`
	Metrics ExporterConfig `json:"metrics"`
	// SampleRatio is the share of root spans kept, 0 keeps every one.
	SampleRatio           float64 `json:"sample_ratio"`
	MetricIntervalSeconds int     `json:"metric_interval_seconds"`
}

func (c Config) Validate() error {
	if err := c.Traces.validate("trace"); err != nil {
		return err
	}
	if err := c.Metrics.validate("metric"); err != nil {
		return err
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("sample_ratio must be within [0, 1], got %v", c.SampleRatio)
	}
	return nil
}

func (c Config) sampler() trace.Sampler {
	if c.SampleRatio == 0 {
		return trace.AlwaysSample()
	}
	return trace.ParentBased(trace.TraceIDRatioBased(c.SampleRatio))
}

func (c Config) metricInterval() time.Duration {
	if c.MetricIntervalSeconds <= 0 {
		return defaultMetricInterval
	}
	return time.Duration(c.MetricIntervalSeconds) * time.Second
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

func newTraceExporter(ctx context.Context, c ExporterConfig) (trace.SpanExporter, error) {
	slog.Info("trace exporter initialized", "protocol", c.Protocol, "endpoint", c.Endpoint)
	if c.Protocol == ProtocolGrpc {
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(c.Endpoint),
			otlptracegrpc.WithHeaders(c.Headers),
		)
	}
	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(c.Endpoint),
		otlptracehttp.WithHeaders(c.Headers),
	)
}

func newMetricExporter(ctx context.Context, c ExporterConfig) (metric.Exporter, error) {
	slog.Info("metric exporter initialized", "protocol", c.Protocol, "endpoint", c.Endpoint)
	if c.Protocol == ProtocolGrpc {
		return otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(c.Endpoint),
			otlpmetricgrpc.WithHeaders(c.Headers),
		)
	}
	return otlpmetrichttp.New(
		ctx,
		otlpmetrichttp.WithEndpointURL(c.Endpoint),
		otlpmetrichttp.WithHeaders(c.Headers),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, config Config) (*trace.TracerProvider, error) {
	opts := []trace.TracerProviderOption{
		trace.WithResource(r),
		trace.WithSampler(config.sampler()),
	}
	if !config.Traces.enabled() {
		slog.Debug("no trace exporter configured")
		return trace.NewTracerProvider(opts...), nil
	}

	exporter, err := newTraceExporter(ctx, config.Traces)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	return trace.NewTracerProvider(append(opts, trace.WithBatcher(exporter))...), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, config Config) (*metric.MeterProvider, error) {
	if !config.Metrics.enabled() {
		slog.Debug("no metric exporter configured")
		return metric.NewMeterProvider(metric.WithResource(r)), nil
	}

	exporter, err := newMetricExporter(ctx, config.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	reader := metric.NewPeriodicReader(exporter, metric.WithInterval(config.metricInterval()))
	return metric.NewMeterProvider(metric.WithReader(reader), metric.WithResource(r)), nil
}
