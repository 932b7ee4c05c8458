// Package telemetry provides OpenTelemetry integration for AggMesh.
// It wraps trace and metric providers with configurable exporters.
// When disabled, all operations are no-ops with zero overhead.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	// TracerName is the instrumentation scope name for AggMesh traces.
	TracerName = "aggmesh"
	// MeterName is the instrumentation scope name for AggMesh metrics.
	MeterName = "aggmesh"
	// Version is the AggMesh version reported in telemetry.
	Version = "v0.1-dev"
)

// Config holds telemetry configuration.
type Config struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate"`
}

// Provider wraps OTel tracer and meter providers with cleanup.
type Provider struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  metric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	shutdown       func(context.Context) error
}

// Init sets up OpenTelemetry with the given config.
// Returns a Provider that must be Shutdown() on exit.
// If config.Enabled is false, returns a no-op provider.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{
			Tracer:        nooptrace.NewTracerProvider().Tracer(TracerName),
			Meter:         noop.NewMeterProvider().Meter(MeterName),
			MeterProvider: noop.NewMeterProvider(),
			shutdown:      func(context.Context) error { return nil },
		}, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "aggmesh"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			attribute.String("aggmesh.version", Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}
	sampler := sdktrace.ParentBased(
		sdktrace.TraceIDRatioBased(sampleRate),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
	)

	return &Provider{
		TracerProvider: tp,
		MeterProvider:  mp,
		Tracer:         tp.Tracer(TracerName),
		Meter:          mp.Meter(MeterName),
		shutdown: func(ctx context.Context) error {
			tErr := tp.Shutdown(ctx)
			mErr := mp.Shutdown(ctx)
			if tErr != nil {
				return tErr
			}
			return mErr
		},
	}, nil
}

func createExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp":
		opts := []otlptracehttp.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case "", "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unknown exporter %q", cfg.Exporter)
	}
}

// Shutdown flushes and stops the underlying providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// Telemetry bundles the tracer and engine instruments consumed by the
// execution engine. A nil-safe no-op variant is available via Noop().
type Telemetry struct {
	Tracer trace.Tracer
	Inst   *Instruments
}

// FromProvider builds engine telemetry from an initialized provider.
func FromProvider(p *Provider) (*Telemetry, error) {
	inst, err := NewInstruments(p.Meter)
	if err != nil {
		return nil, err
	}
	return &Telemetry{Tracer: p.Tracer, Inst: inst}, nil
}

// Noop returns telemetry whose tracer and instruments discard everything.
func Noop() *Telemetry {
	inst, _ := NewInstruments(noop.NewMeterProvider().Meter(MeterName))
	return &Telemetry{
		Tracer: nooptrace.NewTracerProvider().Tracer(TracerName),
		Inst:   inst,
	}
}
