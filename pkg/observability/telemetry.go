package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/codecrest/codecrest_backend/config"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Tracing off means spans are created but never sampled or exported.
	Tracing     bool
	Endpoint    string // OTLP/HTTP host:port
	Insecure    bool
	SampleRatio float64

	// Metrics on attaches a Prometheus reader to the meter provider.
	Metrics bool
}

// FromCentralConfig maps the observability section of the process config.
func FromCentralConfig(cfg config.ObservabilityConfig, env string) Config {
	return Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    env,
		Tracing:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.OTLPEndpoint,
		Insecure:       cfg.Tracing.OTLPInsecure,
		SampleRatio:    cfg.Tracing.SamplingRate,
		Metrics:        cfg.Metrics.Enabled,
	}
}

// Provider owns the SDK providers installed as the otel globals.
type Provider struct {
	Tracer     *sdktrace.TracerProvider
	Meter      *sdkmetric.MeterProvider
	Prometheus *prometheus.Exporter // nil unless metrics are on
}

// Setup builds the providers for cfg and installs them globally, along
// with the W3C trace-context and baggage propagators.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes("",
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	tp, err := newTracerProvider(ctx, res, cfg)
	if err != nil {
		return nil, err
	}

	p := &Provider{Tracer: tp}

	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if cfg.Metrics {
		exp, err := prometheus.New()
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		p.Prometheus = exp
		meterOpts = append(meterOpts, sdkmetric.WithReader(exp))
	}
	p.Meter = sdkmetric.NewMeterProvider(meterOpts...)

	otel.SetTracerProvider(p.Tracer)
	otel.SetMeterProvider(p.Meter)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return p, nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource, cfg Config) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio(cfg)))),
	}

	if cfg.Tracing && cfg.Endpoint != "" {
		exOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			exOpts = append(exOpts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, exOpts...)
		if err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

func sampleRatio(cfg Config) float64 {
	switch {
	case !cfg.Tracing:
		return 0
	case cfg.SampleRatio <= 0 || cfg.SampleRatio > 1:
		return 1
	default:
		return cfg.SampleRatio
	}
}

// Shutdown flushes and stops both providers, reporting every failure.
func (p *Provider) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if p.Tracer != nil {
		if err := p.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if p.Meter != nil {
		if err := p.Meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
