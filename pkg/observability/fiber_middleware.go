package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type MiddlewareConfig struct {
	ServiceName string
	Tracing     bool
	Metrics     bool

	// Nil providers fall back to the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

type httpInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// Middleware instruments each request with a server span, request
// metrics, or both. Route labels are read after the handler ran, so they
// carry the matched pattern (/api/contact/:id) rather than the raw path.
func Middleware(cfg MiddlewareConfig) fiber.Handler {
	if !cfg.Tracing && !cfg.Metrics {
		return func(c fiber.Ctx) error { return c.Next() }
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(Scope)

	var inst *httpInstruments
	if cfg.Metrics {
		inst = newHTTPInstruments(cfg.MeterProvider)
	}

	return func(c fiber.Ctx) error {
		start := time.Now()
		ctx := c.Context()

		var span trace.Span
		if cfg.Tracing {
			ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(c.GetReqHeaders()))
			ctx, span = tracer.Start(ctx, c.Method(),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", c.Method()),
					attribute.String("url.path", c.Path()),
					attribute.String("client.address", c.IP()),
					attribute.String("user_agent.original", c.Get(fiber.HeaderUserAgent)),
					attribute.String("service.name", cfg.ServiceName),
				),
			)
			defer span.End()

			c.SetContext(ctx)
			if sc := span.SpanContext(); sc.HasTraceID() {
				c.Set("X-Trace-Id", sc.TraceID().String())
			}
		}

		err := c.Next()

		status := c.Response().StatusCode()
		route := c.Route().Path

		if span != nil {
			span.SetName(c.Method() + " " + route)
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", status),
				attribute.String("http.request_id", c.GetRespHeader("X-Request-Id")),
			)
			if status >= fiber.StatusInternalServerError {
				span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
				if err != nil {
					span.RecordError(err)
				}
			}
		}

		if inst != nil {
			attrs := metric.WithAttributes(
				attribute.String("http.request.method", c.Method()),
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", status),
			)
			inst.requests.Add(ctx, 1, attrs)
			inst.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
		}

		return err
	}
}

func newHTTPInstruments(mp metric.MeterProvider) *httpInstruments {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(Scope)

	requests, err := meter.Int64Counter("http_server_request_count",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		otel.Handle(err)
		requests, _ = noop.Meter{}.Int64Counter("http_server_request_count")
	}
	duration, err := meter.Float64Histogram("http_server_request_duration_ms",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		otel.Handle(err)
		duration, _ = noop.Meter{}.Float64Histogram("http_server_request_duration_ms")
	}
	return &httpInstruments{requests: requests, duration: duration}
}
