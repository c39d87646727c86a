package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Scope is the instrumentation scope of every meter and tracer in the service.
const Scope = "github.com/codecrest/codecrest_backend"

// Outcome label values shared by the domain counters.
const (
	OutcomeSaved   = "saved"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"

	OutcomeSuccess       = "success"
	OutcomeRejected      = "rejected"
	OutcomeMisconfigured = "misconfigured"
)

// Counter is a monotonic counter labelled by outcome.
type Counter struct {
	c metric.Int64Counter
}

// NewCounter registers name on mp. A nil mp means the otel global, which
// forwards to whatever provider Setup installs later.
func NewCounter(mp metric.MeterProvider, name, desc string) Counter {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	c, err := mp.Meter(Scope).Int64Counter(name,
		metric.WithDescription(desc),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		otel.Handle(err)
		c, _ = noop.Meter{}.Int64Counter(name)
	}
	return Counter{c: c}
}

// Inc adds one under the given outcome.
func (c Counter) Inc(ctx context.Context, outcome string) {
	if c.c == nil {
		return
	}
	c.c.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
