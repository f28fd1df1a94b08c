// Package otel provides OpenTelemetry integration for dispatcher events.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/quartzlabs/devtools"
)

// MetricsHandler translates dispatcher events into OpenTelemetry metrics.
// It records counters for applied and failed commands and a histogram of
// apply durations.
type MetricsHandler struct {
	commandApplies  metric.Int64Counter
	commandFailures metric.Int64Counter
	commandDuration metric.Float64Histogram
}

// NewMetricsHandler creates a MetricsHandler that uses the given meter to
// create instruments for recording dispatch metrics.
func NewMetricsHandler(meter metric.Meter) (*MetricsHandler, error) {
	applies, err := meter.Int64Counter("devtools.command.applies",
		metric.WithDescription("Number of commands applied to the tool state"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("devtools.command.failures",
		metric.WithDescription("Number of dispatches that produced no command"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("devtools.command.duration",
		metric.WithDescription("Duration of command application in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &MetricsHandler{
		commandApplies:  applies,
		commandFailures: failures,
		commandDuration: duration,
	}, nil
}

// Handle processes a dispatcher event and records the appropriate metrics.
// It implements devtools.EventEmitter semantics.
func (h *MetricsHandler) Handle(e devtools.Event) {
	switch e.Kind {
	case devtools.EventCommandApplied:
		h.handleApplied(e)
	case devtools.EventCommandFailed:
		h.handleFailed(e)
	}
}

func (h *MetricsHandler) handleApplied(e devtools.Event) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("command", e.Command),
	)
	h.commandApplies.Add(ctx, 1, attrs)
	h.commandDuration.Record(ctx, e.Elapsed.Seconds(), attrs)
}

func (h *MetricsHandler) handleFailed(e devtools.Event) {
	ctx := context.Background()
	h.commandFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", e.Command),
		attribute.String("error", e.Err),
	))
}
