package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quartzlabs/devtools"
)

// TracingHandler translates dispatcher events into OpenTelemetry spans.
// Dispatcher events are terminal (the dispatch already finished), so each
// event becomes one complete span: started at event time minus the apply
// duration and ended at event time.
type TracingHandler struct {
	tracer trace.Tracer
}

// NewTracingHandler creates a TracingHandler that uses the given tracer to
// create spans from dispatcher events.
func NewTracingHandler(tracer trace.Tracer) *TracingHandler {
	return &TracingHandler{tracer: tracer}
}

// Handle processes a dispatcher event and records a span for it.
// It implements devtools.EventEmitter semantics.
func (h *TracingHandler) Handle(e devtools.Event) {
	spanName := "dispatch:" + e.Command

	_, span := h.tracer.Start(context.Background(), spanName,
		trace.WithTimestamp(e.Time.Add(-e.Elapsed)),
		trace.WithAttributes(
			attribute.String("devtools.dispatch_id", e.ID),
			attribute.String("devtools.command", e.Command),
			attribute.String("devtools.type_key", string(e.Key)),
		),
	)

	switch e.Kind {
	case devtools.EventCommandApplied:
		span.SetStatus(codes.Ok, "")
	case devtools.EventCommandFailed:
		span.SetStatus(codes.Error, e.Err)
	}

	span.End(trace.WithTimestamp(e.Time))
}
