package oteltrace

import (
	"context"

	"github.com/PtahaWebDez/Flower-crm/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultName = "flower-crm"

type tracer struct{ t trace.Tracer }

// New returns a tracer bound to the global provider. Spans are dropped until an
// SDK TracerProvider is installed with otel.SetTracerProvider.
func New(name string) observability.Tracer {
	if name == "" {
		name = defaultName
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}
