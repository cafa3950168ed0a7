package workerpresentation

import (
	"context"
	"testing"

	"github.com/PtahaWebDez/Flower-crm/internal/observability"
	"github.com/PtahaWebDez/Flower-crm/internal/observability/logctx"

	"go.opentelemetry.io/otel/trace"
)

type fieldLogger struct {
	fields []observability.Field
}

func (l *fieldLogger) With(fields ...observability.Field) observability.Logger {
	return &fieldLogger{fields: append(append([]observability.Field{}, l.fields...), fields...)}
}
func (l *fieldLogger) Debug(string, ...observability.Field) {}
func (l *fieldLogger) Info(string, ...observability.Field)  {}
func (l *fieldLogger) Warn(string, ...observability.Field)  {}
func (l *fieldLogger) Error(string, ...observability.Field) {}

func (l *fieldLogger) value(key string) (any, bool) {
	for _, f := range l.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func TestWithEventContextBindsFields(t *testing.T) {
	traceID := trace.TraceID{1, 2, 3}
	spanID := trace.SpanID{4, 5, 6}

	ctx := WithEventContext(context.Background(), &fieldLogger{}, nil, traceID, spanID, map[string]string{
		"event":    "stock.changed",
		"reason":   "",
		"event_id": "evt-1",
	})

	logger, ok := logctx.From(ctx).(*fieldLogger)
	if !ok {
		t.Fatalf("expected fieldLogger in context, got %T", logctx.From(ctx))
	}
	if v, _ := logger.value("event_id"); v != "evt-1" {
		t.Fatalf("event_id = %v", v)
	}
	if v, _ := logger.value("trace_id"); v != traceID.String() {
		t.Fatalf("trace_id = %v", v)
	}
	if v, _ := logger.value("event"); v != "stock.changed" {
		t.Fatalf("event = %v", v)
	}
	if _, ok := logger.value("reason"); ok {
		t.Fatal("empty attributes should be skipped")
	}
}

func TestWithEventContextGeneratesEventID(t *testing.T) {
	ctx := WithEventContext(context.Background(), &fieldLogger{}, nil, trace.TraceID{}, trace.SpanID{}, nil)

	logger := logctx.From(ctx).(*fieldLogger)
	if v, ok := logger.value("event_id"); !ok || v == "" {
		t.Fatalf("expected generated event_id, got %v", v)
	}
	if _, ok := logger.value("trace_id"); ok {
		t.Fatal("invalid trace id should not be logged")
	}
}
