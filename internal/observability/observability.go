// Package observability holds the ports through which the allocation service,
// the stock monitor and the HTTP handlers emit logs, spans and metrics. Booking
// code depends only on these interfaces; zap, prometheus and otel adapters live
// under infrastructure/observability and are chosen in main.
package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the three signals every use case records.
type Observability interface {
	Tracer() Tracer
	Logger() Logger
	Metrics() Metrics
}

// Metrics resolves registered instruments by key. Unknown keys yield no-ops.
type Metrics interface {
	Counter(name MetricKey) Counter
	Histogram(name MetricKey) Histogram
	Gauge(name MetricKey) Gauge
}

// Tracer opens the UC.<Op> and HTTP server spans.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

// Counter counts bookings, edits, store calls and requests by outcome.
type Counter interface {
	Add(delta float64, labels ...Label)
}

type Histogram interface {
	Observe(value float64, labels ...Label)
}

// Gauge tracks a value that moves both ways, such as the free quantity of a component.
type Gauge interface {
	Set(value float64, labels ...Label)
}

// Label is a metric dimension. Values must stay low-cardinality: component
// names and routes, never order ids.
type Label struct{ Key, Value string }

func L(k, v string) Label { return Label{Key: k, Value: v} }

// Field is a structured log attribute.
type Field struct {
	Key   string
	Value any
}

func F(k string, v any) Field { return Field{Key: k, Value: v} }

// Logger writes structured events such as use_case_done and low_stock.
type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// MetricKey names an instrument registered at startup.
type MetricKey string
