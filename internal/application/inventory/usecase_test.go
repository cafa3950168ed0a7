package inventory

import (
	"context"
	"sync"
	"testing"

	dominv "github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	domoutbox "github.com/PtahaWebDez/Flower-crm/internal/domain/outbox"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"
)

type recordedGauge struct {
	mu     sync.Mutex
	values map[string]float64
}

func (g *recordedGauge) Set(v float64, labels ...observability.Label) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, l := range labels {
		if l.Key == "component" {
			g.values[l.Value] = v
		}
	}
}

type gaugeMetrics struct {
	observability.Metrics
	gauge *recordedGauge
}

func (m gaugeMetrics) Gauge(observability.MetricKey) observability.Gauge { return m.gauge }

type testTelemetry struct {
	metrics observability.Metrics
}

func (testTelemetry) Tracer() observability.Tracer     { return observability.NopTracer() }
func (testTelemetry) Logger() observability.Logger     { return observability.NopLogger() }
func (t testTelemetry) Metrics() observability.Metrics { return t.metrics }

func newTestTelemetry() (observability.Observability, *recordedGauge) {
	g := &recordedGauge{values: make(map[string]float64)}
	return testTelemetry{metrics: gaugeMetrics{Metrics: observability.NopMetrics(), gauge: g}}, g
}

func TestMonitorStockReportsLowComponents(t *testing.T) {
	tel, gauge := newTestTelemetry()
	uc := NewMonitorStockUseCase(3, tel)

	report, err := uc.Execute(context.Background(), dominv.NewStockChangedEvent(dominv.Stock{"rose": 10, "tulip": 3, "peony": 0}, "test"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if report.Components != 3 || report.Total != 13 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Low) != 2 || report.Low[0].Component != "peony" || report.Low[1].Component != "tulip" {
		t.Fatalf("unexpected low stock %+v", report.Low)
	}
	if gauge.values["rose"] != 10 || gauge.values["peony"] != 0 || len(gauge.values) != 3 {
		t.Fatalf("unexpected gauges %v", gauge.values)
	}
}

func TestMonitorStockCanceledContext(t *testing.T) {
	uc := NewMonitorStockUseCase(3, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := uc.Execute(ctx, dominv.NewStockChangedEvent(dominv.Stock{"rose": 1}, "test")); err == nil {
		t.Fatalf("expected context error")
	}
}

type captureSubscriber struct {
	handlers map[string]domoutbox.Handler
}

func (s *captureSubscriber) Subscribe(name string, h domoutbox.Handler) {
	s.handlers[name] = h
}

func TestWorkerRunsMonitorOnStockChanged(t *testing.T) {
	tel, gauge := newTestTelemetry()
	sub := &captureSubscriber{handlers: make(map[string]domoutbox.Handler)}
	w := NewWorker(sub, NewMonitorStockUseCase(1, tel), tel, nil)
	w.Start()

	h, ok := sub.handlers["stock.changed"]
	if !ok {
		t.Fatalf("worker did not subscribe to stock.changed")
	}
	if err := h(context.Background(), dominv.NewStockChangedEvent(dominv.Stock{"lily": 7}, "test")); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if gauge.values["lily"] != 7 {
		t.Fatalf("gauge not updated: %v", gauge.values)
	}
}
