package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/PtahaWebDez/Flower-crm/internal/application"
	dominv "github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	domoutbox "github.com/PtahaWebDez/Flower-crm/internal/domain/outbox"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"
	"github.com/PtahaWebDez/Flower-crm/internal/observability/logctx"
	workerpresentation "github.com/PtahaWebDez/Flower-crm/internal/presentation/worker"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const workerService = "inventory_worker"

type Worker struct {
	subscriber domoutbox.Subscriber
	useCase    application.UseCase[dominv.StockChangedEvent, *StockReport]
	tel        observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewWorker(
	subscriber domoutbox.Subscriber,
	useCase application.UseCase[dominv.StockChangedEvent, *StockReport],
	tel observability.Observability,
	logger observability.Logger,
) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = tel.Logger()
	}
	metricsProvider := tel.Metrics()
	return &Worker{
		subscriber:   subscriber,
		useCase:      useCase,
		tel:          tel,
		log:          baseLogger.With(observability.F("service", workerService)),
		reqCounter:   metricsProvider.Counter(observability.MUsecaseRequests),
		durHistogram: metricsProvider.Histogram(observability.MUsecaseDuration),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.useCase == nil {
		return
	}
	w.subscriber.Subscribe(dominv.StockChangedEvent{}.EventName(), w.handleStockChanged)
}

func (w *Worker) handleStockChanged(ctx context.Context, e domoutbox.Event) error {
	const useCase = "inventory.worker.stock_changed"
	evt, ok := e.(dominv.StockChangedEvent)
	if !ok {
		w.count(useCase, "ignored")
		return nil
	}

	ctx, span := w.tel.Tracer().Start(ctx, spanPrefix+"StockChanged",
		attribute.String("use_case", useCase),
		attribute.String("event", e.EventName()),
	)
	start := time.Now()
	outcome, status := "success", "OK"

	sc := trace.SpanContextFromContext(ctx)
	ctx = workerpresentation.WithEventContext(ctx, logctx.FromOr(ctx, w.log), w.tel, sc.TraceID(), sc.SpanID(), map[string]string{
		"use_case": useCase,
		"event":    e.EventName(),
		"reason":   evt.Reason,
	})
	logger := logctx.FromOr(ctx, w.log)

	defer func() {
		lat := time.Since(start).Seconds()
		w.observe(useCase, outcome, lat)

		logger.Info("use_case_done",
			observability.F("outcome", outcome),
			observability.F("status", status),
			observability.F("latency_seconds", lat),
		)

		if outcome == "error" {
			span.SetStatus(codes.Error, status)
		} else {
			span.SetStatus(codes.Ok, status)
		}
		span.End()
	}()

	if _, err := w.useCase.Execute(ctx, evt); err != nil {
		outcome, status = "error", "MONITOR_FAILED"
		return fmt.Errorf("worker: stock monitor: %w", err)
	}
	return nil
}

func (w *Worker) count(useCase, outcome string) {
	w.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
}

func (w *Worker) observe(useCase string, outcome string, latencySeconds float64) {
	w.count(useCase, outcome)
	w.durHistogram.Observe(latencySeconds,
		observability.L("use_case", useCase),
	)
}
