package inventory

import (
	"context"
	"time"

	dominv "github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"
	"github.com/PtahaWebDez/Flower-crm/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	inventoryService    = "inventory-service"
	useCaseMonitorStock = "inventory.monitor"
	monitorSpanName     = "MonitorStock"
	spanPrefix          = "UC."

	// DefaultThreshold is the low stock level used when none is configured.
	DefaultThreshold = 3
)

// LowStock is a component whose free quantity is at or below the threshold.
type LowStock struct {
	Component string
	Quantity  int
}

// StockReport summarises one stock change.
type StockReport struct {
	Components int
	Total      int
	Low        []LowStock
}

// MonitorStockUseCase mirrors stock levels into gauges and flags low components.
type MonitorStockUseCase struct {
	threshold    int
	log          observability.Logger
	tracer       observability.Tracer
	stockGauge   observability.Gauge     // stock_available{component}
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewMonitorStockUseCase(threshold int, tel observability.Observability) *MonitorStockUseCase {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	baseLog := observability.NopLogger().With(
		observability.F("service", inventoryService),
	)
	tracer := observability.NopTracer()
	metricsProvider := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger().With(
			observability.F("service", inventoryService),
		)
		tracer = tel.Tracer()
		metricsProvider = tel.Metrics()
	}

	return &MonitorStockUseCase{
		threshold:    threshold,
		log:          baseLog,
		tracer:       tracer,
		stockGauge:   metricsProvider.Gauge(observability.MStockAvailable),
		reqCounter:   metricsProvider.Counter(observability.MUsecaseRequests),
		durHistogram: metricsProvider.Histogram(observability.MUsecaseDuration),
	}
}

// Execute reacts to a StockChangedEvent.
func (uc *MonitorStockUseCase) Execute(ctx context.Context, e dominv.StockChangedEvent) (_ *StockReport, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseMonitorStock),
		observability.F("reason", e.Reason),
	)

	ctx, span := uc.tracer.Start(ctx, spanPrefix+monitorSpanName,
		attribute.String("use_case", useCaseMonitorStock),
		attribute.String("stock.reason", e.Reason),
		attribute.Int("stock.components", len(e.Stock)),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	report := &StockReport{Components: len(e.Stock)}

	defer func() {
		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		latency := time.Since(start).Seconds()
		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseMonitorStock),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(latency,
			observability.L("use_case", useCaseMonitorStock),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
			observability.F("components", report.Components),
			observability.F("low_stock", len(report.Low)),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if err = ctx.Err(); err != nil {
		outcome, statusText = "error", "CONTEXT_CANCELED"
		return nil, err
	}

	for _, c := range dominv.Composition(e.Stock).Components() {
		q := e.Stock[c]
		report.Total += q
		uc.stockGauge.Set(float64(q), observability.L("component", c))
		if q <= uc.threshold {
			report.Low = append(report.Low, LowStock{Component: c, Quantity: q})
			logger.Warn("low_stock",
				observability.F("component", c),
				observability.F("quantity", q),
				observability.F("threshold", uc.threshold),
			)
		}
	}
	if len(report.Low) > 0 {
		statusText = "LOW_STOCK"
		span.AddEvent("inventory.low_stock", trace.WithAttributes(attribute.Int("stock.low", len(report.Low))))
	}
	return report, nil
}
