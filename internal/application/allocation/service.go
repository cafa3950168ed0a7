package allocation

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/order"
	domoutbox "github.com/PtahaWebDez/Flower-crm/internal/domain/outbox"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"
	"github.com/PtahaWebDez/Flower-crm/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	allocationService = "allocation-service"
	spanPrefix        = "UC."
	storePeer         = "store"
	publishPeer       = "outbox"
	publishTimeout    = 300 * time.Millisecond
)

// Config wires the collaborators of a Service.
type Config struct {
	Store     Store
	Ledger    order.Ledger
	IDs       IDGenerator
	Publisher domoutbox.Publisher
	Telemetry observability.Observability
}

// Service is the single owner of stock and order state. Every operation that
// moves stock holds mu for its whole load, validate, persist, commit sequence.
type Service struct {
	mu        sync.RWMutex
	store     Store
	ledger    order.Ledger
	ids       IDGenerator
	publisher domoutbox.Publisher
	seq       int

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func New(cfg Config) *Service {
	tel := cfg.Telemetry
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()

	s := &Service{
		store:        cfg.Store,
		ledger:       cfg.Ledger,
		ids:          cfg.IDs,
		publisher:    cfg.Publisher,
		log:          tel.Logger().With(observability.F("service", allocationService)),
		tracer:       tel.Tracer(),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
	for _, o := range s.ledger.List() {
		s.seq = max(s.seq, o.Number)
	}
	return s
}

// operation carries the per-call observability state of one use case.
type operation struct {
	svc     *Service
	useCase string
	ctx     context.Context
	span    trace.Span
	log     observability.Logger
	start   time.Time
	status  string
	fields  []observability.Field
}

func (s *Service) begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *operation) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCase))
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := s.tracer.Start(ctx, spanPrefix+spanName, attrs...)
	return ctx, &operation{
		svc:     s,
		useCase: useCase,
		ctx:     ctx,
		span:    span,
		log:     logger,
		start:   time.Now(),
		status:  "OK",
	}
}

func (op *operation) annotate(fields ...observability.Field) {
	op.fields = append(op.fields, fields...)
}

// end closes the span, records RED metrics and writes the use_case_done line.
func (op *operation) end(err error) {
	lat := time.Since(op.start).Seconds()
	outcome, statusText := "success", op.status
	if err != nil {
		outcome = "error"
		if statusText == "OK" {
			statusText = statusFor(err)
		}
	}

	if op.span != nil {
		if err != nil {
			op.span.RecordError(err)
			op.span.SetStatus(codes.Error, statusText)
		} else {
			op.span.SetStatus(codes.Ok, statusText)
		}
		op.span.End()
	}

	op.svc.reqCounter.Add(1,
		observability.L("use_case", op.useCase),
		observability.L("outcome", outcome),
	)
	op.svc.durHistogram.Observe(lat,
		observability.L("use_case", op.useCase),
	)

	fields := []observability.Field{
		observability.F("outcome", outcome),
		observability.F("status", statusText),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(op.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, op.fields...)
	var short *inventory.ShortageError
	if errors.As(err, &short) {
		fields = append(fields,
			observability.F("component", short.Component),
			observability.F("required", short.Required),
			observability.F("available", short.Available),
		)
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}

	op.log.Info("use_case_done", fields...)
}

// load reads a fresh catalog and stock. An unreadable store yields an empty
// catalog and stock plus a non-nil *PersistenceError; readers may use the
// empty values but nothing loaded that way may be persisted.
func (s *Service) load(ctx context.Context, op *operation) (*catalog.Catalog, inventory.Stock, error) {
	start := time.Now()
	cat, stock, err := s.store.Load(ctx)
	s.external("load", start, err)
	if err != nil {
		op.log.Warn("store_load_failed", observability.F("error", err))
		op.annotate(observability.F("store_load_error", err.Error()))
		return catalog.New(), inventory.Stock{}, &PersistenceError{Op: "load stock", Err: err}
	}
	if cat == nil {
		cat = catalog.New()
	}
	if stock == nil {
		stock = inventory.Stock{}
	}
	return cat, stock, nil
}

func (s *Service) persist(ctx context.Context, stock inventory.Stock) error {
	if err := stock.Validate(); err != nil {
		return &PersistenceError{Op: "validate stock", Err: err}
	}
	start := time.Now()
	err := s.store.PersistStock(ctx, stock.Clone())
	s.external("persist_stock", start, err)
	if err != nil {
		return &PersistenceError{Op: "persist stock", Err: err}
	}
	return nil
}

func (s *Service) external(endpoint string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.extCounter.Add(1,
		observability.L("peer", storePeer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	s.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", storePeer),
		observability.L("endpoint", endpoint),
	)
}

// publish hands committed events to the bus. Failures are logged and never
// fail the operation that produced them.
func (s *Service) publish(ctx context.Context, op *operation, events ...domoutbox.Event) {
	if s.publisher == nil {
		return
	}
	for _, e := range events {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		start := time.Now()
		outcome := "success"
		err := s.publisher.Publish(pubCtx, e)
		if err == nil && pubCtx.Err() != nil {
			err = pubCtx.Err()
		}
		cancel()
		if err != nil {
			outcome = "error"
			op.log.Warn("event_publish_failed",
				observability.F("event", e.EventName()),
				observability.F("error", err),
			)
			op.annotate(observability.F("event_publish_error", err.Error()))
		}
		s.extCounter.Add(1,
			observability.L("peer", publishPeer),
			observability.L("endpoint", e.EventName()),
			observability.L("outcome", outcome),
		)
		s.extHistogram.Observe(time.Since(start).Seconds(),
			observability.L("peer", publishPeer),
			observability.L("endpoint", e.EventName()),
		)
	}
}

func (s *Service) nextNumber() int {
	s.seq++
	return s.seq
}

// resolveLabel finds the key of record in m that label names, comparing
// normalized forms when there is no exact match.
func resolveLabel[M ~map[string]int](m M, label string) (string, bool) {
	label = strings.TrimSpace(label)
	if _, ok := m[label]; ok {
		return label, true
	}
	want := catalog.Normalize(label)
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if catalog.Normalize(k) == want {
			return k, true
		}
	}
	return label, false
}

// canonical rewrites the labels of c to the stock's keys of record.
func canonical(stock inventory.Stock, c inventory.Composition) inventory.Composition {
	out := make(inventory.Composition, len(c))
	for label, qty := range c {
		key, _ := resolveLabel(stock, label)
		out[key] += qty
	}
	return out
}
