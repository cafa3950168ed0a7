package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/PtahaWebDez/Flower-crm/internal/application/allocation"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"
	"github.com/PtahaWebDez/Flower-crm/internal/observability/logctx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	maxBodyBytes         = 1 << 20
)

type Handler struct {
	svc         *allocation.Service
	log         observability.Logger
	tel         observability.Observability
	corsOrigins []string

	reqCounter   observability.Counter   // http_requests_total{method,route,status}
	durHistogram observability.Histogram // http_request_duration_seconds{method,route,status}
}

type Option func(*Handler)

// WithCORS allows browser calls from origins. No CORS headers are sent when
// origins is empty.
func WithCORS(origins ...string) Option {
	return func(h *Handler) { h.corsOrigins = origins }
}

func NewHandler(svc *allocation.Service, logger observability.Logger, tel observability.Observability, opts ...Option) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = tel.Logger()
	}
	metrics := tel.Metrics()
	h := &Handler{
		svc:          svc,
		log:          baseLogger.With(observability.F("component", componentHTTPHandler)),
		tel:          tel,
		reqCounter:   metrics.Counter(observability.MHTTPRequests),
		durHistogram: metrics.Histogram(observability.MHTTPRequestDuration),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Router() http.Handler {
	mux := chi.NewRouter()
	if len(h.corsOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", headerRequestID, "traceparent", "tracestate"},
			ExposedHeaders: []string{headerRequestID},
			MaxAge:         600,
		}))
	}

	h.muxHandle(mux, http.MethodGet, "/health", h.handleHealth)
	h.muxHandle(mux, http.MethodGet, "/state", h.handleState)

	h.muxHandle(mux, http.MethodPost, "/check", h.handleCheck)
	h.muxHandle(mux, http.MethodPost, "/book", h.handleBook)
	h.muxHandle(mux, http.MethodPost, "/book_batch", h.handleBookBatch)
	h.muxHandle(mux, http.MethodPost, "/replacement/prepare", h.handlePrepareReplacement)

	h.muxHandle(mux, http.MethodPost, "/orders/{index}/number", h.handleEditNumber)
	h.muxHandle(mux, http.MethodPost, "/orders/{index}/name", h.handleEditName)
	h.muxHandle(mux, http.MethodPost, "/orders/{index}/quantity", h.handleEditQuantity)
	h.muxHandle(mux, http.MethodPost, "/orders/{index}/composition", h.handleEditComposition)
	h.muxHandle(mux, http.MethodPost, "/orders/{index}/status", h.handleEditStatus)
	h.muxHandle(mux, http.MethodDelete, "/orders/{index}", h.handleDeleteOrder)

	h.muxHandle(mux, http.MethodPut, "/inventory/{component}", h.handleSetStock)

	return mux
}

// muxHandle registers route with the chain
// trace → request logger → HTTP metrics → access log → handler.
func (h *Handler) muxHandle(mux chi.Router, method, route string, handler http.HandlerFunc) {
	template := method + " " + route
	chain := h.withTrace(
		ObservabilityMiddleware(h.log, func(r *http.Request) string {
			return r.Header.Get(headerRequestID)
		}, h.tel)(
			h.withHTTPMetrics(
				h.withAccessLog(handler),
			),
		),
	)
	mux.Method(method, route, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chain.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), template)))
	}))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("flower-crm.http")
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		spanName := routeFromContext(parentCtx)
		if spanName == "unknown" {
			spanName = r.Method + " " + r.URL.Path
		}

		ctx, span := tracer.Start(parentCtx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routeFromContext(parentCtx)),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", lrw.status))
		if lrw.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(lrw.status))
		}
	})
}

// withHTTPMetrics records RED metrics on the instruments resolved in NewHandler.
func (h *Handler) withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		labels := []observability.Label{
			observability.L("method", r.Method),
			observability.L("route", routeFromContext(r.Context())),
			observability.L("status", strconv.Itoa(lrw.status)),
		}
		h.reqCounter.Add(1, labels...)
		h.durHistogram.Observe(time.Since(start).Seconds(), labels...)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// orderIndex parses the {index} path value and binds it to the request logger.
func (h *Handler) orderIndex(r *http.Request) (context.Context, int, error) {
	raw := chi.URLParam(r, "index")
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return r.Context(), 0, fmt.Errorf("order index %q is not a number", raw)
	}
	return logctx.Enrich(r.Context(), h.log, observability.F("order_index", idx)), idx, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeDomainError maps the engine error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	var shortage *inventory.ShortageError
	var invalid *allocation.ValidationError
	switch {
	case errors.As(err, &shortage):
		resp.Code = "insufficient_stock"
		resp.Shortage = &shortageDTO{
			Component: shortage.Component,
			Required:  shortage.Required,
			Available: shortage.Available,
		}
		writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, allocation.ErrUnknownProduct):
		resp.Code = "unknown_product"
		writeJSON(w, http.StatusNotFound, resp)
	case errors.Is(err, allocation.ErrNotFound):
		resp.Code = "invalid_index"
		writeJSON(w, http.StatusNotFound, resp)
	case errors.As(err, &invalid):
		resp.Code = "validation_failed"
		resp.Lines = lineErrorsDTO(invalid.Lines)
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, allocation.ErrPersistence):
		resp.Code = "persist_failed"
		writeJSON(w, http.StatusServiceUnavailable, resp)
	default:
		resp.Code = "internal"
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

type routeKey struct{}

// contextWithRoute stores the stable route template in the context so downstream
// metrics/logging can rely on low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
