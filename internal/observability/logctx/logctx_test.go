package logctx

import (
	"context"
	"testing"

	"github.com/PtahaWebDez/Flower-crm/internal/observability"
)

type recordingLogger struct {
	observability.Logger
	fields []observability.Field
}

func (r *recordingLogger) With(fields ...observability.Field) observability.Logger {
	return &recordingLogger{Logger: observability.NopLogger(), fields: append(append([]observability.Field(nil), r.fields...), fields...)}
}

func TestFromOrFallsBack(t *testing.T) {
	if got := FromOr(context.Background(), nil); got == nil {
		t.Fatalf("expected nop logger fallback")
	}
	fallback := &recordingLogger{Logger: observability.NopLogger()}
	if got := FromOr(context.Background(), fallback); got != fallback {
		t.Fatalf("expected fallback logger")
	}
}

func TestEnrichStoresFields(t *testing.T) {
	base := &recordingLogger{Logger: observability.NopLogger()}
	ctx := Enrich(context.Background(), base, observability.F("order_index", 2))
	got, ok := From(ctx).(*recordingLogger)
	if !ok {
		t.Fatalf("expected recording logger on context")
	}
	if len(got.fields) != 1 || got.fields[0].Key != "order_index" {
		t.Fatalf("unexpected fields: %+v", got.fields)
	}
}
