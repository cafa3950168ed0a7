package zaplogger

import (
	"errors"
	"testing"

	"github.com/PtahaWebDez/Flower-crm/internal/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrapForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := Wrap(zap.New(core), observability.F("service", "flower-crm"))

	l.With(observability.F("use_case", "allocation.book")).
		Warn("use_case_done", observability.F("error", errors.New("boom")), observability.F("available", 1))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["service"] != "flower-crm" || ctx["use_case"] != "allocation.book" {
		t.Fatalf("missing bound fields: %v", ctx)
	}
	if ctx["error"] != "boom" {
		t.Fatalf("expected error field, got %v", ctx["error"])
	}
}
