package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	domain "github.com/PtahaWebDez/Flower-crm/internal/domain/order"
)

func TestStoreFaultInjection(t *testing.T) {
	s := NewStore(inventory.Stock{"rose": 5}, catalog.Recipe{Name: "Classic", Components: inventory.Composition{"rose": 3}})

	s.FailNextPersist(1)
	if err := s.PersistStock(context.Background(), inventory.Stock{"rose": 1}); !errors.Is(err, ErrInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if got := s.Stock()["rose"]; got != 5 {
		t.Fatalf("failed persist must not change stock, got %d", got)
	}
	if err := s.PersistStock(context.Background(), inventory.Stock{"rose": 1}); err != nil {
		t.Fatalf("second persist: %v", err)
	}
	if got := s.Stock()["rose"]; got != 1 || s.Persists() != 1 {
		t.Fatalf("unexpected state: rose=%d persists=%d", got, s.Persists())
	}

	cat, stock, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	stock["rose"] = 100
	if s.Stock()["rose"] != 1 {
		t.Fatalf("loaded stock aliases store state")
	}
	if _, err := cat.Lookup("classic"); err != nil {
		t.Fatalf("lookup: %v", err)
	}

	s.FailLoad(true)
	if _, _, err := s.Load(context.Background()); !errors.Is(err, ErrInjected) {
		t.Fatalf("expected load failure, got %v", err)
	}
}

func TestOrderLedger(t *testing.T) {
	l := NewOrderLedger()
	first := domain.New("a", 1, []domain.Bouquet{{Name: "Classic", Composition: inventory.Composition{"rose": 3}}})
	second := domain.New("b", 2, nil)
	l.Prepend(first)
	l.Prepend(second)

	if l.Len() != 2 {
		t.Fatalf("expected 2 orders, got %d", l.Len())
	}
	got, err := l.Get(0)
	if err != nil || got.ID != "b" {
		t.Fatalf("newest order must be first, got %+v err=%v", got, err)
	}

	got, _ = l.Get(1)
	got.Bouquets[0].Composition["rose"] = 99
	again, _ := l.Get(1)
	if again.Bouquets[0].Composition["rose"] != 3 {
		t.Fatalf("ledger leaked internal state")
	}

	if _, err := l.Get(2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := l.Replace(-1, first); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	removed, err := l.Remove(0)
	if err != nil || removed.ID != "b" {
		t.Fatalf("remove: %+v %v", removed, err)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 order left, got %d", l.Len())
	}
	if rest := l.List(); rest[0].ID != "a" {
		t.Fatalf("unexpected remaining order %s", rest[0].ID)
	}
}
