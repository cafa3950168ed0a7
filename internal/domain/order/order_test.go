package order

import (
	"errors"
	"testing"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
)

func TestNewRecomputesAggregate(t *testing.T) {
	o := New("id-1", 1, []Bouquet{
		{Name: "Classic", Composition: inventory.Composition{"rose": 3, "tulip": 2}},
		{Name: "Spring (с заменой)", Composition: inventory.Composition{"tulip": 1, "peony": 0}, Replacement: true},
	})
	if o.Status != StatusBooked {
		t.Fatalf("expected booked status, got %s", o.Status)
	}
	if o.Composition["rose"] != 3 || o.Composition["tulip"] != 3 || len(o.Composition) != 2 {
		t.Fatalf("unexpected aggregate %v", o.Composition)
	}
	if o.Title != "Classic, Spring (с заменой)" {
		t.Fatalf("unexpected title %q", o.Title)
	}
}

func TestCloneIsDeep(t *testing.T) {
	o := New("id-1", 1, []Bouquet{{Name: "Classic", Composition: inventory.Composition{"rose": 3}, Shortage: []Shortfall{{"rose", 4, 3}}}})
	c := o.Clone()
	c.Bouquets[0].Composition["rose"] = 9
	c.Bouquets[0].Shortage[0].Allocated = 0
	c.Composition["rose"] = 9
	if o.Bouquets[0].Composition["rose"] != 3 || o.Bouquets[0].Shortage[0].Allocated != 3 || o.Composition["rose"] != 3 {
		t.Fatalf("clone shares state with original")
	}
}

func TestBouquetIndex(t *testing.T) {
	o := New("id-1", 1, []Bouquet{{Name: "Classic"}})
	if _, err := o.Bouquet(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	b, err := o.Bouquet(0)
	if err != nil {
		t.Fatalf("bouquet: %v", err)
	}
	b.Name = "Renamed"
	if o.Bouquets[0].Name != "Renamed" {
		t.Fatalf("bouquet must be editable in place")
	}
}

func TestStatus(t *testing.T) {
	for _, s := range Statuses {
		if _, err := ParseStatus(string(s)); err != nil {
			t.Fatalf("status %s rejected: %v", s, err)
		}
	}
	if _, err := ParseStatus("shipped"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	o := New("id", 1, nil)
	if err := o.SetStatus("bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if o.Status != StatusBooked {
		t.Fatalf("status changed on invalid input")
	}
}

func TestShortageText(t *testing.T) {
	b := Bouquet{Shortage: []Shortfall{{"rose", 3, 1}, {"tulip", 2, 0}}}
	if got := b.ShortageText(); got != "rose: need 3, got 1; tulip: need 2, got 0" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestSettle(t *testing.T) {
	b := Bouquet{Shortage: []Shortfall{{"rose", 3, 1}, {"tulip", 2, 0}}}

	b.Settle("tulip", 1)
	if b.Shortage[1] != (Shortfall{"tulip", 2, 1}) {
		t.Fatalf("partial settle wrong: %+v", b.Shortage)
	}
	b.Settle("rose", 3)
	if len(b.Shortage) != 1 || b.Shortage[0].Component != "tulip" {
		t.Fatalf("covered shortfall kept: %+v", b.Shortage)
	}
	b.Settle("tulip", 2)
	if b.Shortage != nil {
		t.Fatalf("expected no shortage, got %+v", b.Shortage)
	}
}
