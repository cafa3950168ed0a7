package inventory

import (
	"errors"
	"testing"
)

func TestDebitIsAllOrNothing(t *testing.T) {
	s := Stock{"rose": 10, "tulip": 1}
	before := s.Clone()

	err := s.Debit(Composition{"rose": 3, "tulip": 2})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	var short *ShortageError
	if !errors.As(err, &short) {
		t.Fatalf("expected *ShortageError, got %T", err)
	}
	if short.Component != "tulip" || short.Required != 2 || short.Available != 1 || short.Missing() != 1 {
		t.Fatalf("unexpected shortage: %+v", short)
	}
	if !s.Equal(before) {
		t.Fatalf("stock mutated on failed debit: %v", s)
	}
}

func TestDebitCredit(t *testing.T) {
	s := Stock{"rose": 10, "tulip": 5}
	if err := s.Debit(Composition{"rose": 3, "tulip": 2}); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if s["rose"] != 7 || s["tulip"] != 3 {
		t.Fatalf("unexpected stock %v", s)
	}
	s.Credit(Composition{"rose": 3, "tulip": 2})
	if s["rose"] != 10 || s["tulip"] != 5 {
		t.Fatalf("unexpected stock after credit %v", s)
	}
}

func TestFirstShortageIsDeterministic(t *testing.T) {
	s := Stock{"a": 0, "b": 0, "c": 0}
	for i := 0; i < 20; i++ {
		short := s.FirstShortage(Composition{"c": 1, "b": 1, "a": 1})
		if short == nil || short.Component != "a" {
			t.Fatalf("expected shortage on a, got %+v", short)
		}
	}
	if got := len(s.Shortages(Composition{"c": 1, "b": 1})); got != 2 {
		t.Fatalf("expected 2 shortages, got %d", got)
	}
}

func TestTake(t *testing.T) {
	s := Stock{"rose": 2}
	if got := s.Take("rose", 5); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := s.Take("rose", 1); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := s.Take("peony", 1); got != 0 {
		t.Fatalf("expected 0 for unknown component, got %d", got)
	}
	if s["rose"] != 0 {
		t.Fatalf("expected rose exhausted, got %d", s["rose"])
	}
}

func TestValidate(t *testing.T) {
	s := Stock{"rose": 1}
	s.NetOut(Composition{"rose": 2})
	if err := s.Validate(); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
}

func TestCompositionHelpers(t *testing.T) {
	total := Sum(Composition{"rose": 1}, Composition{"rose": 2, "tulip": 1})
	if total["rose"] != 3 || total.Total() != 4 {
		t.Fatalf("unexpected sum %v", total)
	}
	if !(Composition{"rose": 1, "tulip": 0}).Equal(Composition{"rose": 1}) {
		t.Fatalf("zero entries must not affect equality")
	}
	if got := (Composition{"b": 1, "a": 1}).Components(); got[0] != "a" || got[1] != "b" {
		t.Fatalf("components not sorted: %v", got)
	}
}
