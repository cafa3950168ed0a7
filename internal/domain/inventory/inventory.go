package inventory

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	ErrInvalidQuantity   = errors.New("inventory: quantity must not be negative")
)

// ShortageError names the component that could not be covered.
type ShortageError struct {
	Component string
	Required  int
	Available int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("inventory: insufficient %s: need %d, have %d", e.Component, e.Required, e.Available)
}

func (e *ShortageError) Is(target error) bool { return target == ErrInsufficientStock }

// Missing is the shortfall carried by the error.
func (e *ShortageError) Missing() int { return e.Required - e.Available }

// Composition maps a component label to a quantity.
type Composition map[string]int

func (c Composition) Clone() Composition {
	out := make(Composition, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Add accumulates other into c.
func (c Composition) Add(other Composition) {
	for k, v := range other {
		c[k] += v
	}
}

// Total is the number of units across all components.
func (c Composition) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Components returns the labels in sorted order.
func (c Composition) Components() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Positive drops entries whose quantity is zero or less.
func (c Composition) Positive() Composition {
	out := make(Composition, len(c))
	for k, v := range c {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

func (c Composition) Equal(other Composition) bool {
	a, b := c.Positive(), other.Positive()
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// Sum adds up several compositions into a fresh one.
func Sum(parts ...Composition) Composition {
	out := make(Composition)
	for _, p := range parts {
		out.Add(p)
	}
	return out
}

// Stock is the free quantity per component, keyed by the label of record.
type Stock map[string]int

func (s Stock) Clone() Stock {
	out := make(Stock, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s Stock) Available(component string) int { return s[component] }

// FirstShortage reports the first component, in sorted order, that demand does not fit.
func (s Stock) FirstShortage(demand Composition) *ShortageError {
	for _, c := range demand.Components() {
		need := demand[c]
		if need <= 0 {
			continue
		}
		if have := s[c]; have < need {
			return &ShortageError{Component: c, Required: need, Available: have}
		}
	}
	return nil
}

// Shortages lists every component that demand does not fit, in sorted order.
func (s Stock) Shortages(demand Composition) []ShortageError {
	var out []ShortageError
	for _, c := range demand.Components() {
		need := demand[c]
		if need <= 0 {
			continue
		}
		if have := s[c]; have < need {
			out = append(out, ShortageError{Component: c, Required: need, Available: have})
		}
	}
	return out
}

// Debit removes demand from the stock. Nothing changes unless every component is covered.
func (s Stock) Debit(demand Composition) error {
	if short := s.FirstShortage(demand); short != nil {
		return short
	}
	for c, q := range demand {
		if q > 0 {
			s[c] -= q
		}
	}
	return nil
}

// Credit returns quantities to the stock.
func (s Stock) Credit(returned Composition) {
	for c, q := range returned {
		if q > 0 {
			s[c] += q
		}
	}
}

// Take debits min(want, available) of a component and returns what was taken.
func (s Stock) Take(component string, want int) int {
	if want <= 0 {
		return 0
	}
	got := min(want, max(s[component], 0))
	if got > 0 {
		s[component] -= got
	}
	return got
}

// NetOut subtracts tentative demand without any coverage check.
// The result can go negative and must never be persisted.
func (s Stock) NetOut(tentative Composition) {
	for c, q := range tentative {
		s[c] -= q
	}
}

// Validate rejects a stock holding a negative quantity.
func (s Stock) Validate() error {
	for _, c := range Composition(s).Components() {
		if s[c] < 0 {
			return fmt.Errorf("%w: %s is %d", ErrInvalidQuantity, c, s[c])
		}
	}
	return nil
}

func (s Stock) Equal(other Stock) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if w, ok := other[k]; !ok || w != v {
			return false
		}
	}
	return true
}
