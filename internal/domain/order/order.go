package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
)

var (
	ErrNotFound      = errors.New("order: not found")
	ErrInvalidStatus = errors.New("order: invalid status")
)

// IndexError reports an order or bouquet position outside the ledger.
type IndexError struct {
	Kind  string // "order" or "bouquet"
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("order: %s index %d out of range [0,%d)", e.Kind, e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrNotFound }

// Shortfall records how much of a component a replacement bouquet did not get.
type Shortfall struct {
	Component string
	Required  int
	Allocated int
}

func (s Shortfall) String() string {
	return fmt.Sprintf("%s: need %d, got %d", s.Component, s.Required, s.Allocated)
}

// Bouquet is one allocated recipe occurrence inside an order.
type Bouquet struct {
	Name        string
	Composition inventory.Composition
	Shortage    []Shortfall
	Replacement bool
}

// Settle records qty as the allocated amount of component. A shortfall that
// qty now covers is dropped.
func (b *Bouquet) Settle(component string, qty int) {
	kept := b.Shortage[:0]
	for _, sf := range b.Shortage {
		if sf.Component == component {
			if qty >= sf.Required {
				continue
			}
			sf.Allocated = qty
		}
		kept = append(kept, sf)
	}
	if len(kept) == 0 {
		kept = nil
	}
	b.Shortage = kept
}

func (b Bouquet) Clone() Bouquet {
	out := b
	out.Composition = b.Composition.Clone()
	out.Shortage = append([]Shortfall(nil), b.Shortage...)
	return out
}

// ShortageText joins the shortfalls for display.
func (b Bouquet) ShortageText() string {
	if len(b.Shortage) == 0 {
		return ""
	}
	parts := make([]string, len(b.Shortage))
	for i, s := range b.Shortage {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}

// Order owns its bouquets. Composition and Title are derived and refreshed by Recompute.
type Order struct {
	ID          string
	Number      int
	Bouquets    []Bouquet
	Status      Status
	Composition inventory.Composition
	Title       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func New(id string, number int, bouquets []Bouquet) *Order {
	now := time.Now().UTC()
	o := &Order{
		ID:        id,
		Number:    number,
		Bouquets:  bouquets,
		Status:    StatusBooked,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.Recompute()
	return o
}

// Recompute derives the aggregate composition and title from the bouquets.
func (o *Order) Recompute() {
	total := make(inventory.Composition)
	names := make([]string, 0, len(o.Bouquets))
	for _, b := range o.Bouquets {
		total.Add(b.Composition)
		names = append(names, b.Name)
	}
	o.Composition = total.Positive()
	o.Title = strings.Join(names, ", ")
}

// Bouquet returns the bouquet at idx for in-place editing.
func (o *Order) Bouquet(idx int) (*Bouquet, error) {
	if idx < 0 || idx >= len(o.Bouquets) {
		return nil, &IndexError{Kind: "bouquet", Index: idx, Len: len(o.Bouquets)}
	}
	return &o.Bouquets[idx], nil
}

func (o *Order) SetStatus(s Status) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	o.Status = s
	o.Touch()
	return nil
}

func (o *Order) Touch() {
	o.UpdatedAt = time.Now().UTC()
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	out := *o
	out.Bouquets = make([]Bouquet, len(o.Bouquets))
	for i, b := range o.Bouquets {
		out.Bouquets[i] = b.Clone()
	}
	out.Composition = o.Composition.Clone()
	return &out
}
