package allocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/order"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	useCaseBookSingle         = "allocation.book_single"
	useCaseBookBatch          = "allocation.book_batch"
	useCasePrepareReplacement = "allocation.prepare_replacement"

	// ReplacementSuffix marks the display name of a best-effort bouquet.
	ReplacementSuffix = " (с заменой)"
)

type Mode string

const (
	ModeStrict      Mode = "strict"
	ModeReplacement Mode = "replacement"
)

// BatchItem is one bouquet requested in a booking. Strict items always use the
// catalog recipe. Replacement items use Composition when it is set.
type BatchItem struct {
	Name        string
	Mode        Mode
	Composition inventory.Composition
}

func (s *Service) BookSingle(ctx context.Context, name string) (*order.Order, error) {
	return s.book(ctx, useCaseBookSingle, "BookSingle", []BatchItem{{Name: name, Mode: ModeStrict}})
}

// BookBatch books all items as one order. Strict items are all-or-nothing as a
// group; replacement items take what is left in submission order.
func (s *Service) BookBatch(ctx context.Context, items []BatchItem) (*order.Order, error) {
	return s.book(ctx, useCaseBookBatch, "BookBatch", items)
}

func (s *Service) book(ctx context.Context, useCase, spanName string, items []BatchItem) (_ *order.Order, err error) {
	ctx, op := s.begin(ctx, useCase, spanName, attribute.Int("booking.items", len(items)))
	defer func() { op.end(err) }()

	if len(items) == 0 {
		return nil, newValidation("items", "at least one item is required")
	}
	for i, it := range items {
		switch it.Mode {
		case "", ModeStrict, ModeReplacement:
		default:
			return nil, newValidation("mode", fmt.Sprintf("item %d: unknown mode %q", i, it.Mode))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat, stock, lerr := s.load(ctx, op)
	working := stock.Clone()
	bouquets, err := Allocate(cat, working, items)
	if err != nil {
		return nil, err
	}
	if lerr != nil {
		return nil, lerr
	}
	if err := s.persist(ctx, working); err != nil {
		return nil, err
	}

	o := order.New(s.ids.NewID(), s.nextNumber(), bouquets)
	s.ledger.Prepend(o)

	op.annotate(
		observability.F("order_id", o.ID),
		observability.F("order_number", o.Number),
		observability.F("bouquets", len(o.Bouquets)),
	)
	op.span.AddEvent("order.booked", trace.WithAttributes(attribute.String("order.id", o.ID)))
	s.publish(ctx, op,
		order.NewOrderBookedEvent(o),
		inventory.NewStockChangedEvent(working, useCase),
	)
	return o, nil
}

type resolved struct {
	item   BatchItem
	name   string
	demand inventory.Composition
}

// Allocate debits stock for items and returns the bouquets in submission order.
// Every name is resolved and the strict group is checked before stock moves, so
// on error stock is unchanged.
func Allocate(cat *catalog.Catalog, stock inventory.Stock, items []BatchItem) ([]order.Bouquet, error) {
	plan := make([]resolved, 0, len(items))
	strict := make(inventory.Composition)
	for i, it := range items {
		r, err := resolve(cat, stock, it)
		if err != nil {
			return nil, fmt.Errorf("allocation: item %d: %w", i, err)
		}
		if r.item.Mode != ModeReplacement {
			strict.Add(r.demand)
		}
		plan = append(plan, r)
	}

	if err := stock.Debit(strict); err != nil {
		return nil, err
	}

	bouquets := make([]order.Bouquet, 0, len(plan))
	for _, r := range plan {
		if r.item.Mode != ModeReplacement {
			bouquets = append(bouquets, order.Bouquet{Name: r.name, Composition: r.demand.Clone()})
			continue
		}
		b := order.Bouquet{Name: r.name, Composition: make(inventory.Composition), Replacement: true}
		for _, c := range r.demand.Components() {
			need := r.demand[c]
			got := stock.Take(c, need)
			b.Composition[c] = got
			if got < need {
				b.Shortage = append(b.Shortage, order.Shortfall{Component: c, Required: need, Allocated: got})
			}
		}
		bouquets = append(bouquets, b)
	}
	return bouquets, nil
}

func resolve(cat *catalog.Catalog, stock inventory.Stock, it BatchItem) (resolved, error) {
	if it.Mode == ModeReplacement && it.Composition != nil {
		for c, q := range it.Composition {
			if q < 0 {
				return resolved{}, newValidation("composition", fmt.Sprintf("%s: negative quantity %d", c, q))
			}
		}
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return resolved{}, newValidation("name", "replacement item needs a name")
		}
		return resolved{item: it, name: replacementName(name), demand: canonical(stock, it.Composition.Positive())}, nil
	}

	lookup := it.Name
	if it.Mode == ModeReplacement {
		lookup = catalog.BaseProductName(it.Name)
	}
	recipe, err := cat.Lookup(lookup)
	if err != nil {
		return resolved{}, err
	}
	r := resolved{item: it, name: recipe.Name, demand: canonical(stock, recipe.Components.Positive())}
	if it.Mode == ModeReplacement {
		r.name = replacementName(recipe.Name)
	}
	return r, nil
}

func replacementName(name string) string {
	if strings.HasSuffix(name, ReplacementSuffix) {
		return name
	}
	return name + ReplacementSuffix
}

// PrepareReplacement builds a replacement item from a recipe plus extra
// components chosen by the caller. Stock is not touched.
func (s *Service) PrepareReplacement(ctx context.Context, name string, extras []inventory.Line) (_ BatchItem, err error) {
	ctx, op := s.begin(ctx, useCasePrepareReplacement, "PrepareReplacement", attribute.String("product", name))
	defer func() { op.end(err) }()

	for _, l := range extras {
		if strings.TrimSpace(l.Component) == "" {
			return BatchItem{}, newValidation("component", "extra component needs a name")
		}
		if l.Quantity <= 0 {
			return BatchItem{}, newValidation("quantity", fmt.Sprintf("%s: quantity must be greater than zero", l.Component))
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, stock, _ := s.load(ctx, op)
	recipe, err := cat.Lookup(catalog.BaseProductName(name))
	if err != nil {
		return BatchItem{}, err
	}
	comp := canonical(stock, recipe.Components.Positive())
	comp.Add(canonical(stock, inventory.FromLines(extras)))

	op.annotate(observability.F("extras", len(extras)))
	return BatchItem{Name: replacementName(recipe.Name), Mode: ModeReplacement, Composition: comp}, nil
}
