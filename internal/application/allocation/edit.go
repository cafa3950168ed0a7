package allocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/order"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	useCaseEditNumber      = "order.edit_number"
	useCaseEditName        = "order.edit_name"
	useCaseEditQuantity    = "order.edit_quantity"
	useCaseEditComposition = "order.edit_composition"
	useCaseEditStatus      = "order.edit_status"
	useCaseDelete          = "order.delete"
)

// EditResult is returned by composition edits. Skipped lists the input lines
// that were ignored because they did not parse.
type EditResult struct {
	Order   *order.Order
	Skipped []inventory.LineError
}

// EditOrderNumber changes the display number. Numbers are labels and may repeat.
func (s *Service) EditOrderNumber(ctx context.Context, idx, number int) (_ *order.Order, err error) {
	ctx, op := s.begin(ctx, useCaseEditNumber, "EditOrderNumber", attribute.Int("order.index", idx))
	defer func() { op.end(err) }()

	if number <= 0 {
		return nil, newValidation("number", "must be greater than zero")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ledger.Get(idx)
	if err != nil {
		return nil, err
	}
	o.Number = number
	o.Touch()
	if err := s.ledger.Replace(idx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, op, order.NewOrderUpdatedEvent(o, "number"))
	return o, nil
}

func (s *Service) EditOrderName(ctx context.Context, idx, bidx int, name string) (_ *order.Order, err error) {
	ctx, op := s.begin(ctx, useCaseEditName, "EditOrderName",
		attribute.Int("order.index", idx),
		attribute.Int("bouquet.index", bidx),
	)
	defer func() { op.end(err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidation("name", "must not be blank")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ledger.Get(idx)
	if err != nil {
		return nil, err
	}
	b, err := o.Bouquet(bidx)
	if err != nil {
		return nil, err
	}
	b.Name = name
	o.Recompute()
	o.Touch()
	if err := s.ledger.Replace(idx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, op, order.NewOrderUpdatedEvent(o, "name"))
	return o, nil
}

// EditOrderQuantity sets one component of one bouquet. Growth is debited from
// stock and must be covered; shrinkage is credited back. Zero drops the component
// unless the bouquet is a replacement, which keeps it next to its shortfall.
func (s *Service) EditOrderQuantity(ctx context.Context, idx, bidx int, component string, qty int) (_ *order.Order, err error) {
	ctx, op := s.begin(ctx, useCaseEditQuantity, "EditOrderQuantity",
		attribute.Int("order.index", idx),
		attribute.Int("bouquet.index", bidx),
		attribute.String("component", component),
		attribute.Int("quantity", qty),
	)
	defer func() { op.end(err) }()

	if qty < 0 {
		return nil, newValidation("quantity", "must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ledger.Get(idx)
	if err != nil {
		return nil, err
	}
	b, err := o.Bouquet(bidx)
	if err != nil {
		return nil, err
	}
	key, ok := resolveLabel(b.Composition, component)
	if !ok {
		return nil, newValidation("component", fmt.Sprintf("%q is not in bouquet %d", component, bidx))
	}

	diff := qty - b.Composition[key]
	if diff == 0 {
		op.status = "NO_CHANGE"
		return o, nil
	}

	_, stock, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}
	working := stock.Clone()
	if diff > 0 {
		if err := working.Debit(inventory.Composition{key: diff}); err != nil {
			return nil, err
		}
	} else {
		working.Credit(inventory.Composition{key: -diff})
	}

	if qty == 0 && !b.Replacement {
		delete(b.Composition, key)
	} else {
		b.Composition[key] = qty
	}
	b.Settle(key, qty)
	o.Recompute()
	o.Touch()

	if err := s.persist(ctx, working); err != nil {
		return nil, err
	}
	if err := s.ledger.Replace(idx, o); err != nil {
		return nil, err
	}
	op.annotate(observability.F("delta", diff))
	s.publish(ctx, op,
		order.NewOrderUpdatedEvent(o, "quantity"),
		inventory.NewStockChangedEvent(working, useCaseEditQuantity),
	)
	return o, nil
}

// EditOrderComposition replaces a bouquet's composition with the parsed text.
// The old composition is credited, the new one debited; on a shortage the old
// composition is debited again and neither stock nor the order changes.
func (s *Service) EditOrderComposition(ctx context.Context, idx, bidx int, text string) (_ *EditResult, err error) {
	ctx, op := s.begin(ctx, useCaseEditComposition, "EditOrderComposition",
		attribute.Int("order.index", idx),
		attribute.Int("bouquet.index", bidx),
	)
	defer func() { op.end(err) }()

	parsed, skipped := inventory.ParseComposition(text)
	if len(skipped) > 0 {
		op.annotate(observability.F("skipped_lines", len(skipped)))
	}
	if len(parsed) == 0 {
		return nil, &ValidationError{Field: "composition", Reason: "no valid component lines", Lines: skipped}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ledger.Get(idx)
	if err != nil {
		return nil, err
	}
	b, err := o.Bouquet(bidx)
	if err != nil {
		return nil, err
	}

	_, stock, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}
	working := stock.Clone()
	next := canonical(working, parsed)
	prev := b.Composition

	working.Credit(prev)
	if err := working.Debit(next); err != nil {
		if rerr := working.Debit(prev); rerr != nil {
			return nil, fmt.Errorf("allocation: restore previous composition: %w", rerr)
		}
		return nil, err
	}

	b.Composition = next
	b.Shortage = nil
	o.Recompute()
	o.Touch()

	if err := s.persist(ctx, working); err != nil {
		return nil, err
	}
	if err := s.ledger.Replace(idx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, op,
		order.NewOrderUpdatedEvent(o, "composition"),
		inventory.NewStockChangedEvent(working, useCaseEditComposition),
	)
	return &EditResult{Order: o, Skipped: skipped}, nil
}

// EditOrderStatus accepts only the enumerated statuses and never moves stock.
func (s *Service) EditOrderStatus(ctx context.Context, idx int, status string) (_ *order.Order, err error) {
	ctx, op := s.begin(ctx, useCaseEditStatus, "EditOrderStatus",
		attribute.Int("order.index", idx),
		attribute.String("order.status", status),
	)
	defer func() { op.end(err) }()

	st, perr := order.ParseStatus(strings.TrimSpace(status))
	if perr != nil {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status), Err: perr}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ledger.Get(idx)
	if err != nil {
		return nil, err
	}
	if err := o.SetStatus(st); err != nil {
		return nil, err
	}
	if err := s.ledger.Replace(idx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, op, order.NewOrderUpdatedEvent(o, "status"))
	return o, nil
}

// DeleteOrder credits the order's whole composition back to stock, persists,
// and only then removes the order.
func (s *Service) DeleteOrder(ctx context.Context, idx int) (_ *order.Order, err error) {
	ctx, op := s.begin(ctx, useCaseDelete, "DeleteOrder", attribute.Int("order.index", idx))
	defer func() { op.end(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.ledger.Get(idx)
	if err != nil {
		return nil, err
	}

	_, stock, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}
	working := stock.Clone()
	working.Credit(o.Composition)
	if err := s.persist(ctx, working); err != nil {
		return nil, err
	}
	if _, err := s.ledger.Remove(idx); err != nil {
		return nil, err
	}

	op.annotate(observability.F("order_id", o.ID))
	s.publish(ctx, op,
		order.NewOrderDeletedEvent(o),
		inventory.NewStockChangedEvent(working, useCaseDelete),
	)
	return o, nil
}
