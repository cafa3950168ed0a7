package allocation

import (
	"context"
	"strings"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/order"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	useCaseSetStock = "inventory.set_stock"
	useCaseSnapshot = "allocation.snapshot"
)

// SetStock overwrites the free quantity of one component. This changes total
// supply, so it sits outside the conservation bookkeeping of bookings.
func (s *Service) SetStock(ctx context.Context, component string, qty int) (_ inventory.Stock, err error) {
	ctx, op := s.begin(ctx, useCaseSetStock, "SetStock",
		attribute.String("component", component),
		attribute.Int("quantity", qty),
	)
	defer func() { op.end(err) }()

	if strings.TrimSpace(component) == "" {
		return nil, newValidation("component", "must not be blank")
	}
	if qty < 0 {
		return nil, newValidation("quantity", "must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, stock, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}
	working := stock.Clone()
	key, _ := resolveLabel(working, component)
	op.annotate(
		observability.F("component", key),
		observability.F("previous", working[key]),
	)
	working[key] = qty

	if err := s.persist(ctx, working); err != nil {
		return nil, err
	}
	s.publish(ctx, op, inventory.NewStockChangedEvent(working, useCaseSetStock))
	return working.Clone(), nil
}

// State is a consistent read of orders, stock and product names.
type State struct {
	Orders   []*order.Order
	Stock    inventory.Stock
	Products []string
}

func (s *Service) Snapshot(ctx context.Context) State {
	ctx, op := s.begin(ctx, useCaseSnapshot, "Snapshot")
	defer func() { op.end(nil) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, stock, _ := s.load(ctx, op)
	return State{
		Orders:   s.ledger.List(),
		Stock:    stock,
		Products: cat.Names(),
	}
}
