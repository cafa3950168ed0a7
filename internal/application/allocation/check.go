package allocation

import (
	"context"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const useCaseCheck = "allocation.check"

type VerdictStatus string

const (
	VerdictFeasible       VerdictStatus = "feasible"
	VerdictUnknownProduct VerdictStatus = "unknown_product"
	VerdictInsufficient   VerdictStatus = "insufficient"
)

// Tentative is a not yet booked item whose demand is netted out of the
// snapshot before checking. A nil Composition means the product's recipe.
type Tentative struct {
	Name        string
	Composition inventory.Composition
}

// Verdict is the answer of an availability check. Remaining is the netted
// snapshot the check ran against and may hold negative values.
type Verdict struct {
	Product    string
	Status     VerdictStatus
	Required   inventory.Composition
	Shortages  []inventory.ShortageError
	Remaining  inventory.Stock
	Obtainable inventory.Composition
}

func (v Verdict) Feasible() bool { return v.Status == VerdictFeasible }

// CheckAvailability never mutates stock and reports every problem in the verdict.
func (s *Service) CheckAvailability(ctx context.Context, name string, tentative []Tentative) (v Verdict) {
	ctx, op := s.begin(ctx, useCaseCheck, "CheckAvailability",
		attribute.String("product", name),
		attribute.Int("check.tentative", len(tentative)),
	)
	defer func() {
		op.annotate(
			observability.F("product", v.Product),
			observability.F("verdict", string(v.Status)),
		)
		op.end(nil)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, stock, _ := s.load(ctx, op)
	return Evaluate(cat, stock, name, tentative)
}

// Evaluate is the pure availability check behind CheckAvailability.
func Evaluate(cat *catalog.Catalog, stock inventory.Stock, name string, tentative []Tentative) Verdict {
	remaining := stock.Clone()
	for _, t := range tentative {
		demand := t.Composition
		if demand == nil {
			r, err := cat.Lookup(catalog.BaseProductName(t.Name))
			if err != nil {
				continue
			}
			demand = r.Components
		}
		remaining.NetOut(canonical(remaining, demand.Positive()))
	}

	recipe, err := cat.Lookup(name)
	if err != nil {
		return Verdict{Product: name, Status: VerdictUnknownProduct, Remaining: remaining}
	}

	required := recipe.Components.Positive()
	obtainable := make(inventory.Composition, len(required))
	for c, need := range required {
		obtainable[c] = min(need, max(remaining[c], 0))
	}

	v := Verdict{
		Product:    recipe.Name,
		Status:     VerdictFeasible,
		Required:   required,
		Shortages:  remaining.Shortages(required),
		Remaining:  remaining,
		Obtainable: obtainable,
	}
	if len(v.Shortages) > 0 {
		v.Status = VerdictInsufficient
	}
	return v
}
