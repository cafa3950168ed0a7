package allocation

import (
	"context"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
)

// Store is the durable home of recipes and stock.
type Store interface {
	Load(ctx context.Context) (*catalog.Catalog, inventory.Stock, error)
	PersistStock(ctx context.Context, stock inventory.Stock) error
}

type IDGenerator interface {
	NewID() string
}
