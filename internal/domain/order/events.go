package order

import (
	"time"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
)

// OrderBookedEvent is emitted when a booking has been committed.
type OrderBookedEvent struct {
	OrderID     string
	Number      int
	Bouquets    int
	Composition inventory.Composition
	OccurredAt  time.Time
}

func (OrderBookedEvent) EventName() string { return "order.booked" }

func NewOrderBookedEvent(o *Order) OrderBookedEvent {
	return OrderBookedEvent{
		OrderID:     o.ID,
		Number:      o.Number,
		Bouquets:    len(o.Bouquets),
		Composition: o.Composition.Clone(),
		OccurredAt:  time.Now().UTC(),
	}
}

// OrderUpdatedEvent is emitted after any edit of an existing order.
type OrderUpdatedEvent struct {
	OrderID    string
	Change     string
	OccurredAt time.Time
}

func (OrderUpdatedEvent) EventName() string { return "order.updated" }

func NewOrderUpdatedEvent(o *Order, change string) OrderUpdatedEvent {
	return OrderUpdatedEvent{
		OrderID:    o.ID,
		Change:     change,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderDeletedEvent is emitted once a deleted order's composition is back in stock.
type OrderDeletedEvent struct {
	OrderID    string
	Returned   inventory.Composition
	OccurredAt time.Time
}

func (OrderDeletedEvent) EventName() string { return "order.deleted" }

func NewOrderDeletedEvent(o *Order) OrderDeletedEvent {
	return OrderDeletedEvent{
		OrderID:    o.ID,
		Returned:   o.Composition.Clone(),
		OccurredAt: time.Now().UTC(),
	}
}
