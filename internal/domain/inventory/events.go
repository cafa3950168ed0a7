package inventory

import "time"

// StockChangedEvent is emitted after a stock mutation has been persisted.
type StockChangedEvent struct {
	Stock      Stock
	Reason     string
	OccurredAt time.Time
}

func (StockChangedEvent) EventName() string { return "stock.changed" }

func NewStockChangedEvent(stock Stock, reason string) StockChangedEvent {
	return StockChangedEvent{
		Stock:      stock.Clone(),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
