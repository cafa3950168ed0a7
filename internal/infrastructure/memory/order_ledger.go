package memory

import (
	"sync"

	domain "github.com/PtahaWebDez/Flower-crm/internal/domain/order"
)

// OrderLedger holds orders newest first. Orders are cloned on the way in and out.
type OrderLedger struct {
	mu     sync.RWMutex
	orders []*domain.Order
}

func NewOrderLedger(orders ...*domain.Order) *OrderLedger {
	l := &OrderLedger{}
	for _, o := range orders {
		l.orders = append(l.orders, o.Clone())
	}
	return l
}

func (l *OrderLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}

func (l *OrderLedger) List() []*domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.Order, len(l.orders))
	for i, o := range l.orders {
		out[i] = o.Clone()
	}
	return out
}

func (l *OrderLedger) Get(idx int) (*domain.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := l.check(idx); err != nil {
		return nil, err
	}
	return l.orders[idx].Clone(), nil
}

func (l *OrderLedger) Prepend(o *domain.Order) {
	if o == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.orders = append([]*domain.Order{o.Clone()}, l.orders...)
}

func (l *OrderLedger) Replace(idx int, o *domain.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.check(idx); err != nil {
		return err
	}
	l.orders[idx] = o.Clone()
	return nil
}

func (l *OrderLedger) Remove(idx int) (*domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.check(idx); err != nil {
		return nil, err
	}
	removed := l.orders[idx]
	l.orders = append(l.orders[:idx:idx], l.orders[idx+1:]...)
	return removed, nil
}

func (l *OrderLedger) check(idx int) error {
	if idx < 0 || idx >= len(l.orders) {
		return &domain.IndexError{Kind: "order", Index: idx, Len: len(l.orders)}
	}
	return nil
}
