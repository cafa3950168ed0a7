// Package outbox defines the ports through which committed stock and order
// changes leave the allocation engine.
package outbox

import "context"

// Event is a committed domain change, identified by a dotted name such as
// "stock.changed" or "order.booked".
type Event interface {
	EventName() string
}

// Handler processes one delivered event. A returned error is logged by the
// bus and does not stop delivery to other handlers.
type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
