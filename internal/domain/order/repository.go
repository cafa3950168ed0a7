package order

// Ledger is the ordered collection of booked orders, newest first.
// Implementations are not required to lock: callers serialize mutations.
type Ledger interface {
	Len() int
	List() []*Order
	Get(idx int) (*Order, error)
	Prepend(o *Order)
	Replace(idx int, o *Order) error
	Remove(idx int) (*Order, error)
}
