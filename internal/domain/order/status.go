package order

import "fmt"

type Status string

const (
	StatusBooked                Status = "booked"
	StatusCancelledNotAssembled Status = "cancelled_not_assembled"
	StatusCancelledAssembled    Status = "cancelled_assembled"
	StatusPaidAssembled         Status = "paid_assembled"
	StatusPaidNotAssembled      Status = "paid_not_assembled"
)

// Statuses lists every accepted status in display order.
var Statuses = []Status{
	StatusBooked,
	StatusCancelledNotAssembled,
	StatusCancelledAssembled,
	StatusPaidAssembled,
	StatusPaidNotAssembled,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus accepts only the enumerated values.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}
