package allocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/PtahaWebDez/Flower-crm/internal/domain/catalog"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/domain/order"
)

var (
	ErrValidation  = errors.New("allocation: validation failed")
	ErrPersistence = errors.New("allocation: persistence failed")

	ErrUnknownProduct    = catalog.ErrUnknownProduct
	ErrInsufficientStock = inventory.ErrInsufficientStock
	ErrNotFound          = order.ErrNotFound
)

// ValidationError describes malformed caller input. Lines holds the
// rejected composition lines when the input was a composition text.
type ValidationError struct {
	Field  string
	Reason string
	Lines  []inventory.LineError
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("allocation: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Err }

func newValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError reports a store write that failed after the in-memory
// mutation was prepared. The mutation is discarded when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("allocation: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func statusFor(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrUnknownProduct):
		return "UNKNOWN_PRODUCT"
	case errors.Is(err, ErrNotFound):
		return "INVALID_INDEX"
	case errors.Is(err, ErrValidation), errors.Is(err, order.ErrInvalidStatus):
		return "VALIDATION_FAILED"
	case errors.Is(err, ErrPersistence):
		return "PERSIST_FAILED"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "CONTEXT_CANCELED"
	default:
		return "INTERNAL"
	}
}
