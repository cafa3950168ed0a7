// Package application holds the use cases that sit between the HTTP and
// outbox boundaries and the domain packages.
package application

import "context"

// UseCase is a single command handler. Event-driven workers depend on this
// shape rather than on concrete use case types.
type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}
