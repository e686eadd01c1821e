package supabase

import (
	"context"
	"errors"

	"github.com/expensesink/expensesink-api/internal/domain"

	"github.com/sony/gobreaker"
)

// wrapStoreErr translates a failed breaker-wrapped read into the typed
// domain error the handler layer maps onto a status code: breaker open
// means the upstream is shedding load (503), a blown deadline is a
// timeout (504), anything else is an upstream failure (502).
func wrapStoreErr(service, operation string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: service}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: operation}
	default:
		return &domain.ErrExternalService{Service: service, Err: err}
	}
}
