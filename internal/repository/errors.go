// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation
// cannot proceed due to existing dependent records (e.g. customizing
// a ticket on an order that has already been paid).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// customize a ticket whose order has already been paid. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrSoldOut is returned when the conditional availability decrement
// affects no rows: the requested cabin has no seats left on the
// flight. Handlers translate it into a validation failure so the
// losing side of a last-seat race sees a regular form error.
var ErrSoldOut = errors.New("no seats left for this class")

// Not-found sentinels per aggregate.  All map to HTTP 404.
var (
    ErrAirplaneNotFound = errors.New("airplane not found")
    ErrFlightNotFound   = errors.New("flight not found")
    ErrTicketNotFound   = errors.New("ticket not found")
    ErrOrderNotFound    = errors.New("order not found")
    ErrBasketNotFound   = errors.New("basket not found")
    ErrFacilityNotFound = errors.New("facility not found")
)
