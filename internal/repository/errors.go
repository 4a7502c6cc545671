// Package repository implements MySQL persistence for the reservation
// system.  Sentinel errors defined here let handlers and services
// distinguish failure scenarios without inspecting driver errors; anything
// not covered by a sentinel propagates as a generic server fault.
package repository

import "errors"

// ErrTableNotFound is returned when a referenced table does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrTableNotFound = errors.New("table not found")

// ErrReservationNotFound is returned when a reservation lookup or status
// update targets an id with no row. Handlers should translate this into
// an HTTP 404 response.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrConversationNotFound is returned when no conversation exists for a
// chat user id. The chat flow treats this as an incomplete booking.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrDuplicateEvent is returned when a webhook delivery has already been
// recorded for the same (provider, external id) pair. Callers must
// short-circuit with a success no-op response so the upstream relay stops
// retrying.
var ErrDuplicateEvent = errors.New("duplicate webhook event")

// ErrInvalidTransition is returned when a reservation status update is not
// a legal move (see model.CanTransition). Handlers should translate this
// into an HTTP 409 response.
var ErrInvalidTransition = errors.New("invalid status transition")
