// Package availability holds the pure booking decision: given a table, a
// party size and a desired start instant, it decides whether the table can
// accept the reservation.  It performs no I/O; callers supply the start
// instants of existing reservations that could overlap the candidate window.
package availability

import (
	"errors"
	"time"

	"github.com/lokanta/reservations/internal/model"
)

// ReservationDuration is the fixed length of every booking window.  It is
// load-bearing in both the direct API and the chat flow, so it lives here as
// a single named constant rather than as a literal in queries.
const ReservationDuration = 120 * time.Minute

// Decision errors returned by Check.  Handlers translate these into HTTP
// status codes; the chat flow renders them as reply text.
var (
	// ErrTableInactive means the table does not currently accept bookings.
	ErrTableInactive = errors.New("table is inactive")
	// ErrCapacityExceeded means the party does not fit the table.
	ErrCapacityExceeded = errors.New("party size exceeds table capacity")
	// ErrConflict means an existing confirmed or seated reservation
	// overlaps the candidate window.
	ErrConflict = errors.New("table already booked for an overlapping window")
)

// Window returns the exclusive (from, to) range of stored start instants
// that overlap a candidate booking starting at start.  Because every window
// has the same fixed length, two windows overlap exactly when their starts
// are strictly less than ReservationDuration apart: back-to-back bookings at
// 18:00 and 20:00 do not collide.
func Window(start time.Time) (from, to time.Time) {
	return start.Add(-ReservationDuration), start.Add(ReservationDuration)
}

// Check decides whether table can accept a reservation of partySize guests
// starting at start.  existing must contain the start instants of every
// reservation on the same table whose status is confirmed or seated and
// whose start falls inside Window(start); any such instant is a conflict.
// A nil return means the booking may proceed.
func Check(table model.Table, partySize int, start time.Time, existing []time.Time) error {
	if !table.IsActive {
		return ErrTableInactive
	}
	if partySize > table.Capacity {
		return ErrCapacityExceeded
	}
	from, to := Window(start)
	for _, at := range existing {
		// from < at < to, both bounds exclusive
		if at.After(from) && at.Before(to) {
			return ErrConflict
		}
	}
	return nil
}
