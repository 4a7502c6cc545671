package model

import "time"

// Reservation status values.  Only confirmed and seated reservations
// participate in overlap checks; cancelled and completed ones free the
// table but are kept for history.
const (
	StatusConfirmed = "confirmed"
	StatusSeated    = "seated"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Reservation records a booking of one table for a fixed two-hour window
// starting at ReservedAt.  Reservations are never hard-deleted; the only
// mutation after creation is a status transition.
//
// Fields:
//  ID            – primary key identifier (UUID string).
//  CustomerName  – name the booking was made under.
//  CustomerPhone – contact phone; for chat bookings this is the chat user id.
//  Note          – optional free-text note.
//  PartySize     – number of guests, 1 to 20.
//  TableID       – table the booking is assigned to.
//  Table         – table relation, populated by read paths.
//  ReservedAt    – start instant of the booking window, stored in UTC.
//  Status        – one of the Status* constants above.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
	ID            string    `json:"id"`             // reservations.id
	CustomerName  string    `json:"customerName"`   // reservations.customer_name
	CustomerPhone string    `json:"customerPhone"`  // reservations.customer_phone
	Note          *string   `json:"note,omitempty"` // reservations.note (nullable)
	PartySize     int       `json:"partySize"`      // reservations.party_size
	TableID       string    `json:"tableId"`        // reservations.table_id
	Table         *Table    `json:"table,omitempty"`
	ReservedAt    time.Time `json:"reservedAt"` // reservations.reserved_at
	Status        string    `json:"status"`     // reservations.status
	CreatedAt     time.Time `json:"createdAt"`  // reservations.created_at
	UpdatedAt     time.Time `json:"updatedAt"`  // reservations.updated_at
}

// ValidStatus reports whether s is one of the known reservation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusConfirmed, StatusSeated, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a reservation may move from one status to
// another.  Legal moves are confirmed→seated, confirmed→cancelled and
// seated→completed; everything else is rejected.
func CanTransition(from, to string) bool {
	switch from {
	case StatusConfirmed:
		return to == StatusSeated || to == StatusCancelled
	case StatusSeated:
		return to == StatusCompleted
	}
	return false
}
