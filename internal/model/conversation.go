package model

import "time"

// Conversation dialogue states.  A conversation starts idle, walks through
// the awaiting_* states while a booking is collected and returns to idle
// when the booking completes or is cancelled.
const (
	StateIdle                 = "idle"
	StateAwaitingPartySize    = "awaiting_party_size"
	StateAwaitingDateTime     = "awaiting_datetime"
	StateAwaitingConfirmation = "awaiting_confirmation"
)

// Conversation holds the per-user dialogue state for the chat booking flow.
// There is exactly one conversation per external chat user id; this row is
// the concurrency boundary for message processing.
//
// Fields:
//  ID           – primary key identifier (UUID string).
//  WaUserID     – external chat user identifier; unique.
//  State        – current dialogue state (State* constants).
//  CustomerName – optional name supplied by the user.
//  PartySize    – booking-in-progress party size (nil until collected).
//  ReservedAt   – booking-in-progress start instant (nil until collected).
//  Note         – booking-in-progress note.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Conversation struct {
	ID           string     // conversations.id
	WaUserID     string     // conversations.wa_user_id (unique)
	State        string     // conversations.state
	CustomerName *string    // conversations.customer_name (nullable)
	PartySize    *int       // conversations.party_size (nullable)
	ReservedAt   *time.Time // conversations.reserved_at (nullable)
	Note         *string    // conversations.note (nullable)
	CreatedAt    time.Time  // conversations.created_at
	UpdatedAt    time.Time  // conversations.updated_at
}

// ResetBooking clears the transient booking fields and returns the
// conversation to the idle state.  Called when a booking completes or the
// user cancels.
func (c *Conversation) ResetBooking() {
	c.State = StateIdle
	c.PartySize = nil
	c.ReservedAt = nil
	c.Note = nil
}
