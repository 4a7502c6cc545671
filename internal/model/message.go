package model

import "time"

// Message direction values.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Message is an append-only log record of a single inbound or outbound chat
// message.  Messages exist for audit and debugging and are never updated.
//
// Fields:
//  ID             – primary key identifier (UUID string).
//  ConversationID – owning conversation (nil for outbound records written
//                   before a conversation exists).
//  Provider       – messaging provider name (e.g. "whatsapp").
//  Direction      – "in" for received text, "out" for replies.
//  ExternalID     – provider message id, when known.
//  WaUserID       – external chat user the message belongs to.
//  Body           – raw message text.
//  CreatedAt      – creation timestamp.
type Message struct {
	ID             string    // messages.id
	ConversationID *string   // messages.conversation_id (nullable)
	Provider       string    // messages.provider
	Direction      string    // messages.direction
	ExternalID     *string   // messages.external_id (nullable)
	WaUserID       string    // messages.wa_user_id
	Body           string    // messages.body
	CreatedAt      time.Time // messages.created_at
}
