package model

import "time"

// WebhookEvent is the idempotency ledger for inbound webhook deliveries.
// A unique key on (provider, external_id) makes the first insert win; any
// replay of the same delivery hits the constraint and is dropped before it
// can produce side effects.  Rows are never updated.
type WebhookEvent struct {
	ID         string    // webhook_events.id
	Provider   string    // webhook_events.provider
	ExternalID string    // webhook_events.external_id
	Payload    string    // webhook_events.payload (raw JSON)
	CreatedAt  time.Time // webhook_events.created_at
}
