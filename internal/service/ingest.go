package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lokanta/reservations/internal/model"
	"github.com/lokanta/reservations/internal/repository"
)

// ErrMissingExternalID is returned when a webhook payload carries neither
// an event id nor a message id to deduplicate on.
var ErrMissingExternalID = errors.New("missing external event id")

// seenTTL bounds the Redis fast-path keys; the DB unique key remains the
// durable dedupe record.
const seenTTL = 24 * time.Hour

// WebhookEventStore writes the idempotency ledger.
type WebhookEventStore interface {
	Insert(ctx context.Context, ev *model.WebhookEvent) error
}

// IngestGuard deduplicates inbound webhook deliveries before they reach the
// conversation state machine.  The source of truth is the unique key on the
// webhook_events table; Redis serves as a best-effort fast path that spares
// the database an insert for hot replays and degrades to a no-op when no
// client is configured.
type IngestGuard struct {
	Events WebhookEventStore
	Redis  *redis.Client // optional
}

// Admit records the delivery and reports whether processing may proceed.
// Returns repository.ErrDuplicateEvent for replays and ErrMissingExternalID
// when externalID is empty; a nil error means the delivery is first-seen.
func (g *IngestGuard) Admit(ctx context.Context, provider, externalID, payload string) error {
	if externalID == "" {
		return ErrMissingExternalID
	}
	if g.Redis != nil {
		ok, err := g.Redis.SetNX(ctx, "webhook:seen:"+provider+":"+externalID, 1, seenTTL).Result()
		if err == nil && !ok {
			return repository.ErrDuplicateEvent
		}
		// on Redis errors fall through to the durable constraint
	}
	return g.Events.Insert(ctx, &model.WebhookEvent{
		Provider:   provider,
		ExternalID: externalID,
		Payload:    payload,
	})
}
