package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/lokanta/reservations/internal/model"
)

// mysqlDuplicateEntry is the server error code raised when an insert
// violates a unique key.
const mysqlDuplicateEntry = 1062

// WebhookEventRepo writes the webhook idempotency ledger.  The table has a
// UNIQUE KEY on (provider, external_id); the first insert for a delivery
// wins and every replay surfaces as ErrDuplicateEvent.  Rows are never
// updated or deleted.
type WebhookEventRepo struct {
	db *sql.DB
}

// NewWebhookEventRepo returns a new WebhookEventRepo bound to the given database.
func NewWebhookEventRepo(db *sql.DB) *WebhookEventRepo { return &WebhookEventRepo{db: db} }

// Insert records a webhook delivery.  ErrDuplicateEvent is returned when
// the (provider, external id) pair has been seen before.
func (r *WebhookEventRepo) Insert(ctx context.Context, ev *model.WebhookEvent) error {
	ev.ID = uuid.NewString()
	ev.CreatedAt = time.Now().UTC()
	const q = `INSERT INTO webhook_events (id, provider, external_id, payload, created_at)
	           VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, ev.ID, ev.Provider, ev.ExternalID, ev.Payload, ev.CreatedAt)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return ErrDuplicateEvent
	}
	return err
}
