package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lokanta/reservations/internal/model"
)

// MessageRepo appends inbound and outbound chat messages to the audit log.
// Messages are write-only from the application's point of view.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo returns a new MessageRepo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create appends one message record.  The ID and CreatedAt fields are
// populated on the passed model.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()
	const q = `INSERT INTO messages (id, conversation_id, provider, direction, external_id, wa_user_id, body, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		m.ID, m.ConversationID, m.Provider, m.Direction, m.ExternalID, m.WaUserID, m.Body, m.CreatedAt)
	return err
}
