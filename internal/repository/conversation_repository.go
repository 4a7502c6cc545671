package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lokanta/reservations/internal/model"
)

// ConversationRepo persists the per-user dialogue state of the chat booking
// flow.  The wa_user_id column carries a unique key, so there is at most one
// conversation per chat user and every write below touches a single row.
// That row is the concurrency boundary: the atomic upsert plus single-row
// updates give read-modify-write isolation per user without any
// cross-conversation locking.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo returns a new ConversationRepo bound to the given database.
func NewConversationRepo(db *sql.DB) *ConversationRepo { return &ConversationRepo{db: db} }

const conversationColumns = `id, wa_user_id, state, customer_name, party_size, reserved_at, note, created_at, updated_at`

func scanConversation(row interface{ Scan(...any) error }) (*model.Conversation, error) {
	var c model.Conversation
	if err := row.Scan(&c.ID, &c.WaUserID, &c.State, &c.CustomerName, &c.PartySize, &c.ReservedAt, &c.Note, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert ensures a conversation row exists for the chat user and returns
// it.  A fresh conversation starts in the idle state; an existing one is
// returned untouched apart from its updated_at stamp.
func (r *ConversationRepo) Upsert(ctx context.Context, waUserID string) (*model.Conversation, error) {
	now := time.Now().UTC()
	const q = `INSERT INTO conversations (id, wa_user_id, state, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE updated_at = VALUES(updated_at)`
	if _, err := r.db.ExecContext(ctx, q, uuid.NewString(), waUserID, model.StateIdle, now, now); err != nil {
		return nil, err
	}
	return r.Get(ctx, waUserID)
}

// Get returns the conversation for a chat user, or ErrConversationNotFound.
func (r *ConversationRepo) Get(ctx context.Context, waUserID string) (*model.Conversation, error) {
	const q = `SELECT ` + conversationColumns + ` FROM conversations WHERE wa_user_id = ?`
	c, err := scanConversation(r.db.QueryRowContext(ctx, q, waUserID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	return c, err
}

// Save writes the conversation's dialogue state and transient booking
// fields back in a single statement, keyed by the unique wa_user_id.
func (r *ConversationRepo) Save(ctx context.Context, c *model.Conversation) error {
	const q = `UPDATE conversations
	           SET state = ?, customer_name = ?, party_size = ?, reserved_at = ?, note = ?, updated_at = ?
	           WHERE wa_user_id = ?`
	res, err := r.db.ExecContext(ctx, q, c.State, c.CustomerName, c.PartySize, c.ReservedAt, c.Note, time.Now().UTC(), c.WaUserID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// zero rows can also mean a no-op update; confirm existence
		if _, getErr := r.Get(ctx, c.WaUserID); getErr != nil {
			return getErr
		}
	}
	return nil
}
