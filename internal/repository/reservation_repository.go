package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lokanta/reservations/internal/availability"
	"github.com/lokanta/reservations/internal/model"
)

// ReservationRepo provides persistence for reservations.  The critical
// operation is CreateIfAvailable, which runs the availability check and the
// insert inside one transaction while holding a row lock on the table, so
// two near-simultaneous bookings on the same table cannot both pass the
// check.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateIfAvailable atomically checks availability and inserts the
// reservation.  The sequence is: lock the table row FOR UPDATE, collect the
// start instants of confirmed/seated reservations inside the overlap window,
// delegate the decision to availability.Check, insert on success.  The row
// lock serialises concurrent bookings per table; a request failing anywhere
// in the sequence rolls back and leaves no partial record.
//
// Returns ErrTableNotFound, availability.ErrTableInactive,
// availability.ErrCapacityExceeded or availability.ErrConflict as typed
// failures.  On success the reservation's ID, Status, timestamps and Table
// relation are populated.
func (r *ReservationRepo) CreateIfAvailable(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the table row for the duration of the check + insert.
	const lockQ = `SELECT ` + tableColumns + ` FROM tables WHERE id = ? FOR UPDATE`
	table, err := scanTable(tx.QueryRowContext(ctx, lockQ, res.TableID))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTableNotFound
	}
	if err != nil {
		return err
	}

	from, to := availability.Window(res.ReservedAt)
	const winQ = `SELECT reserved_at FROM reservations
	              WHERE table_id = ? AND status IN (?, ?)
	                AND reserved_at > ? AND reserved_at < ?`
	rows, err := tx.QueryContext(ctx, winQ, res.TableID, model.StatusConfirmed, model.StatusSeated, from, to)
	if err != nil {
		return err
	}
	defer rows.Close()
	var existing []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return err
		}
		existing = append(existing, at)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := availability.Check(*table, res.PartySize, res.ReservedAt, existing); err != nil {
		return err
	}

	now := time.Now().UTC()
	res.ID = uuid.NewString()
	res.Status = model.StatusConfirmed
	res.ReservedAt = res.ReservedAt.UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	const insQ = `INSERT INTO reservations
	              (id, customer_name, customer_phone, note, party_size, table_id, reserved_at, status, created_at, updated_at)
	              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insQ,
		res.ID, res.CustomerName, res.CustomerPhone, res.Note, res.PartySize,
		res.TableID, res.ReservedAt, res.Status, res.CreatedAt, res.UpdatedAt,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	res.Table = table
	return nil
}

const reservationColumns = `r.id, r.customer_name, r.customer_phone, r.note, r.party_size,
	r.table_id, r.reserved_at, r.status, r.created_at, r.updated_at,
	t.id, t.name, t.capacity, t.is_active, t.created_at, t.updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	var table model.Table
	if err := row.Scan(
		&res.ID, &res.CustomerName, &res.CustomerPhone, &res.Note, &res.PartySize,
		&res.TableID, &res.ReservedAt, &res.Status, &res.CreatedAt, &res.UpdatedAt,
		&table.ID, &table.Name, &table.Capacity, &table.IsActive, &table.CreatedAt, &table.UpdatedAt,
	); err != nil {
		return nil, err
	}
	res.Table = &table
	return &res, nil
}

// ListUpcoming returns reservations starting at or after now, ascending by
// start instant, capped at limit.  Each reservation carries its table
// relation.
func (r *ReservationRepo) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
	           FROM reservations r
	           JOIN tables t ON t.id = r.table_id
	           WHERE r.reserved_at >= ?
	           ORDER BY r.reserved_at ASC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// GetByID returns one reservation with its table relation, or
// ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
	           FROM reservations r
	           JOIN tables t ON t.id = r.table_id
	           WHERE r.id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// UpdateStatus moves a reservation to the next status when the transition
// is legal.  The current status is read under a row lock so concurrent
// transitions cannot interleave.  Returns ErrReservationNotFound or
// ErrInvalidTransition; reservations are never deleted.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, next string) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current string
	if err := tx.QueryRowContext(ctx, `SELECT status FROM reservations WHERE id = ? FOR UPDATE`, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if !model.CanTransition(current, next) {
		return nil, ErrInvalidTransition
	}
	const upQ = `UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upQ, next, time.Now().UTC(), id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}
