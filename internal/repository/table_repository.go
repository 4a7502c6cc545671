package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lokanta/reservations/internal/model"
)

// TableRepo provides read access to restaurant tables.  Tables are seeded
// outside this service and only ever toggled inactive, so no create or
// delete operations are exposed here.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, name, capacity, is_active, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (*model.Table, error) {
	var t model.Table
	if err := row.Scan(&t.ID, &t.Name, &t.Capacity, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID returns a single table by id, active or not.  ErrTableNotFound is
// returned when no row exists.
func (r *TableRepo) GetByID(ctx context.Context, id string) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables WHERE id = ?`
	t, err := scanTable(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	return t, err
}

// ListActive returns all active tables ordered by ascending capacity, then
// name for a stable order among equal capacities.  The chat flow relies on
// this order to assign the smallest sufficient table.
func (r *TableRepo) ListActive(ctx context.Context) ([]model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables WHERE is_active = 1 ORDER BY capacity ASC, name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, rows.Err()
}

// SetActive toggles a table's active flag.  Deactivation is the only
// lifecycle change tables support once created.
func (r *TableRepo) SetActive(ctx context.Context, id string, active bool) error {
	const q = `UPDATE tables SET is_active = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, active, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTableNotFound
	}
	return nil
}
