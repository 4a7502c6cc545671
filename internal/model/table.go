package model

import "time"

// Table represents a physical dining table in the restaurant.  Tables are
// created at setup time and are deactivated rather than deleted so that
// historical reservations keep a valid table reference.
//
// Fields:
//  ID        – primary key identifier (UUID string).
//  Name      – display name shown to guests (e.g. "Masa 3").
//  Capacity  – maximum seated party size; always positive.
//  IsActive  – whether the table currently accepts reservations.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Table struct {
	ID        string    `json:"id"`        // tables.id
	Name      string    `json:"name"`      // tables.name
	Capacity  int       `json:"capacity"`  // tables.capacity
	IsActive  bool      `json:"isActive"`  // tables.is_active
	CreatedAt time.Time `json:"createdAt"` // tables.created_at
	UpdatedAt time.Time `json:"updatedAt"` // tables.updated_at
}
