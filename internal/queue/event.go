// Package queue defines the domain events exchanged over the message broker
// and the background consumer that records them.
package queue

// ReservationConfirmedEvent is published when a reservation is successfully
// created through either booking path.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type ReservationConfirmedEvent struct {
	ReservationID string `json:"reservation_id"`
	TableID       string `json:"table_id"`
	TableName     string `json:"table_name"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	PartySize     int    `json:"party_size"`
	ReservedAt    string `json:"reserved_at"`
	Source        string `json:"source"` // "api" or "whatsapp"
	ConfirmedAt   string `json:"confirmed_at"`
}
