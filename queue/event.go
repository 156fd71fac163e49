// Package queue defines the message payloads published to the broker.
package queue

// ReservationConfirmedEvent is published after a reservation is booked.
// Downstream consumers (reminders, notifications) get enough to act on
// without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID uint   `json:"reservation_id"`
	StudioID      uint   `json:"studio_id"`
	DesignerID    uint   `json:"designer_id"`
	ServiceID     uint   `json:"service_id"`
	CustomerID    uint   `json:"customer_id"`
	ReservedAt    string `json:"reserved_at"`
	CreatedAt     string `json:"created_at"`
}
