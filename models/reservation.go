package models

import "time"

// Reservation statuses. A reservation is "live" unless it has been
// canceled; completion is tracked on the consultation, not here.
const (
	ReservationReserved = "RESERVED"
	ReservationCanceled = "CANCELED"
)

// Reservation books a designer for a customer at a single point in time.
// Rows are never deleted; cancellation is a status change so the booking
// history stays intact. At most one live reservation may exist per
// (designer_id, reserved_at) pair - enforced by a partial unique index
// created in config.EnsureLedgerIndexes.
type Reservation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudioID   uint      `gorm:"index;not null" json:"studio_id"`
	DesignerID uint      `gorm:"not null;index:idx_reservations_designer_slot" json:"designer_id"`
	ServiceID  uint      `gorm:"not null" json:"service_id"`
	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	ReservedAt time.Time `gorm:"not null;index:idx_reservations_designer_slot" json:"reserved_at"`
	Status     string    `gorm:"not null;default:'RESERVED'" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsLive reports whether the reservation still occupies its slot.
func (r *Reservation) IsLive() bool {
	return r.Status != ReservationCanceled
}

// Consultation statuses
const (
	ConsultationPending    = "PENDING"
	ConsultationInProgress = "IN_PROGRESS"
	ConsultationCompleted  = "COMPLETED"
	ConsultationCancelled  = "CANCELLED"
)

// consultationTransitions lists the allowed status moves. COMPLETED and
// CANCELLED are terminal.
var consultationTransitions = map[string][]string{
	ConsultationPending:    {ConsultationInProgress, ConsultationCompleted, ConsultationCancelled},
	ConsultationInProgress: {ConsultationCompleted, ConsultationCancelled},
}

// Consultation holds the free-text notes and images a designer records
// for a reservation. It is 1:1 with the reservation but carries its own
// lifecycle: a canceled reservation does not rewrite consultation history
// and vice versa. New consultations always start as PENDING.
type Consultation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReservationID uint      `gorm:"uniqueIndex;not null" json:"reservation_id"`
	Memo          string    `json:"memo"`
	ImageURLs     string    `gorm:"type:text" json:"image_urls"` // JSON array of URLs
	Status        string    `gorm:"not null;default:'PENDING'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CanTransitionTo reports whether the consultation may move to the target
// status from its current one.
func (c *Consultation) CanTransitionTo(target string) bool {
	for _, next := range consultationTransitions[c.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// ValidConsultationStatus reports whether s is a known consultation status.
func ValidConsultationStatus(s string) bool {
	switch s {
	case ConsultationPending, ConsultationInProgress, ConsultationCompleted, ConsultationCancelled:
		return true
	}
	return false
}
