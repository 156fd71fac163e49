package services

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/utils"
)

var (
	// ErrInvalidTransition means the consultation cannot move to the
	// requested status from its current one.
	ErrInvalidTransition = errors.New("invalid consultation status transition")

	// ErrConsultationExists means the reservation already has its
	// consultation record.
	ErrConsultationExists = errors.New("consultation already exists for reservation")
)

// ConsultationInput carries the editable consultation fields. Nil pointers
// leave the stored value untouched.
type ConsultationInput struct {
	Memo      *string
	ImageURLs []string
	Status    *string
}

// CreateConsultation attaches a consultation record to a reservation. The
// record always starts PENDING regardless of input; only staff and the
// reservation's designer may create one.
func (s *BookingService) CreateConsultation(actor models.Actor, reservationID uint, in ConsultationInput) (*models.Consultation, error) {
	reservation, err := s.Get(actor, reservationID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCustomer {
		return nil, ErrForbidden
	}

	consultation := models.Consultation{
		ReservationID: reservation.ID,
		Status:        models.ConsultationPending,
	}
	if in.Memo != nil {
		consultation.Memo = *in.Memo
	}
	if in.ImageURLs != nil {
		raw, err := json.Marshal(in.ImageURLs)
		if err != nil {
			return nil, err
		}
		consultation.ImageURLs = string(raw)
	}

	if err := s.db.Create(&consultation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConsultationExists
		}
		utils.LogError("Consultation create failed: reservation=%d err=%v", reservationID, err)
		return nil, err
	}

	utils.LogInfo("Consultation created: id=%d reservation=%d", consultation.ID, reservation.ID)
	return &consultation, nil
}

// UpdateConsultation patches memo, images and status. Status moves are
// checked against the transition table; COMPLETED and CANCELLED rows only
// accept content edits, never further status changes.
func (s *BookingService) UpdateConsultation(actor models.Actor, reservationID uint, in ConsultationInput) (*models.Consultation, error) {
	reservation, err := s.Get(actor, reservationID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCustomer {
		return nil, ErrForbidden
	}

	var consultation models.Consultation
	if err := s.db.Where("reservation_id = ?", reservation.ID).First(&consultation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Memo != nil {
		updates["memo"] = *in.Memo
	}
	if in.ImageURLs != nil {
		raw, err := json.Marshal(in.ImageURLs)
		if err != nil {
			return nil, err
		}
		updates["image_urls"] = string(raw)
	}
	if in.Status != nil && *in.Status != consultation.Status {
		if !models.ValidConsultationStatus(*in.Status) {
			return nil, ErrInvalidTransition
		}
		if !consultation.CanTransitionTo(*in.Status) {
			utils.LogInfo("Consultation transition refused: id=%d %s -> %s",
				consultation.ID, consultation.Status, *in.Status)
			return nil, ErrInvalidTransition
		}
		updates["status"] = *in.Status
	}

	if len(updates) == 0 {
		return &consultation, nil
	}

	if err := s.db.Model(&consultation).Updates(updates).Error; err != nil {
		utils.LogError("Consultation update failed: id=%d err=%v", consultation.ID, err)
		return nil, err
	}

	utils.LogInfo("Consultation updated: id=%d", consultation.ID)
	return &consultation, nil
}

// GetConsultation returns the consultation for a reservation the actor may
// see. Customers can read their own consultation but not edit it.
func (s *BookingService) GetConsultation(actor models.Actor, reservationID uint) (*models.Consultation, error) {
	reservation, err := s.Get(actor, reservationID)
	if err != nil {
		return nil, err
	}
	var consultation models.Consultation
	if err := s.db.Where("reservation_id = ?", reservation.ID).First(&consultation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &consultation, nil
}
