package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/utils"
)

// BookingService owns reservation creation, cancellation and the
// consultation attached to a reservation.
type BookingService struct {
	db *gorm.DB
}

// NewBookingService creates a booking service on the given database
func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// ReserveInput is a request to book a designer for a customer at a slot
type ReserveInput struct {
	StudioID   uint
	DesignerID uint
	ServiceID  uint
	CustomerID uint
	ReservedAt time.Time
}

// TryReserve books the slot or reports why it cannot. Double-booking is
// prevented in two layers: a pre-check inside the transaction catches the
// common case with a clean error, and the partial unique index on
// (designer_id, reserved_at) over live rows catches the race where two
// transactions pass the pre-check together - the loser's insert comes back
// as gorm.ErrDuplicatedKey and is reported the same way.
func (s *BookingService) TryReserve(actor models.Actor, in ReserveInput) (*models.Reservation, error) {
	var designer models.Designer
	if err := s.db.First(&designer, in.DesignerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("designer: %w", ErrNotFound)
		}
		return nil, err
	}
	if designer.StudioID != in.StudioID {
		return nil, fmt.Errorf("designer belongs to another studio: %w", ErrForbidden)
	}

	var service models.SalonService
	if err := s.db.First(&service, in.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("service: %w", ErrNotFound)
		}
		return nil, err
	}
	if service.StudioID != in.StudioID {
		return nil, fmt.Errorf("service belongs to another studio: %w", ErrForbidden)
	}

	var customer models.Customer
	if err := s.db.First(&customer, in.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer: %w", ErrNotFound)
		}
		return nil, err
	}
	if customer.StudioID != in.StudioID {
		return nil, fmt.Errorf("customer belongs to another studio: %w", ErrForbidden)
	}

	// Customers may only book for themselves.
	if actor.Role == models.RoleCustomer && actor.CustomerID != in.CustomerID {
		return nil, ErrForbidden
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var taken int64
	if err := tx.Model(&models.Reservation{}).
		Where("designer_id = ? AND reserved_at = ? AND status <> ?",
			in.DesignerID, in.ReservedAt, models.ReservationCanceled).
		Count(&taken).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if taken > 0 {
		tx.Rollback()
		utils.LogInfo("Reservation refused, slot taken: designer=%d at=%s", in.DesignerID, in.ReservedAt)
		return nil, ErrSlotTaken
	}

	reservation := models.Reservation{
		StudioID:   in.StudioID,
		DesignerID: in.DesignerID,
		ServiceID:  in.ServiceID,
		CustomerID: in.CustomerID,
		ReservedAt: in.ReservedAt,
		Status:     models.ReservationReserved,
	}
	if err := tx.Create(&reservation).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.LogInfo("Reservation lost race for slot: designer=%d at=%s", in.DesignerID, in.ReservedAt)
			return nil, ErrSlotTaken
		}
		utils.LogError("Reservation insert failed: %v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	utils.LogInfo("Reservation created: id=%d designer=%d customer=%d at=%s",
		reservation.ID, in.DesignerID, in.CustomerID, in.ReservedAt)
	return &reservation, nil
}

// Cancel marks a reservation canceled, freeing its slot for rebooking.
// The status flip is a conditional update so two concurrent cancels cannot
// both succeed; the loser sees zero rows affected and gets
// ErrAlreadyCanceled.
func (s *BookingService) Cancel(actor models.Actor, reservationID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.authorizeReservation(actor, &reservation); err != nil {
		return nil, err
	}

	res := s.db.Model(&models.Reservation{}).
		Where("id = ? AND status <> ?", reservationID, models.ReservationCanceled).
		Update("status", models.ReservationCanceled)
	if res.Error != nil {
		utils.LogError("Reservation cancel failed: id=%d err=%v", reservationID, res.Error)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyCanceled
	}

	reservation.Status = models.ReservationCanceled
	utils.LogInfo("Reservation canceled: id=%d by user=%d", reservationID, actor.UserID)
	return &reservation, nil
}

// Get returns a reservation the actor is allowed to see
func (s *BookingService) Get(actor models.Actor, reservationID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.authorizeReservation(actor, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListFilter narrows a reservation listing
type ListFilter struct {
	DesignerID uint
	CustomerID uint
	From       time.Time
	To         time.Time
	Status     string
}

// List returns the reservations visible to the actor, newest slot first.
// Staff see their studio, designers and customers only their own rows.
func (s *BookingService) List(actor models.Actor, f ListFilter, offset, limit int) ([]models.Reservation, int64, error) {
	q := s.db.Model(&models.Reservation{})

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleStudio:
		q = q.Where("studio_id = ?", actor.StudioID)
	case models.RoleDesigner:
		q = q.Where("designer_id = ?", actor.DesignerID)
	case models.RoleCustomer:
		q = q.Where("customer_id = ?", actor.CustomerID)
	default:
		return nil, 0, ErrForbidden
	}

	if f.DesignerID != 0 {
		q = q.Where("designer_id = ?", f.DesignerID)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if !f.From.IsZero() {
		q = q.Where("reserved_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("reserved_at < ?", f.To)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reservations []models.Reservation
	if err := q.Order("reserved_at DESC").Offset(offset).Limit(limit).Find(&reservations).Error; err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

func (s *BookingService) authorizeReservation(actor models.Actor, r *models.Reservation) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleStudio:
		if actor.StudioID == r.StudioID {
			return nil
		}
	case models.RoleDesigner:
		if actor.DesignerID == r.DesignerID {
			return nil
		}
	case models.RoleCustomer:
		if actor.CustomerID == r.CustomerID {
			return nil
		}
	}
	return ErrForbidden
}
