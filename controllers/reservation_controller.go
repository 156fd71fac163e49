package controllers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yunseo-dev/glowbook/config"
	"github.com/yunseo-dev/glowbook/middleware"
	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/queue"
	"github.com/yunseo-dev/glowbook/services"
	"github.com/yunseo-dev/glowbook/utils"
)

// CreateReservationRequest books a slot
type CreateReservationRequest struct {
	StudioID   uint      `json:"studio_id" binding:"required"`
	DesignerID uint      `json:"designer_id" binding:"required"`
	ServiceID  uint      `json:"service_id" binding:"required"`
	CustomerID uint      `json:"customer_id" binding:"required"`
	ReservedAt time.Time `json:"reserved_at" binding:"required"`
}

// CreateReservation books a designer slot. A taken slot answers 409 with a
// stable code whether it was taken before the request or lost in a race.
func CreateReservation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid reservation data: "+err.Error(), "")
		return
	}

	svc := services.NewBookingService(config.DB)
	reservation, err := svc.TryReserve(actor, services.ReserveInput{
		StudioID:   req.StudioID,
		DesignerID: req.DesignerID,
		ServiceID:  req.ServiceID,
		CustomerID: req.CustomerID,
		ReservedAt: req.ReservedAt,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	// Best-effort notification; the booking is already committed. A fresh
	// context keeps the publish alive past the request.
	go func(r models.Reservation) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue.PublishReservationConfirmed(ctx, queue.ReservationConfirmedEvent{
			ReservationID: r.ID,
			StudioID:      r.StudioID,
			DesignerID:    r.DesignerID,
			ServiceID:     r.ServiceID,
			CustomerID:    r.CustomerID,
			ReservedAt:    r.ReservedAt.Format(time.RFC3339),
			CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		})
	}(*reservation)

	utils.Created(c, "Reservation created", gin.H{"reservation": reservation})
}

// CancelReservation marks a reservation canceled and frees its slot
func CancelReservation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid reservation id", "")
		return
	}

	svc := services.NewBookingService(config.DB)
	reservation, err := svc.Cancel(actor, uint(id))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.Success(c, "Reservation canceled", gin.H{"reservation": reservation})
}

// GetReservation returns a single reservation
func GetReservation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid reservation id", "")
		return
	}

	svc := services.NewBookingService(config.DB)
	reservation, err := svc.Get(actor, uint(id))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.Success(c, "Reservation retrieved", gin.H{"reservation": reservation})
}

// ListReservations returns reservations visible to the caller, filterable
// by designer, customer, status and time range.
func ListReservations(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}

	var filter services.ListFilter
	if v := c.Query("designer_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			filter.DesignerID = uint(id)
		}
	}
	if v := c.Query("customer_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			filter.CustomerID = uint(id)
		}
	}
	if v := c.Query("from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = ts
		}
	}
	if v := c.Query("to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = ts
		}
	}
	filter.Status = c.Query("status")

	page := utils.GetPagination(c)
	svc := services.NewBookingService(config.DB)
	reservations, total, err := svc.List(actor, filter, page.Offset, page.Limit)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.Success(c, "Reservations retrieved", gin.H{
		"reservations": reservations,
		"pagination":   page.Result(total),
	})
}

// respondBookingError maps service sentinels to HTTP responses
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSlotTaken):
		utils.Conflict(c, "The requested slot is already reserved", utils.CodeSlotTaken)
	case errors.Is(err, services.ErrAlreadyCanceled):
		utils.Conflict(c, "Reservation is already canceled", utils.CodeAlreadyCanceled)
	case errors.Is(err, services.ErrInvalidTransition):
		utils.Conflict(c, "Invalid status transition", utils.CodeInvalidTransition)
	case errors.Is(err, services.ErrConsultationExists):
		utils.Conflict(c, "Consultation already exists for this reservation", utils.CodeInvalidTransition)
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, "Resource not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Forbidden(c, "You may not act on this resource")
	default:
		utils.LogError("Booking operation failed: %v", err)
		utils.InternalServerError(c, "Internal server error")
	}
}
