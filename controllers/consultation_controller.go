package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yunseo-dev/glowbook/config"
	"github.com/yunseo-dev/glowbook/middleware"
	"github.com/yunseo-dev/glowbook/services"
	"github.com/yunseo-dev/glowbook/utils"
)

// ConsultationRequest carries the editable consultation fields. Absent
// fields are left untouched on update.
type ConsultationRequest struct {
	Memo      *string  `json:"memo"`
	ImageURLs []string `json:"image_urls"`
	Status    *string  `json:"status"`
}

func reservationIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid reservation id", "")
		return 0, false
	}
	return uint(id), true
}

// CreateConsultation attaches a consultation to a reservation
func CreateConsultation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}
	reservationID, ok := reservationIDParam(c)
	if !ok {
		return
	}

	var req ConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid consultation data: "+err.Error(), "")
		return
	}

	svc := services.NewBookingService(config.DB)
	consultation, err := svc.CreateConsultation(actor, reservationID, services.ConsultationInput{
		Memo:      req.Memo,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.Created(c, "Consultation created", gin.H{"consultation": consultation})
}

// UpdateConsultation patches memo, images or status
func UpdateConsultation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}
	reservationID, ok := reservationIDParam(c)
	if !ok {
		return
	}

	var req ConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid consultation data: "+err.Error(), "")
		return
	}

	svc := services.NewBookingService(config.DB)
	consultation, err := svc.UpdateConsultation(actor, reservationID, services.ConsultationInput{
		Memo:      req.Memo,
		ImageURLs: req.ImageURLs,
		Status:    req.Status,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.Success(c, "Consultation updated", gin.H{"consultation": consultation})
}

// GetConsultation returns the consultation for a reservation
func GetConsultation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}
	reservationID, ok := reservationIDParam(c)
	if !ok {
		return
	}

	svc := services.NewBookingService(config.DB)
	consultation, err := svc.GetConsultation(actor, reservationID)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.Success(c, "Consultation retrieved", gin.H{"consultation": consultation})
}
