package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yunseo-dev/glowbook/config"
	"github.com/yunseo-dev/glowbook/middleware"
	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/services"
	"github.com/yunseo-dev/glowbook/utils"
)

// CreateCouponRequest defines a new coupon policy
type CreateCouponRequest struct {
	StudioID     uint      `json:"studio_id" binding:"required"`
	Name         string    `json:"name" binding:"required"`
	PercentOff   *float64  `json:"percent_off"`
	AmountOff    *float64  `json:"amount_off"`
	StartsAt     time.Time `json:"starts_at" binding:"required"`
	ExpiresAt    time.Time `json:"expires_at" binding:"required"`
	IsBirthday   bool      `json:"is_birthday"`
	IsFirstVisit bool      `json:"is_first_visit"`
}

// CreateCoupon creates a coupon policy for a studio
func CreateCoupon(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid coupon data: "+err.Error(), "")
		return
	}

	policy := models.Coupon{
		StudioID:     req.StudioID,
		Name:         req.Name,
		PercentOff:   req.PercentOff,
		AmountOff:    req.AmountOff,
		StartsAt:     req.StartsAt,
		ExpiresAt:    req.ExpiresAt,
		IsBirthday:   req.IsBirthday,
		IsFirstVisit: req.IsFirstVisit,
	}

	svc := services.NewCouponService(config.DB)
	if err := svc.CreatePolicy(actor, &policy); err != nil {
		respondCouponError(c, err)
		return
	}
	utils.Created(c, "Coupon created", gin.H{"coupon": policy})
}

// UpdateCouponRequest is a partial patch of a coupon policy
type UpdateCouponRequest struct {
	Name       *string    `json:"name"`
	PercentOff *float64   `json:"percent_off"`
	AmountOff  *float64   `json:"amount_off"`
	StartsAt   *time.Time `json:"starts_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

// UpdateCoupon patches a coupon policy
func UpdateCoupon(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid coupon id", "")
		return
	}

	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid coupon data: "+err.Error(), "")
		return
	}

	svc := services.NewCouponService(config.DB)
	policy, err := svc.UpdatePolicy(actor, uint(id), services.PolicyPatch{
		Name:       req.Name,
		PercentOff: req.PercentOff,
		AmountOff:  req.AmountOff,
		StartsAt:   req.StartsAt,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		respondCouponError(c, err)
		return
	}
	utils.Success(c, "Coupon updated", gin.H{"coupon": policy})
}

// DeleteCoupon soft-deletes a coupon policy
func DeleteCoupon(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid coupon id", "")
		return
	}

	svc := services.NewCouponService(config.DB)
	if err := svc.DeletePolicy(actor, uint(id)); err != nil {
		respondCouponError(c, err)
		return
	}
	utils.Success(c, "Coupon deleted", nil)
}

// couponView adds the derived expiry flag to a policy listing
type couponView struct {
	models.Coupon
	IsExpired bool `json:"is_expired"`
}

// ListCoupons returns a studio's coupon policies
func ListCoupons(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}
	studioID, err := strconv.ParseUint(c.Query("studio_id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Missing or invalid studio_id", "")
		return
	}

	page := utils.GetPagination(c)
	svc := services.NewCouponService(config.DB)
	policies, total, err := svc.ListPolicies(actor, uint(studioID), page.Offset, page.Limit)
	if err != nil {
		respondCouponError(c, err)
		return
	}

	now := time.Now()
	views := make([]couponView, 0, len(policies))
	for _, p := range policies {
		views = append(views, couponView{Coupon: p, IsExpired: p.IsExpired(now)})
	}
	utils.Success(c, "Coupons retrieved", gin.H{
		"coupons":    views,
		"pagination": page.Result(total),
	})
}

// respondCouponError maps coupon service errors to HTTP responses
func respondCouponError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAlreadyIssued):
		utils.Conflict(c, "Customer already holds this coupon", utils.CodeAlreadyIssued)
	case errors.Is(err, services.ErrCouponNotAvailable):
		utils.Conflict(c, "Coupon is not available for redemption", utils.CodeCouponNotAvailable)
	case errors.Is(err, services.ErrCouponExpired):
		utils.Conflict(c, "Coupon has expired", utils.CodeCouponExpired)
	case errors.Is(err, services.ErrPolicyMismatch):
		utils.BadRequest(c, "Coupon policy does not apply to this customer", utils.CodeValidation)
	case errors.Is(err, models.ErrDiscountExclusive),
		errors.Is(err, models.ErrDiscountRange),
		errors.Is(err, models.ErrValidityWindow):
		utils.BadRequest(c, err.Error(), utils.CodeValidation)
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, "Resource not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Forbidden(c, "You may not act on this resource")
	default:
		utils.LogError("Coupon operation failed: %v", err)
		utils.InternalServerError(c, "Internal server error")
	}
}
