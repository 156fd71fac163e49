package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yunseo-dev/glowbook/config"
	"github.com/yunseo-dev/glowbook/middleware"
	"github.com/yunseo-dev/glowbook/services"
	"github.com/yunseo-dev/glowbook/utils"
)

// AssignCouponRequest issues a coupon policy to a customer
type AssignCouponRequest struct {
	CouponID   uint `json:"coupon_id" binding:"required"`
	CustomerID uint `json:"customer_id" binding:"required"`
}

// AssignCoupon issues one instance of a coupon to a customer. Issuing the
// same policy to the same customer twice answers 409 regardless of timing.
func AssignCoupon(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}

	var req AssignCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid assignment data: "+err.Error(), "")
		return
	}

	svc := services.NewCouponService(config.DB)
	instance, err := svc.Assign(actor, req.CouponID, req.CustomerID)
	if err != nil {
		respondCouponError(c, err)
		return
	}
	utils.Created(c, "Coupon issued", gin.H{"customer_coupon": instance})
}

// RedeemCoupon marks an issued coupon as used
func RedeemCoupon(c *gin.Context) {
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
	instance, err := svc.Redeem(actor, uint(id))
	if err != nil {
		respondCouponError(c, err)
		return
	}
	utils.Success(c, "Coupon redeemed", gin.H{"customer_coupon": instance})
}

// ListCustomerCoupons returns a customer's issued coupons with derived
// expiry. Customers see their own; staff pass customer_id.
func ListCustomerCoupons(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}

	customerID := actor.CustomerID
	if v := c.Query("customer_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			utils.BadRequest(c, "Invalid customer_id", "")
			return
		}
		customerID = uint(id)
	}
	if customerID == 0 {
		utils.BadRequest(c, "Missing customer_id", "")
		return
	}

	page := utils.GetPagination(c)
	svc := services.NewCouponService(config.DB)
	instances, total, err := svc.ListCustomerCoupons(actor, customerID, page.Offset, page.Limit)
	if err != nil {
		respondCouponError(c, err)
		return
	}
	utils.Success(c, "Coupons retrieved", gin.H{
		"customer_coupons": instances,
		"pagination":       page.Result(total),
	})
}
