package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yunseo-dev/glowbook/controllers"
	"github.com/yunseo-dev/glowbook/middleware"
	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/utils"
)

// SetupRouter builds the gin engine with all routes registered
func SetupRouter() *gin.Engine {
	r := gin.New()

	r.Use(utils.Recovery())
	r.Use(utils.RequestID())
	r.Use(utils.RequestLogger())
	r.Use(utils.CORS())
	r.Use(utils.SecurityHeaders())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/password-reset/request", controllers.PasswordResetRequest)
		auth.POST("/password-reset/confirm", controllers.PasswordResetConfirm)
		auth.GET("/me", middleware.Auth(), controllers.Me)
	}

	reservations := api.Group("/reservations", middleware.Auth())
	{
		reservations.POST("", controllers.CreateReservation)
		reservations.GET("", controllers.ListReservations)
		reservations.GET("/:id", controllers.GetReservation)
		reservations.POST("/:id/cancel", controllers.CancelReservation)

		reservations.POST("/:id/consultation", controllers.CreateConsultation)
		reservations.GET("/:id/consultation", controllers.GetConsultation)
		reservations.PATCH("/:id/consultation", controllers.UpdateConsultation)
	}

	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleStudio)

	coupons := api.Group("/coupons", middleware.Auth())
	{
		coupons.POST("", staffOnly, controllers.CreateCoupon)
		coupons.GET("", staffOnly, controllers.ListCoupons)
		coupons.PATCH("/:id", staffOnly, controllers.UpdateCoupon)
		coupons.DELETE("/:id", staffOnly, controllers.DeleteCoupon)
		coupons.POST("/assign", staffOnly, controllers.AssignCoupon)
	}

	customerCoupons := api.Group("/customer-coupons", middleware.Auth())
	{
		customerCoupons.GET("", controllers.ListCustomerCoupons)
		customerCoupons.POST("/:id/redeem", controllers.RedeemCoupon)
	}

	return r
}
