package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/controllers/booking_controller"
	middleware "github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares/auth"
)

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(router *gin.Engine) {
	bookingController := booking_controller.NewBookingController(buildBookingService(), db.DB)

	protected := router.Group("/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/", middleware.NewRateLimiter("30-1m", "createBooking"), bookingController.Create)
		protected.GET("/", bookingController.ListMine)
		protected.GET("/:id", bookingController.Get)
		protected.POST("/:id/confirm", bookingController.Confirm)
		protected.POST("/:id/cancel", bookingController.Cancel)
		protected.POST("/:id/complete", bookingController.Complete)
	}

	provider := router.Group("/providers")
	provider.Use(auth.AuthMiddleware())
	{
		provider.GET("/:id/bookings", bookingController.ListForProvider)
	}
}
