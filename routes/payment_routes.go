package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/controllers/payment_controller"
	middleware "github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares/auth"
)

func RegisterPaymentRoutes(router *gin.Engine) {
	paymentController := payment_controller.NewPaymentController(buildSettlementService(), db.DB)

	protected := router.Group("/payments")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/intents", middleware.NewRateLimiter("20-1m", "createIntent"), paymentController.CreateIntent)
		protected.GET("/:id", paymentController.Get)
		protected.POST("/:id/refund", auth.RequireRole("admin"), paymentController.Refund)
		protected.GET("/transactions", paymentController.Transactions)
	}

	methods := router.Group("/payment-methods")
	methods.Use(auth.AuthMiddleware())
	{
		methods.POST("/", paymentController.AddPaymentMethod)
		methods.GET("/", paymentController.ListPaymentMethods)
		methods.DELETE("/:id", paymentController.DeletePaymentMethod)
	}
}
