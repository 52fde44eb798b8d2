package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/controllers/payout_controller"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares/auth"
)

// RegisterPayoutRoutes registers payout batching and queries. Batch creation
// and settlement are admin-only.
func RegisterPayoutRoutes(router *gin.Engine) {
	payoutController := payout_controller.NewPayoutController(buildSettlementService(), db.DB)

	protected := router.Group("/payouts")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/", auth.RequireRole("admin"), payoutController.CreateBatch)
		protected.GET("/:id", payoutController.Get)
		protected.POST("/:id/processed", auth.RequireRole("admin"), payoutController.MarkProcessed)
	}

	provider := router.Group("/providers")
	provider.Use(auth.AuthMiddleware())
	{
		provider.GET("/:id/payouts", payoutController.ListForProvider)
	}
}
