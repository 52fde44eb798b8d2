package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/controllers/webhook_controller"
)

// RegisterWebhookRoutes registers the processor callback endpoint. Signature
// verification happens in the handler, so no auth middleware here.
func RegisterWebhookRoutes(router *gin.Engine) {
	webhookController := webhook_controller.NewWebhookController(
		buildSettlementService(), buildPaymentProcessor(), db.DB, redisOrNil())

	router.POST("/webhooks/payment", webhookController.HandlePaymentWebhook)
	router.GET("/webhooks/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "webhook endpoint ready"})
	})
}
