package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/controllers/notification_controller"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares/auth"
)

func RegisterNotificationRoutes(router *gin.Engine) {
	notificationController := notification_controller.NewNotificationController(db.DB)

	protected := router.Group("/notifications")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/", notificationController.List)
		protected.POST("/:id/read", notificationController.MarkRead)
		protected.POST("/device-tokens", notificationController.RegisterDeviceToken)
		protected.DELETE("/device-tokens", notificationController.DeleteDeviceToken)
	}
}
