package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/clients"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/controllers/message_controller"
	middleware "github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares/auth"
)

func RegisterMessageRoutes(router *gin.Engine) {
	messageController := message_controller.NewMessageController(db.DB, clients.NewMediaStoreClient(), buildDispatcher())

	protected := router.Group("/messages")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/", middleware.NewRateLimiter("60-1m", "sendMessage"), messageController.Send)
		protected.GET("/conversations", messageController.ListConversations)
		protected.GET("/conversations/:id", messageController.ListMessages)
		protected.POST("/conversations/:id/read", messageController.MarkRead)
		protected.GET("/unread", messageController.UnreadCount)
	}
}
