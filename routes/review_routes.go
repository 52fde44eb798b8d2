package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/controllers/review_controller"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares/auth"
)

func RegisterReviewRoutes(router *gin.Engine) {
	reviewController := review_controller.NewReviewController(db.DB, buildDispatcher())

	router.GET("/providers/:id/reviews", reviewController.ListForProvider)

	protected := router.Group("/reviews")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/", reviewController.Create)
		protected.POST("/:id/flag", auth.RequireRole("admin"), reviewController.Flag)
	}
}
