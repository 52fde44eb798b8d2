package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/controllers/service_controller"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares/auth"
)

func RegisterServiceRoutes(router *gin.Engine) {
	serviceController := service_controller.NewServiceController(db.DB)

	router.GET("/services/:id", serviceController.Get)
	router.GET("/providers/:id/services", serviceController.ListForProvider)

	protected := router.Group("/services")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/", serviceController.Create)
		protected.PATCH("/:id/active", serviceController.SetActive)
	}
}
