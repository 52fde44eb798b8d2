package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/controllers/provider_controller"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares/auth"
)

func RegisterProviderRoutes(router *gin.Engine) {
	providerController := provider_controller.NewProviderController(db.DB)

	router.GET("/providers/:id", providerController.Get)
	router.GET("/plans", providerController.ListPlans)

	protected := router.Group("/providers")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/", providerController.CreateProfile)
		protected.PUT("/:id/plan", providerController.ChoosePlan)
	}
}
