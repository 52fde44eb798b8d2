package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/controllers/user_controller"
	middleware "github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares/auth"
)

func RegisterUserRoutes(router *gin.Engine) {
	userController := user_controller.NewUserController(db.DB)

	public := router.Group("/auth")
	{
		public.POST("/register", middleware.NewRateLimiter("5-1m", "register"), userController.Register)
		public.POST("/login", middleware.NewRateLimiter("10-1m", "login"), userController.Login)
	}

	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/me", userController.Me)
	}
}
