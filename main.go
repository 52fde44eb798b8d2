package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	redisclient "github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/redis"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/middlewares/cors"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/routes"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()
	defer redisclient.CloseRedis()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())
	r.MaxMultipartMemory = 32 << 20 // 32 MB

	routes.RegisterUserRoutes(r)
	routes.RegisterProviderRoutes(r)
	routes.RegisterServiceRoutes(r)
	routes.RegisterBookingRoutes(r)
	routes.RegisterPaymentRoutes(r)
	routes.RegisterPayoutRoutes(r)
	routes.RegisterWebhookRoutes(r)
	routes.RegisterReviewRoutes(r)
	routes.RegisterMessageRoutes(r)
	routes.RegisterNotificationRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from marketplace service"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		fmt.Printf("Go Server listening on :%s\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server failed to listen: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("Shutting down Go server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		fmt.Printf("Go Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Go Server exited gracefully.")
}
