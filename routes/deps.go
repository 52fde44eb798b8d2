package routes

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/clients"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/db"
	redisclient "github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/config/redis"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/booking_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payment_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/service_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/services/booking_service"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/services/notification_service"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/services/settlement_service"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/mail"
)

// Shared service wiring for the route files. Everything hangs off the global
// db pool, so these are built once.
var (
	dispatcher        *notification_service.Dispatcher
	bookingService    *booking_service.BookingService
	settlementService *settlement_service.SettlementService
	paymentProcessor  clients.PaymentProcessor
)

func buildDispatcher() *notification_service.Dispatcher {
	if dispatcher == nil {
		dispatcher = notification_service.NewDispatcher(
			&notification_service.PgDirectory{DB: db.DB},
			&notification_service.PgRecorder{DB: db.DB},
			mail.NewMailer(),
			clients.NewSMSClient(),
		)
	}
	return dispatcher
}

func buildBookingService() *booking_service.BookingService {
	if bookingService == nil {
		bookingService = booking_service.NewBookingService(
			booking_models.NewPgStore(db.DB),
			service_models.NewPgCatalog(db.DB),
			buildDispatcher(),
		)
	}
	return bookingService
}

func buildPaymentProcessor() clients.PaymentProcessor {
	if paymentProcessor == nil {
		paymentProcessor = clients.NewRazorpayProcessor(
			os.Getenv("RAZORPAY_KEY_ID"),
			os.Getenv("RAZORPAY_KEY_SECRET"),
			os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		)
	}
	return paymentProcessor
}

func buildSettlementService() *settlement_service.SettlementService {
	if settlementService == nil {
		settlementService = settlement_service.NewSettlementService(
			payment_models.NewPgStore(db.DB),
			booking_models.NewPgStore(db.DB),
			buildPaymentProcessor(),
			buildDispatcher(),
			config.PlatformFeeBps(),
			config.PayoutFeeBps(),
		)
	}
	return settlementService
}

func redisOrNil() *redis.Client {
	rdb, err := redisclient.GetRedisClient(context.Background())
	if err != nil {
		logger.WarnLogger.Warnf("Redis unavailable, webhook dedupe disabled: %v", err)
		return nil
	}
	return rdb
}
