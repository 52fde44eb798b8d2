package webhook_controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/clients"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/services/settlement_service"
)

const webhookDedupeTTL = 48 * time.Hour

// WebhookController receives processor callbacks. Every delivery is verified
// against the webhook secret, recorded raw, deduplicated by event id and then
// routed to the settlement service.
type WebhookController struct {
	Service   *settlement_service.SettlementService
	Processor clients.PaymentProcessor
	DB        *pgxpool.Pool
	Redis     *redis.Client
}

func NewWebhookController(service *settlement_service.SettlementService, processor clients.PaymentProcessor, db *pgxpool.Pool, rdb *redis.Client) *WebhookController {
	return &WebhookController{Service: service, Processor: processor, DB: db, Redis: rdb}
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

// HandlePaymentWebhook processes a processor event. Replayed deliveries are
// acknowledged without re-processing; settlement idempotency backstops the
// dedupe cache.
func (wc *WebhookController) HandlePaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" || !wc.Processor.VerifyWebhookSignature(string(body), signature) {
		logger.WarnLogger.Warn("Webhook rejected: bad or missing signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	eventID := c.GetHeader("X-Razorpay-Event-Id")
	if eventID == "" {
		eventID = uuid.New().String()
	}

	ctx := c.Request.Context()
	if wc.seenBefore(ctx, eventID) {
		c.JSON(http.StatusOK, gin.H{"message": "duplicate event ignored"})
		return
	}

	wc.recordEvent(ctx, eventID, event.Event, body)

	switch event.Event {
	case "payment.captured":
		_, _, err = wc.Service.ConfirmPayment(ctx, event.Payload.Payment.Entity.OrderID)
	case "payment.failed":
		err = wc.Service.FailPayment(ctx, event.Payload.Payment.Entity.OrderID)
	case "refund.processed":
		err = wc.Service.FinalizeRefund(ctx, event.Payload.Refund.Entity.ID, true)
	case "refund.failed":
		err = wc.Service.FinalizeRefund(ctx, event.Payload.Refund.Entity.ID, false)
	default:
		logger.InfoLogger.Infof("Ignoring webhook event type %q", event.Event)
		c.JSON(http.StatusOK, gin.H{"message": "event ignored"})
		return
	}

	if err != nil {
		logger.ErrorLogger.Errorf("Webhook %s (%s) processing failed: %v", eventID, event.Event, err)
		// Non-2xx makes the processor redeliver; processing is idempotent.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// seenBefore marks the event id in Redis and reports whether it was already
// there. Without Redis every delivery is processed and idempotency does the
// work.
func (wc *WebhookController) seenBefore(ctx context.Context, eventID string) bool {
	if wc.Redis == nil {
		return false
	}
	fresh, err := wc.Redis.SetNX(ctx, "webhook_event:"+eventID, 1, webhookDedupeTTL).Result()
	if err != nil {
		logger.WarnLogger.Warnf("Webhook dedupe check failed for %s: %v", eventID, err)
		return false
	}
	return !fresh
}

func (wc *WebhookController) recordEvent(ctx context.Context, eventID, eventType string, body []byte) {
	if wc.DB == nil {
		return
	}
	_, err := wc.DB.Exec(ctx, `
		INSERT INTO webhook_events (id, event_id, event_type, payload, received_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (event_id) DO NOTHING`,
		uuid.New(), eventID, eventType, body,
	)
	if err != nil {
		logger.WarnLogger.Warnf("Failed to record webhook event %s: %v", eventID, err)
	}
}
