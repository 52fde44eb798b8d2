package review_controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/booking_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/provider_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/review_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/services/notification_service"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/httpx"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/jwt_parse"
)

// ReviewController handles customer reviews of providers.
type ReviewController struct {
	DB         *pgxpool.Pool
	Dispatcher *notification_service.Dispatcher
}

func NewReviewController(db *pgxpool.Pool, dispatcher *notification_service.Dispatcher) *ReviewController {
	return &ReviewController{DB: db, Dispatcher: dispatcher}
}

type CreateReviewRequest struct {
	BookingID  string `json:"booking_id" binding:"required,uuid"`
	Rating     int    `json:"rating" binding:"required"`
	ReviewText string `json:"review_text"`
}

// Create accepts a review for a completed booking the caller owns, at most
// one per booking, and refreshes the provider's cached rating.
func (rc *ReviewController) Create(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	ctx := c.Request.Context()
	booking, err := booking_models.GetBookingByID(ctx, rc.DB, bookingID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	if booking.CustomerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}
	if booking.Status != shared_models.BookingStatusCompleted {
		httpx.Error(c, apperrors.InvalidState("only completed bookings can be reviewed"))
		return
	}

	exists, err := review_models.HasReviewForBooking(ctx, rc.DB, bookingID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	if exists {
		httpx.Error(c, apperrors.InvalidState("booking already reviewed"))
		return
	}

	review, err := review_models.NewReview(userID, booking.ProviderID, &bookingID, req.Rating, req.ReviewText)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	created, err := review_models.CreateReview(ctx, rc.DB, review)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	if err := provider_models.RefreshProviderRating(ctx, rc.DB, booking.ProviderID); err != nil {
		logger.WarnLogger.Warnf("Failed to refresh rating for provider %s: %v", booking.ProviderID, err)
	}
	if rc.Dispatcher != nil {
		go func(providerID uuid.UUID, rating int) {
			nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := rc.Dispatcher.NotifyNewReview(nctx, providerID, rating); err != nil {
				logger.WarnLogger.Warnf("Review notification failed: %v", err)
			}
		}(booking.ProviderID, created.Rating)
	}

	c.JSON(http.StatusCreated, gin.H{"review": created})
}

func (rc *ReviewController) ListForProvider(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	limit, offset := httpx.Pagination(c)
	reviews, err := review_models.ListReviewsByProvider(c.Request.Context(), rc.DB, providerID, limit, offset)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// Flag hides a review pending moderation.
func (rc *ReviewController) Flag(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	review, err := review_models.GetReviewByID(c.Request.Context(), rc.DB, reviewID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	if err := review_models.FlagReview(c.Request.Context(), rc.DB, reviewID); err != nil {
		httpx.Error(c, err)
		return
	}
	if err := provider_models.RefreshProviderRating(c.Request.Context(), rc.DB, review.ProviderID); err != nil {
		logger.WarnLogger.Warnf("Failed to refresh rating for provider %s: %v", review.ProviderID, err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "review flagged"})
}
