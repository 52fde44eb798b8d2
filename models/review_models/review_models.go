package review_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// Review is a customer's rating of a provider after a completed booking.
type Review struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	ProviderID uuid.UUID  `json:"provider_id"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	Rating     int        `json:"rating"`
	ReviewText string     `json:"review_text,omitempty"`
	IsFlagged  bool       `json:"is_flagged"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewReview validates the rating bound and builds the row.
func NewReview(userID, providerID uuid.UUID, bookingID *uuid.UUID, rating int, reviewText string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for review: %w", err)
	}
	now := time.Now().UTC()
	return &Review{
		ID:         id,
		UserID:     userID,
		ProviderID: providerID,
		BookingID:  bookingID,
		Rating:     rating,
		ReviewText: reviewText,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func CreateReview(ctx context.Context, db *pgxpool.Pool, review *Review) (*Review, error) {
	_, err := db.Exec(ctx, `
		INSERT INTO reviews (id, user_id, provider_id, booking_id, rating, review_text, is_flagged, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		review.ID, review.UserID, review.ProviderID, review.BookingID,
		review.Rating, review.ReviewText, review.IsFlagged, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert review for provider %s: %v", review.ProviderID, err)
		return nil, apperrors.Internal("failed to create review", err)
	}
	return review, nil
}

func GetReviewByID(ctx context.Context, db *pgxpool.Pool, reviewID uuid.UUID) (*Review, error) {
	r := &Review{}
	err := db.QueryRow(ctx, `
		SELECT id, user_id, provider_id, booking_id, rating, review_text, is_flagged, created_at, updated_at
		FROM reviews WHERE id = $1`,
		reviewID,
	).Scan(&r.ID, &r.UserID, &r.ProviderID, &r.BookingID, &r.Rating, &r.ReviewText, &r.IsFlagged, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch review %s: %v", reviewID, err)
		return nil, apperrors.Internal("database error fetching review", err)
	}
	return r, nil
}

func ListReviewsByProvider(ctx context.Context, db *pgxpool.Pool, providerID uuid.UUID, limit, offset int) ([]Review, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, provider_id, booking_id, rating, review_text, is_flagged, created_at, updated_at
		FROM reviews
		WHERE provider_id = $1 AND NOT is_flagged
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		providerID, limit, offset,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list reviews for provider %s: %v", providerID, err)
		return nil, apperrors.Internal("failed to list reviews", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		err := rows.Scan(&r.ID, &r.UserID, &r.ProviderID, &r.BookingID, &r.Rating, &r.ReviewText, &r.IsFlagged, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, apperrors.Internal("failed to scan review", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}

// FlagReview hides a review pending moderation.
func FlagReview(ctx context.Context, db *pgxpool.Pool, reviewID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE reviews SET is_flagged = TRUE, updated_at = NOW() WHERE id = $1`, reviewID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to flag review %s: %v", reviewID, err)
		return apperrors.Internal("failed to flag review", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("review not found")
	}
	return nil
}

// HasReviewForBooking prevents a second review against the same booking.
func HasReviewForBooking(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (bool, error) {
	var count int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE booking_id = $1`, bookingID).Scan(&count)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to check review for booking %s: %v", bookingID, err)
		return false, apperrors.Internal("database error checking review", err)
	}
	return count > 0, nil
}
