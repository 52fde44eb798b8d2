package provider_models

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

// ServiceProviderProfile is the public-facing profile a user with the
// provider role maintains.
type ServiceProviderProfile struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	BusinessName  string     `json:"business_name"`
	Description   string     `json:"description,omitempty"`
	City          string     `json:"city,omitempty"`
	AverageRating float64    `json:"average_rating"`
	ReviewCount   int        `json:"review_count"`
	PlanID        *uuid.UUID `json:"plan_id,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"-"`
}

func NewProviderProfile(userID uuid.UUID, businessName, description, city string) (*ServiceProviderProfile, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for provider profile: %w", err)
	}
	now := time.Now().UTC()
	return &ServiceProviderProfile{
		ID:           id,
		UserID:       userID,
		BusinessName: businessName,
		Description:  description,
		City:         city,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func CreateProviderProfile(ctx context.Context, db *pgxpool.Pool, p *ServiceProviderProfile) (*ServiceProviderProfile, error) {
	_, err := db.Exec(ctx, `
		INSERT INTO provider_profiles (id, user_id, business_name, description, city, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.UserID, p.BusinessName, p.Description, p.City, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert provider profile for user %s: %v", p.UserID, err)
		return nil, apperrors.Internal("failed to create provider profile", err)
	}
	return p, nil
}

func GetProviderByID(ctx context.Context, db *pgxpool.Pool, providerID uuid.UUID) (*ServiceProviderProfile, error) {
	p := &ServiceProviderProfile{}
	err := db.QueryRow(ctx, `
		SELECT id, user_id, business_name, description, city, average_rating, review_count, plan_id, is_active, created_at, updated_at
		FROM provider_profiles
		WHERE id = $1 AND deleted_at IS NULL`,
		providerID,
	).Scan(&p.ID, &p.UserID, &p.BusinessName, &p.Description, &p.City,
		&p.AverageRating, &p.ReviewCount, &p.PlanID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("provider not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch provider %s: %v", providerID, err)
		return nil, apperrors.Internal("database error fetching provider", err)
	}
	return p, nil
}

// RefreshProviderRating recomputes the cached rating aggregate from
// non-flagged reviews.
func RefreshProviderRating(ctx context.Context, db *pgxpool.Pool, providerID uuid.UUID) error {
	_, err := db.Exec(ctx, `
		UPDATE provider_profiles p
		SET average_rating = COALESCE(r.avg_rating, 0),
		    review_count = COALESCE(r.review_count, 0),
		    updated_at = NOW()
		FROM (
			SELECT provider_id, AVG(rating)::numeric(3,2) AS avg_rating, COUNT(*) AS review_count
			FROM reviews
			WHERE provider_id = $1 AND NOT is_flagged
			GROUP BY provider_id
		) r
		WHERE p.id = $1 AND r.provider_id = p.id`,
		providerID,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to refresh rating for provider %s: %v", providerID, err)
		return apperrors.Internal("failed to refresh provider rating", err)
	}
	return nil
}
