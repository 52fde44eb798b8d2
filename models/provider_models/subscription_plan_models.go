package provider_models

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// SubscriptionPlan is a billing tier a provider can subscribe to.
type SubscriptionPlan struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	MonthlyPrice int64     `json:"monthly_price"`
	MaxServices  int       `json:"max_services"`
	IsActive     bool      `json:"is_active"`
}

func ListSubscriptionPlans(ctx context.Context, db *pgxpool.Pool) ([]SubscriptionPlan, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, monthly_price, max_services, is_active
		FROM subscription_plans
		WHERE is_active
		ORDER BY monthly_price ASC`)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list subscription plans: %v", err)
		return nil, apperrors.Internal("failed to list plans", err)
	}
	defer rows.Close()

	var plans []SubscriptionPlan
	for rows.Next() {
		var p SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.MonthlyPrice, &p.MaxServices, &p.IsActive); err != nil {
			return nil, apperrors.Internal("failed to scan plan", err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// AssignPlan subscribes a provider to a plan.
func AssignPlan(ctx context.Context, db *pgxpool.Pool, providerID, planID uuid.UUID) error {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT is_active FROM subscription_plans WHERE id = $1`, planID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("subscription plan not found")
		}
		return apperrors.Internal("database error fetching plan", err)
	}
	if !exists {
		return apperrors.InvalidState("subscription plan is not active")
	}

	cmdTag, err := db.Exec(ctx, `
		UPDATE provider_profiles SET plan_id = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		providerID, planID,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to assign plan %s to provider %s: %v", planID, providerID, err)
		return apperrors.Internal("failed to assign plan", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("provider not found")
	}
	return nil
}
