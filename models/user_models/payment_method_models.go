package user_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// PaymentMethod stores a masked reference to a card held at the processor.
// Raw card data never touches this system.
type PaymentMethod struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	ProcessorToken string    `json:"-"`
	Brand          string    `json:"brand"`
	Last4          string    `json:"last4"`
	ExpiryMonth    int       `json:"expiry_month"`
	ExpiryYear     int       `json:"expiry_year"`
	IsDefault      bool      `json:"is_default"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewPaymentMethod(userID uuid.UUID, processorToken, brand, last4 string, expMonth, expYear int) (*PaymentMethod, error) {
	if len(last4) != 4 {
		return nil, apperrors.Validation("last4 must be exactly four digits")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for payment method: %w", err)
	}
	return &PaymentMethod{
		ID:             id,
		UserID:         userID,
		ProcessorToken: processorToken,
		Brand:          brand,
		Last4:          last4,
		ExpiryMonth:    expMonth,
		ExpiryYear:     expYear,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func CreatePaymentMethod(ctx context.Context, db *pgxpool.Pool, pm *PaymentMethod) (*PaymentMethod, error) {
	_, err := db.Exec(ctx, `
		INSERT INTO payment_methods (id, user_id, processor_token, brand, last4, expiry_month, expiry_year, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pm.ID, pm.UserID, pm.ProcessorToken, pm.Brand, pm.Last4,
		pm.ExpiryMonth, pm.ExpiryYear, pm.IsDefault, pm.CreatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert payment method for user %s: %v", pm.UserID, err)
		return nil, apperrors.Internal("failed to save payment method", err)
	}
	return pm, nil
}

func ListPaymentMethods(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) ([]PaymentMethod, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, brand, last4, expiry_month, expiry_year, is_default, created_at
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list payment methods for user %s: %v", userID, err)
		return nil, apperrors.Internal("failed to list payment methods", err)
	}
	defer rows.Close()

	var methods []PaymentMethod
	for rows.Next() {
		var pm PaymentMethod
		if err := rows.Scan(&pm.ID, &pm.UserID, &pm.Brand, &pm.Last4, &pm.ExpiryMonth, &pm.ExpiryYear, &pm.IsDefault, &pm.CreatedAt); err != nil {
			return nil, apperrors.Internal("failed to scan payment method", err)
		}
		methods = append(methods, pm)
	}
	return methods, nil
}

func DeletePaymentMethod(ctx context.Context, db *pgxpool.Pool, userID, methodID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx,
		`DELETE FROM payment_methods WHERE id = $1 AND user_id = $2`, methodID, userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to delete payment method %s: %v", methodID, err)
		return apperrors.Internal("failed to delete payment method", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("payment method not found")
	}
	return nil
}
