package notification_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// DeviceToken registers a mobile device for push delivery.
type DeviceToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"` // ios | android
	CreatedAt time.Time `json:"created_at"`
}

// RegisterDeviceToken upserts a token; re-registering the same token moves it
// to the current user.
func RegisterDeviceToken(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, token, platform string) (*DeviceToken, error) {
	if token == "" {
		return nil, apperrors.Validation("device token is required")
	}
	if platform != "ios" && platform != "android" {
		return nil, apperrors.Validation("platform must be ios or android")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for device token: %w", err)
	}
	dt := &DeviceToken{ID: id, UserID: userID, Token: token, Platform: platform, CreatedAt: time.Now().UTC()}

	_, err = db.Exec(ctx, `
		INSERT INTO device_tokens (id, user_id, token, platform, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform`,
		dt.ID, dt.UserID, dt.Token, dt.Platform, dt.CreatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to register device token for user %s: %v", userID, err)
		return nil, apperrors.Internal("failed to register device token", err)
	}
	return dt, nil
}

func DeleteDeviceToken(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, token string) error {
	cmdTag, err := db.Exec(ctx,
		`DELETE FROM device_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to delete device token for user %s: %v", userID, err)
		return apperrors.Internal("failed to delete device token", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("device token not found")
	}
	return nil
}
