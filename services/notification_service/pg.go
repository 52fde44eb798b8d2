package notification_service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/notification_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/provider_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/user_models"
)

// PgDirectory resolves users and provider profiles from Postgres.
type PgDirectory struct {
	DB *pgxpool.Pool
}

func (d *PgDirectory) GetUser(ctx context.Context, id uuid.UUID) (*user_models.User, error) {
	return user_models.GetUserByID(ctx, d.DB, id)
}

func (d *PgDirectory) GetProvider(ctx context.Context, id uuid.UUID) (*provider_models.ServiceProviderProfile, error) {
	return provider_models.GetProviderByID(ctx, d.DB, id)
}

// PgRecorder persists notification rows.
type PgRecorder struct {
	DB *pgxpool.Pool
}

func (r *PgRecorder) SaveNotification(ctx context.Context, n *notification_models.Notification) error {
	_, err := notification_models.CreateNotification(ctx, r.DB, n)
	return err
}
