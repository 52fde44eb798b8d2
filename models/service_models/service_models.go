package service_models

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

// Service is a bookable offering in a provider's catalog. Price is in minor
// currency units.
type Service struct {
	ID              uuid.UUID  `json:"id"`
	ProviderID      uuid.UUID  `json:"provider_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Price           int64      `json:"price"`
	Currency        string     `json:"currency"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"-"`
}

func NewService(providerID uuid.UUID, name, description string, durationMinutes int, price int64, currency string) (*Service, error) {
	if price <= 0 {
		return nil, apperrors.Validation("service price must be positive")
	}
	if durationMinutes <= 0 {
		return nil, apperrors.Validation("service duration must be positive")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for service: %w", err)
	}
	now := time.Now().UTC()
	return &Service{
		ID:              id,
		ProviderID:      providerID,
		Name:            name,
		Description:     description,
		DurationMinutes: durationMinutes,
		Price:           price,
		Currency:        currency,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func CreateService(ctx context.Context, db *pgxpool.Pool, svc *Service) (*Service, error) {
	_, err := db.Exec(ctx, `
		INSERT INTO services (id, provider_id, name, description, duration_minutes, price, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		svc.ID, svc.ProviderID, svc.Name, svc.Description, svc.DurationMinutes,
		svc.Price, svc.Currency, svc.IsActive, svc.CreatedAt, svc.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert service %s: %v", svc.Name, err)
		return nil, apperrors.Internal("failed to create service", err)
	}
	return svc, nil
}

func GetServiceByID(ctx context.Context, db *pgxpool.Pool, serviceID uuid.UUID) (*Service, error) {
	svc := &Service{}
	err := db.QueryRow(ctx, `
		SELECT id, provider_id, name, description, duration_minutes, price, currency, is_active, created_at, updated_at
		FROM services
		WHERE id = $1 AND deleted_at IS NULL`,
		serviceID,
	).Scan(&svc.ID, &svc.ProviderID, &svc.Name, &svc.Description, &svc.DurationMinutes,
		&svc.Price, &svc.Currency, &svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("service not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch service %s: %v", serviceID, err)
		return nil, apperrors.Internal("database error fetching service", err)
	}
	return svc, nil
}

func ListServicesByProvider(ctx context.Context, db *pgxpool.Pool, providerID uuid.UUID) ([]Service, error) {
	rows, err := db.Query(ctx, `
		SELECT id, provider_id, name, description, duration_minutes, price, currency, is_active, created_at, updated_at
		FROM services
		WHERE provider_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC`,
		providerID,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list services for provider %s: %v", providerID, err)
		return nil, apperrors.Internal("failed to list services", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var svc Service
		err := rows.Scan(&svc.ID, &svc.ProviderID, &svc.Name, &svc.Description, &svc.DurationMinutes,
			&svc.Price, &svc.Currency, &svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt)
		if err != nil {
			return nil, apperrors.Internal("failed to scan service", err)
		}
		services = append(services, svc)
	}
	return services, nil
}

func SetServiceActive(ctx context.Context, db *pgxpool.Pool, serviceID uuid.UUID, active bool) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE services SET is_active = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		serviceID, active,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to toggle service %s: %v", serviceID, err)
		return apperrors.Internal("failed to update service", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("service not found")
	}
	return nil
}
