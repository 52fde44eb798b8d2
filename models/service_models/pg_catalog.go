package service_models

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgCatalog adapts the service queries to the catalog interface the booking
// service consumes.
type PgCatalog struct {
	DB *pgxpool.Pool
}

func NewPgCatalog(db *pgxpool.Pool) *PgCatalog {
	return &PgCatalog{DB: db}
}

func (c *PgCatalog) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	return GetServiceByID(ctx, c.DB, id)
}
