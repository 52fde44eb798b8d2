package booking_models

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
)

// PgStore adapts the package-level query functions to the store interface the
// booking service consumes.
type PgStore struct {
	DB *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{DB: db}
}

func (s *PgStore) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return GetBookingByID(ctx, s.DB, id)
}

func (s *PgStore) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	return CreateBooking(ctx, s.DB, booking)
}

func (s *PgStore) TransitionBooking(ctx context.Context, id uuid.UUID, to shared_models.BookingStatus, allowedFrom []string, reason *string) (bool, error) {
	return TransitionBookingStatus(ctx, s.DB, id, to, allowedFrom, reason)
}
