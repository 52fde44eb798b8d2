package booking_models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// Booking represents a customer's reserved appointment with a provider.
// Price is fixed at creation time in minor currency units.
type Booking struct {
	ID                 uuid.UUID                   `json:"id"`
	CustomerID         uuid.UUID                   `json:"customer_id"`
	ProviderID         uuid.UUID                   `json:"provider_id"`
	ServiceID          uuid.UUID                   `json:"service_id"`
	BookingDate        time.Time                   `json:"booking_date"`
	StartTime          time.Time                   `json:"start_time"`
	EndTime            time.Time                   `json:"end_time"`
	Status             shared_models.BookingStatus `json:"status"`
	Price              int64                       `json:"price"`
	Currency           string                      `json:"currency"`
	BookingReference   string                      `json:"booking_reference"`
	CancellationReason *string                     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	DeletedAt          *time.Time                  `json:"-"`
}

const bookingColumns = `id, customer_id, provider_id, service_id, booking_date, start_time, end_time,
	status, price, currency, booking_reference, cancellation_reason, created_at, updated_at`

// NewBooking builds a pending Booking with a fresh id and unique reference.
func NewBooking(customerID, providerID, serviceID uuid.UUID, date, start, end time.Time, price int64, currency string) (*Booking, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}
	now := time.Now().UTC()
	return &Booking{
		ID:               id,
		CustomerID:       customerID,
		ProviderID:       providerID,
		ServiceID:        serviceID,
		BookingDate:      date,
		StartTime:        start,
		EndTime:          end,
		Status:           shared_models.BookingStatusPending,
		Price:            price,
		Currency:         currency,
		BookingReference: NewBookingReference(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// NewBookingReference generates a short human-readable unique reference,
// e.g. "BK-9F3A1C20D4E5".
func NewBookingReference() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "BK-" + strings.ToUpper(raw[:12])
}

// SlotOverlaps reports whether two half-open time ranges [aStart, aEnd) and
// [bStart, bEnd) intersect.
func SlotOverlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.ID, &b.CustomerID, &b.ProviderID, &b.ServiceID, &b.BookingDate,
		&b.StartTime, &b.EndTime, &b.Status, &b.Price, &b.Currency,
		&b.BookingReference, &b.CancellationReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookingByID fetches a booking record by its ID, ignoring soft-deleted rows.
func GetBookingByID(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1 AND deleted_at IS NULL`

	booking, err := scanBooking(db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Booking with ID %s not found", bookingID)
			return nil, apperrors.NotFound("booking not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", bookingID, err)
		return nil, apperrors.Internal("database error fetching booking", err)
	}
	return booking, nil
}

// CreateBooking inserts a pending booking after re-checking, inside one
// transaction, that the provider has no overlapping non-canceled booking.
// The provider-keyed advisory lock serializes concurrent creates so the
// overlap check cannot race.
func CreateBooking(ctx context.Context, db *pgxpool.Pool, booking *Booking) (*Booking, error) {
	logger.InfoLogger.Infof("Attempting to create booking %s for provider %s", booking.ID, booking.ProviderID)

	tx, err := db.Begin(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("[TX_BEGIN_FAIL] CreateBooking %s: %v", booking.ID, err)
		return nil, apperrors.Internal("failed to start transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, booking.ProviderID.String()); err != nil {
		logger.ErrorLogger.Errorf("Failed to take provider lock for booking %s: %v", booking.ID, err)
		return nil, apperrors.Internal("failed to lock provider schedule", err)
	}

	var overlapping int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE provider_id = $1
		  AND status <> $2
		  AND deleted_at IS NULL
		  AND start_time < $3 AND end_time > $4`,
		booking.ProviderID, shared_models.BookingStatusCanceled, booking.EndTime, booking.StartTime,
	).Scan(&overlapping)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to check booking overlap for provider %s: %v", booking.ProviderID, err)
		return nil, apperrors.Internal("database error checking overlap", err)
	}
	if overlapping > 0 {
		return nil, apperrors.SlotConflict("provider already has a booking in this time slot")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (
			id, customer_id, provider_id, service_id, booking_date, start_time, end_time,
			status, price, currency, booking_reference, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		booking.ID, booking.CustomerID, booking.ProviderID, booking.ServiceID, booking.BookingDate,
		booking.StartTime, booking.EndTime, booking.Status, booking.Price, booking.Currency,
		booking.BookingReference, booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert booking %s: %v", booking.ID, err)
		return nil, apperrors.Internal("failed to create booking", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("[TX_COMMIT_FAIL] CreateBooking %s: %v", booking.ID, err)
		return nil, apperrors.Internal("failed to commit booking", err)
	}

	logger.InfoLogger.Infof("Booking %s (%s) created for provider %s", booking.ID, booking.BookingReference, booking.ProviderID)
	return booking, nil
}

// TransitionBookingStatus applies a guarded status change: the UPDATE only
// fires when the current status is one of allowedFrom, so a concurrent
// transition that lost the race sees zero rows affected. Returns whether the
// change was applied.
func TransitionBookingStatus(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, to shared_models.BookingStatus, allowedFrom []string, reason *string) (bool, error) {
	cmdTag, err := db.Exec(ctx, `
		UPDATE bookings
		SET status = $2,
		    cancellation_reason = COALESCE($3, cancellation_reason),
		    updated_at = NOW()
		WHERE id = $1 AND status = ANY($4) AND deleted_at IS NULL`,
		bookingID, to, reason, allowedFrom,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to transition booking %s to %s: %v", bookingID, to, err)
		return false, apperrors.Internal("failed to update booking status", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// SoftDeleteBooking marks a booking deleted without removing the row.
func SoftDeleteBooking(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE bookings SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		bookingID,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to soft-delete booking %s: %v", bookingID, err)
		return apperrors.Internal("failed to delete booking", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("booking not found")
	}
	return nil
}

// GetBookingsByCustomer retrieves a customer's bookings with pagination and an
// optional status filter.
func GetBookingsByCustomer(ctx context.Context, db *pgxpool.Pool, customerID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	return listBookings(ctx, db, "customer_id", customerID, status, page, limit)
}

// GetBookingsByProvider retrieves a provider's bookings with pagination and an
// optional status filter.
func GetBookingsByProvider(ctx context.Context, db *pgxpool.Pool, providerID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	return listBookings(ctx, db, "provider_id", providerID, status, page, limit)
}

func listBookings(ctx context.Context, db *pgxpool.Pool, ownerColumn string, ownerID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	offset := (page - 1) * limit

	countQuery := `SELECT COUNT(*) FROM bookings WHERE ` + ownerColumn + ` = $1 AND deleted_at IS NULL`
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ` + ownerColumn + ` = $1 AND deleted_at IS NULL`

	args := []interface{}{ownerID}
	if status != "" {
		countQuery += " AND status = $2"
		query += " AND status = $2"
		args = append(args, status)
	}
	query += fmt.Sprintf(" ORDER BY start_time DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	var totalCount int
	if err := db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		logger.ErrorLogger.Errorf("Failed to count bookings for %s %s: %v", ownerColumn, ownerID, err)
		return nil, 0, apperrors.Internal("failed to count bookings", err)
	}

	rows, err := db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for %s %s: %v", ownerColumn, ownerID, err)
		return nil, 0, apperrors.Internal("failed to fetch bookings", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		b := Booking{}
		err := rows.Scan(
			&b.ID, &b.CustomerID, &b.ProviderID, &b.ServiceID, &b.BookingDate,
			&b.StartTime, &b.EndTime, &b.Status, &b.Price, &b.Currency,
			&b.BookingReference, &b.CancellationReason, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to scan booking row: %v", err)
			return nil, 0, apperrors.Internal("failed to scan booking", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, totalCount, nil
}
