package booking_service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/booking_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/service_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// Store is the persistence surface the lifecycle manager needs. The pg
// implementation lives in booking_models; tests substitute an in-memory one.
type Store interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error)
	CreateBooking(ctx context.Context, booking *booking_models.Booking) (*booking_models.Booking, error)
	TransitionBooking(ctx context.Context, id uuid.UUID, to shared_models.BookingStatus, allowedFrom []string, reason *string) (bool, error)
}

// Catalog resolves services being booked.
type Catalog interface {
	GetService(ctx context.Context, id uuid.UUID) (*service_models.Service, error)
}

// Notifier delivers lifecycle notifications. Failures here never roll back a
// transition; dispatch is fire-and-forget.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, booking *booking_models.Booking) error
	SendBookingCanceled(ctx context.Context, booking *booking_models.Booking, reason string) error
}

// BookingService drives the booking lifecycle:
// pending -> confirmed -> completed, with cancellation allowed from pending
// and confirmed. canceled and completed are terminal.
type BookingService struct {
	Store    Store
	Catalog  Catalog
	Notifier Notifier
}

func NewBookingService(store Store, catalog Catalog, notifier Notifier) *BookingService {
	return &BookingService{Store: store, Catalog: catalog, Notifier: notifier}
}

// CreateParams describes a requested appointment slot.
type CreateParams struct {
	CustomerID uuid.UUID
	ServiceID  uuid.UUID
	StartTime  time.Time
	EndTime    time.Time
}

// CreateBooking validates the slot against the service catalog and creates a
// pending booking. The price is captured from the service at creation time
// and never changes afterwards.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateParams) (*booking_models.Booking, error) {
	if params.CustomerID == uuid.Nil || params.ServiceID == uuid.Nil {
		return nil, apperrors.Validation("customer and service are required")
	}
	if !params.StartTime.Before(params.EndTime) {
		return nil, apperrors.Validation("start time must be before end time")
	}

	service, err := s.Catalog.GetService(ctx, params.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.IsActive {
		return nil, apperrors.InvalidState(fmt.Sprintf("service %q is not active", service.Name))
	}
	if service.Price <= 0 {
		return nil, apperrors.Validation("service has no valid price")
	}

	bookingDate := time.Date(
		params.StartTime.Year(), params.StartTime.Month(), params.StartTime.Day(),
		0, 0, 0, 0, params.StartTime.Location())

	booking, err := booking_models.NewBooking(
		params.CustomerID, service.ProviderID, service.ID,
		bookingDate, params.StartTime, params.EndTime,
		service.Price, service.Currency)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to build booking: %v", err)
		return nil, apperrors.Internal("failed to create booking", err)
	}

	created, err := s.Store.CreateBooking(ctx, booking)
	if err != nil {
		return nil, err
	}
	logger.InfoLogger.Infof("Booking %s (%s) created pending for customer %s", created.ID, created.BookingReference, created.CustomerID)
	return created, nil
}

// ConfirmBooking moves a pending booking to confirmed. A concurrent
// transition that gets there first makes this call fail with an invalid
// transition error after a re-read.
func (s *BookingService) ConfirmBooking(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	booking, err := s.transition(ctx, id, shared_models.BookingStatusConfirmed, nil)
	if err != nil {
		return nil, err
	}

	s.dispatch(func(ctx context.Context) error {
		return s.Notifier.SendBookingConfirmation(ctx, booking)
	})
	return booking, nil
}

// CancelBooking cancels a pending or confirmed booking, recording the reason.
// Cancellation is terminal.
func (s *BookingService) CancelBooking(ctx context.Context, id uuid.UUID, reason string) (*booking_models.Booking, error) {
	if reason == "" {
		return nil, apperrors.Validation("cancellation reason is required")
	}

	booking, err := s.transition(ctx, id, shared_models.BookingStatusCanceled, &reason)
	if err != nil {
		return nil, err
	}

	s.dispatch(func(ctx context.Context) error {
		return s.Notifier.SendBookingCanceled(ctx, booking, reason)
	})
	return booking, nil
}

// CompleteBooking moves a confirmed booking to completed. Completion is
// terminal.
func (s *BookingService) CompleteBooking(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	return s.transition(ctx, id, shared_models.BookingStatusCompleted, nil)
}

// transition applies a guarded status change. When the guarded update touches
// no row, the booking is re-read to distinguish "not found" from "illegal
// move", so the losing side of a race reports the transition error.
func (s *BookingService) transition(ctx context.Context, id uuid.UUID, to shared_models.BookingStatus, reason *string) (*booking_models.Booking, error) {
	allowedFrom := shared_models.BookingStatusesAllowing(to)

	applied, err := s.Store.TransitionBooking(ctx, id, to, allowedFrom, reason)
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := s.Store.GetBooking(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("booking cannot move from %s to %s", current.Status, to))
	}

	booking, err := s.Store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.InfoLogger.Infof("Booking %s transitioned to %s", id, to)
	return booking, nil
}

// dispatch runs a notification outside the request path with its own
// deadline. Notification failures are logged by the sender and never surface
// to the caller.
func (s *BookingService) dispatch(send func(ctx context.Context) error) {
	if s.Notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			logger.WarnLogger.Warnf("Notification dispatch failed: %v", err)
		}
	}()
}
