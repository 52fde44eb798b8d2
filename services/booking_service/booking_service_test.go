package booking_service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/booking_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/service_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// fakeStore mirrors the guarded-update semantics of the pg store: transitions
// only apply when the current status is in allowedFrom, and creation rejects
// overlapping non-canceled slots for the same provider.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*booking_models.Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: map[uuid.UUID]*booking_models.Booking{}}
}

func (s *fakeStore) GetBooking(_ context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking not found")
	}
	copied := *b
	return &copied, nil
}

func (s *fakeStore) CreateBooking(_ context.Context, booking *booking_models.Booking) (*booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bookings {
		if existing.ProviderID != booking.ProviderID || existing.Status == shared_models.BookingStatusCanceled {
			continue
		}
		if booking_models.SlotOverlaps(existing.StartTime, existing.EndTime, booking.StartTime, booking.EndTime) {
			return nil, apperrors.SlotConflict("provider already has a booking in this time slot")
		}
	}
	copied := *booking
	s.bookings[booking.ID] = &copied
	return booking, nil
}

func (s *fakeStore) TransitionBooking(_ context.Context, id uuid.UUID, to shared_models.BookingStatus, allowedFrom []string, reason *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return false, nil
	}
	for _, from := range allowedFrom {
		if string(b.Status) == from {
			b.Status = to
			if reason != nil {
				b.CancellationReason = reason
			}
			return true, nil
		}
	}
	return false, nil
}

type fakeCatalog struct {
	services map[uuid.UUID]*service_models.Service
}

func (c *fakeCatalog) GetService(_ context.Context, id uuid.UUID) (*service_models.Service, error) {
	svc, ok := c.services[id]
	if !ok {
		return nil, apperrors.NotFound("service not found")
	}
	return svc, nil
}

// fakeNotifier counts deliveries and can be told to fail every send.
type fakeNotifier struct {
	mu            sync.Mutex
	confirmations int
	cancellations int
	fail          bool
	done          chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 16)}
}

func (n *fakeNotifier) SendBookingConfirmation(context.Context, *booking_models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations++
	n.done <- struct{}{}
	if n.fail {
		return apperrors.External("smtp down", nil)
	}
	return nil
}

func (n *fakeNotifier) SendBookingCanceled(context.Context, *booking_models.Booking, string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancellations++
	n.done <- struct{}{}
	if n.fail {
		return apperrors.External("smtp down", nil)
	}
	return nil
}

func (n *fakeNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never dispatched")
	}
}

func newTestService(t *testing.T) (*BookingService, *fakeStore, *fakeCatalog, *fakeNotifier, uuid.UUID) {
	t.Helper()
	store := newFakeStore()
	notifier := newFakeNotifier()

	svc, err := service_models.NewService(uuid.New(), "Deep Clean", "", 60, 10000, "USD")
	require.NoError(t, err)
	catalog := &fakeCatalog{services: map[uuid.UUID]*service_models.Service{svc.ID: svc}}

	return NewBookingService(store, catalog, notifier), store, catalog, notifier, svc.ID
}

func slot(hourOffset int) (time.Time, time.Time) {
	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC).Add(time.Duration(hourOffset) * time.Hour)
	return start, start.Add(time.Hour)
}

func TestCreateBooking(t *testing.T) {
	svc, _, catalog, _, serviceID := newTestService(t)
	ctx := context.Background()

	t.Run("CreatesPending", func(t *testing.T) {
		start, end := slot(0)
		booking, err := svc.CreateBooking(ctx, CreateParams{
			CustomerID: uuid.New(), ServiceID: serviceID, StartTime: start, EndTime: end,
		})
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusPending, booking.Status)
		assert.Equal(t, int64(10000), booking.Price)
		assert.Equal(t, catalog.services[serviceID].ProviderID, booking.ProviderID)
	})

	t.Run("RejectsOverlappingSlot", func(t *testing.T) {
		start, end := slot(0)
		_, err := svc.CreateBooking(ctx, CreateParams{
			CustomerID: uuid.New(), ServiceID: serviceID, StartTime: start.Add(30 * time.Minute), EndTime: end.Add(30 * time.Minute),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindSlotConflict))
	})

	t.Run("AllowsBackToBackSlot", func(t *testing.T) {
		start, end := slot(1)
		_, err := svc.CreateBooking(ctx, CreateParams{
			CustomerID: uuid.New(), ServiceID: serviceID, StartTime: start, EndTime: end,
		})
		assert.NoError(t, err)
	})

	t.Run("RejectsInvertedTimes", func(t *testing.T) {
		start, end := slot(5)
		_, err := svc.CreateBooking(ctx, CreateParams{
			CustomerID: uuid.New(), ServiceID: serviceID, StartTime: end, EndTime: start,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("RejectsInactiveService", func(t *testing.T) {
		catalog.services[serviceID].IsActive = false
		defer func() { catalog.services[serviceID].IsActive = true }()

		start, end := slot(6)
		_, err := svc.CreateBooking(ctx, CreateParams{
			CustomerID: uuid.New(), ServiceID: serviceID, StartTime: start, EndTime: end,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("RejectsUnknownService", func(t *testing.T) {
		start, end := slot(7)
		_, err := svc.CreateBooking(ctx, CreateParams{
			CustomerID: uuid.New(), ServiceID: uuid.New(), StartTime: start, EndTime: end,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestBookingLifecycle(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, svc *BookingService, serviceID uuid.UUID, hourOffset int) *booking_models.Booking {
		t.Helper()
		start, end := slot(hourOffset)
		b, err := svc.CreateBooking(ctx, CreateParams{
			CustomerID: uuid.New(), ServiceID: serviceID, StartTime: start, EndTime: end,
		})
		require.NoError(t, err)
		return b
	}

	t.Run("PendingToConfirmedToCompleted", func(t *testing.T) {
		svc, _, _, notifier, serviceID := newTestService(t)
		b := create(t, svc, serviceID, 0)

		confirmed, err := svc.ConfirmBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusConfirmed, confirmed.Status)
		notifier.wait(t)

		completed, err := svc.CompleteBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusCompleted, completed.Status)
	})

	t.Run("CannotCompletePending", func(t *testing.T) {
		svc, _, _, _, serviceID := newTestService(t)
		b := create(t, svc, serviceID, 0)

		_, err := svc.CompleteBooking(ctx, b.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	})

	t.Run("CancelRecordsReason", func(t *testing.T) {
		svc, store, _, notifier, serviceID := newTestService(t)
		b := create(t, svc, serviceID, 0)

		canceled, err := svc.CancelBooking(ctx, b.ID, "customer request")
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusCanceled, canceled.Status)
		require.NotNil(t, canceled.CancellationReason)
		assert.Equal(t, "customer request", *canceled.CancellationReason)
		notifier.wait(t)

		stored, err := store.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusCanceled, stored.Status)
	})

	t.Run("CancelRequiresReason", func(t *testing.T) {
		svc, _, _, _, serviceID := newTestService(t)
		b := create(t, svc, serviceID, 0)

		_, err := svc.CancelBooking(ctx, b.ID, "")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("TerminalStatesStayTerminal", func(t *testing.T) {
		svc, _, _, notifier, serviceID := newTestService(t)
		b := create(t, svc, serviceID, 0)

		_, err := svc.CancelBooking(ctx, b.ID, "no longer needed")
		require.NoError(t, err)
		notifier.wait(t)

		_, err = svc.ConfirmBooking(ctx, b.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
		_, err = svc.CompleteBooking(ctx, b.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	})

	t.Run("ConcurrentConfirmHasOneWinner", func(t *testing.T) {
		svc, _, _, _, serviceID := newTestService(t)
		b := create(t, svc, serviceID, 0)

		const racers = 8
		errs := make(chan error, racers)
		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.ConfirmBooking(ctx, b.ID)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var wins, losses int
		for err := range errs {
			if err == nil {
				wins++
			} else {
				assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
				losses++
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, racers-1, losses)
	})

	t.Run("NotifierFailureDoesNotAffectTransition", func(t *testing.T) {
		svc, store, _, notifier, serviceID := newTestService(t)
		notifier.fail = true
		b := create(t, svc, serviceID, 0)

		confirmed, err := svc.ConfirmBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusConfirmed, confirmed.Status)
		notifier.wait(t)

		stored, err := store.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, shared_models.BookingStatusConfirmed, stored.Status)
	})
}
