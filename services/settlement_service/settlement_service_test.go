package settlement_service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/clients"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/booking_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payment_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payout_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/transaction_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// memStore reproduces the pg store's compare-and-swap behavior in memory so
// the settlement flows can be raced deterministically.
type memStore struct {
	mu           sync.Mutex
	payments     map[uuid.UUID]*payment_models.Payment
	byIntent     map[string]uuid.UUID
	transactions map[uuid.UUID]*transaction_models.Transaction
	payouts      map[uuid.UUID]*payout_models.Payout
}

func newMemStore() *memStore {
	return &memStore{
		payments:     map[uuid.UUID]*payment_models.Payment{},
		byIntent:     map[string]uuid.UUID{},
		transactions: map[uuid.UUID]*transaction_models.Transaction{},
		payouts:      map[uuid.UUID]*payout_models.Payout{},
	}
}

func (s *memStore) GetPayment(_ context.Context, id uuid.UUID) (*payment_models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, apperrors.NotFound("payment not found")
	}
	copied := *p
	return &copied, nil
}

func (s *memStore) GetPaymentByIntent(ctx context.Context, providerPaymentID string) (*payment_models.Payment, error) {
	s.mu.Lock()
	id, ok := s.byIntent[providerPaymentID]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.NotFound("payment not found")
	}
	return s.GetPayment(ctx, id)
}

func (s *memStore) InsertPayment(_ context.Context, payment *payment_models.Payment) (*payment_models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *payment
	s.payments[payment.ID] = &copied
	s.byIntent[payment.ProviderPaymentID] = payment.ID
	return payment, nil
}

func (s *memStore) CompletePayment(_ context.Context, paymentID uuid.UUID, paidAt time.Time, txn *transaction_models.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok || p.PaymentStatus != shared_models.PaymentStatusPending {
		return false, nil
	}
	p.PaymentStatus = shared_models.PaymentStatusCompleted
	p.PaidAt = &paidAt
	copied := *txn
	s.transactions[paymentID] = &copied
	return true, nil
}

func (s *memStore) MarkPaymentFailed(_ context.Context, paymentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return apperrors.NotFound("payment not found")
	}
	if p.PaymentStatus == shared_models.PaymentStatusPending {
		p.PaymentStatus = shared_models.PaymentStatusFailed
	}
	return nil
}

func (s *memStore) ReserveRefund(_ context.Context, paymentID uuid.UUID, expected, total int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok || p.PaymentStatus != shared_models.PaymentStatusCompleted {
		return false, nil
	}
	if p.RefundStatus == shared_models.RefundStatusPending || p.RefundAmount != expected {
		return false, nil
	}
	p.RefundAmount = total
	p.RefundStatus = shared_models.RefundStatusPending
	return true, nil
}

func (s *memStore) AttachRefund(_ context.Context, paymentID uuid.UUID, refundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return apperrors.NotFound("payment not found")
	}
	if p.RefundStatus == shared_models.RefundStatusPending {
		p.RefundID = &refundID
	}
	return nil
}

func (s *memStore) ReleaseRefund(_ context.Context, paymentID uuid.UUID, expected int64, prior shared_models.RefundStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return apperrors.NotFound("payment not found")
	}
	if p.RefundStatus == shared_models.RefundStatusPending {
		p.RefundAmount = expected
		p.RefundStatus = prior
	}
	return nil
}

func (s *memStore) FinalizeRefund(_ context.Context, refundID string, status shared_models.RefundStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.RefundID != nil && *p.RefundID == refundID && p.RefundStatus == shared_models.RefundStatusPending {
			p.RefundStatus = status
			if status == shared_models.RefundStatusSuccess && p.RefundAmount == p.Amount {
				p.PaymentStatus = shared_models.PaymentStatusRefunded
			}
			return nil
		}
	}
	return apperrors.NotFound("refund not found")
}

func (s *memStore) GetTransactionByPayment(_ context.Context, paymentID uuid.UUID) (*transaction_models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[paymentID]
	if !ok {
		return nil, apperrors.NotFound("transaction not found")
	}
	copied := *txn
	return &copied, nil
}

func (s *memStore) ListPayablePayments(_ context.Context, providerID uuid.UUID, cutoff time.Time) ([]payment_models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []payment_models.Payment
	for _, p := range s.payments {
		if p.ProviderID != providerID || p.PaymentStatus != shared_models.PaymentStatusCompleted || p.PayoutID != nil {
			continue
		}
		if p.RefundStatus == shared_models.RefundStatusPending {
			continue
		}
		if p.PaidAt == nil || p.PaidAt.After(cutoff) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *memStore) CreatePayoutBatch(_ context.Context, payout *payout_models.Payout, paymentIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := payout.CheckArithmetic(); err != nil {
		return apperrors.Internal("payout arithmetic check failed", err)
	}
	for _, id := range paymentIDs {
		p, ok := s.payments[id]
		if !ok || p.PayoutID != nil || p.PaymentStatus != shared_models.PaymentStatusCompleted {
			return apperrors.InvalidState("payment set changed while batching payout")
		}
	}
	for _, id := range paymentIDs {
		pid := payout.ID
		s.payments[id].PayoutID = &pid
	}
	copied := *payout
	s.payouts[payout.ID] = &copied
	return nil
}

type memBookings struct {
	bookings map[uuid.UUID]*booking_models.Booking
}

func (b *memBookings) GetBooking(_ context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	booking, ok := b.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking not found")
	}
	return booking, nil
}

// fakeProcessor fabricates intents and refund ids; fail flips every call into
// a processor outage.
type fakeProcessor struct {
	mu      sync.Mutex
	intents int
	refunds int
	fail    bool
}

func (f *fakeProcessor) CreateIntent(_ context.Context, amount int64, currency, receipt string) (*clients.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("gateway timeout")
	}
	f.intents++
	return &clients.PaymentIntent{
		ProviderPaymentID: fmt.Sprintf("order_test_%d", f.intents),
		ClientSecret:      fmt.Sprintf("secret_%d", f.intents),
	}, nil
}

func (f *fakeProcessor) ConfirmStatus(context.Context, string) (string, error) {
	return clients.ProcessorStatusPaid, nil
}

func (f *fakeProcessor) Refund(_ context.Context, _ string, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("gateway timeout")
	}
	f.refunds++
	return fmt.Sprintf("rfnd_test_%d", f.refunds), nil
}

func (f *fakeProcessor) VerifyWebhookSignature(string, string) bool { return !f.fail }

func (f *fakeProcessor) refundCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refunds
}

// gatedProcessor parks the first refund call inside the gateway until released,
// holding the refund window open for a racing second call.
type gatedProcessor struct {
	fakeProcessor
	entered chan struct{}
	release chan struct{}
}

func newGatedProcessor() *gatedProcessor {
	return &gatedProcessor{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (g *gatedProcessor) Refund(ctx context.Context, providerPaymentID string, amount int64) (string, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.fakeProcessor.Refund(ctx, providerPaymentID, amount)
}

type noopNotifier struct{}

func (noopNotifier) SendPaymentReceipt(context.Context, *payment_models.Payment) error { return nil }
func (noopNotifier) SendPayoutNotice(context.Context, *payout_models.Payout) error     { return nil }

const (
	testPlatformFeeBps = 1000 // 10%
	testPayoutFeeBps   = 500  // 5%
)

func newTestSettlement(t *testing.T) (*SettlementService, *memStore, *memBookings, *fakeProcessor) {
	t.Helper()
	store := newMemStore()
	bookings := &memBookings{bookings: map[uuid.UUID]*booking_models.Booking{}}
	processor := &fakeProcessor{}
	svc := NewSettlementService(store, bookings, processor, noopNotifier{}, testPlatformFeeBps, testPayoutFeeBps)
	return svc, store, bookings, processor
}

func seedBooking(t *testing.T, bookings *memBookings, status shared_models.BookingStatus, price int64) *booking_models.Booking {
	t.Helper()
	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	b, err := booking_models.NewBooking(uuid.New(), uuid.New(), uuid.New(), start, start, start.Add(time.Hour), price, "USD")
	require.NoError(t, err)
	b.Status = status
	bookings.bookings[b.ID] = b
	return b
}

func TestCreatePaymentIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("OpensPendingPayment", func(t *testing.T) {
		svc, store, bookings, _ := newTestSettlement(t)
		b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, 10000)

		payment, secret, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, secret)
		assert.Equal(t, shared_models.PaymentStatusPending, payment.PaymentStatus)
		assert.Equal(t, int64(10000), payment.Amount)

		stored, err := store.GetPaymentByIntent(ctx, payment.ProviderPaymentID)
		require.NoError(t, err)
		assert.Equal(t, payment.ID, stored.ID)
	})

	t.Run("RejectsTerminalBooking", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		b := seedBooking(t, bookings, shared_models.BookingStatusCanceled, 10000)

		_, _, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("ProcessorOutageIsExternal", func(t *testing.T) {
		svc, _, bookings, processor := newTestSettlement(t)
		b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, 10000)
		processor.fail = true

		_, _, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindExternalService))
	})
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()

	open := func(t *testing.T, svc *SettlementService, bookings *memBookings, price int64) *payment_models.Payment {
		t.Helper()
		b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, price)
		payment, _, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.NoError(t, err)
		return payment
	}

	t.Run("SplitsFeeExactly", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		payment := open(t, svc, bookings, 10000)

		settled, txn, err := svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
		require.NoError(t, err)
		assert.Equal(t, shared_models.PaymentStatusCompleted, settled.PaymentStatus)
		require.NotNil(t, settled.PaidAt)

		// 100.00 at 10%: fee 10.00, provider 90.00
		assert.Equal(t, int64(10000), txn.Amount)
		assert.Equal(t, int64(1000), txn.PlatformFee)
		assert.Equal(t, int64(9000), txn.ProviderPayout)
		assert.Equal(t, txn.Amount, txn.PlatformFee+txn.ProviderPayout)
	})

	t.Run("ReplayIsNoOp", func(t *testing.T) {
		svc, store, bookings, _ := newTestSettlement(t)
		payment := open(t, svc, bookings, 10000)

		_, first, err := svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
		require.NoError(t, err)
		_, second, err := svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, store.transactions, 1)
	})

	t.Run("ConcurrentConfirmWritesOneLedgerEntry", func(t *testing.T) {
		svc, store, bookings, _ := newTestSettlement(t)
		payment := open(t, svc, bookings, 10000)

		const racers = 8
		var wg sync.WaitGroup
		errs := make(chan error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		assert.Len(t, store.transactions, 1)
	})

	t.Run("FailedPaymentCannotBeConfirmed", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		payment := open(t, svc, bookings, 10000)

		require.NoError(t, svc.FailPayment(ctx, payment.ProviderPaymentID))
		_, _, err := svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("UnknownIntentIsNotFound", func(t *testing.T) {
		svc, _, _, _ := newTestSettlement(t)
		_, _, err := svc.ConfirmPayment(ctx, "order_missing")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	settle := func(t *testing.T, svc *SettlementService, bookings *memBookings, price int64) *payment_models.Payment {
		t.Helper()
		b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, price)
		payment, _, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.NoError(t, err)
		settled, _, err := svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
		require.NoError(t, err)
		return settled
	}

	t.Run("PartialRefundKeepsPaymentCompleted", func(t *testing.T) {
		svc, store, bookings, _ := newTestSettlement(t)
		payment := settle(t, svc, bookings, 10000)

		refunded, err := svc.Refund(ctx, payment.ID, 4000)
		require.NoError(t, err)
		assert.Equal(t, int64(4000), refunded.RefundAmount)
		assert.Equal(t, shared_models.RefundStatusPending, refunded.RefundStatus)
		require.NotNil(t, refunded.RefundID)

		require.NoError(t, svc.FinalizeRefund(ctx, *refunded.RefundID, true))

		p, err := store.GetPayment(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, shared_models.RefundStatusSuccess, p.RefundStatus)
		assert.Equal(t, shared_models.PaymentStatusCompleted, p.PaymentStatus)
	})

	t.Run("FullRefundFlipsPaymentStatus", func(t *testing.T) {
		svc, store, bookings, _ := newTestSettlement(t)
		payment := settle(t, svc, bookings, 10000)

		refunded, err := svc.Refund(ctx, payment.ID, 10000)
		require.NoError(t, err)
		require.NotNil(t, refunded.RefundID)
		require.NoError(t, svc.FinalizeRefund(ctx, *refunded.RefundID, true))

		p, err := store.GetPayment(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, shared_models.RefundStatusSuccess, p.RefundStatus)
		assert.Equal(t, shared_models.PaymentStatusRefunded, p.PaymentStatus)
	})

	t.Run("CumulativeRefundCannotExceedAmount", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		payment := settle(t, svc, bookings, 10000)

		first, err := svc.Refund(ctx, payment.ID, 6000)
		require.NoError(t, err)
		require.NotNil(t, first.RefundID)
		require.NoError(t, svc.FinalizeRefund(ctx, *first.RefundID, true))

		_, err = svc.Refund(ctx, payment.ID, 5000)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("SecondRefundWhileFirstInFlightIsRejected", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		payment := settle(t, svc, bookings, 10000)

		_, err := svc.Refund(ctx, payment.ID, 3000)
		require.NoError(t, err)

		_, err = svc.Refund(ctx, payment.ID, 3000)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("ConcurrentRefundsReachGatewayOnce", func(t *testing.T) {
		store := newMemStore()
		bookings := &memBookings{bookings: map[uuid.UUID]*booking_models.Booking{}}
		gated := newGatedProcessor()
		svc := NewSettlementService(store, bookings, gated, noopNotifier{}, testPlatformFeeBps, testPayoutFeeBps)

		payment := settle(t, svc, bookings, 10000)

		// First refund reserves the full amount and parks inside the gateway.
		done := make(chan error, 1)
		go func() {
			_, err := svc.Refund(ctx, payment.ID, 10000)
			done <- err
		}()
		<-gated.entered

		// The racer loses before its gateway call is ever made.
		_, err := svc.Refund(ctx, payment.ID, 10000)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))

		close(gated.release)
		require.NoError(t, <-done)

		assert.Equal(t, 1, gated.refundCalls())
		p, err := store.GetPayment(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), p.RefundAmount)
	})

	t.Run("ProcessorFailureReleasesReservation", func(t *testing.T) {
		svc, store, bookings, processor := newTestSettlement(t)
		payment := settle(t, svc, bookings, 10000)

		processor.fail = true
		_, err := svc.Refund(ctx, payment.ID, 4000)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindExternalService))

		p, err := store.GetPayment(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), p.RefundAmount)
		assert.Equal(t, shared_models.RefundStatusNone, p.RefundStatus)

		processor.fail = false
		refunded, err := svc.Refund(ctx, payment.ID, 10000)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), refunded.RefundAmount)
	})

	t.Run("PendingPaymentCannotBeRefunded", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, 10000)
		payment, _, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.NoError(t, err)

		_, err = svc.Refund(ctx, payment.ID, 1000)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("RejectsNonPositiveAmount", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		payment := settle(t, svc, bookings, 10000)

		_, err := svc.Refund(ctx, payment.ID, 0)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}

func TestBatchPayout(t *testing.T) {
	ctx := context.Background()

	t.Run("AggregatesSettledPayments", func(t *testing.T) {
		svc, store, bookings, _ := newTestSettlement(t)
		providerID := uuid.New()

		// Two settled 50.00 payments for the same provider.
		for i := 0; i < 2; i++ {
			b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, 5000)
			b.ProviderID = providerID
			payment, _, err := svc.CreatePaymentIntent(ctx, b.ID)
			require.NoError(t, err)
			_, _, err = svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
			require.NoError(t, err)
		}

		payout, err := svc.BatchPayout(ctx, providerID, time.Now().UTC().Add(time.Minute))
		require.NoError(t, err)

		// Gross 100.00 at 5%: fees 5.00, net 95.00
		assert.Equal(t, int64(10000), payout.Amount)
		assert.Equal(t, int64(500), payout.Fees)
		assert.Equal(t, int64(9500), payout.NetAmount)
		assert.Equal(t, payout.Amount-payout.Fees, payout.NetAmount)
		assert.Equal(t, shared_models.PayoutStatusPending, payout.Status)

		for _, p := range store.payments {
			require.NotNil(t, p.PayoutID)
			assert.Equal(t, payout.ID, *p.PayoutID)
		}
	})

	t.Run("PartialRefundIsNettedOut", func(t *testing.T) {
		svc, store, bookings, _ := newTestSettlement(t)
		providerID := uuid.New()

		b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, 10000)
		b.ProviderID = providerID
		payment, _, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.NoError(t, err)
		settled, _, err := svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
		require.NoError(t, err)

		refunded, err := svc.Refund(ctx, settled.ID, 3000)
		require.NoError(t, err)
		require.NotNil(t, refunded.RefundID)
		require.NoError(t, svc.FinalizeRefund(ctx, *refunded.RefundID, true))

		payout, err := svc.BatchPayout(ctx, providerID, time.Now().UTC().Add(time.Minute))
		require.NoError(t, err)

		// 100.00 minus the 30.00 refund, at 5%: fees 3.50, net 66.50
		assert.Equal(t, int64(7000), payout.Amount)
		assert.Equal(t, int64(350), payout.Fees)
		assert.Equal(t, int64(6650), payout.NetAmount)

		p, err := store.GetPayment(ctx, settled.ID)
		require.NoError(t, err)
		require.NotNil(t, p.PayoutID)
		assert.Equal(t, payout.ID, *p.PayoutID)
	})

	t.Run("RefundInFlightHoldsPayment", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		providerID := uuid.New()

		b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, 10000)
		b.ProviderID = providerID
		payment, _, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.NoError(t, err)
		settled, _, err := svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
		require.NoError(t, err)

		_, err = svc.Refund(ctx, settled.ID, 3000)
		require.NoError(t, err)

		_, err = svc.BatchPayout(ctx, providerID, time.Now().UTC().Add(time.Minute))
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("FullyRefundedPaymentIsNotPayable", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		providerID := uuid.New()

		b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, 10000)
		b.ProviderID = providerID
		payment, _, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.NoError(t, err)
		settled, _, err := svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
		require.NoError(t, err)

		refunded, err := svc.Refund(ctx, settled.ID, 10000)
		require.NoError(t, err)
		require.NotNil(t, refunded.RefundID)
		require.NoError(t, svc.FinalizeRefund(ctx, *refunded.RefundID, true))

		_, err = svc.BatchPayout(ctx, providerID, time.Now().UTC().Add(time.Minute))
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("NothingToPayOut", func(t *testing.T) {
		svc, _, _, _ := newTestSettlement(t)
		_, err := svc.BatchPayout(ctx, uuid.New(), time.Now().UTC())
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("SecondBatchFindsNothing", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		providerID := uuid.New()

		b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, 5000)
		b.ProviderID = providerID
		payment, _, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.NoError(t, err)
		_, _, err = svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
		require.NoError(t, err)

		cutoff := time.Now().UTC().Add(time.Minute)
		_, err = svc.BatchPayout(ctx, providerID, cutoff)
		require.NoError(t, err)

		_, err = svc.BatchPayout(ctx, providerID, cutoff)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("CutoffExcludesLaterPayments", func(t *testing.T) {
		svc, _, bookings, _ := newTestSettlement(t)
		providerID := uuid.New()

		b := seedBooking(t, bookings, shared_models.BookingStatusConfirmed, 5000)
		b.ProviderID = providerID
		payment, _, err := svc.CreatePaymentIntent(ctx, b.ID)
		require.NoError(t, err)
		_, _, err = svc.ConfirmPayment(ctx, payment.ProviderPaymentID)
		require.NoError(t, err)

		_, err = svc.BatchPayout(ctx, providerID, time.Now().UTC().Add(-time.Hour))
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})
}
