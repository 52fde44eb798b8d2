package settlement_service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/clients"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/booking_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payment_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payout_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/transaction_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// Store is the persistence surface the settlement service needs. The pg
// implementation lives in payment_models; tests substitute an in-memory one.
type Store interface {
	GetPayment(ctx context.Context, id uuid.UUID) (*payment_models.Payment, error)
	GetPaymentByIntent(ctx context.Context, providerPaymentID string) (*payment_models.Payment, error)
	InsertPayment(ctx context.Context, payment *payment_models.Payment) (*payment_models.Payment, error)
	CompletePayment(ctx context.Context, paymentID uuid.UUID, paidAt time.Time, txn *transaction_models.Transaction) (bool, error)
	MarkPaymentFailed(ctx context.Context, paymentID uuid.UUID) error
	ReserveRefund(ctx context.Context, paymentID uuid.UUID, expected, total int64) (bool, error)
	AttachRefund(ctx context.Context, paymentID uuid.UUID, refundID string) error
	ReleaseRefund(ctx context.Context, paymentID uuid.UUID, expected int64, prior shared_models.RefundStatus) error
	FinalizeRefund(ctx context.Context, refundID string, status shared_models.RefundStatus) error
	GetTransactionByPayment(ctx context.Context, paymentID uuid.UUID) (*transaction_models.Transaction, error)
	ListPayablePayments(ctx context.Context, providerID uuid.UUID, cutoff time.Time) ([]payment_models.Payment, error)
	CreatePayoutBatch(ctx context.Context, payout *payout_models.Payout, paymentIDs []uuid.UUID) error
}

// BookingReader resolves the booking a payment settles.
type BookingReader interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error)
}

// Notifier delivers settlement notifications; failures never affect the
// settlement itself.
type Notifier interface {
	SendPaymentReceipt(ctx context.Context, payment *payment_models.Payment) error
	SendPayoutNotice(ctx context.Context, payout *payout_models.Payout) error
}

// SettlementService owns payment intents, confirmation, refunds and payout
// batches. Fee rates are fixed at construction in basis points.
type SettlementService struct {
	Store          Store
	Bookings       BookingReader
	Processor      clients.PaymentProcessor
	Notifier       Notifier
	PlatformFeeBps int64
	PayoutFeeBps   int64
}

func NewSettlementService(store Store, bookings BookingReader, processor clients.PaymentProcessor, notifier Notifier, platformFeeBps, payoutFeeBps int64) *SettlementService {
	return &SettlementService{
		Store:          store,
		Bookings:       bookings,
		Processor:      processor,
		Notifier:       notifier,
		PlatformFeeBps: platformFeeBps,
		PayoutFeeBps:   payoutFeeBps,
	}
}

// CreatePaymentIntent opens a processor intent for a booking and records a
// pending payment. Only pending or confirmed bookings with a positive price
// can be paid.
func (s *SettlementService) CreatePaymentIntent(ctx context.Context, bookingID uuid.UUID) (*payment_models.Payment, string, error) {
	booking, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}

	switch booking.Status {
	case shared_models.BookingStatusPending, shared_models.BookingStatusConfirmed:
	default:
		return nil, "", apperrors.InvalidState(
			fmt.Sprintf("booking in status %s cannot be paid", booking.Status))
	}
	if booking.Price <= 0 {
		return nil, "", apperrors.Validation("booking has no payable amount")
	}

	intent, err := s.Processor.CreateIntent(ctx, booking.Price, booking.Currency, booking.BookingReference)
	if err != nil {
		return nil, "", apperrors.External("payment processor unavailable", err)
	}

	payment, err := payment_models.NewPayment(
		booking.ID, booking.CustomerID, booking.ProviderID,
		booking.Price, booking.Currency, intent.ProviderPaymentID)
	if err != nil {
		return nil, "", apperrors.Internal("failed to build payment", err)
	}

	if _, err := s.Store.InsertPayment(ctx, payment); err != nil {
		return nil, "", err
	}

	logger.InfoLogger.Infof("Payment intent %s opened for booking %s (amount %d %s)",
		intent.ProviderPaymentID, booking.ID, booking.Price, booking.Currency)
	return payment, intent.ClientSecret, nil
}

// ConfirmPayment settles the payment behind a processor intent. Confirming an
// already-completed payment is a no-op that returns the existing records, so
// webhook replays and double-submits are harmless. On first confirmation the
// status flip and the fee-split ledger entry commit atomically.
func (s *SettlementService) ConfirmPayment(ctx context.Context, providerPaymentID string) (*payment_models.Payment, *transaction_models.Transaction, error) {
	payment, err := s.Store.GetPaymentByIntent(ctx, providerPaymentID)
	if err != nil {
		return nil, nil, err
	}

	if payment.PaymentStatus == shared_models.PaymentStatusCompleted {
		txn, err := s.Store.GetTransactionByPayment(ctx, payment.ID)
		if err != nil {
			return nil, nil, err
		}
		logger.InfoLogger.Infof("Payment %s already completed; confirmation is a no-op", payment.ID)
		return payment, txn, nil
	}
	if payment.PaymentStatus != shared_models.PaymentStatusPending {
		return nil, nil, apperrors.InvalidState(
			fmt.Sprintf("payment in status %s cannot be confirmed", payment.PaymentStatus))
	}

	txn, err := transaction_models.NewChargeTransaction(payment.CustomerID, payment.ID, payment.Amount, s.PlatformFeeBps)
	if err != nil {
		return nil, nil, err
	}

	paidAt := time.Now().UTC()
	applied, err := s.Store.CompletePayment(ctx, payment.ID, paidAt, txn)
	if err != nil {
		return nil, nil, err
	}
	if !applied {
		// Lost a race with another confirmation; the payment is settled
		// either way, so return what won.
		current, err := s.Store.GetPayment(ctx, payment.ID)
		if err != nil {
			return nil, nil, err
		}
		if current.PaymentStatus == shared_models.PaymentStatusCompleted {
			existing, err := s.Store.GetTransactionByPayment(ctx, current.ID)
			if err != nil {
				return nil, nil, err
			}
			return current, existing, nil
		}
		return nil, nil, apperrors.InvalidState(
			fmt.Sprintf("payment in status %s cannot be confirmed", current.PaymentStatus))
	}

	settled, err := s.Store.GetPayment(ctx, payment.ID)
	if err != nil {
		return nil, nil, err
	}

	s.dispatch(func(ctx context.Context) error {
		return s.Notifier.SendPaymentReceipt(ctx, settled)
	})
	return settled, txn, nil
}

// FailPayment records a processor-reported failure on a pending payment.
func (s *SettlementService) FailPayment(ctx context.Context, providerPaymentID string) error {
	payment, err := s.Store.GetPaymentByIntent(ctx, providerPaymentID)
	if err != nil {
		return err
	}
	return s.Store.MarkPaymentFailed(ctx, payment.ID)
}

// Refund issues a partial or full refund against a completed payment. One
// refund can be in flight at a time. The amount is reserved with a guarded
// write before the processor is called, so of two concurrent refunds exactly
// one reaches the gateway; the other fails with an invalid-state error.
func (s *SettlementService) Refund(ctx context.Context, paymentID uuid.UUID, amount int64) (*payment_models.Payment, error) {
	if amount <= 0 {
		return nil, apperrors.Validation("refund amount must be positive")
	}

	payment, err := s.Store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.PaymentStatus != shared_models.PaymentStatusCompleted {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("payment in status %s cannot be refunded", payment.PaymentStatus))
	}
	if payment.RefundStatus == shared_models.RefundStatusPending {
		return nil, apperrors.InvalidState("a refund is already in progress for this payment")
	}
	if amount+payment.RefundAmount > payment.Amount {
		return nil, apperrors.Validation("refund amount exceeds amount paid")
	}

	applied, err := s.Store.ReserveRefund(ctx, payment.ID, payment.RefundAmount, payment.RefundAmount+amount)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.InvalidState("payment state changed during refund")
	}

	refundID, err := s.Processor.Refund(ctx, payment.ProviderPaymentID, amount)
	if err != nil {
		if relErr := s.Store.ReleaseRefund(ctx, payment.ID, payment.RefundAmount, payment.RefundStatus); relErr != nil {
			logger.ErrorLogger.Errorf("Failed to release refund reservation on payment %s: %v", payment.ID, relErr)
		}
		return nil, apperrors.External("payment processor refund failed", err)
	}

	if err := s.Store.AttachRefund(ctx, payment.ID, refundID); err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("Refund %s of %d opened for payment %s", refundID, amount, payment.ID)
	return s.Store.GetPayment(ctx, payment.ID)
}

// FinalizeRefund applies the processor's terminal refund verdict delivered by
// webhook.
func (s *SettlementService) FinalizeRefund(ctx context.Context, refundID string, succeeded bool) error {
	status := shared_models.RefundStatusFailed
	if succeeded {
		status = shared_models.RefundStatusSuccess
	}
	return s.Store.FinalizeRefund(ctx, refundID, status)
}

// BatchPayout aggregates a provider's settled, unattributed payments up to
// the cutoff into one payout, net of refunded amounts and the payout fee.
// Payments with a refund in flight are held back until the refund resolves.
// The write is all-or-nothing: either every selected payment carries the new
// payout id or nothing is committed.
func (s *SettlementService) BatchPayout(ctx context.Context, providerID uuid.UUID, cutoff time.Time) (*payout_models.Payout, error) {
	if providerID == uuid.Nil {
		return nil, apperrors.Validation("provider is required")
	}

	payments, err := s.Store.ListPayablePayments(ctx, providerID, cutoff)
	if err != nil {
		return nil, err
	}

	var gross int64
	paymentIDs := make([]uuid.UUID, 0, len(payments))
	for _, p := range payments {
		payable := p.Amount - p.RefundAmount
		if payable <= 0 {
			continue
		}
		gross += payable
		paymentIDs = append(paymentIDs, p.ID)
	}
	if len(paymentIDs) == 0 {
		return nil, apperrors.InvalidState("no settled payments to pay out")
	}

	payout, err := payout_models.NewPayout(providerID, gross, s.PayoutFeeBps)
	if err != nil {
		return nil, err
	}

	if err := s.Store.CreatePayoutBatch(ctx, payout, paymentIDs); err != nil {
		return nil, err
	}

	s.dispatch(func(ctx context.Context) error {
		return s.Notifier.SendPayoutNotice(ctx, payout)
	})

	logger.InfoLogger.Infof("Payout %s batched for provider %s: %d payments, gross %d, net %d",
		payout.ID, providerID, len(paymentIDs), payout.Amount, payout.NetAmount)
	return payout, nil
}

func (s *SettlementService) dispatch(send func(ctx context.Context) error) {
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
