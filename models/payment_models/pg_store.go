package payment_models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payout_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/transaction_models"
)

// PgStore adapts the payment, transaction and payout query functions to the
// store interface the settlement service consumes.
type PgStore struct {
	DB *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{DB: db}
}

func (s *PgStore) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return GetPaymentByID(ctx, s.DB, id)
}

func (s *PgStore) GetPaymentByIntent(ctx context.Context, providerPaymentID string) (*Payment, error) {
	return GetPaymentByProviderPaymentID(ctx, s.DB, providerPaymentID)
}

func (s *PgStore) InsertPayment(ctx context.Context, payment *Payment) (*Payment, error) {
	return CreatePayment(ctx, s.DB, payment)
}

func (s *PgStore) CompletePayment(ctx context.Context, paymentID uuid.UUID, paidAt time.Time, txn *transaction_models.Transaction) (bool, error) {
	return CompletePayment(ctx, s.DB, paymentID, paidAt, txn)
}

func (s *PgStore) MarkPaymentFailed(ctx context.Context, paymentID uuid.UUID) error {
	return MarkPaymentFailed(ctx, s.DB, paymentID)
}

func (s *PgStore) ReserveRefund(ctx context.Context, paymentID uuid.UUID, expected, total int64) (bool, error) {
	return ReserveRefund(ctx, s.DB, paymentID, expected, total)
}

func (s *PgStore) AttachRefund(ctx context.Context, paymentID uuid.UUID, refundID string) error {
	return AttachRefund(ctx, s.DB, paymentID, refundID)
}

func (s *PgStore) ReleaseRefund(ctx context.Context, paymentID uuid.UUID, expected int64, prior shared_models.RefundStatus) error {
	return ReleaseRefund(ctx, s.DB, paymentID, expected, prior)
}

func (s *PgStore) FinalizeRefund(ctx context.Context, refundID string, status shared_models.RefundStatus) error {
	return FinalizeRefund(ctx, s.DB, refundID, status)
}

func (s *PgStore) GetTransactionByPayment(ctx context.Context, paymentID uuid.UUID) (*transaction_models.Transaction, error) {
	return transaction_models.GetTransactionByPaymentID(ctx, s.DB, paymentID)
}

func (s *PgStore) ListPayablePayments(ctx context.Context, providerID uuid.UUID, cutoff time.Time) ([]Payment, error) {
	return ListPayablePayments(ctx, s.DB, providerID, cutoff)
}

func (s *PgStore) CreatePayoutBatch(ctx context.Context, payout *payout_models.Payout, paymentIDs []uuid.UUID) error {
	return payout_models.CreatePayoutBatch(ctx, s.DB, payout, paymentIDs)
}
