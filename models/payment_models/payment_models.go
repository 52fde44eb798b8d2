package payment_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/transaction_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// Payment records funds charged against a booking through the external
// processor. ProviderPaymentID is the processor-side intent/order id; PayoutID
// is back-filled once a settlement batch attributes the payment to a payout.
type Payment struct {
	ID                uuid.UUID                   `json:"id"`
	BookingID         uuid.UUID                   `json:"booking_id"`
	CustomerID        uuid.UUID                   `json:"customer_id"`
	ProviderID        uuid.UUID                   `json:"provider_id"`
	Amount            int64                       `json:"amount"`
	Currency          string                      `json:"currency"`
	PaymentStatus     shared_models.PaymentStatus `json:"payment_status"`
	ProviderPaymentID string                      `json:"provider_payment_id"`
	PayoutID          *uuid.UUID                  `json:"payout_id,omitempty"`
	RefundStatus      shared_models.RefundStatus  `json:"refund_status"`
	RefundAmount      int64                       `json:"refund_amount"`
	RefundID          *string                     `json:"refund_id,omitempty"`
	PaidAt            *time.Time                  `json:"paid_at,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

const paymentColumns = `id, booking_id, customer_id, provider_id, amount, currency, payment_status,
	provider_payment_id, payout_id, refund_status, refund_amount, refund_id, paid_at, created_at, updated_at`

// NewPayment builds a pending Payment for a booking.
func NewPayment(bookingID, customerID, providerID uuid.UUID, amount int64, currency, providerPaymentID string) (*Payment, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for payment: %w", err)
	}
	now := time.Now().UTC()
	return &Payment{
		ID:                id,
		BookingID:         bookingID,
		CustomerID:        customerID,
		ProviderID:        providerID,
		Amount:            amount,
		Currency:          currency,
		PaymentStatus:     shared_models.PaymentStatusPending,
		ProviderPaymentID: providerPaymentID,
		RefundStatus:      shared_models.RefundStatusNone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	p := &Payment{}
	err := row.Scan(
		&p.ID, &p.BookingID, &p.CustomerID, &p.ProviderID, &p.Amount, &p.Currency,
		&p.PaymentStatus, &p.ProviderPaymentID, &p.PayoutID, &p.RefundStatus,
		&p.RefundAmount, &p.RefundID, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePayment inserts a pending payment row. The partial unique index on
// (booking_id) for non-failed payments rejects a second live payment against
// the same booking.
func CreatePayment(ctx context.Context, db *pgxpool.Pool, payment *Payment) (*Payment, error) {
	_, err := db.Exec(ctx, `
		INSERT INTO payments (
			id, booking_id, customer_id, provider_id, amount, currency, payment_status,
			provider_payment_id, refund_status, refund_amount, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		payment.ID, payment.BookingID, payment.CustomerID, payment.ProviderID,
		payment.Amount, payment.Currency, payment.PaymentStatus,
		payment.ProviderPaymentID, payment.RefundStatus, payment.RefundAmount,
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert payment %s for booking %s: %v", payment.ID, payment.BookingID, err)
		return nil, apperrors.Internal("failed to create payment", err)
	}
	logger.InfoLogger.Infof("Payment %s created for booking %s", payment.ID, payment.BookingID)
	return payment, nil
}

// GetPaymentByID fetches a payment by its ID.
func GetPaymentByID(ctx context.Context, db *pgxpool.Pool, paymentID uuid.UUID) (*Payment, error) {
	payment, err := scanPayment(db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("payment not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch payment %s: %v", paymentID, err)
		return nil, apperrors.Internal("database error fetching payment", err)
	}
	return payment, nil
}

// GetPaymentByProviderPaymentID fetches a payment by the processor's intent id.
func GetPaymentByProviderPaymentID(ctx context.Context, db *pgxpool.Pool, providerPaymentID string) (*Payment, error) {
	payment, err := scanPayment(db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE provider_payment_id = $1`, providerPaymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("payment not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch payment for intent %s: %v", providerPaymentID, err)
		return nil, apperrors.Internal("database error fetching payment", err)
	}
	return payment, nil
}

// CompletePayment flips a pending payment to completed and writes its ledger
// entry in a single transaction. The guarded UPDATE makes the operation
// idempotent: a replayed confirmation sees zero rows affected and applied is
// false, with no second ledger row.
func CompletePayment(ctx context.Context, db *pgxpool.Pool, paymentID uuid.UUID, paidAt time.Time, txn *transaction_models.Transaction) (bool, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("[TX_BEGIN_FAIL] CompletePayment %s: %v", paymentID, err)
		return false, apperrors.Internal("failed to start transaction", err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, `
		UPDATE payments
		SET payment_status = $2, paid_at = $3, updated_at = NOW()
		WHERE id = $1 AND payment_status = $4`,
		paymentID, shared_models.PaymentStatusCompleted, paidAt, shared_models.PaymentStatusPending,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("[TX_EXEC_FAIL] CompletePayment %s: %v", paymentID, err)
		return false, apperrors.Internal("failed to complete payment", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}

	if err := transaction_models.InsertTransactionTx(ctx, tx, txn); err != nil {
		return false, apperrors.Internal("failed to record transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("[TX_COMMIT_FAIL] CompletePayment %s: %v", paymentID, err)
		return false, apperrors.Internal("failed to commit payment completion", err)
	}

	logger.InfoLogger.Infof("Payment %s completed, transaction %s recorded", paymentID, txn.ID)
	return true, nil
}

// MarkPaymentFailed flips a pending payment to failed.
func MarkPaymentFailed(ctx context.Context, db *pgxpool.Pool, paymentID uuid.UUID) error {
	_, err := db.Exec(ctx, `
		UPDATE payments SET payment_status = $2, updated_at = NOW()
		WHERE id = $1 AND payment_status = $3`,
		paymentID, shared_models.PaymentStatusFailed, shared_models.PaymentStatusPending,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark payment %s failed: %v", paymentID, err)
		return apperrors.Internal("failed to update payment", err)
	}
	return nil
}

// ReserveRefund bumps the running refund total from expected to total on a
// completed payment with no refund in flight. The compare-and-swap on
// refund_amount means exactly one of two concurrent refunds gets the
// reservation; the loser sees applied false and never reaches the processor.
func ReserveRefund(ctx context.Context, db *pgxpool.Pool, paymentID uuid.UUID, expected, total int64) (bool, error) {
	cmdTag, err := db.Exec(ctx, `
		UPDATE payments
		SET refund_amount = $3, refund_status = $4, updated_at = NOW()
		WHERE id = $1 AND payment_status = $5 AND refund_status <> $4 AND refund_amount = $2`,
		paymentID, expected, total, shared_models.RefundStatusPending, shared_models.PaymentStatusCompleted,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to reserve refund for payment %s: %v", paymentID, err)
		return false, apperrors.Internal("failed to reserve refund", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// AttachRefund stores the processor's refund id against the open reservation.
func AttachRefund(ctx context.Context, db *pgxpool.Pool, paymentID uuid.UUID, refundID string) error {
	_, err := db.Exec(ctx, `
		UPDATE payments SET refund_id = $2, updated_at = NOW()
		WHERE id = $1 AND refund_status = $3`,
		paymentID, refundID, shared_models.RefundStatusPending,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to attach refund %s to payment %s: %v", refundID, paymentID, err)
		return apperrors.Internal("failed to record refund", err)
	}
	return nil
}

// ReleaseRefund rolls a reservation back to the prior total and status after
// the processor rejected the refund request outright.
func ReleaseRefund(ctx context.Context, db *pgxpool.Pool, paymentID uuid.UUID, expected int64, prior shared_models.RefundStatus) error {
	_, err := db.Exec(ctx, `
		UPDATE payments
		SET refund_amount = $2, refund_status = $3, updated_at = NOW()
		WHERE id = $1 AND refund_status = $4`,
		paymentID, expected, prior, shared_models.RefundStatusPending,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to release refund reservation on payment %s: %v", paymentID, err)
		return apperrors.Internal("failed to release refund", err)
	}
	return nil
}

// FinalizeRefund applies the processor's terminal refund status. The payment
// flips to refunded only once the cumulative refund covers the full amount;
// a partially refunded payment stays completed so the remainder can still be
// paid out. A failed refund keeps its amount reserved: the processor was
// asked to move those funds and the outcome needs manual reconciliation
// before they can be refunded again or paid out.
func FinalizeRefund(ctx context.Context, db *pgxpool.Pool, refundID string, status shared_models.RefundStatus) error {
	succeeded := status == shared_models.RefundStatusSuccess
	_, err := db.Exec(ctx, `
		UPDATE payments
		SET refund_status = $2,
		    payment_status = CASE
		        WHEN $3::bool AND refund_amount = amount THEN $4
		        ELSE payment_status
		    END,
		    updated_at = NOW()
		WHERE refund_id = $1 AND refund_status = $5`,
		refundID, status, succeeded,
		shared_models.PaymentStatusRefunded, shared_models.RefundStatusPending,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to finalize refund %s: %v", refundID, err)
		return apperrors.Internal("failed to finalize refund", err)
	}
	return nil
}

// ListPayablePayments returns a provider's completed, not-yet-attributed
// payments up to the cutoff date, oldest first. Payments with a refund in
// flight are held back until the processor delivers a verdict.
func ListPayablePayments(ctx context.Context, db *pgxpool.Pool, providerID uuid.UUID, cutoff time.Time) ([]Payment, error) {
	rows, err := db.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE provider_id = $1
		  AND payment_status = $2
		  AND payout_id IS NULL
		  AND refund_status <> $3
		  AND paid_at <= $4
		ORDER BY paid_at ASC`,
		providerID, shared_models.PaymentStatusCompleted, shared_models.RefundStatusPending, cutoff,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list payable payments for provider %s: %v", providerID, err)
		return nil, apperrors.Internal("failed to list payments", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p := Payment{}
		err := rows.Scan(
			&p.ID, &p.BookingID, &p.CustomerID, &p.ProviderID, &p.Amount, &p.Currency,
			&p.PaymentStatus, &p.ProviderPaymentID, &p.PayoutID, &p.RefundStatus,
			&p.RefundAmount, &p.RefundID, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Internal("failed to scan payment", err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}
