package transaction_models

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
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// Transaction is the fee-split ledger entry written when a payment completes.
// PlatformFee + ProviderPayout always equals Amount.
type Transaction struct {
	ID              uuid.UUID                     `json:"id"`
	UserID          uuid.UUID                     `json:"user_id"`
	PaymentID       uuid.UUID                     `json:"payment_id"`
	Amount          int64                         `json:"amount"`
	PlatformFee     int64                         `json:"platform_fee"`
	ProviderPayout  int64                         `json:"provider_payout"`
	Status          string                        `json:"status"`
	TransactionType shared_models.TransactionType `json:"transaction_type"`
	CreatedAt       time.Time                     `json:"created_at"`
}

// NewChargeTransaction builds the ledger entry for a completed payment,
// splitting the amount at the given platform fee rate.
func NewChargeTransaction(userID, paymentID uuid.UUID, amount, platformFeeBps int64) (*Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.Validation("transaction amount must be positive")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for transaction: %w", err)
	}

	platformFee, providerPayout := shared_models.SplitAmount(amount, platformFeeBps)
	return &Transaction{
		ID:              id,
		UserID:          userID,
		PaymentID:       paymentID,
		Amount:          amount,
		PlatformFee:     platformFee,
		ProviderPayout:  providerPayout,
		Status:          "recorded",
		TransactionType: shared_models.TransactionTypeCharge,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// CheckSplit verifies the ledger invariant. A violation is a programming or
// data-corruption error, never a user error.
func (t *Transaction) CheckSplit() error {
	if t.PlatformFee+t.ProviderPayout != t.Amount {
		return fmt.Errorf("transaction %s split mismatch: %d + %d != %d",
			t.ID, t.PlatformFee, t.ProviderPayout, t.Amount)
	}
	return nil
}

// InsertTransactionTx writes a ledger row inside an existing transaction so
// the caller can commit it atomically with the payment update.
func InsertTransactionTx(ctx context.Context, tx pgx.Tx, txn *Transaction) error {
	if err := txn.CheckSplit(); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (id, user_id, payment_id, amount, platform_fee, provider_payout, status, transaction_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		txn.ID, txn.UserID, txn.PaymentID, txn.Amount, txn.PlatformFee,
		txn.ProviderPayout, txn.Status, txn.TransactionType, txn.CreatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert transaction %s: %v", txn.ID, err)
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransactionByPaymentID fetches the charge ledger entry for a payment.
func GetTransactionByPaymentID(ctx context.Context, db *pgxpool.Pool, paymentID uuid.UUID) (*Transaction, error) {
	txn := &Transaction{}
	err := db.QueryRow(ctx, `
		SELECT id, user_id, payment_id, amount, platform_fee, provider_payout, status, transaction_type, created_at
		FROM transactions
		WHERE payment_id = $1 AND transaction_type = $2`,
		paymentID, shared_models.TransactionTypeCharge,
	).Scan(
		&txn.ID, &txn.UserID, &txn.PaymentID, &txn.Amount, &txn.PlatformFee,
		&txn.ProviderPayout, &txn.Status, &txn.TransactionType, &txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("transaction not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch transaction for payment %s: %v", paymentID, err)
		return nil, apperrors.Internal("database error fetching transaction", err)
	}
	return txn, nil
}

// ListTransactionsByUser returns a user's ledger entries, newest first.
func ListTransactionsByUser(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, payment_id, amount, platform_fee, provider_payout, status, transaction_type, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch transactions for user %s: %v", userID, err)
		return nil, apperrors.Internal("failed to fetch transactions", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var t Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.PaymentID, &t.Amount, &t.PlatformFee,
			&t.ProviderPayout, &t.Status, &t.TransactionType, &t.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Internal("failed to scan transaction", err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}
