package payout_models

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

// Payout aggregates a provider's settled payments into one transfer, net of
// platform fees. NetAmount == Amount - Fees always holds.
type Payout struct {
	ID          uuid.UUID                  `json:"id"`
	ProviderID  uuid.UUID                  `json:"provider_id"`
	Amount      int64                      `json:"amount"`
	Fees        int64                      `json:"fees"`
	NetAmount   int64                      `json:"net_amount"`
	Status      shared_models.PayoutStatus `json:"status"`
	Reference   string                     `json:"reference"`
	CreatedAt   time.Time                  `json:"created_at"`
	ProcessedAt *time.Time                 `json:"processed_at,omitempty"`
}

// NewPayout builds a pending payout for the given gross amount and fee rate.
func NewPayout(providerID uuid.UUID, grossAmount, payoutFeeBps int64) (*Payout, error) {
	if grossAmount <= 0 {
		return nil, apperrors.Validation("payout amount must be positive")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for payout: %w", err)
	}

	fees := shared_models.FeeFromBps(grossAmount, payoutFeeBps)
	return &Payout{
		ID:         id,
		ProviderID: providerID,
		Amount:     grossAmount,
		Fees:       fees,
		NetAmount:  grossAmount - fees,
		Status:     shared_models.PayoutStatusPending,
		Reference:  "payout_" + uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// CheckArithmetic verifies the payout invariant before anything is written.
func (p *Payout) CheckArithmetic() error {
	if p.NetAmount != p.Amount-p.Fees {
		return fmt.Errorf("payout %s arithmetic mismatch: net %d != %d - %d",
			p.ID, p.NetAmount, p.Amount, p.Fees)
	}
	return nil
}

// CreatePayoutBatch writes the payout row and attributes the selected payments
// to it in a single transaction. The provider-keyed advisory lock stops two
// batches for the same provider from racing; if any selected payment was
// already attributed or is no longer completed, the affected-row count falls
// short and the whole batch rolls back.
func CreatePayoutBatch(ctx context.Context, db *pgxpool.Pool, payout *Payout, paymentIDs []uuid.UUID) error {
	if err := payout.CheckArithmetic(); err != nil {
		return apperrors.Internal("payout arithmetic check failed", err)
	}
	if len(paymentIDs) == 0 {
		return apperrors.InvalidState("no payments to attribute to payout")
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("[TX_BEGIN_FAIL] CreatePayoutBatch %s: %v", payout.ID, err)
		return apperrors.Internal("failed to start payout transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "payout:"+payout.ProviderID.String()); err != nil {
		logger.ErrorLogger.Errorf("Failed to take payout lock for provider %s: %v", payout.ProviderID, err)
		return apperrors.Internal("failed to lock provider payouts", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payouts (id, provider_id, amount, fees, net_amount, status, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payout.ID, payout.ProviderID, payout.Amount, payout.Fees, payout.NetAmount,
		payout.Status, payout.Reference, payout.CreatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("[TX_EXEC_FAIL] Insert payout %s: %v", payout.ID, err)
		return apperrors.Internal("failed to insert payout", err)
	}

	cmdTag, err := tx.Exec(ctx, `
		UPDATE payments
		SET payout_id = $1, updated_at = NOW()
		WHERE id = ANY($2) AND payout_id IS NULL AND payment_status = $3`,
		payout.ID, paymentIDs, shared_models.PaymentStatusCompleted,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("[TX_EXEC_FAIL] Attribute payments to payout %s: %v", payout.ID, err)
		return apperrors.Internal("failed to attribute payments", err)
	}
	if cmdTag.RowsAffected() != int64(len(paymentIDs)) {
		logger.ErrorLogger.Errorf("Payout %s attribution mismatch: attributed %d of %d payments, rolling back",
			payout.ID, cmdTag.RowsAffected(), len(paymentIDs))
		return apperrors.InvalidState("some payments were already attributed to another payout")
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("[TX_COMMIT_FAIL] CreatePayoutBatch %s: %v", payout.ID, err)
		return apperrors.Internal("failed to commit payout batch", err)
	}

	logger.InfoLogger.Infof("Payout %s created for provider %s: amount=%d fees=%d net=%d over %d payments",
		payout.ID, payout.ProviderID, payout.Amount, payout.Fees, payout.NetAmount, len(paymentIDs))
	return nil
}

// GetPayoutByID fetches a payout by its ID.
func GetPayoutByID(ctx context.Context, db *pgxpool.Pool, payoutID uuid.UUID) (*Payout, error) {
	p := &Payout{}
	err := db.QueryRow(ctx, `
		SELECT id, provider_id, amount, fees, net_amount, status, reference, created_at, processed_at
		FROM payouts WHERE id = $1`,
		payoutID,
	).Scan(&p.ID, &p.ProviderID, &p.Amount, &p.Fees, &p.NetAmount, &p.Status, &p.Reference, &p.CreatedAt, &p.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("payout not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch payout %s: %v", payoutID, err)
		return nil, apperrors.Internal("database error fetching payout", err)
	}
	return p, nil
}

// ListPayoutsByProvider returns a provider's payouts, newest first.
func ListPayoutsByProvider(ctx context.Context, db *pgxpool.Pool, providerID uuid.UUID, limit, offset int) ([]Payout, error) {
	rows, err := db.Query(ctx, `
		SELECT id, provider_id, amount, fees, net_amount, status, reference, created_at, processed_at
		FROM payouts
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		providerID, limit, offset,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list payouts for provider %s: %v", providerID, err)
		return nil, apperrors.Internal("failed to list payouts", err)
	}
	defer rows.Close()

	var payouts []Payout
	for rows.Next() {
		var p Payout
		if err := rows.Scan(&p.ID, &p.ProviderID, &p.Amount, &p.Fees, &p.NetAmount, &p.Status, &p.Reference, &p.CreatedAt, &p.ProcessedAt); err != nil {
			return nil, apperrors.Internal("failed to scan payout", err)
		}
		payouts = append(payouts, p)
	}
	return payouts, nil
}

// MarkPayoutProcessed records that the transfer went out.
func MarkPayoutProcessed(ctx context.Context, db *pgxpool.Pool, payoutID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE payouts SET status = $2, processed_at = NOW()
		WHERE id = $1 AND status = $3`,
		payoutID, shared_models.PayoutStatusProcessed, shared_models.PayoutStatusPending,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark payout %s processed: %v", payoutID, err)
		return apperrors.Internal("failed to update payout", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.InvalidState("payout is not pending")
	}
	return nil
}
