package payout_models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

func TestNewPayout(t *testing.T) {
	providerID := uuid.New()

	t.Run("NetIsGrossMinusFees", func(t *testing.T) {
		p, err := NewPayout(providerID, 10000, 500)
		require.NoError(t, err)

		assert.Equal(t, int64(10000), p.Amount)
		assert.Equal(t, int64(500), p.Fees)
		assert.Equal(t, int64(9500), p.NetAmount)
		assert.Equal(t, shared_models.PayoutStatusPending, p.Status)
		assert.True(t, strings.HasPrefix(p.Reference, "payout_"))
		assert.NoError(t, p.CheckArithmetic())
	})

	t.Run("ArithmeticHoldsOnAwkwardAmounts", func(t *testing.T) {
		for _, gross := range []int64{1, 7, 99, 101, 12345} {
			p, err := NewPayout(providerID, gross, 333)
			require.NoError(t, err)
			assert.Equal(t, p.Amount-p.Fees, p.NetAmount, "gross %d", gross)
		}
	})

	t.Run("RejectsNonPositiveGross", func(t *testing.T) {
		_, err := NewPayout(providerID, 0, 500)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}

func TestCheckArithmetic(t *testing.T) {
	p, err := NewPayout(uuid.New(), 10000, 500)
	require.NoError(t, err)

	p.NetAmount--
	assert.Error(t, p.CheckArithmetic())
}
