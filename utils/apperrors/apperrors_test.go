package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindSlotConflict, KindOf(SlotConflict("slot taken")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", InvalidTransition("pending to completed"))
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.True(t, IsKind(err, KindInvalidTransition))
	assert.False(t, IsKind(err, KindValidation))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "slot taken", MessageOf(SlotConflict("slot taken")))
	// Plain errors never leak their text to callers.
	assert.Equal(t, "internal server error", MessageOf(errors.New("pq: connection refused")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := External("payment processor unavailable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "EXTERNAL_SERVICE_ERROR")
	assert.Contains(t, err.Error(), "timeout")
}
