package booking_models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/shared_models"
)

func TestNewBooking(t *testing.T) {
	customerID := uuid.New()
	providerID := uuid.New()
	serviceID := uuid.New()
	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	b, err := NewBooking(customerID, providerID, serviceID, start.Truncate(24*time.Hour), start, end, 5000, "USD")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, shared_models.BookingStatusPending, b.Status)
	assert.Equal(t, int64(5000), b.Price)
	assert.True(t, strings.HasPrefix(b.BookingReference, "BK-"))
	assert.Nil(t, b.CancellationReason)
}

func TestNewBookingReference(t *testing.T) {
	ref := NewBookingReference()
	require.Len(t, ref, len("BK-")+12)
	assert.Equal(t, strings.ToUpper(ref), ref)

	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		r := NewBookingReference()
		assert.False(t, seen[r], "duplicate reference %s", r)
		seen[r] = true
	}
}

func TestSlotOverlaps(t *testing.T) {
	base := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"Identical", h(0), h(1), h(0), h(1), true},
		{"PartialOverlap", h(0), h(2), h(1), h(3), true},
		{"Contained", h(0), h(3), h(1), h(2), true},
		{"BackToBack", h(0), h(1), h(1), h(2), false},
		{"BackToBackReversed", h(1), h(2), h(0), h(1), false},
		{"Disjoint", h(0), h(1), h(2), h(3), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, SlotOverlaps(c.aStart, c.aEnd, c.bStart, c.bEnd))
			assert.Equal(t, c.want, SlotOverlaps(c.bStart, c.bEnd, c.aStart, c.aEnd))
		})
	}
}
