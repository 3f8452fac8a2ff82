package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	item, err := NewItem("Carrot", 12, 1.5, 95, "2026-03-17", now)
	require.NoError(t, err)

	assert.NotEmpty(t, item.LotID)
	assert.Equal(t, "Carrot", item.Name)
	assert.Equal(t, 12, item.Quantity)
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), item.ExpiryDate)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), item.AddedAt)
}

func TestNewItemAssignsDistinctLots(t *testing.T) {
	now := time.Now()
	a, err := NewItem("Carrot", 1, 1, 90, "2030-01-01", now)
	require.NoError(t, err)
	b, err := NewItem("Carrot", 1, 1, 90, "2030-01-01", now)
	require.NoError(t, err)

	assert.NotEqual(t, a.LotID, b.LotID)
}

func TestNewItemInvalidDate(t *testing.T) {
	for _, value := range []string{"", "17/03/2026", "2026-13-01", "tomorrow"} {
		_, err := NewItem("Carrot", 1, 1, 90, value, time.Now())
		require.Error(t, err, value)
		assert.True(t, errors.Is(err, ErrInvalidDateFormat), value)
	}
}

func TestDaysUntilExpiry(t *testing.T) {
	item, err := NewItem("Lettuce", 3, 1, 95, "2026-03-12", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "two days ahead", now: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), want: 2},
		{name: "late evening still counts the calendar day", now: time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), want: 2},
		{name: "expiry day", now: time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC), want: 0},
		{name: "expired", now: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), want: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, item.DaysUntilExpiry(tt.now))
		})
	}
}

func TestDaysUntilExpiryFarFuture(t *testing.T) {
	now := time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC)

	cycle := Item{ExpiryDate: time.Date(2400, 1, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 146097, cycle.DaysUntilExpiry(now))

	distant := Item{ExpiryDate: time.Date(2500, 1, 1, 0, 0, 0, 0, time.UTC)}
	furthest := Item{ExpiryDate: time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)}
	assert.Greater(t, furthest.DaysUntilExpiry(now), distant.DaysUntilExpiry(now))
}
