package statemachine

import (
	"testing"

	"food-ordering-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsEveryKnownStatus(t *testing.T) {
	for _, raw := range []string{"pending", "confirmed", "preparing", "outfordelivery", "delivered"} {
		s, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, models.OrderStatus(raw), s)
	}
}

func TestParseRejectsUnknownStatus(t *testing.T) {
	for _, raw := range []string{"", "cancelled", "Pending", "out for delivery", "PLACED"} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
	_, err := Parse("shipped")
	assert.EqualError(t, err, "Status must be one of: pending, confirmed, preparing, outfordelivery, delivered")
}

func TestLifecycleOrder(t *testing.T) {
	assert.Equal(t, 0, position(models.StatusPending))
	assert.Equal(t, 4, position(models.StatusDelivered))
	assert.Equal(t, -1, position("nope"))

	next, ok := Next(models.StatusPreparing)
	assert.True(t, ok)
	assert.Equal(t, models.StatusOutForDelivery, next)

	_, ok = Next(models.StatusDelivered)
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	steps := Describe()
	require.Len(t, steps, 5)
	assert.Equal(t, models.StatusConfirmed, steps[0].Next)
	assert.Empty(t, steps[4].Next)
}
