package delivery_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newDelivery(t *testing.T, ordered int64) *delivery.Delivery {
	t.Helper()
	expected := now.AddDate(0, 0, 3)
	del, err := delivery.NewDelivery(delivery.Spec{
		MaterialID:           "mat-1",
		QuantityOrdered:      d(ordered),
		ExpectedDeliveryDate: &expected,
	}, now)
	require.NoError(t, err)
	return del
}

func TestDelivery_PartialThenOverDelivery(t *testing.T) {
	// Arrange
	del := newDelivery(t, 100)

	// Act
	require.NoError(t, del.RecordReceipt(d(60), now, false))
	err := del.RecordReceipt(d(41), now, false)

	// Assert
	assert.Equal(t, delivery.StatusPartiallyDelivered, del.Status())
	assert.True(t, del.QuantityDelivered().Equal(d(60)))
	assert.True(t, del.QuantityRemaining().Equal(d(40)))

	var over *delivery.ErrOverDelivery
	require.True(t, errors.As(err, &over))
	assert.True(t, over.Attempted.Equal(d(41)))
	assert.True(t, over.Delivered.Equal(d(60)))
}

func TestDelivery_AcceptedOverReceiptIsFlagged(t *testing.T) {
	del := newDelivery(t, 100)
	require.NoError(t, del.RecordReceipt(d(60), now, false))

	require.NoError(t, del.RecordReceipt(d(41), now, true))

	assert.Equal(t, delivery.StatusDelivered, del.Status())
	assert.True(t, del.OverReceived())
	assert.True(t, del.QuantityRemaining().IsZero())
	assert.NotNil(t, del.ActualDeliveryDate())
}

func TestDelivery_ReceiptOnTerminalDeliveryIsInvalid(t *testing.T) {
	del := newDelivery(t, 10)
	require.NoError(t, del.TransitionTo(delivery.StatusCancelled, now))

	err := del.RecordReceipt(d(1), now, false)

	var invalid *delivery.ErrInvalidTransition
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, delivery.StatusCancelled, invalid.From)
}

func TestDelivery_FullReceiptSkipsToDelivered(t *testing.T) {
	del := newDelivery(t, 10)

	require.NoError(t, del.RecordReceipt(d(10), now, false))

	assert.Equal(t, delivery.StatusDelivered, del.Status())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to delivery.Status
		want     bool
	}{
		{delivery.StatusOrdered, delivery.StatusInTransit, true},
		{delivery.StatusOrdered, delivery.StatusCancelled, true},
		{delivery.StatusInTransit, delivery.StatusOrdered, false},
		{delivery.StatusInTransit, delivery.StatusPartiallyDelivered, true},
		{delivery.StatusPartiallyDelivered, delivery.StatusPartiallyDelivered, true},
		{delivery.StatusPartiallyDelivered, delivery.StatusInTransit, false},
		{delivery.StatusPartiallyDelivered, delivery.StatusCancelled, true},
		{delivery.StatusDelivered, delivery.StatusCancelled, false},
		{delivery.StatusCancelled, delivery.StatusOrdered, false},
		{delivery.StatusOrdered, delivery.StatusOrdered, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestDelivery_IsOverdue(t *testing.T) {
	del := newDelivery(t, 10)

	assert.False(t, del.IsOverdue(now))
	assert.False(t, del.IsOverdue(now.AddDate(0, 0, 3)))
	assert.True(t, del.IsOverdue(now.AddDate(0, 0, 4)))

	require.NoError(t, del.RecordReceipt(d(10), now, false))
	assert.False(t, del.IsOverdue(now.AddDate(0, 0, 4)))
}

func TestNewDelivery_Validation(t *testing.T) {
	_, err := delivery.NewDelivery(delivery.Spec{MaterialID: "mat-1", QuantityOrdered: d(0)}, now)
	assert.Error(t, err)

	earlier := now.AddDate(0, 0, -1)
	_, err = delivery.NewDelivery(delivery.Spec{MaterialID: "mat-1", QuantityOrdered: d(5), ExpectedDeliveryDate: &earlier}, now)
	assert.Error(t, err)

	del, err := delivery.NewDelivery(delivery.Spec{MaterialID: "mat-1", QuantityOrdered: d(5)}, now)
	require.NoError(t, err)
	assert.Equal(t, "MAIN", del.Location())
	assert.Equal(t, delivery.StatusOrdered, del.Status())
}
