package stock_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestDeriveStatus(t *testing.T) {
	threshold := d(10)
	assert.Equal(t, stock.StatusOutOfStock, stock.DeriveStatus(d(0), threshold))
	assert.Equal(t, stock.StatusOutOfStock, stock.DeriveStatus(d(-1), threshold))
	assert.Equal(t, stock.StatusLowStock, stock.DeriveStatus(d(5), threshold))
	assert.Equal(t, stock.StatusLowStock, stock.DeriveStatus(d(10), threshold))
	assert.Equal(t, stock.StatusInStock, stock.DeriveStatus(d(11), threshold))

	half := decimal.RequireFromString("0.5")
	assert.Equal(t, stock.StatusLowStock, stock.DeriveStatus(half, half))
}

func TestStockLevel_ApplyMovementEffect(t *testing.T) {
	// Arrange
	level := stock.NewStockLevel("mat-1", "MAIN", now)

	// Act
	require.NoError(t, level.ApplyMovementEffect(d(50), now))
	require.NoError(t, level.ApplyMovementEffect(d(-45), now.Add(time.Hour)))
	err := level.ApplyMovementEffect(d(-6), now.Add(2*time.Hour))

	// Assert
	var insufficient *stock.ErrInsufficientStock
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Available.Equal(d(5)))
	assert.True(t, insufficient.Requested.Equal(d(6)))
	assert.True(t, level.CurrentQuantity().Equal(d(5)))
	require.NotNil(t, level.LastMovementDate())
	assert.Equal(t, now.Add(time.Hour), *level.LastMovementDate())
}

func TestStockLevel_ReservationCannotExceedCurrent(t *testing.T) {
	level := stock.NewStockLevel("mat-1", "MAIN", now)
	require.NoError(t, level.ApplyMovementEffect(d(20), now))

	require.NoError(t, level.ApplyReservationDelta(d(15), now))
	err := level.ApplyReservationDelta(d(6), now)

	var exceeded *stock.ErrReservedExceedsCurrent
	require.True(t, errors.As(err, &exceeded))
	assert.True(t, level.ReservedQuantity().Equal(d(15)))
	assert.True(t, level.Available().Equal(d(5)))
}

func TestStockLevel_ReleaseNeverGoesNegative(t *testing.T) {
	level := stock.NewStockLevel("mat-1", "MAIN", now)
	require.NoError(t, level.ApplyMovementEffect(d(20), now))
	require.NoError(t, level.ApplyReservationDelta(d(5), now))

	require.NoError(t, level.ApplyReservationDelta(d(-8), now))

	assert.True(t, level.ReservedQuantity().IsZero())
}

func TestStockLevel_CountBelowReservedIsOverAllocated(t *testing.T) {
	level := stock.NewStockLevel("mat-1", "MAIN", now)
	require.NoError(t, level.ApplyMovementEffect(d(20), now))
	require.NoError(t, level.ApplyReservationDelta(d(15), now))

	// a count of 10 is an effect of -10
	require.NoError(t, level.ApplyMovementEffect(d(-10), now))

	assert.True(t, level.IsOverAllocated())
	assert.True(t, level.Available().Equal(d(-5)))
}

func TestStockLevel_OnOrderSupersedesDisplayOnly(t *testing.T) {
	level := stock.NewStockLevel("mat-1", "MAIN", now)
	require.NoError(t, level.ApplyMovementEffect(d(3), now))

	level.SetOnOrder(true, now)

	assert.Equal(t, stock.StatusOnOrder, level.Status(d(10)))
	assert.Equal(t, stock.StatusLowStock, level.QuantityStatus(d(10)))
	assert.True(t, level.Available().Equal(d(3)))
}
