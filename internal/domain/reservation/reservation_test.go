package reservation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReservation_FullUsage(t *testing.T) {
	// Arrange
	r, err := reservation.NewReservation("O1", "mat-1", "MAIN", d("20"), now)
	require.NoError(t, err)

	// Act
	usage, err := r.RecordUsage(d("20"), now)

	// Assert
	require.NoError(t, err)
	assert.True(t, usage.Covered.Equal(d("20")))
	assert.False(t, usage.OverUsed)
	assert.True(t, r.Remaining().IsZero())
	assert.False(t, r.HasDiscrepancy())
}

func TestReservation_OverUseIsFlaggedNotRejected(t *testing.T) {
	r, err := reservation.NewReservation("O1", "mat-1", "MAIN", d("10"), now)
	require.NoError(t, err)

	first, err := r.RecordUsage(d("8"), now)
	require.NoError(t, err)
	second, err := r.RecordUsage(d("5"), now)
	require.NoError(t, err)

	assert.True(t, first.Covered.Equal(d("8")))
	assert.True(t, second.Covered.Equal(d("2")))
	assert.True(t, second.OverUsed)
	assert.True(t, r.QuantityUsed().Equal(d("13")))
	assert.True(t, r.Remaining().Equal(d("-3")))
	assert.True(t, r.Outstanding().IsZero())
}

func TestReservation_ReleaseReturnsOutstandingOnce(t *testing.T) {
	r, err := reservation.NewReservation("O1", "mat-1", "MAIN", d("10"), now)
	require.NoError(t, err)
	_, err = r.RecordUsage(d("4"), now)
	require.NoError(t, err)

	returned, err := r.Release(now)
	require.NoError(t, err)
	_, again := r.Release(now)

	assert.True(t, returned.Equal(d("6")))
	assert.Equal(t, reservation.StatusReleased, r.Status())
	require.NotNil(t, r.ReleasedAt())
	var released *reservation.ErrReservationReleased
	assert.True(t, errors.As(again, &released))

	_, err = r.RecordUsage(d("1"), now)
	assert.True(t, errors.As(err, &released))
}

func TestNewReservation_RejectsNonPositiveQuantity(t *testing.T) {
	_, err := reservation.NewReservation("O1", "mat-1", "MAIN", d("0"), now)
	assert.Error(t, err)
}

func TestIsDiscrepancy_Boundary(t *testing.T) {
	tests := []struct {
		reserved, used string
		want           bool
	}{
		{"100", "105", false},
		{"100", "95", false},
		{"100", "105.01", true},
		{"100", "94.99", true},
		{"20", "21", false},
		{"20", "21.2", true},
		{"3", "0", true},
		{"0", "0", false},
		{"0", "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.reserved+"/"+tt.used, func(t *testing.T) {
			assert.Equal(t, tt.want, reservation.IsDiscrepancy(d(tt.reserved), d(tt.used)))
		})
	}
}
