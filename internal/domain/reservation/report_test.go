package reservation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
)

func reserved(t *testing.T, order, qty, used string) *reservation.Reservation {
	t.Helper()
	r, err := reservation.NewReservation(order, "mat-1", "MAIN", d(qty), now)
	require.NoError(t, err)
	if !d(used).IsZero() {
		_, err = r.RecordUsage(d(used), now)
		require.NoError(t, err)
	}
	return r
}

func TestEfficiency(t *testing.T) {
	tests := []struct {
		reserved, used string
		pct            int64
		status         reservation.BudgetStatus
	}{
		{"20", "20", 100, reservation.BudgetOn},
		{"100", "110", 110, reservation.BudgetOn},
		{"100", "110.6", 111, reservation.BudgetOver},
		{"100", "90", 90, reservation.BudgetOn},
		{"100", "89.4", 89, reservation.BudgetUnder},
		{"3", "2", 67, reservation.BudgetUnder},
		{"0", "0", 0, reservation.BudgetOn},
		{"0", "4", 0, reservation.BudgetOver},
	}

	for _, tt := range tests {
		pct, status := reservation.Efficiency(d(tt.reserved), d(tt.used))
		assert.Equal(t, tt.pct, pct, "%s/%s", tt.reserved, tt.used)
		assert.Equal(t, tt.status, status, "%s/%s", tt.reserved, tt.used)
	}
}

func TestBuildOrderReports_GroupsByOrder(t *testing.T) {
	reports := reservation.BuildOrderReports([]*reservation.Reservation{
		reserved(t, "O2", "10", "12"),
		reserved(t, "O1", "20", "20"),
		reserved(t, "O2", "10", "10"),
	})

	require.Len(t, reports, 2)

	assert.Equal(t, "O1", reports[0].OrderID)
	assert.Equal(t, int64(100), reports[0].EfficiencyPercentage)
	assert.Equal(t, reservation.BudgetOn, reports[0].Status)
	assert.Equal(t, 0, reports[0].DiscrepancyCount)

	assert.Equal(t, "O2", reports[1].OrderID)
	assert.True(t, reports[1].TotalReserved.Equal(d("20")))
	assert.True(t, reports[1].TotalUsed.Equal(d("22")))
	assert.Equal(t, int64(110), reports[1].EfficiencyPercentage)
	assert.Equal(t, 1, reports[1].DiscrepancyCount)
	assert.True(t, reports[1].Lines[0].Discrepancy)
	assert.True(t, reports[1].Lines[0].Variance.Equal(d("2")))
}
