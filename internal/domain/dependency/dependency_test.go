package dependency_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/domain/dependency"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
)

func TestDependencies_CanDelete(t *testing.T) {
	refs := []dependency.EstimateReference{
		{EstimateID: "E1", EstimateStatus: dependency.EstimateApproved, LineItemID: "L1", Quantity: decimal.NewFromInt(2)},
		{EstimateID: "E2", EstimateStatus: dependency.EstimateDraft, LineItemID: "L2", Quantity: decimal.NewFromInt(1)},
	}
	approved, other := dependency.Split(refs)

	deps := &dependency.Dependencies{MaterialID: "mat-1", ApprovedEstimates: approved, OtherEstimates: other}

	assert.Len(t, approved, 1)
	assert.Len(t, other, 1)
	assert.False(t, deps.CanDelete())

	var blocked *dependency.ErrBlockedDeletion
	require.True(t, errors.As(deps.Blocked(), &blocked))
	assert.Equal(t, 2, blocked.EstimateRefs)
}

func TestDependencies_ReleasedReservationStillBlocks(t *testing.T) {
	r, err := reservation.NewReservation("O1", "mat-1", "MAIN", decimal.NewFromInt(5), time.Now())
	require.NoError(t, err)
	_, err = r.Release(time.Now())
	require.NoError(t, err)

	deps := &dependency.Dependencies{MaterialID: "mat-1", Reservations: []*reservation.Reservation{r}}

	assert.False(t, deps.CanDelete())
	assert.True(t, (&dependency.Dependencies{MaterialID: "mat-2"}).CanDelete())
}

func TestReport_PartialFailure(t *testing.T) {
	report := &dependency.Report{MaterialID: "mat-1"}
	report.Add(dependency.StepResult{Step: dependency.StepCancelEstimates, Affected: 1, Failures: 1})
	report.Add(dependency.StepResult{Step: dependency.StepClearReservations, Affected: 2})
	report.Add(dependency.StepResult{Step: dependency.StepDeleteMaterial, Err: errors.New("boom")})

	err := report.PartialFailure()

	var partial *dependency.ErrPartialCascadeFailure
	require.True(t, errors.As(err, &partial))
	require.Len(t, partial.Failed, 1)
	assert.Equal(t, dependency.StepCancelEstimates, partial.Failed[0].Step)
	assert.Contains(t, err.Error(), "cancel_estimates")
}
