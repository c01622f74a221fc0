package setup_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogCommands "github.com/andrescamacho/warehouse-go/internal/application/catalog/commands"
	catalogQueries "github.com/andrescamacho/warehouse-go/internal/application/catalog/queries"
	deliveryCommands "github.com/andrescamacho/warehouse-go/internal/application/delivery/commands"
	deliveryQueries "github.com/andrescamacho/warehouse-go/internal/application/delivery/queries"
	dependencyCommands "github.com/andrescamacho/warehouse-go/internal/application/dependency/commands"
	dependencyQueries "github.com/andrescamacho/warehouse-go/internal/application/dependency/queries"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	reservationCommands "github.com/andrescamacho/warehouse-go/internal/application/reservation/commands"
	reservationQueries "github.com/andrescamacho/warehouse-go/internal/application/reservation/queries"
	"github.com/andrescamacho/warehouse-go/internal/application/setup"
	stockCommands "github.com/andrescamacho/warehouse-go/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/warehouse-go/internal/application/stock/queries"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/dependency"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
	"github.com/andrescamacho/warehouse-go/test/helpers"
)

func newEngine(t *testing.T) *helpers.TestEngine {
	t.Helper()
	e, err := helpers.NewTestEngine(helpers.NewTestDB(t))
	require.NoError(t, err)
	return e
}

// newRegistry wires handlers over repos while sharing the base engine's
// locker, transaction scope and clock
func newRegistry(repos setup.Repositories, base *helpers.TestEngine) *setup.HandlerRegistry {
	return setup.NewHandlerRegistry(repos, base.Locker, base.UoW, base.Clock, 20)
}

func createMaterial(t *testing.T, m mediator.Mediator, name, minStock string) string {
	t.Helper()
	resp, err := m.Send(context.Background(), &catalogCommands.CreateMaterialCommand{
		Name:          name,
		Category:      "wood",
		Unit:          "sheet",
		MinStockLevel: helpers.Dec(minStock),
	})
	require.NoError(t, err)
	return resp.(*catalogCommands.MaterialResponse).Material.ID
}

func record(m mediator.Mediator, materialID, movementType, qty string) (*stockCommands.RecordMovementResponse, error) {
	resp, err := m.Send(context.Background(), &stockCommands.RecordMovementCommand{
		MaterialID: materialID,
		Type:       movementType,
		Quantity:   helpers.Dec(qty),
	})
	if err != nil {
		return nil, err
	}
	return resp.(*stockCommands.RecordMovementResponse), nil
}

func TestReceiptAndIssue_StatusFollowsThreshold(t *testing.T) {
	e := newEngine(t)
	id := createMaterial(t, e.Mediator, "Oak board", "10")

	resp, err := record(e.Mediator, id, "RECEIPT", "50")
	require.NoError(t, err)
	assert.Equal(t, "50", resp.StockLevel.CurrentQuantity.String())
	assert.Equal(t, string(stock.StatusInStock), resp.StockLevel.Status)

	resp, err = record(e.Mediator, id, "ISSUE", "45")
	require.NoError(t, err)
	assert.Equal(t, "5", resp.StockLevel.CurrentQuantity.String())
	assert.Equal(t, string(stock.StatusLowStock), resp.StockLevel.Status)
	assert.Equal(t, "-45", resp.Movement.Effect.String())

	_, err = record(e.Mediator, id, "ISSUE", "6")
	var insufficient *stock.ErrInsufficientStock
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "5", insufficient.Available.String())
	assert.Equal(t, "6", insufficient.Requested.String())

	level, err := e.Mediator.Send(context.Background(), &stockQueries.GetStockLevelQuery{MaterialID: id})
	require.NoError(t, err)
	assert.Equal(t, "5", level.(*stockQueries.GetStockLevelResponse).StockLevel.CurrentQuantity.String())

	list, err := e.Mediator.Send(context.Background(), &stockQueries.ListMovementsQuery{MaterialID: id})
	require.NoError(t, err)
	assert.Equal(t, 2, list.(*stockQueries.ListMovementsResponse).Total)
}

func TestIssueAgainstReservation_ConsumesIt(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	id := createMaterial(t, e.Mediator, "Birch ply", "0")
	_, err := record(e.Mediator, id, "RECEIPT", "30")
	require.NoError(t, err)

	resp, err := e.Mediator.Send(ctx, &reservationCommands.ReserveMaterialCommand{
		OrderID: "O1", MaterialID: id, Quantity: helpers.Dec("20"),
	})
	require.NoError(t, err)
	reserved := resp.(*reservationCommands.ReservationResponse)
	assert.Equal(t, "20", reserved.StockLevel.ReservedQuantity.String())
	assert.Equal(t, "10", reserved.StockLevel.AvailableQuantity.String())

	// the uncovered part of an issue must fit in what is not reserved
	_, err = record(e.Mediator, id, "ISSUE", "11")
	var insufficient *stock.ErrInsufficientStock
	require.True(t, errors.As(err, &insufficient))

	issued, err := e.Mediator.Send(ctx, &stockCommands.RecordMovementCommand{
		MaterialID:    id,
		Type:          "ISSUE",
		Quantity:      helpers.Dec("20"),
		OrderID:       "O1",
		ReservationID: reserved.Reservation.ID,
	})
	require.NoError(t, err)
	out := issued.(*stockCommands.RecordMovementResponse)
	require.NotNil(t, out.Reservation)
	assert.Equal(t, "20", out.Reservation.QuantityUsed.String())
	assert.True(t, out.Reservation.Remaining.IsZero())
	assert.Equal(t, "10", out.StockLevel.CurrentQuantity.String())
	assert.True(t, out.StockLevel.ReservedQuantity.IsZero())
	assert.False(t, out.ReservationOverUsed)

	report, err := e.Mediator.Send(ctx, &reservationQueries.GetReservationReportQuery{OrderIDs: []string{"O1"}})
	require.NoError(t, err)
	orders := report.(*reservationQueries.GetReservationReportResponse).Orders
	require.Len(t, orders, 1)
	assert.EqualValues(t, 100, orders[0].EfficiencyPercentage)
	assert.Equal(t, "ON_BUDGET", orders[0].Status)
	assert.Zero(t, orders[0].DiscrepancyCount)
}

func TestIssueBeyondReservation_FlagsOverUse(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	id := createMaterial(t, e.Mediator, "Walnut", "0")
	_, err := record(e.Mediator, id, "RECEIPT", "100")
	require.NoError(t, err)

	resp, err := e.Mediator.Send(ctx, &reservationCommands.ReserveMaterialCommand{
		OrderID: "O1", MaterialID: id, Quantity: helpers.Dec("10"),
	})
	require.NoError(t, err)
	reserved := resp.(*reservationCommands.ReservationResponse)
	assert.Equal(t, "10", reserved.StockLevel.ReservedQuantity.String())

	issued, err := e.Mediator.Send(ctx, &stockCommands.RecordMovementCommand{
		MaterialID:    id,
		Type:          "ISSUE",
		Quantity:      helpers.Dec("15"),
		OrderID:       "O1",
		ReservationID: reserved.Reservation.ID,
	})
	require.NoError(t, err)
	out := issued.(*stockCommands.RecordMovementResponse)
	assert.True(t, out.ReservationOverUsed)
	require.NotNil(t, out.Reservation)
	assert.Equal(t, "15", out.Reservation.QuantityUsed.String())
	assert.True(t, out.Reservation.Remaining.IsZero())
	assert.True(t, out.Reservation.Discrepancy)

	// only the 10 the reservation held comes off reserved
	assert.True(t, out.StockLevel.ReservedQuantity.IsZero(), out.StockLevel.ReservedQuantity.String())
	assert.Equal(t, "85", out.StockLevel.CurrentQuantity.String())
	assert.Equal(t, "85", out.StockLevel.AvailableQuantity.String())
	assert.Equal(t, "-15", out.Movement.Effect.String())
}

func TestReleaseReservation_ReturnsOutstanding(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	id := createMaterial(t, e.Mediator, "Glue", "0")
	_, err := record(e.Mediator, id, "RECEIPT", "10")
	require.NoError(t, err)

	resp, err := e.Mediator.Send(ctx, &reservationCommands.ReserveMaterialCommand{
		OrderID: "O2", MaterialID: id, Quantity: helpers.Dec("8"),
	})
	require.NoError(t, err)
	resID := resp.(*reservationCommands.ReservationResponse).Reservation.ID

	_, err = e.Mediator.Send(ctx, &stockCommands.RecordMovementCommand{
		MaterialID: id, Type: "ISSUE", Quantity: helpers.Dec("3"), ReservationID: resID,
	})
	require.NoError(t, err)

	released, err := e.Mediator.Send(ctx, &reservationCommands.ReleaseReservationCommand{ID: resID})
	require.NoError(t, err)
	out := released.(*reservationCommands.ReservationResponse)
	assert.Equal(t, "5", out.Returned.String())
	assert.Equal(t, "RELEASED", out.Reservation.Status)
	assert.True(t, out.StockLevel.ReservedQuantity.IsZero())
	assert.Equal(t, "7", out.StockLevel.AvailableQuantity.String())

	_, err = e.Mediator.Send(ctx, &reservationCommands.ReleaseReservationCommand{ID: resID})
	assert.Error(t, err)
}

func TestDeliveryReceipts_RejectOverDelivery(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	id := createMaterial(t, e.Mediator, "Steel rod", "0")

	created, err := e.Mediator.Send(ctx, &deliveryCommands.CreateDeliveryCommand{
		MaterialID: id, SupplierID: "ACME", QuantityOrdered: helpers.Dec("100"),
	})
	require.NoError(t, err)
	deliveryID := created.(*deliveryCommands.DeliveryResponse).Delivery.ID

	resp, err := e.Mediator.Send(ctx, &deliveryCommands.RecordDeliveryReceiptCommand{
		DeliveryID: deliveryID, Quantity: helpers.Dec("60"),
	})
	require.NoError(t, err)
	out := resp.(*deliveryCommands.DeliveryResponse)
	assert.Equal(t, string(delivery.StatusPartiallyDelivered), out.Delivery.Status)
	require.NotNil(t, out.Movement)
	assert.Equal(t, "RECEIPT", out.Movement.Type)
	assert.Equal(t, "60", out.Movement.Quantity.String())
	require.NotNil(t, out.StockLevel)
	assert.Equal(t, "60", out.StockLevel.CurrentQuantity.String())

	_, err = e.Mediator.Send(ctx, &deliveryCommands.RecordDeliveryReceiptCommand{
		DeliveryID: deliveryID, Quantity: helpers.Dec("41"),
	})
	var over *delivery.ErrOverDelivery
	require.True(t, errors.As(err, &over))

	level, err := e.Mediator.Send(ctx, &stockQueries.GetStockLevelQuery{MaterialID: id})
	require.NoError(t, err)
	assert.Equal(t, "60", level.(*stockQueries.GetStockLevelResponse).StockLevel.CurrentQuantity.String())
}

// failingMovements refuses every append so the paired write must roll back
type failingMovements struct {
	stock.MovementRepository
}

func (failingMovements) Append(ctx context.Context, m *stock.Movement) error {
	return errors.New("disk full")
}

func TestDeliveryReceipt_RollsBackWhenMovementFails(t *testing.T) {
	db := helpers.NewTestDB(t)
	base, err := helpers.NewTestEngine(db)
	require.NoError(t, err)
	ctx := context.Background()

	id := createMaterial(t, base.Mediator, "Brass hinge", "0")
	created, err := base.Mediator.Send(ctx, &deliveryCommands.CreateDeliveryCommand{
		MaterialID: id, QuantityOrdered: helpers.Dec("10"),
	})
	require.NoError(t, err)
	deliveryID := created.(*deliveryCommands.DeliveryResponse).Delivery.ID

	repos := helpers.NewTestRepositories(db)
	repos.Movements = failingMovements{repos.Movements}
	m, err := newRegistry(repos, base).CreateConfiguredMediator()
	require.NoError(t, err)

	_, err = m.Send(ctx, &deliveryCommands.RecordDeliveryReceiptCommand{
		DeliveryID: deliveryID, Quantity: helpers.Dec("4"),
	})
	var syncErr *delivery.ErrDeliverySync
	require.True(t, errors.As(err, &syncErr))
	assert.Equal(t, deliveryID, syncErr.DeliveryID)

	d, err := repos.Deliveries.FindByID(ctx, deliveryID)
	require.NoError(t, err)
	assert.True(t, d.QuantityDelivered().IsZero())
	assert.Equal(t, delivery.StatusOrdered, d.Status())
}

func TestConcurrentIssues_NeverOversell(t *testing.T) {
	e := newEngine(t)
	id := createMaterial(t, e.Mediator, "Screw 4x30", "0")
	_, err := record(e.Mediator, id, "RECEIPT", "30")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := record(e.Mediator, id, "ISSUE", "1")
			var insufficient *stock.ErrInsufficientStock
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.As(err, &insufficient):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 30, succeeded.Load())
	assert.EqualValues(t, 20, rejected.Load())

	level, err := e.Mediator.Send(context.Background(), &stockQueries.GetStockLevelQuery{MaterialID: id})
	require.NoError(t, err)
	assert.True(t, level.(*stockQueries.GetStockLevelResponse).StockLevel.CurrentQuantity.IsZero())
}

func TestRebuildStockLevel_RepairsDrift(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	id := createMaterial(t, e.Mediator, "Veneer", "0")
	_, err := record(e.Mediator, id, "RECEIPT", "12")
	require.NoError(t, err)
	_, err = record(e.Mediator, id, "WRITE_OFF", "2")
	require.NoError(t, err)

	require.NoError(t, e.DB.Exec("UPDATE stock_levels SET current_quantity = 99 WHERE material_id = ?", id).Error)

	resp, err := e.Mediator.Send(ctx, &stockCommands.RebuildStockLevelCommand{MaterialID: id, Location: "MAIN", DryRun: true})
	require.NoError(t, err)
	dry := resp.(*stockCommands.RebuildStockLevelResponse)
	assert.Equal(t, "10", dry.Replayed.String())
	assert.Equal(t, "-89", dry.Drift.String())
	assert.False(t, dry.Repaired)

	resp, err = e.Mediator.Send(ctx, &stockCommands.RebuildStockLevelCommand{MaterialID: id, Location: "MAIN"})
	require.NoError(t, err)
	assert.True(t, resp.(*stockCommands.RebuildStockLevelResponse).Repaired)

	level, err := e.Mediator.Send(ctx, &stockQueries.GetStockLevelQuery{MaterialID: id, Location: "MAIN"})
	require.NoError(t, err)
	assert.Equal(t, "10", level.(*stockQueries.GetStockLevelResponse).StockLevel.CurrentQuantity.String())
}

func TestDependencies_ArchiveInsteadOfDelete(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	id := createMaterial(t, e.Mediator, "Maple", "0")
	_, err := record(e.Mediator, id, "RECEIPT", "5")
	require.NoError(t, err)
	_, err = e.Mediator.Send(ctx, &reservationCommands.ReserveMaterialCommand{
		OrderID: "O1", MaterialID: id, Quantity: helpers.Dec("2"),
	})
	require.NoError(t, err)
	require.NoError(t, helpers.InsertEstimate(ctx, e.DB, "e1", "EST-1", "approved", id))

	deps, err := e.Mediator.Send(ctx, &dependencyQueries.GetDependenciesQuery{MaterialID: id})
	require.NoError(t, err)
	d := deps.(*dependencyQueries.GetDependenciesResponse)
	assert.False(t, d.CanDelete)
	assert.Len(t, d.ApprovedEstimates, 1)
	assert.Len(t, d.Reservations, 1)
	assert.Len(t, d.RecentMovements, 1)

	_, err = e.Mediator.Send(ctx, &dependencyCommands.DeleteMaterialCommand{MaterialID: id})
	var blocked *dependency.ErrBlockedDeletion
	require.True(t, errors.As(err, &blocked))

	e.Clock.Advance(time.Hour)
	resp, err := e.Mediator.Send(ctx, &dependencyCommands.DeleteMaterialCommand{MaterialID: id, ArchiveInsteadOfDelete: true})
	require.NoError(t, err)
	out := resp.(*dependencyCommands.DeleteMaterialResponse)
	assert.True(t, out.Archived)
	assert.False(t, out.Deleted)

	got, err := e.Mediator.Send(ctx, &catalogQueries.GetMaterialQuery{ID: id})
	require.NoError(t, err)
	material := got.(*catalogQueries.GetMaterialResponse).Material
	assert.False(t, material.IsActive)
	assert.Equal(t, "Maple [ARCHIVED 2024-03-01 10:00:00]", material.Name)

	deps, err = e.Mediator.Send(ctx, &dependencyQueries.GetDependenciesQuery{MaterialID: id})
	require.NoError(t, err)
	assert.Len(t, deps.(*dependencyQueries.GetDependenciesResponse).Reservations, 1)
}

func TestDeleteMaterial_CascadeClearsDependents(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	id := createMaterial(t, e.Mediator, "Cherry", "0")
	_, err := record(e.Mediator, id, "RECEIPT", "5")
	require.NoError(t, err)
	_, err = e.Mediator.Send(ctx, &reservationCommands.ReserveMaterialCommand{
		OrderID: "O1", MaterialID: id, Quantity: helpers.Dec("2"),
	})
	require.NoError(t, err)
	require.NoError(t, helpers.InsertEstimate(ctx, e.DB, "e1", "EST-1", "approved", id))
	require.NoError(t, helpers.InsertEstimate(ctx, e.DB, "e2", "EST-2", "draft", id))

	resp, err := e.Mediator.Send(ctx, &dependencyCommands.DeleteMaterialCommand{
		MaterialID:              id,
		CancelEstimates:         true,
		RemoveEstimateLineItems: true,
		ClearReservations:       true,
	})
	require.NoError(t, err)
	out := resp.(*dependencyCommands.DeleteMaterialResponse)
	assert.True(t, out.Deleted)
	assert.NoError(t, out.PartialFailure)
	require.Len(t, out.Steps, 4)
	assert.Equal(t, "cancel_estimates", out.Steps[0].Step)
	assert.Equal(t, 1, out.Steps[0].Affected)
	// the cancelled estimate's line item is no longer approved and goes too
	assert.Equal(t, 2, out.Steps[1].Affected)
	assert.Equal(t, 1, out.Steps[2].Affected)

	_, err = e.Mediator.Send(ctx, &catalogQueries.GetMaterialQuery{ID: id})
	var notFound *catalog.ErrMaterialNotFound
	assert.True(t, errors.As(err, &notFound))

	// movements stay as history
	list, err := e.Mediator.Send(ctx, &stockQueries.ListMovementsQuery{MaterialID: id})
	require.NoError(t, err)
	assert.Equal(t, 1, list.(*stockQueries.ListMovementsResponse).Total)
}

// lossyEstimates applies line item deletions but reports a failure, as when
// the acknowledgement of a committed write is lost
type lossyEstimates struct {
	dependency.EstimateRepository
}

func (l lossyEstimates) DeleteLineItem(ctx context.Context, lineItemID string) error {
	if err := l.EstimateRepository.DeleteLineItem(ctx, lineItemID); err != nil {
		return err
	}
	return errors.New("acknowledgement lost")
}

// brokenEstimates cannot cancel anything
type brokenEstimates struct {
	dependency.EstimateRepository
}

func (brokenEstimates) CancelEstimate(ctx context.Context, estimateID string) error {
	return errors.New("estimates table locked")
}

func TestDeleteMaterial_PartialFailureIsReported(t *testing.T) {
	db := helpers.NewTestDB(t)
	base, err := helpers.NewTestEngine(db)
	require.NoError(t, err)
	ctx := context.Background()

	id := createMaterial(t, base.Mediator, "Ash", "0")
	require.NoError(t, helpers.InsertEstimate(ctx, db, "e1", "EST-1", "sent", id))

	repos := helpers.NewTestRepositories(db)
	repos.Estimates = lossyEstimates{repos.Estimates}
	m, err := newRegistry(repos, base).CreateConfiguredMediator()
	require.NoError(t, err)

	resp, err := m.Send(ctx, &dependencyCommands.DeleteMaterialCommand{MaterialID: id, RemoveEstimateLineItems: true})
	require.NoError(t, err)
	out := resp.(*dependencyCommands.DeleteMaterialResponse)
	assert.True(t, out.Deleted)

	var partial *dependency.ErrPartialCascadeFailure
	require.True(t, errors.As(out.PartialFailure, &partial))
	require.Len(t, partial.Failed, 1)
	assert.Equal(t, dependency.StepRemoveEstimateLineItems, partial.Failed[0].Step)
	assert.Equal(t, 1, out.Steps[0].Failures)
}

func TestDeleteMaterial_FailedCleanupKeepsMaterial(t *testing.T) {
	db := helpers.NewTestDB(t)
	base, err := helpers.NewTestEngine(db)
	require.NoError(t, err)
	ctx := context.Background()

	id := createMaterial(t, base.Mediator, "Elm", "0")
	require.NoError(t, helpers.InsertEstimate(ctx, db, "e1", "EST-1", "approved", id))

	repos := helpers.NewTestRepositories(db)
	repos.Estimates = brokenEstimates{repos.Estimates}
	m, err := newRegistry(repos, base).CreateConfiguredMediator()
	require.NoError(t, err)

	_, err = m.Send(ctx, &dependencyCommands.DeleteMaterialCommand{MaterialID: id, CancelEstimates: true})
	var blocked *dependency.ErrBlockedDeletion
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, 1, blocked.EstimateRefs)

	_, err = base.Mediator.Send(ctx, &catalogQueries.GetMaterialQuery{ID: id})
	assert.NoError(t, err)
}

func TestStockSummary_CountsLowStock(t *testing.T) {
	e := newEngine(t)
	low := createMaterial(t, e.Mediator, "Dowel", "10")
	ok := createMaterial(t, e.Mediator, "Plank", "1")
	_, err := record(e.Mediator, low, "RECEIPT", "3")
	require.NoError(t, err)
	_, err = record(e.Mediator, ok, "RECEIPT", "20")
	require.NoError(t, err)

	resp, err := e.Mediator.Send(context.Background(), &stockQueries.GetStockSummaryQuery{})
	require.NoError(t, err)
	summary := resp.(*stockQueries.GetStockSummaryResponse)
	assert.Equal(t, 2, summary.TotalMaterials)
	assert.Equal(t, 2, summary.StockLevels)
	assert.Equal(t, []string{low}, summary.LowStockMaterials)
	assert.Equal(t, 1, summary.ByStatus["LOW_STOCK"])
	assert.True(t, summary.TotalStockValue.Equal(decimal.Zero))
}

// orderedLevels records the order in which stock level rows are locked
type orderedLevels struct {
	stock.StockLevelRepository
	mu     *sync.Mutex
	locked *[]string
}

func (l orderedLevels) GetForUpdate(ctx context.Context, materialID, location string) (*stock.StockLevel, error) {
	l.mu.Lock()
	*l.locked = append(*l.locked, location)
	l.mu.Unlock()
	return l.StockLevelRepository.GetForUpdate(ctx, materialID, location)
}

func TestTransfer_LocksRowsInLocationOrder(t *testing.T) {
	db := helpers.NewTestDB(t)
	base, err := helpers.NewTestEngine(db)
	require.NoError(t, err)
	ctx := context.Background()

	id := createMaterial(t, base.Mediator, "Teak", "0")
	_, err = base.Mediator.Send(ctx, &stockCommands.RecordMovementCommand{
		MaterialID: id, Type: "RECEIPT", Location: "SHOP", Quantity: helpers.Dec("12"),
	})
	require.NoError(t, err)

	var locked []string
	repos := helpers.NewTestRepositories(db)
	repos.StockLevels = orderedLevels{StockLevelRepository: repos.StockLevels, mu: &sync.Mutex{}, locked: &locked}
	m, err := newRegistry(repos, base).CreateConfiguredMediator()
	require.NoError(t, err)

	resp, err := m.Send(ctx, &stockCommands.RecordMovementCommand{
		MaterialID: id, Type: "TRANSFER", Location: "SHOP", DestinationLocation: "ANNEX", Quantity: helpers.Dec("5"),
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(locked), 2)
	assert.Equal(t, []string{"ANNEX", "SHOP"}, locked[:2])

	out := resp.(*stockCommands.RecordMovementResponse)
	assert.Equal(t, "SHOP", out.StockLevel.Location)
	assert.Equal(t, "7", out.StockLevel.CurrentQuantity.String())
	require.NotNil(t, out.DestinationLevel)
	assert.Equal(t, "ANNEX", out.DestinationLevel.Location)
	assert.Equal(t, "5", out.DestinationLevel.CurrentQuantity.String())
}

func TestOppositeTransfers_DoNotDeadlock(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	id := createMaterial(t, e.Mediator, "Beech", "0")
	for _, loc := range []string{"ANNEX", "SHOP"} {
		_, err := e.Mediator.Send(ctx, &stockCommands.RecordMovementCommand{
			MaterialID: id, Type: "RECEIPT", Location: loc, Quantity: helpers.Dec("50"),
		})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		from, to := "SHOP", "ANNEX"
		if i%2 == 1 {
			from, to = to, from
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Mediator.Send(ctx, &stockCommands.RecordMovementCommand{
				MaterialID: id, Type: "TRANSFER", Location: from, DestinationLocation: to, Quantity: helpers.Dec("1"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	for _, loc := range []string{"ANNEX", "SHOP"} {
		level, err := e.Mediator.Send(ctx, &stockQueries.GetStockLevelQuery{MaterialID: id, Location: loc})
		require.NoError(t, err)
		assert.Equal(t, "50", level.(*stockQueries.GetStockLevelResponse).StockLevel.CurrentQuantity.String())
	}
}

func TestDeleteMaterial_AbortedDeleteKeepsStepReport(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	id := createMaterial(t, e.Mediator, "Alder", "0")
	_, err := record(e.Mediator, id, "RECEIPT", "10")
	require.NoError(t, err)
	_, err = e.Mediator.Send(ctx, &reservationCommands.ReserveMaterialCommand{
		OrderID: "O1", MaterialID: id, Quantity: helpers.Dec("10"),
	})
	require.NoError(t, err)
	require.NoError(t, helpers.InsertEstimate(ctx, e.DB, "e1", "EST-1", "approved", id))

	resp, err := e.Mediator.Send(ctx, &dependencyCommands.DeleteMaterialCommand{MaterialID: id, ClearReservations: true})
	require.Error(t, err)

	var aborted *dependency.ErrCascadeAborted
	require.True(t, errors.As(err, &aborted))
	var blocked *dependency.ErrBlockedDeletion
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, 1, blocked.EstimateRefs)
	assert.Equal(t, 0, blocked.ReservationRef)
	assert.Contains(t, err.Error(), "clear_reservations")

	require.NotNil(t, resp)
	out := resp.(*dependencyCommands.DeleteMaterialResponse)
	assert.False(t, out.Deleted)
	assert.False(t, out.Archived)
	require.Len(t, out.Steps, 2)
	assert.Equal(t, "clear_reservations", out.Steps[0].Step)
	assert.Equal(t, 1, out.Steps[0].Affected)
	assert.Empty(t, out.Steps[0].Error)
	assert.Equal(t, "delete_material", out.Steps[1].Step)
	assert.Zero(t, out.Steps[1].Affected)
	assert.Contains(t, out.Steps[1].Error, "cannot be deleted")

	// the cleared reservation stays cleared and its quantity is back in available
	deps, err := e.Mediator.Send(ctx, &dependencyQueries.GetDependenciesQuery{MaterialID: id})
	require.NoError(t, err)
	d := deps.(*dependencyQueries.GetDependenciesResponse)
	assert.Empty(t, d.Reservations)
	assert.Len(t, d.ApprovedEstimates, 1)

	level, err := e.Mediator.Send(ctx, &stockQueries.GetStockLevelQuery{MaterialID: id})
	require.NoError(t, err)
	assert.Equal(t, "10", level.(*stockQueries.GetStockLevelResponse).StockLevel.AvailableQuantity.String())
}

func TestListQueries_RejectNegativePaging(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	createMaterial(t, e.Mediator, "Spruce", "5")

	for _, query := range []mediator.Request{
		&catalogQueries.ListMaterialsQuery{LowStockOnly: true, Offset: -1},
		&catalogQueries.ListMaterialsQuery{Limit: -1},
		&stockQueries.ListMovementsQuery{Offset: -3},
		&deliveryQueries.ListDeliveriesQuery{OverdueOnly: true, Offset: -1},
	} {
		var resp mediator.Response
		var err error
		require.NotPanics(t, func() { resp, err = e.Mediator.Send(ctx, query) })
		assert.Nil(t, resp)
		var validationErr *shared.ValidationError
		require.True(t, errors.As(err, &validationErr), "%T: %v", query, err)
		assert.Contains(t, []string{"Offset", "Limit"}, validationErr.Field)
	}

	resp, err := e.Mediator.Send(ctx, &catalogQueries.ListMaterialsQuery{LowStockOnly: true, Offset: 1})
	require.NoError(t, err)
	list := resp.(*catalogQueries.ListMaterialsResponse)
	assert.Equal(t, 1, list.Total)
	assert.Empty(t, list.Materials)
}
