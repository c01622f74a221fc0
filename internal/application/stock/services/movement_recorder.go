package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// RecordResult describes what a recorded movement changed
type RecordResult struct {
	Movement    *stock.Movement
	Source      *stock.StockLevel
	Destination *stock.StockLevel
	Reservation *reservation.Reservation

	// ReservationOverUsed is the soft discrepancy raised when an issue consumes
	// more than its reservation still held
	ReservationOverUsed bool

	// OverAllocated is set when the source ends with reserved above current,
	// which only an inventory count can cause
	OverAllocated bool
}

// MovementRecorder validates a movement against the locked ledger rows, appends
// it to the log and applies its effect. It is the only writer of current
// quantity.
//
// Record must run inside a unit of work and with LockKeys held, so that the
// availability it reads is the one it acts on.
type MovementRecorder struct {
	materials    catalog.MaterialRepository
	levels       stock.StockLevelRepository
	movements    stock.MovementRepository
	reservations reservation.ReservationRepository
	clock        shared.Clock
}

// NewMovementRecorder creates a new MovementRecorder
func NewMovementRecorder(
	materials catalog.MaterialRepository,
	levels stock.StockLevelRepository,
	movements stock.MovementRepository,
	reservations reservation.ReservationRepository,
	clock shared.Clock,
) *MovementRecorder {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &MovementRecorder{
		materials:    materials,
		levels:       levels,
		movements:    movements,
		reservations: reservations,
		clock:        clock,
	}
}

// LockKeys returns the keys a movement must hold while it is recorded
func LockKeys(in stock.MovementInput) []string {
	keys := []string{shared.StockKey(in.MaterialID, in.Location)}
	if in.DestinationLocation != "" {
		keys = append(keys, shared.StockKey(in.MaterialID, in.DestinationLocation))
	}
	if in.ReservationID != "" {
		keys = append(keys, shared.ReservationKey(in.ReservationID))
	}
	if in.DeliveryID != "" {
		keys = append(keys, shared.DeliveryKey(in.DeliveryID))
	}
	return keys
}

// Normalize fills defaults the caller may omit
func (r *MovementRecorder) Normalize(in stock.MovementInput) stock.MovementInput {
	in.Location = shared.NormalizeLocation(in.Location)
	if in.OccurredAt.IsZero() {
		in.OccurredAt = r.clock.Now()
	}
	return in
}

// Record applies one movement
func (r *MovementRecorder) Record(ctx context.Context, in stock.MovementInput) (*RecordResult, error) {
	logger := common.LoggerFromContext(ctx)
	in = r.Normalize(in)

	if err := in.Validate(); err != nil {
		return nil, err
	}

	material, err := r.loadMaterial(ctx, in)
	if err != nil {
		return nil, err
	}

	source, destination, err := r.lockLevels(ctx, in)
	if err != nil {
		return nil, err
	}

	var res *reservation.Reservation
	if in.ReservationID != "" {
		res, err = r.loadReservation(ctx, in)
		if err != nil {
			return nil, err
		}
	}

	// outbound quantity not covered by the referenced reservation must fit in available
	if in.Type.IsOutbound() || in.Type == stock.MovementTypeTransfer {
		covered := decimal.Zero
		if res != nil {
			covered = shared.MinDecimal(in.Quantity, res.Outstanding())
		}
		uncovered := in.Quantity.Sub(covered)
		if uncovered.GreaterThan(source.Available()) {
			return nil, &stock.ErrInsufficientStock{
				MaterialID: in.MaterialID,
				Location:   in.Location,
				Available:  source.Available(),
				Requested:  in.Quantity,
			}
		}
	}

	onHandBefore := decimal.Zero
	if in.Type == stock.MovementTypeReceipt && in.UnitCost != nil {
		onHandBefore, err = r.onHand(ctx, in.MaterialID)
		if err != nil {
			return nil, err
		}
	}

	effect := in.Effect(source.CurrentQuantity())
	result := &RecordResult{Source: source, Destination: destination, Reservation: res}

	if res != nil {
		usage, err := res.RecordUsage(in.Quantity, in.OccurredAt)
		if err != nil {
			return nil, err
		}
		if err := source.ApplyReservationDelta(usage.Covered.Neg(), in.OccurredAt); err != nil {
			return nil, err
		}
		if err := r.reservations.Save(ctx, res); err != nil {
			return nil, fmt.Errorf("failed to save reservation usage: %w", err)
		}
		result.ReservationOverUsed = usage.OverUsed
		if usage.OverUsed {
			logger.Warn("reservation over-used",
				"reservation_id", res.ID(),
				"order_id", res.OrderID(),
				"reserved", res.QuantityReserved().String(),
				"used", res.QuantityUsed().String())
		}
	}

	if err := source.ApplyMovementEffect(effect, in.OccurredAt); err != nil {
		return nil, err
	}
	if destination != nil {
		if err := destination.ApplyMovementEffect(in.Quantity, in.OccurredAt); err != nil {
			return nil, err
		}
	}

	movement, err := stock.NewMovement(in, effect)
	if err != nil {
		return nil, err
	}
	if err := r.movements.Append(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to append movement: %w", err)
	}

	if err := r.levels.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to save stock level: %w", err)
	}
	if destination != nil {
		if err := r.levels.Save(ctx, destination); err != nil {
			return nil, fmt.Errorf("failed to save destination stock level: %w", err)
		}
	}

	if in.Type == stock.MovementTypeReceipt && in.UnitCost != nil {
		material.RecordReceiptCost(onHandBefore, in.Quantity, *in.UnitCost, in.OccurredAt)
		if err := r.materials.Save(ctx, material); err != nil {
			return nil, fmt.Errorf("failed to update material cost: %w", err)
		}
	}

	result.Movement = movement
	result.OverAllocated = source.IsOverAllocated()
	if result.OverAllocated {
		logger.Warn("stock level over-allocated",
			"material_id", in.MaterialID,
			"location", in.Location,
			"current", source.CurrentQuantity().String(),
			"reserved", source.ReservedQuantity().String())
	}

	logger.Debug("movement recorded",
		"movement_id", movement.ID(),
		"type", in.Type.String(),
		"material_id", in.MaterialID,
		"location", in.Location,
		"effect", effect.String())

	return result, nil
}

// lockLevels takes the row locks of a movement. A transfer locks its two rows
// in location order so opposite transfers cannot deadlock on each other.
func (r *MovementRecorder) lockLevels(ctx context.Context, in stock.MovementInput) (*stock.StockLevel, *stock.StockLevel, error) {
	if in.Type != stock.MovementTypeTransfer {
		source, err := r.levels.GetForUpdate(ctx, in.MaterialID, in.Location)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to lock stock level: %w", err)
		}
		return source, nil, nil
	}

	locations := []string{in.Location, in.DestinationLocation}
	sort.Strings(locations)
	locked := make(map[string]*stock.StockLevel, 2)
	for _, loc := range locations {
		level, err := r.levels.GetForUpdate(ctx, in.MaterialID, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to lock stock level at %s: %w", loc, err)
		}
		locked[loc] = level
	}
	return locked[in.Location], locked[in.DestinationLocation], nil
}

func (r *MovementRecorder) loadMaterial(ctx context.Context, in stock.MovementInput) (*catalog.Material, error) {
	if in.Type == stock.MovementTypeReceipt && in.UnitCost != nil {
		return r.materials.FindByIDForUpdate(ctx, in.MaterialID)
	}
	return r.materials.FindByID(ctx, in.MaterialID)
}

func (r *MovementRecorder) loadReservation(ctx context.Context, in stock.MovementInput) (*reservation.Reservation, error) {
	res, err := r.reservations.FindByIDForUpdate(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	if res.MaterialID() != in.MaterialID {
		return nil, &reservation.ErrReservationMismatch{
			ReservationID: res.ID(), Field: "material_id", Expected: res.MaterialID(), Actual: in.MaterialID,
		}
	}
	if res.Location() != in.Location {
		return nil, &reservation.ErrReservationMismatch{
			ReservationID: res.ID(), Field: "location", Expected: res.Location(), Actual: in.Location,
		}
	}
	if !res.IsActive() {
		return nil, &reservation.ErrReservationReleased{ID: res.ID()}
	}
	return res, nil
}

func (r *MovementRecorder) onHand(ctx context.Context, materialID string) (decimal.Decimal, error) {
	levels, err := r.levels.ListByMaterial(ctx, materialID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum stock on hand: %w", err)
	}
	total := decimal.Zero
	for _, l := range levels {
		total = total.Add(l.CurrentQuantity())
	}
	return total, nil
}

// Now exposes the recorder's clock to callers sharing it
func (r *MovementRecorder) Now() time.Time {
	return r.clock.Now()
}
