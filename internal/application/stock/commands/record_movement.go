package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/adapters/metrics"
	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/application/stock/services"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// RecordMovementCommand appends a movement to the log and applies its effect.
// For INVENTORY_COUNT, Quantity is the counted absolute value.
type RecordMovementCommand struct {
	MaterialID          string           `json:"material_id" validate:"required"`
	Type                string           `json:"type" validate:"required"`
	Location            string           `json:"location"`
	DestinationLocation string           `json:"destination_location"`
	Quantity            decimal.Decimal  `json:"quantity" validate:"gte=0"`
	UnitCost            *decimal.Decimal `json:"unit_cost"`
	SupplierID          string           `json:"supplier_id"`
	OrderID             string           `json:"order_id"`
	ReservationID       string           `json:"reservation_id"`
	Reference           string           `json:"reference"`
	Notes               string           `json:"notes"`
	Actor               string           `json:"actor"`
	OccurredAt          *time.Time       `json:"occurred_at"`
}

// RecordMovementResponse carries the appended movement and the resulting ledger rows
type RecordMovementResponse struct {
	Movement            dtos.MovementDTO     `json:"movement"`
	StockLevel          dtos.StockLevelDTO   `json:"stock_level"`
	DestinationLevel    *dtos.StockLevelDTO  `json:"destination_level,omitempty"`
	Reservation         *dtos.ReservationDTO `json:"reservation,omitempty"`
	ReservationOverUsed bool                 `json:"reservation_over_used"`
	OverAllocated       bool                 `json:"over_allocated"`
}

// RecordMovementHandler handles the RecordMovement command
type RecordMovementHandler struct {
	recorder  *services.MovementRecorder
	materials catalog.MaterialRepository
	locker    shared.KeyLocker
	uow       shared.UnitOfWork
}

// NewRecordMovementHandler creates a new RecordMovementHandler
func NewRecordMovementHandler(
	recorder *services.MovementRecorder,
	materials catalog.MaterialRepository,
	locker shared.KeyLocker,
	uow shared.UnitOfWork,
) *RecordMovementHandler {
	return &RecordMovementHandler{
		recorder:  recorder,
		materials: materials,
		locker:    locker,
		uow:       uow,
	}
}

// Handle executes the RecordMovement command
func (h *RecordMovementHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RecordMovementCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecordMovementCommand")
	}
	if err := common.ValidateRequest(cmd); err != nil {
		return nil, err
	}

	movementType, err := stock.ParseMovementType(cmd.Type)
	if err != nil {
		return nil, &stock.ErrInvalidMovement{Field: "type", Reason: err.Error()}
	}

	in := stock.MovementInput{
		MaterialID:          cmd.MaterialID,
		Type:                movementType,
		Location:            cmd.Location,
		DestinationLocation: cmd.DestinationLocation,
		Quantity:            cmd.Quantity,
		UnitCost:            cmd.UnitCost,
		SupplierID:          cmd.SupplierID,
		OrderID:             cmd.OrderID,
		ReservationID:       cmd.ReservationID,
		Reference:           cmd.Reference,
		Notes:               cmd.Notes,
		Actor:               cmd.Actor,
	}
	if cmd.OccurredAt != nil {
		in.OccurredAt = *cmd.OccurredAt
	}
	in = h.recorder.Normalize(in)

	unlock, err := h.locker.Lock(ctx, services.LockKeys(in)...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *services.RecordResult
	err = h.uow.Do(ctx, func(ctx context.Context) error {
		var recordErr error
		result, recordErr = h.recorder.Record(ctx, in)
		return recordErr
	})
	if err != nil {
		var insufficient *stock.ErrInsufficientStock
		if errors.As(err, &insufficient) {
			metrics.RecordInsufficientStock(movementType.String())
			common.LoggerFromContext(ctx).Info("movement rejected: insufficient stock",
				"material_id", in.MaterialID,
				"location", in.Location,
				"available", insufficient.Available.String(),
				"requested", insufficient.Requested.String())
		}
		return nil, err
	}

	metrics.RecordMovement(movementType.String(), in.Location, in.Quantity.InexactFloat64())
	if result.Reservation != nil {
		metrics.RecordReservation("use", in.Quantity.InexactFloat64())
	}

	material, err := h.materials.FindByID(ctx, in.MaterialID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload material: %w", err)
	}

	resp := &RecordMovementResponse{
		Movement:            dtos.ToMovementDTO(result.Movement),
		StockLevel:          dtos.ToStockLevelDTO(result.Source, material.MinStockLevel()),
		ReservationOverUsed: result.ReservationOverUsed,
		OverAllocated:       result.OverAllocated,
	}
	if result.Destination != nil {
		dst := dtos.ToStockLevelDTO(result.Destination, material.MinStockLevel())
		resp.DestinationLevel = &dst
	}
	if result.Reservation != nil {
		r := dtos.ToReservationDTO(result.Reservation)
		resp.Reservation = &r
	}
	return resp, nil
}
