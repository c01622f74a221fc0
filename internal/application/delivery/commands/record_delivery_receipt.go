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
	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// RecordDeliveryReceiptCommand books a delivered increment. The delivery update
// and its RECEIPT movement commit together or not at all.
type RecordDeliveryReceiptCommand struct {
	DeliveryID        string          `json:"-" validate:"required"`
	Quantity          decimal.Decimal `json:"quantity" validate:"gt=0"`
	ReceivedAt        *time.Time      `json:"received_at"`
	AcceptOverReceipt bool            `json:"accept_over_receipt"`
	Actor             string          `json:"actor"`
	Notes             string          `json:"notes"`
}

// RecordDeliveryReceiptHandler handles the RecordDeliveryReceipt command
type RecordDeliveryReceiptHandler struct {
	recorder   *services.MovementRecorder
	materials  catalog.MaterialRepository
	levels     stock.StockLevelRepository
	deliveries delivery.DeliveryRepository
	locker     shared.KeyLocker
	uow        shared.UnitOfWork
	clock      shared.Clock
}

// NewRecordDeliveryReceiptHandler creates a new RecordDeliveryReceiptHandler
func NewRecordDeliveryReceiptHandler(
	recorder *services.MovementRecorder,
	materials catalog.MaterialRepository,
	levels stock.StockLevelRepository,
	deliveries delivery.DeliveryRepository,
	locker shared.KeyLocker,
	uow shared.UnitOfWork,
	clock shared.Clock,
) *RecordDeliveryReceiptHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RecordDeliveryReceiptHandler{
		recorder:   recorder,
		materials:  materials,
		levels:     levels,
		deliveries: deliveries,
		locker:     locker,
		uow:        uow,
		clock:      clock,
	}
}

// Handle executes the RecordDeliveryReceipt command
func (h *RecordDeliveryReceiptHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RecordDeliveryReceiptCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecordDeliveryReceiptCommand")
	}
	if err := common.ValidateRequest(cmd); err != nil {
		return nil, err
	}

	current, err := h.deliveries.FindByID(ctx, cmd.DeliveryID)
	if err != nil {
		return nil, err
	}

	receivedAt := h.clock.Now()
	if cmd.ReceivedAt != nil {
		receivedAt = *cmd.ReceivedAt
	}

	in := stock.MovementInput{
		MaterialID: current.MaterialID(),
		Type:       stock.MovementTypeReceipt,
		Location:   current.Location(),
		Quantity:   cmd.Quantity,
		UnitCost:   current.UnitPrice(),
		SupplierID: current.SupplierID(),
		OrderID:    current.OrderID(),
		DeliveryID: current.ID(),
		Reference:  current.TrackingNumber(),
		Notes:      cmd.Notes,
		Actor:      cmd.Actor,
		OccurredAt: receivedAt,
	}

	unlock, err := h.locker.Lock(ctx, services.LockKeys(in)...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		del    *delivery.Delivery
		result *services.RecordResult
		level  *stock.StockLevel
	)
	err = h.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		del, err = h.deliveries.FindByIDForUpdate(ctx, cmd.DeliveryID)
		if err != nil {
			return err
		}
		if err := del.RecordReceipt(cmd.Quantity, receivedAt, cmd.AcceptOverReceipt); err != nil {
			return err
		}
		if err := h.deliveries.Save(ctx, del); err != nil {
			return &delivery.ErrDeliverySync{DeliveryID: del.ID(), Err: err}
		}

		result, err = h.recorder.Record(ctx, in)
		if err != nil {
			return syncError(del.ID(), err)
		}

		level, err = refreshOnOrder(ctx, h.levels, h.deliveries, del.MaterialID(), del.Location(), receivedAt)
		if err != nil {
			return &delivery.ErrDeliverySync{DeliveryID: del.ID(), Err: err}
		}
		return nil
	})
	if err != nil {
		var sync *delivery.ErrDeliverySync
		if errors.As(err, &sync) {
			common.LoggerFromContext(ctx).Error("delivery receipt rolled back",
				"delivery_id", cmd.DeliveryID,
				"error", sync.Err.Error())
		}
		return nil, err
	}

	metrics.RecordDeliveryReceipt(cmd.Quantity.InexactFloat64(), del.OverReceived())
	metrics.RecordMovement(stock.MovementTypeReceipt.String(), del.Location(), cmd.Quantity.InexactFloat64())
	common.LoggerFromContext(ctx).Info("delivery receipt recorded",
		"delivery_id", del.ID(),
		"quantity", cmd.Quantity.String(),
		"status", del.Status().String(),
		"over_received", del.OverReceived())

	material, err := h.materials.FindByID(ctx, del.MaterialID())
	if err != nil {
		return nil, fmt.Errorf("failed to reload material: %w", err)
	}
	levelDTO := dtos.ToStockLevelDTO(level, material.MinStockLevel())
	movementDTO := dtos.ToMovementDTO(result.Movement)
	return &DeliveryResponse{
		Delivery:   dtos.ToDeliveryDTO(del, receivedAt),
		StockLevel: &levelDTO,
		Movement:   &movementDTO,
	}, nil
}

// syncError keeps rule violations visible to the caller and reports every
// other failure of the paired write as a sync error
func syncError(deliveryID string, err error) error {
	var (
		validation *shared.ValidationError
		invalid    *stock.ErrInvalidMovement
		notFound   *catalog.ErrMaterialNotFound
	)
	if errors.As(err, &validation) || errors.As(err, &invalid) || errors.As(err, &notFound) {
		return err
	}
	return &delivery.ErrDeliverySync{DeliveryID: deliveryID, Err: err}
}
