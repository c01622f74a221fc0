package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// UpdateDeliveryStatusCommand performs a manual transition. Only IN_TRANSIT and
// CANCELLED can be set directly; delivered states follow from receipts.
type UpdateDeliveryStatusCommand struct {
	ID     string `json:"-" validate:"required"`
	Status string `json:"status" validate:"required,oneof=IN_TRANSIT CANCELLED"`
}

// UpdateDeliveryStatusHandler handles the UpdateDeliveryStatus command
type UpdateDeliveryStatusHandler struct {
	levels     stock.StockLevelRepository
	deliveries delivery.DeliveryRepository
	locker     shared.KeyLocker
	uow        shared.UnitOfWork
	clock      shared.Clock
}

// NewUpdateDeliveryStatusHandler creates a new UpdateDeliveryStatusHandler
func NewUpdateDeliveryStatusHandler(
	levels stock.StockLevelRepository,
	deliveries delivery.DeliveryRepository,
	locker shared.KeyLocker,
	uow shared.UnitOfWork,
	clock shared.Clock,
) *UpdateDeliveryStatusHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &UpdateDeliveryStatusHandler{
		levels:     levels,
		deliveries: deliveries,
		locker:     locker,
		uow:        uow,
		clock:      clock,
	}
}

// Handle executes the UpdateDeliveryStatus command
func (h *UpdateDeliveryStatusHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*UpdateDeliveryStatusCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpdateDeliveryStatusCommand")
	}
	if err := common.ValidateRequest(cmd); err != nil {
		return nil, err
	}
	next, err := delivery.ParseStatus(cmd.Status)
	if err != nil {
		return nil, shared.NewValidationError("status", err.Error())
	}

	current, err := h.deliveries.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	unlock, err := h.locker.Lock(ctx,
		shared.DeliveryKey(current.ID()),
		shared.StockKey(current.MaterialID(), current.Location()))
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := h.clock.Now()
	var del *delivery.Delivery
	err = h.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		del, err = h.deliveries.FindByIDForUpdate(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if err := del.TransitionTo(next, now); err != nil {
			return err
		}
		if err := h.deliveries.Save(ctx, del); err != nil {
			return fmt.Errorf("failed to save delivery: %w", err)
		}
		_, err = refreshOnOrder(ctx, h.levels, h.deliveries, del.MaterialID(), del.Location(), now)
		return err
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Info("delivery status changed",
		"delivery_id", del.ID(),
		"status", del.Status().String())
	return &DeliveryResponse{Delivery: dtos.ToDeliveryDTO(del, now)}, nil
}
