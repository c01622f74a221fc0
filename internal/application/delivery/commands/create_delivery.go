package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// CreateDeliveryCommand registers an expected supplier delivery and marks the
// target ledger row as on order
type CreateDeliveryCommand struct {
	MaterialID           string           `json:"material_id" validate:"required"`
	Location             string           `json:"location"`
	SupplierID           string           `json:"supplier_id"`
	OrderID              string           `json:"order_id"`
	QuantityOrdered      decimal.Decimal  `json:"quantity_ordered" validate:"gt=0"`
	UnitPrice            *decimal.Decimal `json:"unit_price"`
	OrderDate            *time.Time       `json:"order_date"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date"`
	TrackingNumber       string           `json:"tracking_number"`
	Notes                string           `json:"notes"`
}

// DeliveryResponse is returned by delivery commands
type DeliveryResponse struct {
	Delivery   dtos.DeliveryDTO    `json:"delivery"`
	StockLevel *dtos.StockLevelDTO `json:"stock_level,omitempty"`
	Movement   *dtos.MovementDTO   `json:"movement,omitempty"`
}

// CreateDeliveryHandler handles the CreateDelivery command
type CreateDeliveryHandler struct {
	materials  catalog.MaterialRepository
	levels     stock.StockLevelRepository
	deliveries delivery.DeliveryRepository
	locker     shared.KeyLocker
	uow        shared.UnitOfWork
	clock      shared.Clock
}

// NewCreateDeliveryHandler creates a new CreateDeliveryHandler
func NewCreateDeliveryHandler(
	materials catalog.MaterialRepository,
	levels stock.StockLevelRepository,
	deliveries delivery.DeliveryRepository,
	locker shared.KeyLocker,
	uow shared.UnitOfWork,
	clock shared.Clock,
) *CreateDeliveryHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CreateDeliveryHandler{
		materials:  materials,
		levels:     levels,
		deliveries: deliveries,
		locker:     locker,
		uow:        uow,
		clock:      clock,
	}
}

// Handle executes the CreateDelivery command
func (h *CreateDeliveryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CreateDeliveryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CreateDeliveryCommand")
	}
	if err := common.ValidateRequest(cmd); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	spec := delivery.Spec{
		MaterialID:           cmd.MaterialID,
		Location:             cmd.Location,
		SupplierID:           cmd.SupplierID,
		OrderID:              cmd.OrderID,
		QuantityOrdered:      cmd.QuantityOrdered,
		UnitPrice:            cmd.UnitPrice,
		ExpectedDeliveryDate: cmd.ExpectedDeliveryDate,
		TrackingNumber:       cmd.TrackingNumber,
		Notes:                cmd.Notes,
	}
	if cmd.OrderDate != nil {
		spec.OrderDate = *cmd.OrderDate
	}
	del, err := delivery.NewDelivery(spec, now)
	if err != nil {
		return nil, err
	}

	unlock, err := h.locker.Lock(ctx, shared.StockKey(del.MaterialID(), del.Location()))
	if err != nil {
		return nil, err
	}
	defer unlock()

	resp := &DeliveryResponse{}
	err = h.uow.Do(ctx, func(ctx context.Context) error {
		material, err := h.materials.FindByID(ctx, del.MaterialID())
		if err != nil {
			return err
		}
		if err := h.deliveries.Create(ctx, del); err != nil {
			return fmt.Errorf("failed to persist delivery: %w", err)
		}
		level, err := refreshOnOrder(ctx, h.levels, h.deliveries, del.MaterialID(), del.Location(), now)
		if err != nil {
			return err
		}
		dto := dtos.ToStockLevelDTO(level, material.MinStockLevel())
		resp.StockLevel = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Info("delivery created",
		"delivery_id", del.ID(),
		"material_id", del.MaterialID(),
		"quantity_ordered", del.QuantityOrdered().String())

	resp.Delivery = dtos.ToDeliveryDTO(del, now)
	return resp, nil
}
