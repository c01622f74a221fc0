package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/adapters/metrics"
	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// ReserveMaterialCommand earmarks available stock for an order. A request
// larger than the available quantity is rejected, so reserved never exceeds
// current.
type ReserveMaterialCommand struct {
	OrderID    string          `json:"order_id" validate:"required"`
	MaterialID string          `json:"material_id" validate:"required"`
	Location   string          `json:"location"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// ReservationResponse is returned by reservation commands
type ReservationResponse struct {
	Reservation dtos.ReservationDTO `json:"reservation"`
	StockLevel  dtos.StockLevelDTO  `json:"stock_level"`
	Returned    decimal.Decimal     `json:"returned"`
}

// ReserveMaterialHandler handles the ReserveMaterial command
type ReserveMaterialHandler struct {
	materials    catalog.MaterialRepository
	levels       stock.StockLevelRepository
	reservations reservation.ReservationRepository
	locker       shared.KeyLocker
	uow          shared.UnitOfWork
	clock        shared.Clock
}

// NewReserveMaterialHandler creates a new ReserveMaterialHandler
func NewReserveMaterialHandler(
	materials catalog.MaterialRepository,
	levels stock.StockLevelRepository,
	reservations reservation.ReservationRepository,
	locker shared.KeyLocker,
	uow shared.UnitOfWork,
	clock shared.Clock,
) *ReserveMaterialHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ReserveMaterialHandler{
		materials:    materials,
		levels:       levels,
		reservations: reservations,
		locker:       locker,
		uow:          uow,
		clock:        clock,
	}
}

// Handle executes the ReserveMaterial command
func (h *ReserveMaterialHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ReserveMaterialCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReserveMaterialCommand")
	}
	if err := common.ValidateRequest(cmd); err != nil {
		return nil, err
	}
	location := shared.NormalizeLocation(cmd.Location)

	unlock, err := h.locker.Lock(ctx, shared.StockKey(cmd.MaterialID, location))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		res      *reservation.Reservation
		level    *stock.StockLevel
		material *catalog.Material
	)
	err = h.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		material, err = h.materials.FindByID(ctx, cmd.MaterialID)
		if err != nil {
			return err
		}
		if !material.IsActive() {
			return &catalog.ErrMaterialInactive{ID: material.ID()}
		}

		level, err = h.levels.GetForUpdate(ctx, material.ID(), location)
		if err != nil {
			return fmt.Errorf("failed to lock stock level: %w", err)
		}
		if cmd.Quantity.GreaterThan(level.Available()) {
			return &stock.ErrInsufficientStock{
				MaterialID: material.ID(),
				Location:   location,
				Available:  level.Available(),
				Requested:  cmd.Quantity,
			}
		}

		now := h.clock.Now()
		res, err = reservation.NewReservation(cmd.OrderID, material.ID(), location, cmd.Quantity, now)
		if err != nil {
			return err
		}
		if err := level.ApplyReservationDelta(cmd.Quantity, now); err != nil {
			return err
		}
		if err := h.reservations.Create(ctx, res); err != nil {
			return fmt.Errorf("failed to persist reservation: %w", err)
		}
		return h.levels.Save(ctx, level)
	})
	if err != nil {
		var insufficient *stock.ErrInsufficientStock
		if errors.As(err, &insufficient) {
			metrics.RecordInsufficientStock("RESERVE")
		}
		return nil, err
	}

	metrics.RecordReservation("reserve", cmd.Quantity.InexactFloat64())
	common.LoggerFromContext(ctx).Info("material reserved",
		"reservation_id", res.ID(),
		"order_id", res.OrderID(),
		"material_id", res.MaterialID(),
		"location", location,
		"quantity", cmd.Quantity.String())

	return &ReservationResponse{
		Reservation: dtos.ToReservationDTO(res),
		StockLevel:  dtos.ToStockLevelDTO(level, material.MinStockLevel()),
		Returned:    decimal.Zero,
	}, nil
}
