package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/adapters/metrics"
	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// ReleaseReservationCommand closes a reservation and hands its unused
// remainder back to available stock. Releasing twice is rejected.
type ReleaseReservationCommand struct {
	ID string `json:"id" validate:"required"`
}

// ReleaseReservationHandler handles the ReleaseReservation command
type ReleaseReservationHandler struct {
	materials    catalog.MaterialRepository
	levels       stock.StockLevelRepository
	reservations reservation.ReservationRepository
	locker       shared.KeyLocker
	uow          shared.UnitOfWork
	clock        shared.Clock
}

// NewReleaseReservationHandler creates a new ReleaseReservationHandler
func NewReleaseReservationHandler(
	materials catalog.MaterialRepository,
	levels stock.StockLevelRepository,
	reservations reservation.ReservationRepository,
	locker shared.KeyLocker,
	uow shared.UnitOfWork,
	clock shared.Clock,
) *ReleaseReservationHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ReleaseReservationHandler{
		materials:    materials,
		levels:       levels,
		reservations: reservations,
		locker:       locker,
		uow:          uow,
		clock:        clock,
	}
}

// Handle executes the ReleaseReservation command
func (h *ReleaseReservationHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ReleaseReservationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReleaseReservationCommand")
	}
	if err := common.ValidateRequest(cmd); err != nil {
		return nil, err
	}

	// the ledger key is only known after reading the reservation
	current, err := h.reservations.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	unlock, err := h.locker.Lock(ctx,
		shared.StockKey(current.MaterialID(), current.Location()),
		shared.ReservationKey(current.ID()))
	if err != nil {
		return nil, err
	}
	defer unlock()

	resp := &ReservationResponse{}
	err = h.uow.Do(ctx, func(ctx context.Context) error {
		res, err := h.reservations.FindByIDForUpdate(ctx, cmd.ID)
		if err != nil {
			return err
		}
		now := h.clock.Now()
		returned, err := res.Release(now)
		if err != nil {
			return err
		}

		level, err := h.levels.GetForUpdate(ctx, res.MaterialID(), res.Location())
		if err != nil {
			return fmt.Errorf("failed to lock stock level: %w", err)
		}
		if err := level.ApplyReservationDelta(returned.Neg(), now); err != nil {
			return err
		}
		if err := h.reservations.Save(ctx, res); err != nil {
			return fmt.Errorf("failed to save reservation: %w", err)
		}
		if err := h.levels.Save(ctx, level); err != nil {
			return fmt.Errorf("failed to save stock level: %w", err)
		}

		material, err := h.materials.FindByID(ctx, res.MaterialID())
		if err != nil {
			return err
		}
		resp.Reservation = dtos.ToReservationDTO(res)
		resp.StockLevel = dtos.ToStockLevelDTO(level, material.MinStockLevel())
		resp.Returned = returned
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordReservation("release", resp.Returned.InexactFloat64())
	common.LoggerFromContext(ctx).Info("reservation released",
		"reservation_id", cmd.ID,
		"returned", resp.Returned.String())
	return resp, nil
}
