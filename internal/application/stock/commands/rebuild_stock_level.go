package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// RebuildStockLevelCommand recomputes a ledger row's current quantity by
// replaying its movement log. With DryRun set, drift is reported but not repaired.
type RebuildStockLevelCommand struct {
	MaterialID string `json:"material_id" validate:"required"`
	Location   string `json:"location"`
	DryRun     bool   `json:"dry_run"`
}

// RebuildStockLevelResponse reports the comparison between ledger and log
type RebuildStockLevelResponse struct {
	MaterialID string          `json:"material_id"`
	Location   string          `json:"location"`
	Movements  int             `json:"movements"`
	Stored     decimal.Decimal `json:"stored"`
	Replayed   decimal.Decimal `json:"replayed"`
	Drift      decimal.Decimal `json:"drift"`
	Repaired   bool            `json:"repaired"`
}

// RebuildStockLevelHandler handles the RebuildStockLevel command
type RebuildStockLevelHandler struct {
	levels    stock.StockLevelRepository
	movements stock.MovementRepository
	locker    shared.KeyLocker
	uow       shared.UnitOfWork
	clock     shared.Clock
}

// NewRebuildStockLevelHandler creates a new RebuildStockLevelHandler
func NewRebuildStockLevelHandler(
	levels stock.StockLevelRepository,
	movements stock.MovementRepository,
	locker shared.KeyLocker,
	uow shared.UnitOfWork,
	clock shared.Clock,
) *RebuildStockLevelHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RebuildStockLevelHandler{
		levels:    levels,
		movements: movements,
		locker:    locker,
		uow:       uow,
		clock:     clock,
	}
}

// Handle executes the RebuildStockLevel command
func (h *RebuildStockLevelHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RebuildStockLevelCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RebuildStockLevelCommand")
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

	resp := &RebuildStockLevelResponse{MaterialID: cmd.MaterialID, Location: location}
	err = h.uow.Do(ctx, func(ctx context.Context) error {
		level, err := h.levels.GetForUpdate(ctx, cmd.MaterialID, location)
		if err != nil {
			return fmt.Errorf("failed to lock stock level: %w", err)
		}
		log, err := h.movements.ListForKey(ctx, cmd.MaterialID, location)
		if err != nil {
			return fmt.Errorf("failed to load movement log: %w", err)
		}

		drift := stock.Drift{Stored: level.CurrentQuantity(), Replayed: stock.Replay(log, location)}
		resp.Movements = len(log)
		resp.Stored = drift.Stored
		resp.Replayed = drift.Replayed
		resp.Drift = drift.Delta()

		if !drift.HasDrift() || cmd.DryRun {
			return nil
		}

		common.LoggerFromContext(ctx).Warn("stock level drifted from movement log",
			"material_id", cmd.MaterialID,
			"location", location,
			"stored", drift.Stored.String(),
			"replayed", drift.Replayed.String())

		level.Reset(drift.Replayed, h.clock.Now())
		if err := h.levels.Save(ctx, level); err != nil {
			return fmt.Errorf("failed to save rebuilt stock level: %w", err)
		}
		resp.Repaired = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
