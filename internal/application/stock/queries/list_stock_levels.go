package queries

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// ListStockLevelsQuery lists ledger rows, for one material or for all
type ListStockLevelsQuery struct {
	MaterialID string
	Status     string
}

// ListStockLevelsResponse holds the matching rows
type ListStockLevelsResponse struct {
	StockLevels []dtos.StockLevelDTO `json:"stock_levels"`
}

// ListStockLevelsHandler handles the ListStockLevels query
type ListStockLevelsHandler struct {
	materials catalog.MaterialRepository
	levels    stock.StockLevelRepository
}

// NewListStockLevelsHandler creates a new ListStockLevelsHandler
func NewListStockLevelsHandler(materials catalog.MaterialRepository, levels stock.StockLevelRepository) *ListStockLevelsHandler {
	return &ListStockLevelsHandler{materials: materials, levels: levels}
}

// Handle executes the ListStockLevels query
func (h *ListStockLevelsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListStockLevelsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListStockLevelsQuery")
	}

	var (
		levels []*stock.StockLevel
		err    error
	)
	if query.MaterialID != "" {
		levels, err = h.levels.ListByMaterial(ctx, query.MaterialID)
	} else {
		levels, err = h.levels.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}

	thresholds, err := minStockLevels(ctx, h.materials)
	if err != nil {
		return nil, err
	}

	out := make([]dtos.StockLevelDTO, 0, len(levels))
	for _, level := range levels {
		dto := dtos.ToStockLevelDTO(level, thresholds[level.MaterialID()])
		if query.Status != "" && dto.Status != query.Status {
			continue
		}
		out = append(out, dto)
	}
	return &ListStockLevelsResponse{StockLevels: out}, nil
}

func minStockLevels(ctx context.Context, materials catalog.MaterialRepository) (map[string]decimal.Decimal, error) {
	all, _, err := materials.List(ctx, catalog.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	thresholds := make(map[string]decimal.Decimal, len(all))
	for _, m := range all {
		thresholds[m.ID()] = m.MinStockLevel()
	}
	return thresholds, nil
}
