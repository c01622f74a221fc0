package queries

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// GetStockSummaryQuery aggregates the whole ledger
type GetStockSummaryQuery struct{}

// GetStockSummaryResponse counts rows per display status and values the stock
// at each material's current cost
type GetStockSummaryResponse struct {
	TotalMaterials    int             `json:"total_materials"`
	ActiveMaterials   int             `json:"active_materials"`
	StockLevels       int             `json:"stock_levels"`
	ByStatus          map[string]int  `json:"by_status"`
	OverAllocated     int             `json:"over_allocated"`
	TotalStockValue   decimal.Decimal `json:"total_stock_value"`
	LowStockMaterials []string        `json:"low_stock_materials"`
}

// GetStockSummaryHandler handles the GetStockSummary query
type GetStockSummaryHandler struct {
	materials catalog.MaterialRepository
	levels    stock.StockLevelRepository
}

// NewGetStockSummaryHandler creates a new GetStockSummaryHandler
func NewGetStockSummaryHandler(materials catalog.MaterialRepository, levels stock.StockLevelRepository) *GetStockSummaryHandler {
	return &GetStockSummaryHandler{materials: materials, levels: levels}
}

// Handle executes the GetStockSummary query
func (h *GetStockSummaryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*GetStockSummaryQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetStockSummaryQuery")
	}

	materials, _, err := h.materials.List(ctx, catalog.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	levels, err := h.levels.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}

	byID := make(map[string]*catalog.Material, len(materials))
	resp := &GetStockSummaryResponse{
		TotalMaterials:  len(materials),
		StockLevels:     len(levels),
		ByStatus:        make(map[string]int),
		TotalStockValue: decimal.Zero,
	}
	for _, m := range materials {
		byID[m.ID()] = m
		if m.IsActive() {
			resp.ActiveMaterials++
		}
	}

	totals := make(map[string]decimal.Decimal)
	for _, level := range levels {
		m, ok := byID[level.MaterialID()]
		if !ok {
			continue
		}
		resp.ByStatus[string(level.Status(m.MinStockLevel()))]++
		if level.IsOverAllocated() {
			resp.OverAllocated++
		}
		if cost := m.CurrentCost(); cost != nil {
			resp.TotalStockValue = resp.TotalStockValue.Add(level.CurrentQuantity().Mul(*cost))
		}
		totals[m.ID()] = totals[m.ID()].Add(level.CurrentQuantity())
	}

	for _, m := range materials {
		if m.IsActive() && m.IsLowStock(totals[m.ID()]) {
			resp.LowStockMaterials = append(resp.LowStockMaterials, m.ID())
		}
	}
	return resp, nil
}
