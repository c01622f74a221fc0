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

// GetMaterialQuery reads one material with its per-location stock
type GetMaterialQuery struct {
	ID string
}

// GetMaterialResponse is the material with its ledger rows
type GetMaterialResponse struct {
	Material    dtos.MaterialDTO     `json:"material"`
	StockLevels []dtos.StockLevelDTO `json:"stock_levels"`
}

// GetMaterialHandler handles the GetMaterial query
type GetMaterialHandler struct {
	materials catalog.MaterialRepository
	levels    stock.StockLevelRepository
}

// NewGetMaterialHandler creates a new GetMaterialHandler
func NewGetMaterialHandler(materials catalog.MaterialRepository, levels stock.StockLevelRepository) *GetMaterialHandler {
	return &GetMaterialHandler{materials: materials, levels: levels}
}

// Handle executes the GetMaterial query
func (h *GetMaterialHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetMaterialQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetMaterialQuery")
	}

	material, err := h.materials.FindByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	levels, err := h.levels.ListByMaterial(ctx, material.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}

	resp := &GetMaterialResponse{
		Material:    dtos.ToMaterialDTO(material),
		StockLevels: make([]dtos.StockLevelDTO, 0, len(levels)),
	}
	onHand := decimal.Zero
	for _, level := range levels {
		resp.StockLevels = append(resp.StockLevels, dtos.ToStockLevelDTO(level, material.MinStockLevel()))
		onHand = onHand.Add(level.CurrentQuantity())
	}
	resp.Material.TotalQuantity = &onHand
	return resp, nil
}
