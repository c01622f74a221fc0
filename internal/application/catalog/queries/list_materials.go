package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// ListMaterialsQuery filters the catalog. Search matches name, sku or barcode.
// LowStockOnly keeps materials whose quantity summed over all locations is at
// or below their reorder threshold.
type ListMaterialsQuery struct {
	Search       string
	Category     string
	SupplierID   string
	ActiveOnly   bool
	LowStockOnly bool
	Limit        int `validate:"gte=0"`
	Offset       int `validate:"gte=0"`
}

// ListMaterialsResponse is one page of materials plus the total match count
type ListMaterialsResponse struct {
	Materials []dtos.MaterialDTO `json:"materials"`
	Total     int                `json:"total"`
}

// ListMaterialsHandler handles the ListMaterials query
type ListMaterialsHandler struct {
	materials catalog.MaterialRepository
	levels    stock.StockLevelRepository
}

// NewListMaterialsHandler creates a new ListMaterialsHandler
func NewListMaterialsHandler(materials catalog.MaterialRepository, levels stock.StockLevelRepository) *ListMaterialsHandler {
	return &ListMaterialsHandler{materials: materials, levels: levels}
}

// Handle executes the ListMaterials query
func (h *ListMaterialsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListMaterialsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListMaterialsQuery")
	}
	if err := common.ValidateRequest(query); err != nil {
		return nil, err
	}

	filter := catalog.ListFilter{
		Search:     query.Search,
		SupplierID: query.SupplierID,
		ActiveOnly: query.ActiveOnly,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
	if query.Category != "" {
		category, err := catalog.ParseCategory(query.Category)
		if err != nil {
			return nil, shared.NewValidationError("category", err.Error())
		}
		filter.Category = &category
	}

	totals, err := h.levels.TotalsByMaterial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to total stock: %w", err)
	}

	// low-stock depends on the ledger, so page after filtering
	if query.LowStockOnly {
		filter.Limit, filter.Offset = 0, 0
	}

	materials, total, err := h.materials.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	out := make([]dtos.MaterialDTO, 0, len(materials))
	for _, m := range materials {
		onHand := totals[m.ID()]
		if query.LowStockOnly && !m.IsLowStock(onHand) {
			continue
		}
		dto := dtos.ToMaterialDTO(m)
		dto.TotalQuantity = &onHand
		out = append(out, dto)
	}

	if query.LowStockOnly {
		total = len(out)
		out = paginate(out, query.Offset, query.Limit)
	}
	return &ListMaterialsResponse{Materials: out, Total: total}, nil
}

func paginate(in []dtos.MaterialDTO, offset, limit int) []dtos.MaterialDTO {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []dtos.MaterialDTO{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
