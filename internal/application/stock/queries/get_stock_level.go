package queries

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// GetStockLevelQuery reads one ledger row. A material that has never moved at
// the location reads as an empty row.
type GetStockLevelQuery struct {
	MaterialID string
	Location   string
}

// GetStockLevelResponse wraps the ledger row
type GetStockLevelResponse struct {
	StockLevel dtos.StockLevelDTO `json:"stock_level"`
}

// GetStockLevelHandler handles the GetStockLevel query
type GetStockLevelHandler struct {
	materials catalog.MaterialRepository
	levels    stock.StockLevelRepository
	clock     shared.Clock
}

// NewGetStockLevelHandler creates a new GetStockLevelHandler
func NewGetStockLevelHandler(materials catalog.MaterialRepository, levels stock.StockLevelRepository, clock shared.Clock) *GetStockLevelHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetStockLevelHandler{materials: materials, levels: levels, clock: clock}
}

// Handle executes the GetStockLevel query
func (h *GetStockLevelHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetStockLevelQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetStockLevelQuery")
	}

	material, err := h.materials.FindByID(ctx, query.MaterialID)
	if err != nil {
		return nil, err
	}
	location := shared.NormalizeLocation(query.Location)

	level, err := h.levels.Find(ctx, material.ID(), location)
	var notFound *stock.ErrStockLevelNotFound
	if errors.As(err, &notFound) {
		level = stock.NewStockLevel(material.ID(), location, h.clock.Now())
	} else if err != nil {
		return nil, fmt.Errorf("failed to load stock level: %w", err)
	}

	return &GetStockLevelResponse{StockLevel: dtos.ToStockLevelDTO(level, material.MinStockLevel())}, nil
}
