package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// CreateMaterialCommand adds a material to the catalog
type CreateMaterialCommand struct {
	Name          string           `json:"name" validate:"required,max=255"`
	Category      string           `json:"category" validate:"required"`
	Unit          string           `json:"unit" validate:"required"`
	SKU           string           `json:"sku" validate:"max=64"`
	Barcode       string           `json:"barcode" validate:"max=64"`
	Description   string           `json:"description"`
	MinStockLevel decimal.Decimal  `json:"min_stock_level" validate:"gte=0"`
	MaxStockLevel *decimal.Decimal `json:"max_stock_level"`
	CurrentCost   *decimal.Decimal `json:"current_cost"`
	SupplierID    string           `json:"supplier_id"`
}

// MaterialResponse is returned by every catalog command
type MaterialResponse struct {
	Material dtos.MaterialDTO `json:"material"`
}

// CreateMaterialHandler handles the CreateMaterial command
type CreateMaterialHandler struct {
	materials catalog.MaterialRepository
	clock     shared.Clock
}

// NewCreateMaterialHandler creates a new CreateMaterialHandler
func NewCreateMaterialHandler(materials catalog.MaterialRepository, clock shared.Clock) *CreateMaterialHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CreateMaterialHandler{materials: materials, clock: clock}
}

// Handle executes the CreateMaterial command
func (h *CreateMaterialHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CreateMaterialCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CreateMaterialCommand")
	}
	if err := common.ValidateRequest(cmd); err != nil {
		return nil, err
	}

	category, err := catalog.ParseCategory(cmd.Category)
	if err != nil {
		return nil, shared.NewValidationError("category", err.Error())
	}
	unit, err := catalog.ParseUnit(cmd.Unit)
	if err != nil {
		return nil, shared.NewValidationError("unit", err.Error())
	}

	material, err := catalog.NewMaterial(catalog.MaterialSpec{
		Name:          cmd.Name,
		Category:      category,
		Unit:          unit,
		SKU:           cmd.SKU,
		Barcode:       cmd.Barcode,
		Description:   cmd.Description,
		MinStockLevel: cmd.MinStockLevel,
		MaxStockLevel: cmd.MaxStockLevel,
		CurrentCost:   cmd.CurrentCost,
		SupplierID:    cmd.SupplierID,
	}, h.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := h.materials.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to persist material: %w", err)
	}

	common.LoggerFromContext(ctx).Info("material created",
		"material_id", material.ID(),
		"name", material.Name(),
		"category", material.Category().String())

	return &MaterialResponse{Material: dtos.ToMaterialDTO(material)}, nil
}
