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

// UpdateMaterialCommand patches a material; nil fields are left untouched.
// Thresholds are checked against the merged result.
type UpdateMaterialCommand struct {
	ID            string           `json:"-" validate:"required"`
	Name          *string          `json:"name"`
	Category      *string          `json:"category"`
	Unit          *string          `json:"unit"`
	SKU           *string          `json:"sku"`
	Barcode       *string          `json:"barcode"`
	Description   *string          `json:"description"`
	MinStockLevel *decimal.Decimal `json:"min_stock_level"`
	MaxStockLevel *decimal.Decimal `json:"max_stock_level"`
	ClearMaxStock bool             `json:"clear_max_stock_level"`
	CurrentCost   *decimal.Decimal `json:"current_cost"`
	SupplierID    *string          `json:"supplier_id"`
}

// UpdateMaterialHandler handles the UpdateMaterial command
type UpdateMaterialHandler struct {
	materials catalog.MaterialRepository
	uow       shared.UnitOfWork
	clock     shared.Clock
}

// NewUpdateMaterialHandler creates a new UpdateMaterialHandler
func NewUpdateMaterialHandler(materials catalog.MaterialRepository, uow shared.UnitOfWork, clock shared.Clock) *UpdateMaterialHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &UpdateMaterialHandler{materials: materials, uow: uow, clock: clock}
}

// Handle executes the UpdateMaterial command
func (h *UpdateMaterialHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*UpdateMaterialCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpdateMaterialCommand")
	}
	if err := common.ValidateRequest(cmd); err != nil {
		return nil, err
	}

	patch, err := buildPatch(cmd)
	if err != nil {
		return nil, err
	}

	var material *catalog.Material
	err = h.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		material, err = h.materials.FindByIDForUpdate(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if err := material.Apply(patch, h.clock.Now()); err != nil {
			return err
		}
		return h.materials.Save(ctx, material)
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Info("material updated", "material_id", material.ID())
	return &MaterialResponse{Material: dtos.ToMaterialDTO(material)}, nil
}

func buildPatch(cmd *UpdateMaterialCommand) (catalog.MaterialPatch, error) {
	patch := catalog.MaterialPatch{
		Name:          cmd.Name,
		SKU:           cmd.SKU,
		Barcode:       cmd.Barcode,
		Description:   cmd.Description,
		MinStockLevel: cmd.MinStockLevel,
		MaxStockLevel: cmd.MaxStockLevel,
		ClearMaxStock: cmd.ClearMaxStock,
		CurrentCost:   cmd.CurrentCost,
		SupplierID:    cmd.SupplierID,
	}
	if cmd.Category != nil {
		category, err := catalog.ParseCategory(*cmd.Category)
		if err != nil {
			return patch, shared.NewValidationError("category", err.Error())
		}
		patch.Category = &category
	}
	if cmd.Unit != nil {
		unit, err := catalog.ParseUnit(*cmd.Unit)
		if err != nil {
			return patch, shared.NewValidationError("unit", err.Error())
		}
		patch.Unit = &unit
	}
	return patch, nil
}
