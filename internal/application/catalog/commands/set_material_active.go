package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// DeactivateMaterialCommand hides a material from active use without touching
// its stock, reservations or deliveries
type DeactivateMaterialCommand struct {
	ID string `validate:"required"`
}

// ActivateMaterialCommand reverses a deactivation
type ActivateMaterialCommand struct {
	ID string `validate:"required"`
}

// SetMaterialActiveHandler handles both activation commands
type SetMaterialActiveHandler struct {
	materials catalog.MaterialRepository
	uow       shared.UnitOfWork
	clock     shared.Clock
}

// NewSetMaterialActiveHandler creates a new SetMaterialActiveHandler
func NewSetMaterialActiveHandler(materials catalog.MaterialRepository, uow shared.UnitOfWork, clock shared.Clock) *SetMaterialActiveHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &SetMaterialActiveHandler{materials: materials, uow: uow, clock: clock}
}

// Handle executes DeactivateMaterialCommand or ActivateMaterialCommand
func (h *SetMaterialActiveHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	var (
		id     string
		active bool
	)
	switch cmd := request.(type) {
	case *DeactivateMaterialCommand:
		id, active = cmd.ID, false
	case *ActivateMaterialCommand:
		id, active = cmd.ID, true
	default:
		return nil, fmt.Errorf("invalid request type: expected *DeactivateMaterialCommand or *ActivateMaterialCommand")
	}
	if err := common.ValidateRequest(request); err != nil {
		return nil, err
	}

	var material *catalog.Material
	err := h.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		material, err = h.materials.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if active {
			material.Activate(h.clock.Now())
		} else {
			material.Deactivate(h.clock.Now())
		}
		return h.materials.Save(ctx, material)
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Info("material active flag changed", "material_id", id, "active", active)
	return &MaterialResponse{Material: dtos.ToMaterialDTO(material)}, nil
}
