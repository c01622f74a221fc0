package queries

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/application/dependency/services"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/dependency"
)

// GetDependenciesQuery lists what references a material
type GetDependenciesQuery struct {
	MaterialID string
}

// EstimateRefDTO is one referencing estimate line item
type EstimateRefDTO struct {
	EstimateID     string          `json:"estimate_id"`
	EstimateNumber string          `json:"estimate_number"`
	EstimateStatus string          `json:"estimate_status"`
	LineItemID     string          `json:"line_item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// GetDependenciesResponse is the dependency listing of one material
type GetDependenciesResponse struct {
	MaterialID        string                `json:"material_id"`
	ApprovedEstimates []EstimateRefDTO      `json:"approved_estimates"`
	OtherEstimates    []EstimateRefDTO      `json:"other_estimates"`
	Reservations      []dtos.ReservationDTO `json:"reservations"`
	RecentMovements   []dtos.MovementDTO    `json:"recent_movements"`
	CanDelete         bool                  `json:"can_delete"`
}

// GetDependenciesHandler handles the GetDependencies query
type GetDependenciesHandler struct {
	materials catalog.MaterialRepository
	resolver  *services.Resolver
}

// NewGetDependenciesHandler creates a new GetDependenciesHandler
func NewGetDependenciesHandler(materials catalog.MaterialRepository, resolver *services.Resolver) *GetDependenciesHandler {
	return &GetDependenciesHandler{materials: materials, resolver: resolver}
}

// Handle executes the GetDependencies query
func (h *GetDependenciesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetDependenciesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetDependenciesQuery")
	}
	if _, err := h.materials.FindByID(ctx, query.MaterialID); err != nil {
		return nil, err
	}

	deps, err := h.resolver.Resolve(ctx, query.MaterialID)
	if err != nil {
		return nil, err
	}
	return &GetDependenciesResponse{
		MaterialID:        deps.MaterialID,
		ApprovedEstimates: toEstimateRefDTOs(deps.ApprovedEstimates),
		OtherEstimates:    toEstimateRefDTOs(deps.OtherEstimates),
		Reservations:      dtos.ToReservationDTOs(deps.Reservations),
		RecentMovements:   dtos.ToMovementDTOs(deps.RecentMovements),
		CanDelete:         deps.CanDelete(),
	}, nil
}

func toEstimateRefDTOs(refs []dependency.EstimateReference) []EstimateRefDTO {
	out := make([]EstimateRefDTO, 0, len(refs))
	for _, ref := range refs {
		out = append(out, EstimateRefDTO{
			EstimateID:     ref.EstimateID,
			EstimateNumber: ref.EstimateNumber,
			EstimateStatus: string(ref.EstimateStatus),
			LineItemID:     ref.LineItemID,
			Quantity:       ref.Quantity,
		})
	}
	return out
}
