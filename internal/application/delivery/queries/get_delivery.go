package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// GetDeliveryQuery reads one delivery
type GetDeliveryQuery struct {
	ID string
}

// GetDeliveryResponse wraps the delivery
type GetDeliveryResponse struct {
	Delivery dtos.DeliveryDTO `json:"delivery"`
}

// GetDeliveryHandler handles the GetDelivery query
type GetDeliveryHandler struct {
	deliveries delivery.DeliveryRepository
	clock      shared.Clock
}

// NewGetDeliveryHandler creates a new GetDeliveryHandler
func NewGetDeliveryHandler(deliveries delivery.DeliveryRepository, clock shared.Clock) *GetDeliveryHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetDeliveryHandler{deliveries: deliveries, clock: clock}
}

// Handle executes the GetDelivery query
func (h *GetDeliveryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetDeliveryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetDeliveryQuery")
	}
	d, err := h.deliveries.FindByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	return &GetDeliveryResponse{Delivery: dtos.ToDeliveryDTO(d, h.clock.Now())}, nil
}
