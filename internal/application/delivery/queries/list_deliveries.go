package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// ListDeliveriesQuery filters deliveries. OverdueOnly is evaluated against the
// clock at query time.
type ListDeliveriesQuery struct {
	MaterialID  string
	SupplierID  string
	OrderID     string
	Status      string
	OpenOnly    bool
	OverdueOnly bool
	Limit       int `validate:"gte=0"`
	Offset      int `validate:"gte=0"`
}

// ListDeliveriesResponse holds the matching deliveries
type ListDeliveriesResponse struct {
	Deliveries []dtos.DeliveryDTO `json:"deliveries"`
}

// ListDeliveriesHandler handles the ListDeliveries query
type ListDeliveriesHandler struct {
	deliveries delivery.DeliveryRepository
	clock      shared.Clock
}

// NewListDeliveriesHandler creates a new ListDeliveriesHandler
func NewListDeliveriesHandler(deliveries delivery.DeliveryRepository, clock shared.Clock) *ListDeliveriesHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ListDeliveriesHandler{deliveries: deliveries, clock: clock}
}

// Handle executes the ListDeliveries query
func (h *ListDeliveriesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListDeliveriesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListDeliveriesQuery")
	}
	if err := common.ValidateRequest(query); err != nil {
		return nil, err
	}

	filter := delivery.ListFilter{
		MaterialID: query.MaterialID,
		SupplierID: query.SupplierID,
		OrderID:    query.OrderID,
		OpenOnly:   query.OpenOnly || query.OverdueOnly,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
	if query.Status != "" {
		status, err := delivery.ParseStatus(query.Status)
		if err != nil {
			return nil, shared.NewValidationError("status", err.Error())
		}
		filter.Status = &status
	}
	if query.OverdueOnly {
		filter.Limit, filter.Offset = 0, 0
	}

	deliveries, err := h.deliveries.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	now := h.clock.Now()
	out := make([]dtos.DeliveryDTO, 0, len(deliveries))
	for _, d := range deliveries {
		if query.OverdueOnly && !d.IsOverdue(now) {
			continue
		}
		out = append(out, dtos.ToDeliveryDTO(d, now))
	}
	if query.OverdueOnly {
		out = page(out, query.Offset, query.Limit)
	}
	return &ListDeliveriesResponse{Deliveries: out}, nil
}

func page(in []dtos.DeliveryDTO, offset, limit int) []dtos.DeliveryDTO {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []dtos.DeliveryDTO{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
