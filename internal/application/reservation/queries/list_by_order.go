package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
)

// ListReservationsByOrderQuery lists every reservation of an order
type ListReservationsByOrderQuery struct {
	OrderID string
}

// ListReservationsByOrderResponse holds the order's reservations
type ListReservationsByOrderResponse struct {
	OrderID      string                `json:"order_id"`
	Reservations []dtos.ReservationDTO `json:"reservations"`
}

// ListReservationsByOrderHandler handles the ListReservationsByOrder query
type ListReservationsByOrderHandler struct {
	reservations reservation.ReservationRepository
}

// NewListReservationsByOrderHandler creates a new ListReservationsByOrderHandler
func NewListReservationsByOrderHandler(reservations reservation.ReservationRepository) *ListReservationsByOrderHandler {
	return &ListReservationsByOrderHandler{reservations: reservations}
}

// Handle executes the ListReservationsByOrder query
func (h *ListReservationsByOrderHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListReservationsByOrderQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListReservationsByOrderQuery")
	}

	reservations, err := h.reservations.ListByOrder(ctx, query.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return &ListReservationsByOrderResponse{
		OrderID:      query.OrderID,
		Reservations: dtos.ToReservationDTOs(reservations),
	}, nil
}
