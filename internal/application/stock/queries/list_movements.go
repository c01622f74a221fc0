package queries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// ListMovementsQuery reads the movement log
type ListMovementsQuery struct {
	MaterialID    string
	Location      string
	Type          string
	OrderID       string
	ReservationID string
	DeliveryID    string
	StartDate     *time.Time
	EndDate       *time.Time
	Limit         int `validate:"gte=0"`
	Offset        int `validate:"gte=0"`
	OrderBy       string
}

// ListMovementsResponse is one page of movements plus the total match count
type ListMovementsResponse struct {
	Movements []dtos.MovementDTO `json:"movements"`
	Total     int                `json:"total"`
}

// ListMovementsHandler handles the ListMovements query
type ListMovementsHandler struct {
	movements stock.MovementRepository
}

// NewListMovementsHandler creates a new ListMovementsHandler
func NewListMovementsHandler(movements stock.MovementRepository) *ListMovementsHandler {
	return &ListMovementsHandler{movements: movements}
}

// Handle executes the ListMovements query
func (h *ListMovementsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListMovementsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListMovementsQuery")
	}
	if err := common.ValidateRequest(query); err != nil {
		return nil, err
	}

	opts, err := buildQueryOptions(query)
	if err != nil {
		return nil, err
	}

	movements, err := h.movements.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	total, err := h.movements.Count(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to count movements: %w", err)
	}

	return &ListMovementsResponse{Movements: dtos.ToMovementDTOs(movements), Total: total}, nil
}

func buildQueryOptions(query *ListMovementsQuery) (stock.QueryOptions, error) {
	opts := stock.DefaultQueryOptions()
	opts.MaterialID = query.MaterialID
	opts.Location = query.Location
	opts.OrderID = query.OrderID
	opts.ReservationID = query.ReservationID
	opts.DeliveryID = query.DeliveryID
	opts.StartDate = query.StartDate
	opts.EndDate = query.EndDate

	if query.Type != "" {
		t, err := stock.ParseMovementType(query.Type)
		if err != nil {
			return opts, &stock.ErrInvalidMovement{Field: "type", Reason: err.Error()}
		}
		opts.Type = &t
	}
	if query.StartDate != nil && query.EndDate != nil && query.EndDate.Before(*query.StartDate) {
		return opts, &stock.ErrInvalidMovement{Field: "end_date", Reason: "end date is before start date"}
	}

	if query.Limit > 0 {
		opts.Limit = query.Limit
	}
	if query.Offset > 0 {
		opts.Offset = query.Offset
	}
	switch strings.ToUpper(strings.TrimSpace(query.OrderBy)) {
	case "", "DESC", "OCCURRED_AT DESC":
	case "ASC", "OCCURRED_AT ASC":
		opts.OrderBy = "occurred_at ASC"
	default:
		return opts, &stock.ErrInvalidMovement{Field: "order_by", Reason: "must be asc or desc"}
	}
	return opts, nil
}
