package queries

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
)

// GetReservationReportQuery compares planned against consumed quantities per
// order. An empty OrderIDs covers every order.
type GetReservationReportQuery struct {
	OrderIDs []string
}

// ReservationLineDTO is one reservation inside an order report
type ReservationLineDTO struct {
	Reservation dtos.ReservationDTO `json:"reservation"`
	Variance    decimal.Decimal     `json:"variance"`
	Discrepancy bool                `json:"discrepancy"`
}

// OrderReportDTO aggregates one order
type OrderReportDTO struct {
	OrderID              string               `json:"order_id"`
	TotalReserved        decimal.Decimal      `json:"total_reserved"`
	TotalUsed            decimal.Decimal      `json:"total_used"`
	EfficiencyPercentage int64                `json:"efficiency_percentage"`
	Status               string               `json:"status"`
	DiscrepancyCount     int                  `json:"discrepancy_count"`
	Lines                []ReservationLineDTO `json:"lines"`
}

// GetReservationReportResponse holds one report per order
type GetReservationReportResponse struct {
	Orders []OrderReportDTO `json:"orders"`
}

// GetReservationReportHandler handles the GetReservationReport query
type GetReservationReportHandler struct {
	reservations reservation.ReservationRepository
}

// NewGetReservationReportHandler creates a new GetReservationReportHandler
func NewGetReservationReportHandler(reservations reservation.ReservationRepository) *GetReservationReportHandler {
	return &GetReservationReportHandler{reservations: reservations}
}

// Handle executes the GetReservationReport query
func (h *GetReservationReportHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetReservationReportQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetReservationReportQuery")
	}

	reservations, err := h.reservations.List(ctx, query.OrderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	reports := reservation.BuildOrderReports(reservations)
	resp := &GetReservationReportResponse{Orders: make([]OrderReportDTO, 0, len(reports))}
	for _, report := range reports {
		dto := OrderReportDTO{
			OrderID:              report.OrderID,
			TotalReserved:        report.TotalReserved,
			TotalUsed:            report.TotalUsed,
			EfficiencyPercentage: report.EfficiencyPercentage,
			Status:               string(report.Status),
			DiscrepancyCount:     report.DiscrepancyCount,
			Lines:                make([]ReservationLineDTO, 0, len(report.Lines)),
		}
		for _, line := range report.Lines {
			dto.Lines = append(dto.Lines, ReservationLineDTO{
				Reservation: dtos.ToReservationDTO(line.Reservation),
				Variance:    line.Variance,
				Discrepancy: line.Discrepancy,
			})
		}
		resp.Orders = append(resp.Orders, dto)
	}
	return resp, nil
}
