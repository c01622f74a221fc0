package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	stockCommands "github.com/andrescamacho/warehouse-go/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/warehouse-go/internal/application/stock/queries"
)

type listMovementsParams struct {
	MaterialID    string     `form:"material_id"`
	Location      string     `form:"location"`
	Type          string     `form:"type"`
	OrderID       string     `form:"order_id"`
	ReservationID string     `form:"reservation_id"`
	DeliveryID    string     `form:"delivery_id"`
	StartDate     *time.Time `form:"start_date" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate       *time.Time `form:"end_date" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit         int        `form:"limit"`
	Offset        int        `form:"offset"`
	OrderBy       string     `form:"order_by"`
}

type listStockLevelsParams struct {
	MaterialID string `form:"material_id"`
	Status     string `form:"status"`
}

func (h *Handler) RecordMovement(c *gin.Context) {
	var cmd stockCommands.RecordMovementCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	h.dispatch(c, http.StatusCreated, &cmd)
}

func (h *Handler) ListMovements(c *gin.Context) {
	var p listMovementsParams
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}
	h.dispatch(c, http.StatusOK, &stockQueries.ListMovementsQuery{
		MaterialID:    p.MaterialID,
		Location:      p.Location,
		Type:          p.Type,
		OrderID:       p.OrderID,
		ReservationID: p.ReservationID,
		DeliveryID:    p.DeliveryID,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		Limit:         p.Limit,
		Offset:        p.Offset,
		OrderBy:       p.OrderBy,
	})
}

func (h *Handler) ListStockLevels(c *gin.Context) {
	var p listStockLevelsParams
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}
	h.dispatch(c, http.StatusOK, &stockQueries.ListStockLevelsQuery{MaterialID: p.MaterialID, Status: p.Status})
}

func (h *Handler) GetStockLevel(c *gin.Context) {
	h.dispatch(c, http.StatusOK, &stockQueries.GetStockLevelQuery{
		MaterialID: c.Param("material_id"),
		Location:   c.Param("location"),
	})
}

func (h *Handler) RebuildStockLevel(c *gin.Context) {
	var cmd stockCommands.RebuildStockLevelCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	h.dispatch(c, http.StatusOK, &cmd)
}

func (h *Handler) GetStockSummary(c *gin.Context) {
	h.dispatch(c, http.StatusOK, &stockQueries.GetStockSummaryQuery{})
}
