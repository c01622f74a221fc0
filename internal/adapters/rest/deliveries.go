package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	deliveryCommands "github.com/andrescamacho/warehouse-go/internal/application/delivery/commands"
	deliveryQueries "github.com/andrescamacho/warehouse-go/internal/application/delivery/queries"
)

type listDeliveriesParams struct {
	MaterialID  string `form:"material_id"`
	SupplierID  string `form:"supplier_id"`
	OrderID     string `form:"order_id"`
	Status      string `form:"status"`
	OpenOnly    bool   `form:"open_only"`
	OverdueOnly bool   `form:"overdue_only"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

func (h *Handler) CreateDelivery(c *gin.Context) {
	var cmd deliveryCommands.CreateDeliveryCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	h.dispatch(c, http.StatusCreated, &cmd)
}

func (h *Handler) ListDeliveries(c *gin.Context) {
	var p listDeliveriesParams
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}
	h.dispatch(c, http.StatusOK, &deliveryQueries.ListDeliveriesQuery{
		MaterialID:  p.MaterialID,
		SupplierID:  p.SupplierID,
		OrderID:     p.OrderID,
		Status:      p.Status,
		OpenOnly:    p.OpenOnly,
		OverdueOnly: p.OverdueOnly,
		Limit:       p.Limit,
		Offset:      p.Offset,
	})
}

func (h *Handler) GetDelivery(c *gin.Context) {
	h.dispatch(c, http.StatusOK, &deliveryQueries.GetDeliveryQuery{ID: c.Param("id")})
}

func (h *Handler) UpdateDeliveryStatus(c *gin.Context) {
	var cmd deliveryCommands.UpdateDeliveryStatusCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	cmd.ID = c.Param("id")
	h.dispatch(c, http.StatusOK, &cmd)
}

func (h *Handler) RecordDeliveryReceipt(c *gin.Context) {
	var cmd deliveryCommands.RecordDeliveryReceiptCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	cmd.DeliveryID = c.Param("id")
	h.dispatch(c, http.StatusCreated, &cmd)
}
