package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reservationCommands "github.com/andrescamacho/warehouse-go/internal/application/reservation/commands"
	reservationQueries "github.com/andrescamacho/warehouse-go/internal/application/reservation/queries"
)

func (h *Handler) ReserveMaterial(c *gin.Context) {
	var cmd reservationCommands.ReserveMaterialCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	h.dispatch(c, http.StatusCreated, &cmd)
}

func (h *Handler) ReleaseReservation(c *gin.Context) {
	h.dispatch(c, http.StatusOK, &reservationCommands.ReleaseReservationCommand{ID: c.Param("id")})
}

func (h *Handler) ListReservationsByOrder(c *gin.Context) {
	h.dispatch(c, http.StatusOK, &reservationQueries.ListReservationsByOrderQuery{OrderID: c.Param("order_id")})
}

// GetReservationReport accepts repeated order_id parameters
func (h *Handler) GetReservationReport(c *gin.Context) {
	h.dispatch(c, http.StatusOK, &reservationQueries.GetReservationReportQuery{OrderIDs: c.QueryArray("order_id")})
}
