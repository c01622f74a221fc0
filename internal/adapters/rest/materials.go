package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogCommands "github.com/andrescamacho/warehouse-go/internal/application/catalog/commands"
	catalogQueries "github.com/andrescamacho/warehouse-go/internal/application/catalog/queries"
	"github.com/andrescamacho/warehouse-go/internal/application/common"
	dependencyCommands "github.com/andrescamacho/warehouse-go/internal/application/dependency/commands"
	dependencyQueries "github.com/andrescamacho/warehouse-go/internal/application/dependency/queries"
	"github.com/andrescamacho/warehouse-go/internal/domain/dependency"
)

type listMaterialsParams struct {
	Search       string `form:"search"`
	Category     string `form:"category"`
	SupplierID   string `form:"supplier_id"`
	ActiveOnly   bool   `form:"active_only"`
	LowStockOnly bool   `form:"low_stock_only"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

type deleteMaterialParams struct {
	CancelEstimates         bool `form:"cancel_estimates"`
	RemoveEstimateLineItems bool `form:"remove_estimate_line_items"`
	ClearReservations       bool `form:"clear_reservations"`
	Archive                 bool `form:"archive"`
}

// deleteMaterialBody adds the failed best-effort steps to the cascade report
type deleteMaterialBody struct {
	*dependencyCommands.DeleteMaterialResponse
	PartialFailure string `json:"partial_failure,omitempty"`
}

// abortedDeleteBody is the error payload of a delete whose final step failed
// after cleanup already ran
type abortedDeleteBody struct {
	errorBody
	Report *dependencyCommands.DeleteMaterialResponse `json:"report"`
}

func (h *Handler) CreateMaterial(c *gin.Context) {
	var cmd catalogCommands.CreateMaterialCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	h.dispatch(c, http.StatusCreated, &cmd)
}

func (h *Handler) ListMaterials(c *gin.Context) {
	var p listMaterialsParams
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}
	h.dispatch(c, http.StatusOK, &catalogQueries.ListMaterialsQuery{
		Search:       p.Search,
		Category:     p.Category,
		SupplierID:   p.SupplierID,
		ActiveOnly:   p.ActiveOnly,
		LowStockOnly: p.LowStockOnly,
		Limit:        p.Limit,
		Offset:       p.Offset,
	})
}

func (h *Handler) GetMaterial(c *gin.Context) {
	h.dispatch(c, http.StatusOK, &catalogQueries.GetMaterialQuery{ID: c.Param("id")})
}

func (h *Handler) UpdateMaterial(c *gin.Context) {
	var cmd catalogCommands.UpdateMaterialCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	cmd.ID = c.Param("id")
	h.dispatch(c, http.StatusOK, &cmd)
}

func (h *Handler) ActivateMaterial(c *gin.Context) {
	h.dispatch(c, http.StatusOK, &catalogCommands.ActivateMaterialCommand{ID: c.Param("id")})
}

func (h *Handler) DeactivateMaterial(c *gin.Context) {
	h.dispatch(c, http.StatusOK, &catalogCommands.DeactivateMaterialCommand{ID: c.Param("id")})
}

func (h *Handler) GetDependencies(c *gin.Context) {
	h.dispatch(c, http.StatusOK, &dependencyQueries.GetDependenciesQuery{MaterialID: c.Param("id")})
}

// DeleteMaterial runs the delete cascade. Failing best-effort steps still
// answer 200 with the step report.
func (h *Handler) DeleteMaterial(c *gin.Context) {
	var p deleteMaterialParams
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.mediator.Send(c.Request.Context(), &dependencyCommands.DeleteMaterialCommand{
		MaterialID:              c.Param("id"),
		CancelEstimates:         p.CancelEstimates,
		RemoveEstimateLineItems: p.RemoveEstimateLineItems,
		ClearReservations:       p.ClearReservations,
		ArchiveInsteadOfDelete:  p.Archive,
	})
	if err != nil {
		var aborted *dependency.ErrCascadeAborted
		if report, ok := resp.(*dependencyCommands.DeleteMaterialResponse); ok && errors.As(err, &aborted) {
			status, body := classify(err)
			c.AbortWithStatusJSON(status, abortedDeleteBody{errorBody: body, Report: report})
			return
		}
		writeError(c, err)
		return
	}

	report, ok := resp.(*dependencyCommands.DeleteMaterialResponse)
	if !ok {
		c.JSON(http.StatusOK, resp)
		return
	}
	body := deleteMaterialBody{DeleteMaterialResponse: report}
	if report.PartialFailure != nil {
		body.PartialFailure = report.PartialFailure.Error()
		common.LoggerFromContext(c.Request.Context()).Warn("material deleted with failed cascade steps",
			"material_id", report.MaterialID, "error", report.PartialFailure)
	}
	c.JSON(http.StatusOK, body)
}
