package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/config"
)

// RouterOptions wires the HTTP API to the engine
type RouterOptions struct {
	Mediator  mediator.Mediator
	Logger    common.Logger
	RateLimit config.RateLimitConfig

	// Gatherer is served on MetricsPath when set
	Gatherer    prometheus.Gatherer
	MetricsPath string

	// Ready reports dependency health for /healthz; nil means always ready
	Ready func(ctx context.Context) error
}

// Handler groups the endpoint implementations around one mediator
type Handler struct {
	mediator mediator.Mediator
}

// NewRouter builds the gin engine serving /api/v1, /healthz and metrics
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if opts.Logger != nil {
		router.Use(ContextLogger(opts.Logger))
	}
	router.Use(Recovery(), RequestLogger())

	started := time.Now()
	router.GET("/healthz", func(c *gin.Context) {
		body := gin.H{"status": "ok", "uptime": time.Since(started).Round(time.Second).String()}
		if opts.Ready != nil {
			if err := opts.Ready(c.Request.Context()); err != nil {
				body["status"] = "unavailable"
				body["error"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
		}
		c.JSON(http.StatusOK, body)
	})

	if opts.Gatherer != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	if opts.RateLimit.RequestsPerSecond > 0 {
		api.Use(RateLimit(opts.RateLimit.RequestsPerSecond, opts.RateLimit.Burst))
	}

	h := &Handler{mediator: opts.Mediator}
	h.RegisterRoutes(api)

	return router
}

// RegisterRoutes mounts every endpoint on the group
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/materials", h.CreateMaterial)
	api.GET("/materials", h.ListMaterials)
	api.GET("/materials/:id", h.GetMaterial)
	api.PATCH("/materials/:id", h.UpdateMaterial)
	api.POST("/materials/:id/activate", h.ActivateMaterial)
	api.POST("/materials/:id/deactivate", h.DeactivateMaterial)
	api.GET("/materials/:id/dependencies", h.GetDependencies)
	api.DELETE("/materials/:id", h.DeleteMaterial)

	api.POST("/movements", h.RecordMovement)
	api.GET("/movements", h.ListMovements)

	api.GET("/stock-levels", h.ListStockLevels)
	api.GET("/stock-levels/:material_id/:location", h.GetStockLevel)
	api.POST("/stock-levels/rebuild", h.RebuildStockLevel)
	api.GET("/stock-summary", h.GetStockSummary)

	api.POST("/reservations", h.ReserveMaterial)
	api.POST("/reservations/:id/release", h.ReleaseReservation)
	api.GET("/reservations/report", h.GetReservationReport)
	api.GET("/orders/:order_id/reservations", h.ListReservationsByOrder)

	api.POST("/deliveries", h.CreateDelivery)
	api.GET("/deliveries", h.ListDeliveries)
	api.GET("/deliveries/:id", h.GetDelivery)
	api.PATCH("/deliveries/:id/status", h.UpdateDeliveryStatus)
	api.POST("/deliveries/:id/receipts", h.RecordDeliveryReceipt)
}

// dispatch sends the request and writes the response with the given status
func (h *Handler) dispatch(c *gin.Context, status int, request mediator.Request) {
	resp, err := h.mediator.Send(c.Request.Context(), request)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, resp)
}
