package metrics

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	stockQueries "github.com/andrescamacho/warehouse-go/internal/application/stock/queries"
)

// DefaultSummaryInterval is how often ledger gauges are refreshed
const DefaultSummaryInterval = 60 * time.Second

// InventoryMetricsCollector counts ledger events as they happen and
// periodically refreshes gauges from the stock summary
type InventoryMetricsCollector struct {
	mediator mediator.Mediator
	interval time.Duration

	// Event counters
	movementsTotal      *prometheus.CounterVec
	movementQuantity    *prometheus.CounterVec
	insufficientStock   *prometheus.CounterVec
	reservationsTotal   *prometheus.CounterVec
	reservationQuantity *prometheus.CounterVec
	deliveryReceipts    *prometheus.CounterVec
	deliveryQuantity    prometheus.Counter
	cascadeStepsTotal   *prometheus.CounterVec

	// Summary gauges
	stockLevelsByStatus *prometheus.GaugeVec
	overAllocated       prometheus.Gauge
	stockValue          prometheus.Gauge
	activeMaterials     prometheus.Gauge

	// Lifecycle
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewInventoryMetricsCollector creates a collector. The mediator may be nil,
// in which case only event counters are maintained.
func NewInventoryMetricsCollector(m mediator.Mediator, interval time.Duration) *InventoryMetricsCollector {
	if interval <= 0 {
		interval = DefaultSummaryInterval
	}
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	return &InventoryMetricsCollector{
		mediator: m,
		interval: interval,

		movementsTotal:      counter("movements_total", "Movements appended to the log", "type", "location"),
		movementQuantity:    counter("movement_quantity_total", "Quantity moved, by movement type", "type"),
		insufficientStock:   counter("insufficient_stock_total", "Operations rejected for insufficient stock", "operation"),
		reservationsTotal:   counter("reservation_events_total", "Reservation reserve, use and release events", "action"),
		reservationQuantity: counter("reservation_quantity_total", "Quantity reserved, used or returned", "action"),
		deliveryReceipts:    counter("delivery_receipts_total", "Delivery receipts recorded", "over_received"),

		deliveryQuantity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "delivery_received_quantity_total",
			Help:      "Quantity received through deliveries",
		}),

		cascadeStepsTotal: counter("cascade_steps_total", "Material deletion cascade steps by outcome", "step", "status"),

		stockLevelsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stock_levels",
			Help:      "Ledger rows by display status",
		}, []string{"status"}),

		overAllocated:   gauge("over_allocated_stock_levels", "Ledger rows whose reserved quantity exceeds current quantity"),
		stockValue:      gauge("stock_value", "Total stock value at current cost"),
		activeMaterials: gauge("active_materials", "Active materials in the catalog"),
	}
}

// Register registers all inventory metrics with the Prometheus registry
func (c *InventoryMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.movementsTotal,
		c.movementQuantity,
		c.insufficientStock,
		c.reservationsTotal,
		c.reservationQuantity,
		c.deliveryReceipts,
		c.deliveryQuantity,
		c.cascadeStepsTotal,
		c.stockLevelsByStatus,
		c.overAllocated,
		c.stockValue,
		c.activeMaterials,
	}
	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// Start begins the summary polling goroutine
func (c *InventoryMetricsCollector) Start(ctx context.Context) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.pollSummary()
}

// Stop gracefully stops the collector
func (c *InventoryMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *InventoryMetricsCollector) pollSummary() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.updateSummary(c.ctx)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updateSummary(c.ctx)
		}
	}
}

func (c *InventoryMetricsCollector) updateSummary(ctx context.Context) {
	if c.mediator == nil {
		return
	}
	logger := common.LoggerFromContext(ctx)

	response, err := c.mediator.Send(ctx, &stockQueries.GetStockSummaryQuery{})
	if err != nil {
		logger.Warn("failed to fetch stock summary for metrics", "error", err.Error())
		return
	}
	summary, ok := response.(*stockQueries.GetStockSummaryResponse)
	if !ok {
		logger.Warn("unexpected response type for stock summary", "type", typeName(response))
		return
	}

	c.stockLevelsByStatus.Reset()
	for status, n := range summary.ByStatus {
		c.stockLevelsByStatus.WithLabelValues(status).Set(float64(n))
	}
	c.overAllocated.Set(float64(summary.OverAllocated))
	c.stockValue.Set(summary.TotalStockValue.InexactFloat64())
	c.activeMaterials.Set(float64(summary.ActiveMaterials))
}

// RecordMovement records an appended movement
func (c *InventoryMetricsCollector) RecordMovement(movementType, location string, quantity float64) {
	c.movementsTotal.WithLabelValues(movementType, location).Inc()
	c.movementQuantity.WithLabelValues(movementType).Add(quantity)
}

// RecordInsufficientStock records a rejected operation
func (c *InventoryMetricsCollector) RecordInsufficientStock(operation string) {
	c.insufficientStock.WithLabelValues(operation).Inc()
}

// RecordReservation records a reserve, use or release
func (c *InventoryMetricsCollector) RecordReservation(action string, quantity float64) {
	c.reservationsTotal.WithLabelValues(action).Inc()
	c.reservationQuantity.WithLabelValues(action).Add(quantity)
}

// RecordDeliveryReceipt records a delivery increment
func (c *InventoryMetricsCollector) RecordDeliveryReceipt(quantity float64, overReceived bool) {
	label := "false"
	if overReceived {
		label = "true"
	}
	c.deliveryReceipts.WithLabelValues(label).Inc()
	c.deliveryQuantity.Add(quantity)
}

// RecordCascadeStep records one cascade step outcome
func (c *InventoryMetricsCollector) RecordCascadeStep(step string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.cascadeStepsTotal.WithLabelValues(step, status).Inc()
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
