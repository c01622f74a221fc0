package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "warehouse"
	// Subsystem for inventory engine metrics
	subsystem = "inventory"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalInventoryCollector is the singleton inventory metrics collector
	// Set by SetGlobalInventoryCollector() when metrics are enabled
	globalInventoryCollector InventoryMetricsRecorder
)

// InventoryMetricsRecorder defines the interface for recording inventory events.
// Application handlers record through the package-level functions below.
type InventoryMetricsRecorder interface {
	RecordMovement(movementType, location string, quantity float64)
	RecordInsufficientStock(operation string)
	RecordReservation(action string, quantity float64)
	RecordDeliveryReceipt(quantity float64, overReceived bool)
	RecordCascadeStep(step string, success bool)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalInventoryCollector sets the global inventory metrics collector
func SetGlobalInventoryCollector(collector InventoryMetricsRecorder) {
	globalInventoryCollector = collector
}

// RecordMovement records an appended movement globally
func RecordMovement(movementType, location string, quantity float64) {
	if globalInventoryCollector != nil {
		globalInventoryCollector.RecordMovement(movementType, location, quantity)
	}
}

// RecordInsufficientStock records a rejected issue, write-off, transfer or reservation
func RecordInsufficientStock(operation string) {
	if globalInventoryCollector != nil {
		globalInventoryCollector.RecordInsufficientStock(operation)
	}
}

// RecordReservation records a reserve, use or release
func RecordReservation(action string, quantity float64) {
	if globalInventoryCollector != nil {
		globalInventoryCollector.RecordReservation(action, quantity)
	}
}

// RecordDeliveryReceipt records a delivery increment
func RecordDeliveryReceipt(quantity float64, overReceived bool) {
	if globalInventoryCollector != nil {
		globalInventoryCollector.RecordDeliveryReceipt(quantity, overReceived)
	}
}

// RecordCascadeStep records the outcome of one deletion cascade step
func RecordCascadeStep(step string, success bool) {
	if globalInventoryCollector != nil {
		globalInventoryCollector.RecordCascadeStep(step, success)
	}
}
