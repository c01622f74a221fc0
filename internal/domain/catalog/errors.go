package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidThresholds is returned when max_stock_level is below min_stock_level
type ErrInvalidThresholds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func (e *ErrInvalidThresholds) Error() string {
	return fmt.Sprintf("invalid stock thresholds: max %s is below min %s", e.Max, e.Min)
}

// ErrMaterialNotFound indicates a material id does not exist
type ErrMaterialNotFound struct {
	ID string
}

func (e *ErrMaterialNotFound) Error() string {
	return fmt.Sprintf("material not found: %s", e.ID)
}

// ErrMaterialInactive is returned when an operation requires an active material
type ErrMaterialInactive struct {
	ID string
}

func (e *ErrMaterialInactive) Error() string {
	return fmt.Sprintf("material %s is inactive", e.ID)
}
