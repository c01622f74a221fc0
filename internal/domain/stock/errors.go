package stock

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInsufficientStock is returned when an outbound movement or a reservation
// asks for more than the available quantity at a location
type ErrInsufficientStock struct {
	MaterialID string
	Location   string
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock for material %s at %s: available=%s, requested=%s",
		e.MaterialID, e.Location, e.Available, e.Requested)
}

// ErrInvalidMovement represents validation errors for movements
type ErrInvalidMovement struct {
	Field  string
	Reason string
}

func (e *ErrInvalidMovement) Error() string {
	return fmt.Sprintf("invalid movement: %s - %s", e.Field, e.Reason)
}

// ErrReservedExceedsCurrent is returned when a mutation would leave reserved above current
type ErrReservedExceedsCurrent struct {
	MaterialID string
	Location   string
	Current    decimal.Decimal
	Reserved   decimal.Decimal
}

func (e *ErrReservedExceedsCurrent) Error() string {
	return fmt.Sprintf("reserved quantity %s would exceed current quantity %s for material %s at %s",
		e.Reserved, e.Current, e.MaterialID, e.Location)
}

// ErrStockLevelNotFound indicates no ledger row exists for the key
type ErrStockLevelNotFound struct {
	MaterialID string
	Location   string
}

func (e *ErrStockLevelNotFound) Error() string {
	return fmt.Sprintf("stock level not found: material=%s, location=%s", e.MaterialID, e.Location)
}
