package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the display status of a ledger row
type Status string

const (
	StatusInStock    Status = "IN_STOCK"
	StatusLowStock   Status = "LOW_STOCK"
	StatusOutOfStock Status = "OUT_OF_STOCK"
	StatusOnOrder    Status = "ON_ORDER"
)

// DeriveStatus computes the quantity-based status for a current quantity and reorder threshold
func DeriveStatus(current, minStockLevel decimal.Decimal) Status {
	switch {
	case !current.IsPositive():
		return StatusOutOfStock
	case current.LessThanOrEqual(minStockLevel):
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// StockLevel is the ledger row for one (material, location) key.
// Only ApplyMovementEffect and ApplyReservationDelta change quantities.
type StockLevel struct {
	materialID       string
	location         string
	currentQuantity  decimal.Decimal
	reservedQuantity decimal.Decimal
	onOrder          bool
	lastMovementDate *time.Time
	updatedAt        time.Time
}

// NewStockLevel creates an empty ledger row
func NewStockLevel(materialID, location string, now time.Time) *StockLevel {
	return &StockLevel{
		materialID:       materialID,
		location:         location,
		currentQuantity:  decimal.Zero,
		reservedQuantity: decimal.Zero,
		updatedAt:        now,
	}
}

// ReconstructStockLevel rebuilds a ledger row from persistence
func ReconstructStockLevel(
	materialID, location string,
	currentQuantity, reservedQuantity decimal.Decimal,
	onOrder bool,
	lastMovementDate *time.Time,
	updatedAt time.Time,
) *StockLevel {
	return &StockLevel{
		materialID:       materialID,
		location:         location,
		currentQuantity:  currentQuantity,
		reservedQuantity: reservedQuantity,
		onOrder:          onOrder,
		lastMovementDate: lastMovementDate,
		updatedAt:        updatedAt,
	}
}

// ApplyMovementEffect adds a signed delta to current quantity.
// Current quantity never goes below zero; reserved above current is tolerated
// here because an inventory count may legitimately reveal over-allocation.
func (s *StockLevel) ApplyMovementEffect(delta decimal.Decimal, at time.Time) error {
	next := s.currentQuantity.Add(delta)
	if next.IsNegative() {
		return &ErrInsufficientStock{
			MaterialID: s.materialID,
			Location:   s.location,
			Available:  s.Available(),
			Requested:  delta.Neg(),
		}
	}
	s.currentQuantity = next
	s.lastMovementDate = &at
	s.updatedAt = at
	return nil
}

// ApplyReservationDelta adds a signed delta to reserved quantity.
// Growing the reservation beyond current quantity is rejected; shrinking it
// never takes reserved below zero.
func (s *StockLevel) ApplyReservationDelta(delta decimal.Decimal, at time.Time) error {
	next := s.reservedQuantity.Add(delta)
	if delta.IsPositive() && next.GreaterThan(s.currentQuantity) {
		return &ErrReservedExceedsCurrent{
			MaterialID: s.materialID,
			Location:   s.location,
			Current:    s.currentQuantity,
			Reserved:   next,
		}
	}
	if next.IsNegative() {
		next = decimal.Zero
	}
	s.reservedQuantity = next
	s.updatedAt = at
	return nil
}

// Reset overwrites current quantity with a value recomputed from the log
func (s *StockLevel) Reset(current decimal.Decimal, at time.Time) {
	s.currentQuantity = current
	s.updatedAt = at
}

// SetOnOrder records whether an open delivery exists for this key
func (s *StockLevel) SetOnOrder(onOrder bool, at time.Time) {
	s.onOrder = onOrder
	s.updatedAt = at
}

// Available is current minus reserved. It may be negative after an over-allocating count.
func (s *StockLevel) Available() decimal.Decimal {
	return s.currentQuantity.Sub(s.reservedQuantity)
}

// IsOverAllocated reports whether reservations exceed physical stock
func (s *StockLevel) IsOverAllocated() bool {
	return s.reservedQuantity.GreaterThan(s.currentQuantity)
}

// QuantityStatus ignores the on-order flag
func (s *StockLevel) QuantityStatus(minStockLevel decimal.Decimal) Status {
	return DeriveStatus(s.currentQuantity, minStockLevel)
}

// Status is the display status: ON_ORDER supersedes the quantity-derived value
func (s *StockLevel) Status(minStockLevel decimal.Decimal) Status {
	if s.onOrder {
		return StatusOnOrder
	}
	return s.QuantityStatus(minStockLevel)
}

// Getters

func (s *StockLevel) MaterialID() string { return s.materialID }
func (s *StockLevel) Location() string { return s.location }
func (s *StockLevel) CurrentQuantity() decimal.Decimal { return s.currentQuantity }
func (s *StockLevel) ReservedQuantity() decimal.Decimal { return s.reservedQuantity }
func (s *StockLevel) OnOrder() bool { return s.onOrder }
func (s *StockLevel) LastMovementDate() *time.Time { return s.lastMovementDate }
func (s *StockLevel) UpdatedAt() time.Time { return s.updatedAt }
