package reservation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// Status of a reservation
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusReleased Status = "RELEASED"
)

// Reservation earmarks stock of one material at one location for an order.
// quantityUsed only ever grows.
type Reservation struct {
	id               string
	materialID       string
	orderID          string
	location         string
	quantityReserved decimal.Decimal
	quantityUsed     decimal.Decimal
	status           Status
	createdAt        time.Time
	updatedAt        time.Time
	releasedAt       *time.Time
}

// NewReservation creates an active reservation with nothing used yet
func NewReservation(orderID, materialID, location string, quantity decimal.Decimal, now time.Time) (*Reservation, error) {
	if orderID == "" {
		return nil, shared.NewValidationError("order_id", "order_id is required")
	}
	if materialID == "" {
		return nil, shared.NewValidationError("material_id", "material_id is required")
	}
	if location == "" {
		return nil, shared.NewValidationError("location", "location is required")
	}
	if err := shared.RequirePositive("quantity", quantity); err != nil {
		return nil, err
	}
	return &Reservation{
		id:               uuid.New().String(),
		materialID:       materialID,
		orderID:          orderID,
		location:         location,
		quantityReserved: quantity,
		quantityUsed:     decimal.Zero,
		status:           StatusActive,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructReservation rebuilds a reservation from persistence
func ReconstructReservation(
	id, materialID, orderID, location string,
	quantityReserved, quantityUsed decimal.Decimal,
	status Status,
	createdAt, updatedAt time.Time,
	releasedAt *time.Time,
) *Reservation {
	return &Reservation{
		id:               id,
		materialID:       materialID,
		orderID:          orderID,
		location:         location,
		quantityReserved: quantityReserved,
		quantityUsed:     quantityUsed,
		status:           status,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
		releasedAt:       releasedAt,
	}
}

// Remaining is reserved minus used; negative once the reservation is over-used
func (r *Reservation) Remaining() decimal.Decimal {
	return r.quantityReserved.Sub(r.quantityUsed)
}

// Outstanding is the part of the reservation still held against the ledger
func (r *Reservation) Outstanding() decimal.Decimal {
	if r.status == StatusReleased {
		return decimal.Zero
	}
	return shared.ClampZero(r.Remaining())
}

// Usage is the outcome of recording consumption against a reservation
type Usage struct {
	// Covered is the part of the quantity the reservation was still holding;
	// the ledger's reserved quantity shrinks by this much
	Covered decimal.Decimal

	// OverUsed is set when cumulative usage now exceeds the reserved quantity
	OverUsed bool
}

// RecordUsage adds consumption. Over-use is allowed and reported, never rejected.
func (r *Reservation) RecordUsage(quantity decimal.Decimal, now time.Time) (Usage, error) {
	if r.status == StatusReleased {
		return Usage{}, &ErrReservationReleased{ID: r.id}
	}
	if err := shared.RequirePositive("quantity", quantity); err != nil {
		return Usage{}, err
	}
	covered := shared.MinDecimal(quantity, r.Outstanding())
	r.quantityUsed = r.quantityUsed.Add(quantity)
	r.updatedAt = now
	return Usage{
		Covered:  covered,
		OverUsed: r.quantityUsed.GreaterThan(r.quantityReserved),
	}, nil
}

// Release closes the reservation and returns the quantity to hand back to the ledger
func (r *Reservation) Release(now time.Time) (decimal.Decimal, error) {
	if r.status == StatusReleased {
		return decimal.Zero, &ErrReservationReleased{ID: r.id}
	}
	returned := r.Outstanding()
	r.status = StatusReleased
	r.releasedAt = &now
	r.updatedAt = now
	return returned, nil
}

// HasDiscrepancy reports whether |used - reserved| / reserved > 5%.
// A zero reservation is a discrepancy as soon as anything was used.
func (r *Reservation) HasDiscrepancy() bool {
	return IsDiscrepancy(r.quantityReserved, r.quantityUsed)
}

// IsDiscrepancy is the tolerance rule on raw quantities
func IsDiscrepancy(reserved, used decimal.Decimal) bool {
	if reserved.IsZero() {
		return used.IsPositive()
	}
	// |used - reserved| * 100 > reserved * 5, without dividing
	return used.Sub(reserved).Abs().Mul(hundred).GreaterThan(reserved.Abs().Mul(tolerancePercent))
}

var (
	hundred          = decimal.NewFromInt(100)
	tolerancePercent = decimal.NewFromInt(5)
)

// Getters

func (r *Reservation) ID() string { return r.id }
func (r *Reservation) MaterialID() string { return r.materialID }
func (r *Reservation) OrderID() string { return r.orderID }
func (r *Reservation) Location() string { return r.location }
func (r *Reservation) QuantityReserved() decimal.Decimal { return r.quantityReserved }
func (r *Reservation) QuantityUsed() decimal.Decimal { return r.quantityUsed }
func (r *Reservation) Status() Status { return r.status }
func (r *Reservation) IsActive() bool { return r.status == StatusActive }
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }
func (r *Reservation) ReleasedAt() *time.Time { return r.releasedAt }
