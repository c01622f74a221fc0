package delivery

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// Spec carries the caller-supplied fields of a new delivery
type Spec struct {
	MaterialID           string
	Location             string
	SupplierID           string
	OrderID              string
	QuantityOrdered      decimal.Decimal
	UnitPrice            *decimal.Decimal
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	TrackingNumber       string
	Notes                string
}

// Delivery is a supplier commitment fulfilled by one or more receipts
type Delivery struct {
	id                   string
	materialID           string
	location             string
	supplierID           string
	orderID              string
	quantityOrdered      decimal.Decimal
	quantityDelivered    decimal.Decimal
	unitPrice            *decimal.Decimal
	status               Status
	orderDate            time.Time
	expectedDeliveryDate *time.Time
	actualDeliveryDate   *time.Time
	trackingNumber       string
	overReceived         bool
	notes                string
	createdAt            time.Time
	updatedAt            time.Time
}

// NewDelivery creates an ORDERED delivery
func NewDelivery(spec Spec, now time.Time) (*Delivery, error) {
	if spec.MaterialID == "" {
		return nil, shared.NewValidationError("material_id", "material_id is required")
	}
	if err := shared.RequirePositive("quantity_ordered", spec.QuantityOrdered); err != nil {
		return nil, err
	}
	if spec.UnitPrice != nil {
		if err := shared.RequireNonNegative("unit_price", *spec.UnitPrice); err != nil {
			return nil, err
		}
	}
	orderDate := spec.OrderDate
	if orderDate.IsZero() {
		orderDate = now
	}
	if spec.ExpectedDeliveryDate != nil && shared.StartOfDay(*spec.ExpectedDeliveryDate).Before(shared.StartOfDay(orderDate)) {
		return nil, shared.NewValidationError("expected_delivery_date", "cannot be before order date")
	}
	return &Delivery{
		id:                   uuid.New().String(),
		materialID:           spec.MaterialID,
		location:             shared.NormalizeLocation(spec.Location),
		supplierID:           spec.SupplierID,
		orderID:              spec.OrderID,
		quantityOrdered:      spec.QuantityOrdered,
		quantityDelivered:    decimal.Zero,
		unitPrice:            spec.UnitPrice,
		status:               StatusOrdered,
		orderDate:            orderDate,
		expectedDeliveryDate: spec.ExpectedDeliveryDate,
		trackingNumber:       spec.TrackingNumber,
		notes:                spec.Notes,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// ReconstructDelivery rebuilds a delivery from persistence
func ReconstructDelivery(
	id string,
	spec Spec,
	quantityDelivered decimal.Decimal,
	status Status,
	actualDeliveryDate *time.Time,
	overReceived bool,
	createdAt, updatedAt time.Time,
) *Delivery {
	return &Delivery{
		id:                   id,
		materialID:           spec.MaterialID,
		location:             spec.Location,
		supplierID:           spec.SupplierID,
		orderID:              spec.OrderID,
		quantityOrdered:      spec.QuantityOrdered,
		quantityDelivered:    quantityDelivered,
		unitPrice:            spec.UnitPrice,
		status:               status,
		orderDate:            spec.OrderDate,
		expectedDeliveryDate: spec.ExpectedDeliveryDate,
		actualDeliveryDate:   actualDeliveryDate,
		trackingNumber:       spec.TrackingNumber,
		overReceived:         overReceived,
		notes:                spec.Notes,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// TransitionTo performs a manual status change along the state graph
func (d *Delivery) TransitionTo(next Status, now time.Time) error {
	if !d.status.CanTransitionTo(next) {
		return &ErrInvalidTransition{DeliveryID: d.id, From: d.status, To: next}
	}
	d.status = next
	d.updatedAt = now
	return nil
}

// RecordReceipt adds a delivered increment and moves the status forward.
// Exceeding the ordered quantity is rejected unless acceptOverReceipt is set,
// in which case the delivery is flagged as over-received.
func (d *Delivery) RecordReceipt(quantity decimal.Decimal, receivedAt time.Time, acceptOverReceipt bool) error {
	if err := shared.RequirePositive("quantity", quantity); err != nil {
		return err
	}

	delivered := d.quantityDelivered.Add(quantity)
	next := StatusPartiallyDelivered
	if delivered.GreaterThanOrEqual(d.quantityOrdered) {
		next = StatusDelivered
	}
	if !d.status.CanTransitionTo(next) {
		return &ErrInvalidTransition{DeliveryID: d.id, From: d.status, To: next}
	}

	if delivered.GreaterThan(d.quantityOrdered) {
		if !acceptOverReceipt {
			return &ErrOverDelivery{
				DeliveryID: d.id,
				Ordered:    d.quantityOrdered,
				Delivered:  d.quantityDelivered,
				Attempted:  quantity,
			}
		}
		d.overReceived = true
	}

	d.quantityDelivered = delivered
	d.status = next
	d.actualDeliveryDate = &receivedAt
	d.updatedAt = receivedAt
	return nil
}

// QuantityRemaining is ordered minus delivered, never negative
func (d *Delivery) QuantityRemaining() decimal.Decimal {
	return shared.ClampZero(d.quantityOrdered.Sub(d.quantityDelivered))
}

// IsOverdue reports whether the expected date is before today and the delivery is still open
func (d *Delivery) IsOverdue(now time.Time) bool {
	if d.expectedDeliveryDate == nil || d.status.IsTerminal() {
		return false
	}
	return shared.StartOfDay(*d.expectedDeliveryDate).Before(shared.StartOfDay(now))
}

// IsOpen reports whether more stock is still expected
func (d *Delivery) IsOpen() bool {
	return !d.status.IsTerminal()
}

// Getters

func (d *Delivery) ID() string { return d.id }
func (d *Delivery) MaterialID() string { return d.materialID }
func (d *Delivery) Location() string { return d.location }
func (d *Delivery) SupplierID() string { return d.supplierID }
func (d *Delivery) OrderID() string { return d.orderID }
func (d *Delivery) QuantityOrdered() decimal.Decimal { return d.quantityOrdered }
func (d *Delivery) QuantityDelivered() decimal.Decimal { return d.quantityDelivered }
func (d *Delivery) UnitPrice() *decimal.Decimal { return d.unitPrice }
func (d *Delivery) Status() Status { return d.status }
func (d *Delivery) OrderDate() time.Time { return d.orderDate }
func (d *Delivery) ExpectedDeliveryDate() *time.Time { return d.expectedDeliveryDate }
func (d *Delivery) ActualDeliveryDate() *time.Time { return d.actualDeliveryDate }
func (d *Delivery) TrackingNumber() string { return d.trackingNumber }
func (d *Delivery) OverReceived() bool { return d.overReceived }
func (d *Delivery) Notes() string { return d.notes }
func (d *Delivery) CreatedAt() time.Time { return d.createdAt }
func (d *Delivery) UpdatedAt() time.Time { return d.updatedAt }
