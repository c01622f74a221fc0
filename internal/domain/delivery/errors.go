package delivery

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidTransition is returned when the state graph forbids a status change
type ErrInvalidTransition struct {
	DeliveryID string
	From       Status
	To         Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid delivery transition for %s: %s -> %s", e.DeliveryID, e.From, e.To)
}

// ErrOverDelivery is returned when a receipt would push delivered above ordered
type ErrOverDelivery struct {
	DeliveryID string
	Ordered    decimal.Decimal
	Delivered  decimal.Decimal
	Attempted  decimal.Decimal
}

func (e *ErrOverDelivery) Error() string {
	return fmt.Sprintf("over-delivery on %s: ordered=%s, delivered=%s, attempted=%s",
		e.DeliveryID, e.Ordered, e.Delivered, e.Attempted)
}

// ErrDeliverySync wraps a storage failure while writing a receipt and its
// movement together. Neither record was changed.
type ErrDeliverySync struct {
	DeliveryID string
	Err        error
}

func (e *ErrDeliverySync) Error() string {
	return fmt.Sprintf("delivery %s could not be synchronised with stock: %v", e.DeliveryID, e.Err)
}

func (e *ErrDeliverySync) Unwrap() error {
	return e.Err
}

// ErrDeliveryNotFound indicates a delivery id does not exist
type ErrDeliveryNotFound struct {
	ID string
}

func (e *ErrDeliveryNotFound) Error() string {
	return fmt.Sprintf("delivery not found: %s", e.ID)
}
