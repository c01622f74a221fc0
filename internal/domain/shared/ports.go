package shared

import (
	"context"
	"fmt"
)

// KeyLocker serializes work on named keys. Unrelated keys never block each other.
//
// Lock blocks until every key is held or ctx is done. Keys are acquired in sorted
// order so two callers locking overlapping sets cannot deadlock. The returned
// function releases all keys and is safe to call more than once.
type KeyLocker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// UnitOfWork runs fn inside a single storage transaction.
// Repository calls made with the ctx passed to fn join that transaction;
// any error returned by fn rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// StockKey is the lock key guarding one ledger row
func StockKey(materialID, location string) string {
	return fmt.Sprintf("stock:%s:%s", materialID, location)
}

// DeliveryKey is the lock key guarding one delivery record
func DeliveryKey(deliveryID string) string {
	return "delivery:" + deliveryID
}

// ReservationKey is the lock key guarding one reservation record
func ReservationKey(reservationID string) string {
	return "reservation:" + reservationID
}
