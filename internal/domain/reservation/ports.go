package reservation

import "context"

// ReservationRepository defines persistence operations for reservations
type ReservationRepository interface {
	Create(ctx context.Context, reservation *Reservation) error

	Save(ctx context.Context, reservation *Reservation) error

	// FindByID returns *ErrReservationNotFound when the id is unknown
	FindByID(ctx context.Context, id string) (*Reservation, error)

	// FindByIDForUpdate locks the row until the surrounding unit of work ends
	FindByIDForUpdate(ctx context.Context, id string) (*Reservation, error)

	ListByOrder(ctx context.Context, orderID string) ([]*Reservation, error)

	ListByMaterial(ctx context.Context, materialID string) ([]*Reservation, error)

	// List returns reservations for the given orders, or all when orderIDs is empty
	List(ctx context.Context, orderIDs []string) ([]*Reservation, error)

	// DeleteByMaterial removes every reservation row of the material and returns the count
	DeleteByMaterial(ctx context.Context, materialID string) (int, error)
}
