package delivery

import "context"

// DeliveryRepository defines persistence operations for deliveries
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *Delivery) error

	Save(ctx context.Context, delivery *Delivery) error

	// FindByID returns *ErrDeliveryNotFound when the id is unknown
	FindByID(ctx context.Context, id string) (*Delivery, error)

	// FindByIDForUpdate locks the row until the surrounding unit of work ends
	FindByIDForUpdate(ctx context.Context, id string) (*Delivery, error)

	List(ctx context.Context, filter ListFilter) ([]*Delivery, error)

	// HasOpen reports whether any non-terminal delivery targets the key
	HasOpen(ctx context.Context, materialID, location string) (bool, error)
}

// ListFilter narrows delivery listings. Overdue filtering is applied by the
// caller because it depends on the clock.
type ListFilter struct {
	MaterialID string
	SupplierID string
	OrderID    string
	Status     *Status
	OpenOnly   bool
	Limit      int
	Offset     int
}
