package catalog

import "context"

// MaterialRepository defines persistence operations for materials
type MaterialRepository interface {
	Create(ctx context.Context, material *Material) error

	// Save persists changes to an existing material
	Save(ctx context.Context, material *Material) error

	// FindByID returns *ErrMaterialNotFound when the id is unknown
	FindByID(ctx context.Context, id string) (*Material, error)

	// FindByIDForUpdate is FindByID with a row lock held until the surrounding
	// unit of work ends
	FindByIDForUpdate(ctx context.Context, id string) (*Material, error)

	// List returns materials matching the filter; LowStockOnly is applied by the caller
	List(ctx context.Context, filter ListFilter) ([]*Material, int, error)

	// Delete physically removes the material row
	Delete(ctx context.Context, id string) error
}

// ListFilter narrows material listings
type ListFilter struct {
	Search     string
	Category   *Category
	SupplierID string
	ActiveOnly bool
	Limit      int
	Offset     int
}
