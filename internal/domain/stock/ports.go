package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockLevelRepository defines persistence operations for ledger rows
type StockLevelRepository interface {
	// GetForUpdate returns the row for the key, creating an empty one if needed,
	// and holds a row lock until the surrounding unit of work ends
	GetForUpdate(ctx context.Context, materialID, location string) (*StockLevel, error)

	// Find returns *ErrStockLevelNotFound when no row exists
	Find(ctx context.Context, materialID, location string) (*StockLevel, error)

	ListByMaterial(ctx context.Context, materialID string) ([]*StockLevel, error)

	ListAll(ctx context.Context) ([]*StockLevel, error)

	Save(ctx context.Context, level *StockLevel) error

	// TotalsByMaterial sums current quantity over all locations per material
	TotalsByMaterial(ctx context.Context) (map[string]decimal.Decimal, error)

	DeleteByMaterial(ctx context.Context, materialID string) error
}

// MovementRepository is the append-only movement log
type MovementRepository interface {
	// Append stores the movement and assigns its sequence number
	Append(ctx context.Context, movement *Movement) error

	List(ctx context.Context, opts QueryOptions) ([]*Movement, error)

	Count(ctx context.Context, opts QueryOptions) (int, error)

	// ListForKey returns every movement touching the key in sequence order,
	// including transfers whose destination is the location
	ListForKey(ctx context.Context, materialID, location string) ([]*Movement, error)
}

// QueryOptions defines filtering and pagination options for movement queries
type QueryOptions struct {
	MaterialID    string
	Location      string
	Type          *MovementType
	OrderID       string
	ReservationID string
	DeliveryID    string

	// Date range filtering
	StartDate *time.Time
	EndDate   *time.Time

	// Pagination
	Limit  int
	Offset int

	// Sorting
	OrderBy string // "occurred_at ASC" or "occurred_at DESC" (default DESC)
}

// DefaultQueryOptions returns default query options
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Limit:   50,
		Offset:  0,
		OrderBy: "occurred_at DESC",
	}
}
