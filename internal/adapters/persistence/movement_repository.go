package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// allowedMovementOrder whitelists the ORDER BY clauses callers may request
var allowedMovementOrder = map[string]string{
	"occurred_at ASC":  "occurred_at ASC, seq ASC",
	"occurred_at DESC": "occurred_at DESC, seq DESC",
	"seq ASC":          "seq ASC",
	"seq DESC":         "seq DESC",
}

// GormMovementRepository implements the append-only MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GORM movement repository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append inserts the movement and assigns the generated sequence number
func (r *GormMovementRepository) Append(ctx context.Context, movement *stock.Movement) error {
	model := movementToModel(movement)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	movement.AssignSeq(model.Seq)
	return nil
}

// List retrieves movements with optional filtering, ordering and pagination
func (r *GormMovementRepository) List(ctx context.Context, opts stock.QueryOptions) ([]*stock.Movement, error) {
	query := r.applyFilters(conn(ctx, r.db), opts)

	orderBy, ok := allowedMovementOrder[opts.OrderBy]
	if !ok {
		orderBy = allowedMovementOrder["occurred_at DESC"]
	}
	query = query.Order(orderBy)

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var models []MovementModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return modelsToMovements(models)
}

// Count returns the number of movements matching the filters, ignoring pagination
func (r *GormMovementRepository) Count(ctx context.Context, opts stock.QueryOptions) (int, error) {
	var count int64
	query := r.applyFilters(conn(ctx, r.db).Model(&MovementModel{}), opts)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count movements: %w", err)
	}
	return int(count), nil
}

// ListForKey returns every movement touching (material, location) in sequence order
func (r *GormMovementRepository) ListForKey(ctx context.Context, materialID, location string) ([]*stock.Movement, error) {
	var models []MovementModel
	err := conn(ctx, r.db).
		Where("material_id = ?", materialID).
		Where("(location = ? OR destination_location = ?)", location, location).
		Order("seq ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list movements for key: %w", err)
	}
	return modelsToMovements(models)
}

func (r *GormMovementRepository) applyFilters(query *gorm.DB, opts stock.QueryOptions) *gorm.DB {
	if opts.MaterialID != "" {
		query = query.Where("material_id = ?", opts.MaterialID)
	}
	// A location matches either end of a transfer
	if opts.Location != "" {
		query = query.Where("(location = ? OR destination_location = ?)", opts.Location, opts.Location)
	}
	if opts.Type != nil {
		query = query.Where("movement_type = ?", opts.Type.String())
	}
	if opts.OrderID != "" {
		query = query.Where("order_id = ?", opts.OrderID)
	}
	if opts.ReservationID != "" {
		query = query.Where("reservation_id = ?", opts.ReservationID)
	}
	if opts.DeliveryID != "" {
		query = query.Where("delivery_id = ?", opts.DeliveryID)
	}
	if opts.StartDate != nil {
		query = query.Where("occurred_at >= ?", *opts.StartDate)
	}
	if opts.EndDate != nil {
		query = query.Where("occurred_at <= ?", *opts.EndDate)
	}
	return query
}

func modelsToMovements(models []MovementModel) ([]*stock.Movement, error) {
	movements := make([]*stock.Movement, len(models))
	for i := range models {
		m, err := modelToMovement(&models[i])
		if err != nil {
			return nil, err
		}
		movements[i] = m
	}
	return movements, nil
}

func modelToMovement(m *MovementModel) (*stock.Movement, error) {
	movementType, err := stock.ParseMovementType(m.Type)
	if err != nil {
		return nil, fmt.Errorf("invalid movement type in database: %w", err)
	}
	return stock.ReconstructMovement(m.Seq, m.ID, stock.MovementInput{
		MaterialID:          m.MaterialID,
		Type:                movementType,
		Location:            m.Location,
		DestinationLocation: m.DestinationLocation,
		Quantity:            m.Quantity,
		UnitCost:            m.UnitCost,
		SupplierID:          m.SupplierID,
		OrderID:             m.OrderID,
		ReservationID:       m.ReservationID,
		DeliveryID:          m.DeliveryID,
		Reference:           m.Reference,
		Notes:               m.Notes,
		Actor:               m.Actor,
		OccurredAt:          m.OccurredAt,
	}, m.Effect), nil
}

func movementToModel(m *stock.Movement) *MovementModel {
	return &MovementModel{
		ID:                  m.ID(),
		MaterialID:          m.MaterialID(),
		Type:                m.Type().String(),
		Location:            m.Location(),
		DestinationLocation: m.DestinationLocation(),
		Quantity:            m.Quantity(),
		Effect:              m.Effect(),
		UnitCost:            m.UnitCost(),
		SupplierID:          m.SupplierID(),
		OrderID:             m.OrderID(),
		ReservationID:       m.ReservationID(),
		DeliveryID:          m.DeliveryID(),
		Reference:           m.Reference(),
		Notes:               m.Notes(),
		Actor:               m.Actor(),
		OccurredAt:          m.OccurredAt(),
	}
}
