package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
)

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GORM reservation repository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// Create persists a new reservation
func (r *GormReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	if err := conn(ctx, r.db).Create(reservationToModel(res)).Error; err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// Save updates an existing reservation
func (r *GormReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	if err := conn(ctx, r.db).Save(reservationToModel(res)).Error; err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

// FindByID retrieves a reservation by id
func (r *GormReservationRepository) FindByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	return r.find(conn(ctx, r.db), id)
}

// FindByIDForUpdate retrieves a reservation and locks its row
func (r *GormReservationRepository) FindByIDForUpdate(ctx context.Context, id string) (*reservation.Reservation, error) {
	return r.find(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormReservationRepository) find(db *gorm.DB, id string) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &reservation.ErrReservationNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return modelToReservation(&model), nil
}

// ListByOrder returns the order's reservations oldest first
func (r *GormReservationRepository) ListByOrder(ctx context.Context, orderID string) ([]*reservation.Reservation, error) {
	return r.list(conn(ctx, r.db).Where("order_id = ?", orderID))
}

// ListByMaterial returns every reservation row of the material, released or not
func (r *GormReservationRepository) ListByMaterial(ctx context.Context, materialID string) ([]*reservation.Reservation, error) {
	return r.list(conn(ctx, r.db).Where("material_id = ?", materialID))
}

// List returns reservations of the given orders, or all when orderIDs is empty
func (r *GormReservationRepository) List(ctx context.Context, orderIDs []string) ([]*reservation.Reservation, error) {
	query := conn(ctx, r.db)
	if len(orderIDs) > 0 {
		query = query.Where("order_id IN ?", orderIDs)
	}
	return r.list(query)
}

func (r *GormReservationRepository) list(query *gorm.DB) ([]*reservation.Reservation, error) {
	var models []ReservationModel
	if err := query.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	out := make([]*reservation.Reservation, len(models))
	for i := range models {
		out[i] = modelToReservation(&models[i])
	}
	return out, nil
}

// DeleteByMaterial removes the material's reservation rows
func (r *GormReservationRepository) DeleteByMaterial(ctx context.Context, materialID string) (int, error) {
	result := conn(ctx, r.db).Where("material_id = ?", materialID).Delete(&ReservationModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete reservations: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

func modelToReservation(m *ReservationModel) *reservation.Reservation {
	return reservation.ReconstructReservation(
		m.ID,
		m.MaterialID,
		m.OrderID,
		m.Location,
		m.QuantityReserved,
		m.QuantityUsed,
		reservation.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
		m.ReleasedAt,
	)
}

func reservationToModel(r *reservation.Reservation) *ReservationModel {
	return &ReservationModel{
		ID:               r.ID(),
		MaterialID:       r.MaterialID(),
		OrderID:          r.OrderID(),
		Location:         r.Location(),
		QuantityReserved: r.QuantityReserved(),
		QuantityUsed:     r.QuantityUsed(),
		Status:           string(r.Status()),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
		ReleasedAt:       r.ReleasedAt(),
	}
}
