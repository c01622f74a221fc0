package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
)

// GormDeliveryRepository implements DeliveryRepository using GORM
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GORM delivery repository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Create persists a new delivery
func (r *GormDeliveryRepository) Create(ctx context.Context, d *delivery.Delivery) error {
	if err := conn(ctx, r.db).Create(deliveryToModel(d)).Error; err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	return nil
}

// Save updates an existing delivery
func (r *GormDeliveryRepository) Save(ctx context.Context, d *delivery.Delivery) error {
	if err := conn(ctx, r.db).Save(deliveryToModel(d)).Error; err != nil {
		return fmt.Errorf("failed to save delivery: %w", err)
	}
	return nil
}

// FindByID retrieves a delivery by id
func (r *GormDeliveryRepository) FindByID(ctx context.Context, id string) (*delivery.Delivery, error) {
	return r.find(conn(ctx, r.db), id)
}

// FindByIDForUpdate retrieves a delivery and locks its row
func (r *GormDeliveryRepository) FindByIDForUpdate(ctx context.Context, id string) (*delivery.Delivery, error) {
	return r.find(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormDeliveryRepository) find(db *gorm.DB, id string) (*delivery.Delivery, error) {
	var model DeliveryModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &delivery.ErrDeliveryNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to find delivery: %w", err)
	}
	return modelToDelivery(&model), nil
}

// List returns deliveries matching the filter, most recent order first
func (r *GormDeliveryRepository) List(ctx context.Context, filter delivery.ListFilter) ([]*delivery.Delivery, error) {
	query := conn(ctx, r.db)
	if filter.MaterialID != "" {
		query = query.Where("material_id = ?", filter.MaterialID)
	}
	if filter.SupplierID != "" {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.OrderID != "" {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.OpenOnly {
		query = query.Where("status NOT IN ?", closedStatuses())
	}

	query = query.Order("order_date DESC, created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var models []DeliveryModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	out := make([]*delivery.Delivery, len(models))
	for i := range models {
		out[i] = modelToDelivery(&models[i])
	}
	return out, nil
}

// HasOpen reports whether a non-terminal delivery targets the key
func (r *GormDeliveryRepository) HasOpen(ctx context.Context, materialID, location string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&DeliveryModel{}).
		Where("material_id = ? AND location = ?", materialID, location).
		Where("status NOT IN ?", closedStatuses()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check open deliveries: %w", err)
	}
	return count > 0, nil
}

func closedStatuses() []string {
	var closed []string
	for _, s := range delivery.AllStatuses() {
		if s.IsTerminal() {
			closed = append(closed, s.String())
		}
	}
	return closed
}

func modelToDelivery(m *DeliveryModel) *delivery.Delivery {
	return delivery.ReconstructDelivery(
		m.ID,
		delivery.Spec{
			MaterialID:           m.MaterialID,
			Location:             m.Location,
			SupplierID:           m.SupplierID,
			OrderID:              m.OrderID,
			QuantityOrdered:      m.QuantityOrdered,
			UnitPrice:            m.UnitPrice,
			OrderDate:            m.OrderDate,
			ExpectedDeliveryDate: m.ExpectedDeliveryDate,
			TrackingNumber:       m.TrackingNumber,
			Notes:                m.Notes,
		},
		m.QuantityDelivered,
		delivery.Status(m.Status),
		m.ActualDeliveryDate,
		m.OverReceived,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func deliveryToModel(d *delivery.Delivery) *DeliveryModel {
	return &DeliveryModel{
		ID:                   d.ID(),
		MaterialID:           d.MaterialID(),
		Location:             d.Location(),
		SupplierID:           d.SupplierID(),
		OrderID:              d.OrderID(),
		QuantityOrdered:      d.QuantityOrdered(),
		QuantityDelivered:    d.QuantityDelivered(),
		UnitPrice:            d.UnitPrice(),
		Status:               d.Status().String(),
		OrderDate:            d.OrderDate(),
		ExpectedDeliveryDate: d.ExpectedDeliveryDate(),
		ActualDeliveryDate:   d.ActualDeliveryDate(),
		TrackingNumber:       d.TrackingNumber(),
		OverReceived:         d.OverReceived(),
		Notes:                d.Notes(),
		CreatedAt:            d.CreatedAt(),
		UpdatedAt:            d.UpdatedAt(),
	}
}
