package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// GormStockLevelRepository implements StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GORM stock level repository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// GetForUpdate inserts an empty row for the key if none exists, then reads it
// under a row lock
func (r *GormStockLevelRepository) GetForUpdate(ctx context.Context, materialID, location string) (*stock.StockLevel, error) {
	db := conn(ctx, r.db)

	empty := stockLevelToModel(stock.NewStockLevel(materialID, location, nowUTC()))
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(empty).Error; err != nil {
		return nil, fmt.Errorf("failed to ensure stock level: %w", err)
	}

	var model StockLevelModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("material_id = ? AND location = ?", materialID, location).
		First(&model).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock level: %w", err)
	}
	return modelToStockLevel(&model), nil
}

// Find retrieves the row for a key without creating it
func (r *GormStockLevelRepository) Find(ctx context.Context, materialID, location string) (*stock.StockLevel, error) {
	var model StockLevelModel
	err := conn(ctx, r.db).
		Where("material_id = ? AND location = ?", materialID, location).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &stock.ErrStockLevelNotFound{MaterialID: materialID, Location: location}
		}
		return nil, fmt.Errorf("failed to find stock level: %w", err)
	}
	return modelToStockLevel(&model), nil
}

// ListByMaterial returns the material's rows ordered by location
func (r *GormStockLevelRepository) ListByMaterial(ctx context.Context, materialID string) ([]*stock.StockLevel, error) {
	return r.list(conn(ctx, r.db).Where("material_id = ?", materialID))
}

// ListAll returns every ledger row
func (r *GormStockLevelRepository) ListAll(ctx context.Context) ([]*stock.StockLevel, error) {
	return r.list(conn(ctx, r.db))
}

func (r *GormStockLevelRepository) list(query *gorm.DB) ([]*stock.StockLevel, error) {
	var models []StockLevelModel
	if err := query.Order("material_id ASC, location ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}
	levels := make([]*stock.StockLevel, len(models))
	for i := range models {
		levels[i] = modelToStockLevel(&models[i])
	}
	return levels, nil
}

// Save writes the row back
func (r *GormStockLevelRepository) Save(ctx context.Context, level *stock.StockLevel) error {
	if err := conn(ctx, r.db).Save(stockLevelToModel(level)).Error; err != nil {
		return fmt.Errorf("failed to save stock level: %w", err)
	}
	return nil
}

// TotalsByMaterial sums current quantity across locations
func (r *GormStockLevelRepository) TotalsByMaterial(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []struct {
		MaterialID string
		Total      decimal.Decimal
	}
	err := conn(ctx, r.db).Model(&StockLevelModel{}).
		Select("material_id, SUM(current_quantity) AS total").
		Group("material_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum stock levels: %w", err)
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.MaterialID] = row.Total
	}
	return totals, nil
}

// DeleteByMaterial removes every row of the material
func (r *GormStockLevelRepository) DeleteByMaterial(ctx context.Context, materialID string) error {
	if err := conn(ctx, r.db).Where("material_id = ?", materialID).Delete(&StockLevelModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete stock levels: %w", err)
	}
	return nil
}

func modelToStockLevel(m *StockLevelModel) *stock.StockLevel {
	return stock.ReconstructStockLevel(
		m.MaterialID,
		m.Location,
		m.CurrentQuantity,
		m.ReservedQuantity,
		m.OnOrder,
		m.LastMovementDate,
		m.UpdatedAt,
	)
}

func stockLevelToModel(s *stock.StockLevel) *StockLevelModel {
	return &StockLevelModel{
		MaterialID:       s.MaterialID(),
		Location:         s.Location(),
		CurrentQuantity:  s.CurrentQuantity(),
		ReservedQuantity: s.ReservedQuantity(),
		OnOrder:          s.OnOrder(),
		LastMovementDate: s.LastMovementDate(),
		UpdatedAt:        s.UpdatedAt(),
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
