package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
)

// GormMaterialRepository implements MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GORM material repository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// Create persists a new material
func (r *GormMaterialRepository) Create(ctx context.Context, material *catalog.Material) error {
	if err := conn(ctx, r.db).Create(materialToModel(material)).Error; err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	return nil
}

// Save updates every column of an existing material
func (r *GormMaterialRepository) Save(ctx context.Context, material *catalog.Material) error {
	if err := conn(ctx, r.db).Save(materialToModel(material)).Error; err != nil {
		return fmt.Errorf("failed to save material: %w", err)
	}
	return nil
}

// FindByID retrieves a material by id
func (r *GormMaterialRepository) FindByID(ctx context.Context, id string) (*catalog.Material, error) {
	return r.find(conn(ctx, r.db), id)
}

// FindByIDForUpdate retrieves a material and locks its row
func (r *GormMaterialRepository) FindByIDForUpdate(ctx context.Context, id string) (*catalog.Material, error) {
	return r.find(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormMaterialRepository) find(db *gorm.DB, id string) (*catalog.Material, error) {
	var model MaterialModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &catalog.ErrMaterialNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to find material: %w", err)
	}
	return modelToMaterial(&model), nil
}

// List returns one page of matching materials ordered by name, plus the total match count
func (r *GormMaterialRepository) List(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Material, int, error) {
	query := conn(ctx, r.db).Model(&MaterialModel{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(barcode) LIKE ?)", pattern, pattern, pattern)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", filter.Category.String())
	}
	if filter.SupplierID != "" {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count materials: %w", err)
	}

	query = query.Order("name ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var models []MaterialModel
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list materials: %w", err)
	}

	materials := make([]*catalog.Material, len(models))
	for i := range models {
		materials[i] = modelToMaterial(&models[i])
	}
	return materials, int(total), nil
}

// Delete removes the material row
func (r *GormMaterialRepository) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&MaterialModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete material: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &catalog.ErrMaterialNotFound{ID: id}
	}
	return nil
}

func modelToMaterial(m *MaterialModel) *catalog.Material {
	return catalog.ReconstructMaterial(
		m.ID,
		m.Name,
		catalog.Category(m.Category),
		catalog.Unit(m.Unit),
		m.SKU,
		m.Barcode,
		m.Description,
		m.MinStockLevel,
		m.MaxStockLevel,
		m.CurrentCost,
		m.AverageCost,
		m.SupplierID,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func materialToModel(m *catalog.Material) *MaterialModel {
	return &MaterialModel{
		ID:            m.ID(),
		Name:          m.Name(),
		Category:      m.Category().String(),
		Unit:          m.Unit().String(),
		SKU:           m.SKU(),
		Barcode:       m.Barcode(),
		Description:   m.Description(),
		MinStockLevel: m.MinStockLevel(),
		MaxStockLevel: m.MaxStockLevel(),
		CurrentCost:   m.CurrentCost(),
		AverageCost:   m.AverageCost(),
		SupplierID:    m.SupplierID(),
		IsActive:      m.IsActive(),
		CreatedAt:     m.CreatedAt(),
		UpdatedAt:     m.UpdatedAt(),
	}
}
