package persistence

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andrescamacho/warehouse-go/internal/domain/dependency"
)

// GormEstimateRepository reads and edits the CRM estimate tables
type GormEstimateRepository struct {
	db *gorm.DB
}

// NewGormEstimateRepository creates a new GORM estimate repository
func NewGormEstimateRepository(db *gorm.DB) *GormEstimateRepository {
	return &GormEstimateRepository{db: db}
}

// ListReferences returns every line item naming the material, joined with its estimate
func (r *GormEstimateRepository) ListReferences(ctx context.Context, materialID string) ([]dependency.EstimateReference, error) {
	var rows []struct {
		EstimateID     string
		EstimateNumber string
		Status         string
		LineItemID     string
		Quantity       decimal.Decimal
	}
	err := conn(ctx, r.db).
		Table("estimate_line_items AS li").
		Select("e.id AS estimate_id, e.estimate_number, e.status, li.id AS line_item_id, li.quantity").
		Joins("JOIN estimates AS e ON e.id = li.estimate_id").
		Where("li.material_id = ?", materialID).
		Order("e.estimate_number ASC, li.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list estimate references: %w", err)
	}

	refs := make([]dependency.EstimateReference, len(rows))
	for i, row := range rows {
		refs[i] = dependency.EstimateReference{
			EstimateID:     row.EstimateID,
			EstimateNumber: row.EstimateNumber,
			EstimateStatus: dependency.EstimateStatus(row.Status),
			LineItemID:     row.LineItemID,
			Quantity:       row.Quantity,
		}
	}
	return refs, nil
}

// CancelEstimate sets the estimate's status to cancelled
func (r *GormEstimateRepository) CancelEstimate(ctx context.Context, estimateID string) error {
	result := conn(ctx, r.db).Model(&EstimateModel{}).
		Where("id = ?", estimateID).
		Updates(map[string]interface{}{
			"status":     string(dependency.EstimateCancelled),
			"updated_at": nowUTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to cancel estimate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("estimate not found: %s", estimateID)
	}
	return nil
}

// DeleteLineItem removes one estimate line item
func (r *GormEstimateRepository) DeleteLineItem(ctx context.Context, lineItemID string) error {
	result := conn(ctx, r.db).Where("id = ?", lineItemID).Delete(&EstimateLineItemModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete estimate line item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("estimate line item not found: %s", lineItemID)
	}
	return nil
}
