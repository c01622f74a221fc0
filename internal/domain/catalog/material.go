package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// ArchiveMarker prefixes the timestamp appended to archived material names
const ArchiveMarker = "[ARCHIVED"

var archivedName = regexp.MustCompile(` \[ARCHIVED \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\]$`)

// MaterialSpec carries the caller-supplied fields of a new material
type MaterialSpec struct {
	Name          string
	Category      Category
	Unit          Unit
	SKU           string
	Barcode       string
	Description   string
	MinStockLevel decimal.Decimal
	MaxStockLevel *decimal.Decimal
	CurrentCost   *decimal.Decimal
	SupplierID    string
}

// MaterialPatch is a partial update; nil fields are left untouched
type MaterialPatch struct {
	Name          *string
	Category      *Category
	Unit          *Unit
	SKU           *string
	Barcode       *string
	Description   *string
	MinStockLevel *decimal.Decimal
	MaxStockLevel *decimal.Decimal
	ClearMaxStock bool
	CurrentCost   *decimal.Decimal
	SupplierID    *string
}

// Material is the aggregate root of the catalog: something the warehouse tracks stock of
type Material struct {
	id            string
	name          string
	category      Category
	unit          Unit
	sku           string
	barcode       string
	description   string
	minStockLevel decimal.Decimal
	maxStockLevel *decimal.Decimal
	currentCost   *decimal.Decimal
	averageCost   *decimal.Decimal
	supplierID    string
	isActive      bool
	createdAt     time.Time
	updatedAt     time.Time
}

// NewMaterial creates an active material and validates it
func NewMaterial(spec MaterialSpec, now time.Time) (*Material, error) {
	m := &Material{
		id:            uuid.New().String(),
		name:          strings.TrimSpace(spec.Name),
		category:      spec.Category,
		unit:          spec.Unit,
		sku:           strings.TrimSpace(spec.SKU),
		barcode:       strings.TrimSpace(spec.Barcode),
		description:   spec.Description,
		minStockLevel: spec.MinStockLevel,
		maxStockLevel: spec.MaxStockLevel,
		currentCost:   spec.CurrentCost,
		supplierID:    spec.SupplierID,
		isActive:      true,
		createdAt:     now,
		updatedAt:     now,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ReconstructMaterial rebuilds a material from persistence without validation
func ReconstructMaterial(
	id, name string,
	category Category,
	unit Unit,
	sku, barcode, description string,
	minStockLevel decimal.Decimal,
	maxStockLevel, currentCost, averageCost *decimal.Decimal,
	supplierID string,
	isActive bool,
	createdAt, updatedAt time.Time,
) *Material {
	return &Material{
		id:            id,
		name:          name,
		category:      category,
		unit:          unit,
		sku:           sku,
		barcode:       barcode,
		description:   description,
		minStockLevel: minStockLevel,
		maxStockLevel: maxStockLevel,
		currentCost:   currentCost,
		averageCost:   averageCost,
		supplierID:    supplierID,
		isActive:      isActive,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Validate checks the catalog invariants
func (m *Material) Validate() error {
	if m.name == "" {
		return shared.NewValidationError("name", "name is required")
	}
	if !m.category.IsValid() {
		return shared.NewValidationError("category", fmt.Sprintf("invalid category: %s", m.category))
	}
	if !m.unit.IsValid() {
		return shared.NewValidationError("unit", fmt.Sprintf("invalid unit: %s", m.unit))
	}
	if m.minStockLevel.IsNegative() {
		return shared.NewValidationError("min_stock_level", "cannot be negative")
	}
	if m.maxStockLevel != nil && m.maxStockLevel.LessThan(m.minStockLevel) {
		return &ErrInvalidThresholds{Min: m.minStockLevel, Max: *m.maxStockLevel}
	}
	if m.currentCost != nil && m.currentCost.IsNegative() {
		return shared.NewValidationError("current_cost", "cannot be negative")
	}
	return nil
}

// Apply merges a patch into the material. On error the material is unchanged.
func (m *Material) Apply(p MaterialPatch, now time.Time) error {
	next := *m
	if p.Name != nil {
		next.name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		next.category = *p.Category
	}
	if p.Unit != nil {
		next.unit = *p.Unit
	}
	if p.SKU != nil {
		next.sku = strings.TrimSpace(*p.SKU)
	}
	if p.Barcode != nil {
		next.barcode = strings.TrimSpace(*p.Barcode)
	}
	if p.Description != nil {
		next.description = *p.Description
	}
	if p.MinStockLevel != nil {
		next.minStockLevel = *p.MinStockLevel
	}
	if p.ClearMaxStock {
		next.maxStockLevel = nil
	} else if p.MaxStockLevel != nil {
		next.maxStockLevel = p.MaxStockLevel
	}
	if p.CurrentCost != nil {
		next.currentCost = p.CurrentCost
	}
	if p.SupplierID != nil {
		next.supplierID = *p.SupplierID
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.updatedAt = now
	*m = next
	return nil
}

// Deactivate hides the material from active use. It never cascades.
func (m *Material) Deactivate(now time.Time) {
	m.isActive = false
	m.updatedAt = now
}

// Activate reverses Deactivate
func (m *Material) Activate(now time.Time) {
	m.isActive = true
	m.updatedAt = now
}

// Archive renames the material with an archival marker and deactivates it
func (m *Material) Archive(now time.Time) {
	if !m.IsArchived() {
		m.name = fmt.Sprintf("%s %s %s]", m.name, ArchiveMarker, now.UTC().Format("2006-01-02 15:04:05"))
	}
	m.Deactivate(now)
}

// IsArchived reports whether the name ends with a complete archival marker
func (m *Material) IsArchived() bool {
	return archivedName.MatchString(m.name)
}

// RecordReceiptCost folds a received lot into the weighted average cost.
// onHand is the quantity held across all locations before the receipt.
func (m *Material) RecordReceiptCost(onHand, quantity, unitCost decimal.Decimal, now time.Time) {
	cost := unitCost
	m.currentCost = &cost

	onHand = shared.ClampZero(onHand)
	total := onHand.Add(quantity)
	if m.averageCost == nil || onHand.IsZero() || !total.IsPositive() {
		avg := unitCost
		m.averageCost = &avg
	} else {
		avg := m.averageCost.Mul(onHand).Add(unitCost.Mul(quantity)).Div(total).Round(4)
		m.averageCost = &avg
	}
	m.updatedAt = now
}

// IsLowStock reports whether a total on-hand quantity is at or below the reorder threshold
func (m *Material) IsLowStock(totalOnHand decimal.Decimal) bool {
	return totalOnHand.LessThanOrEqual(m.minStockLevel)
}

// Getters

func (m *Material) ID() string { return m.id }
func (m *Material) Name() string { return m.name }
func (m *Material) Category() Category { return m.category }
func (m *Material) Unit() Unit { return m.unit }
func (m *Material) SKU() string { return m.sku }
func (m *Material) Barcode() string { return m.barcode }
func (m *Material) Description() string { return m.description }
func (m *Material) MinStockLevel() decimal.Decimal { return m.minStockLevel }
func (m *Material) MaxStockLevel() *decimal.Decimal { return m.maxStockLevel }
func (m *Material) CurrentCost() *decimal.Decimal { return m.currentCost }
func (m *Material) AverageCost() *decimal.Decimal { return m.averageCost }
func (m *Material) SupplierID() string { return m.supplierID }
func (m *Material) IsActive() bool { return m.isActive }
func (m *Material) CreatedAt() time.Time { return m.createdAt }
func (m *Material) UpdatedAt() time.Time { return m.updatedAt }
