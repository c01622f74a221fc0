package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialModel represents the materials table
type MaterialModel struct {
	ID            string           `gorm:"column:id;primaryKey"`
	Name          string           `gorm:"column:name;not null;index"`
	Category      string           `gorm:"column:category;not null;index"`
	Unit          string           `gorm:"column:unit;not null"`
	SKU           string           `gorm:"column:sku;index"`
	Barcode       string           `gorm:"column:barcode;index"`
	Description   string           `gorm:"column:description;type:text"`
	MinStockLevel decimal.Decimal  `gorm:"column:min_stock_level;type:decimal(20,6);not null;default:0"`
	MaxStockLevel *decimal.Decimal `gorm:"column:max_stock_level;type:decimal(20,6)"`
	CurrentCost   *decimal.Decimal `gorm:"column:current_cost;type:decimal(20,6)"`
	AverageCost   *decimal.Decimal `gorm:"column:average_cost;type:decimal(20,6)"`
	SupplierID    string           `gorm:"column:supplier_id;index"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time        `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;not null"`
}

func (MaterialModel) TableName() string {
	return "materials"
}

// StockLevelModel represents the stock_levels table, one row per (material, location)
type StockLevelModel struct {
	MaterialID       string          `gorm:"column:material_id;primaryKey"`
	Location         string          `gorm:"column:location;primaryKey"`
	CurrentQuantity  decimal.Decimal `gorm:"column:current_quantity;type:decimal(20,6);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"column:reserved_quantity;type:decimal(20,6);not null;default:0"`
	OnOrder          bool            `gorm:"column:on_order;not null;default:false"`
	LastMovementDate *time.Time      `gorm:"column:last_movement_date"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;not null"`
}

func (StockLevelModel) TableName() string {
	return "stock_levels"
}

// MovementModel represents the append-only stock_movements table.
// Seq gives the replay order.
type MovementModel struct {
	Seq                 int64            `gorm:"column:seq;primaryKey;autoIncrement"`
	ID                  string           `gorm:"column:id;uniqueIndex;not null"`
	MaterialID          string           `gorm:"column:material_id;not null;index:idx_movements_key"`
	Type                string           `gorm:"column:movement_type;not null;index"`
	Location            string           `gorm:"column:location;not null;index:idx_movements_key"`
	DestinationLocation string           `gorm:"column:destination_location"`
	Quantity            decimal.Decimal  `gorm:"column:quantity;type:decimal(20,6);not null"`
	Effect              decimal.Decimal  `gorm:"column:effect;type:decimal(20,6);not null"`
	UnitCost            *decimal.Decimal `gorm:"column:unit_cost;type:decimal(20,6)"`
	SupplierID          string           `gorm:"column:supplier_id"`
	OrderID             string           `gorm:"column:order_id;index"`
	ReservationID       string           `gorm:"column:reservation_id;index"`
	DeliveryID          string           `gorm:"column:delivery_id;index"`
	Reference           string           `gorm:"column:reference"`
	Notes               string           `gorm:"column:notes;type:text"`
	Actor               string           `gorm:"column:actor"`
	OccurredAt          time.Time        `gorm:"column:occurred_at;not null;index"`
}

func (MovementModel) TableName() string {
	return "stock_movements"
}

// ReservationModel represents the material_reservations table
type ReservationModel struct {
	ID               string          `gorm:"column:id;primaryKey"`
	MaterialID       string          `gorm:"column:material_id;not null;index"`
	OrderID          string          `gorm:"column:order_id;not null;index"`
	Location         string          `gorm:"column:location;not null"`
	QuantityReserved decimal.Decimal `gorm:"column:quantity_reserved;type:decimal(20,6);not null"`
	QuantityUsed     decimal.Decimal `gorm:"column:quantity_used;type:decimal(20,6);not null;default:0"`
	Status           string          `gorm:"column:status;not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;not null"`
	ReleasedAt       *time.Time      `gorm:"column:released_at"`
}

func (ReservationModel) TableName() string {
	return "material_reservations"
}

// DeliveryModel represents the material_deliveries table
type DeliveryModel struct {
	ID                   string           `gorm:"column:id;primaryKey"`
	MaterialID           string           `gorm:"column:material_id;not null;index"`
	Location             string           `gorm:"column:location;not null"`
	SupplierID           string           `gorm:"column:supplier_id;index"`
	OrderID              string           `gorm:"column:order_id;index"`
	QuantityOrdered      decimal.Decimal  `gorm:"column:quantity_ordered;type:decimal(20,6);not null"`
	QuantityDelivered    decimal.Decimal  `gorm:"column:quantity_delivered;type:decimal(20,6);not null;default:0"`
	UnitPrice            *decimal.Decimal `gorm:"column:unit_price;type:decimal(20,6)"`
	Status               string           `gorm:"column:status;not null;index"`
	OrderDate            time.Time        `gorm:"column:order_date;not null"`
	ExpectedDeliveryDate *time.Time       `gorm:"column:expected_delivery_date"`
	ActualDeliveryDate   *time.Time       `gorm:"column:actual_delivery_date"`
	TrackingNumber       string           `gorm:"column:tracking_number"`
	OverReceived         bool             `gorm:"column:over_received;not null;default:false"`
	Notes                string           `gorm:"column:notes;type:text"`
	CreatedAt            time.Time        `gorm:"column:created_at;not null"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;not null"`
}

func (DeliveryModel) TableName() string {
	return "material_deliveries"
}

// EstimateModel represents the CRM estimates table. The engine only reads it
// and cancels estimates during a material deletion cascade.
type EstimateModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	EstimateNumber string    `gorm:"column:estimate_number;not null"`
	Status         string    `gorm:"column:status;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (EstimateModel) TableName() string {
	return "estimates"
}

// EstimateLineItemModel represents the CRM estimate_line_items table
type EstimateLineItemModel struct {
	ID         string          `gorm:"column:id;primaryKey"`
	EstimateID string          `gorm:"column:estimate_id;not null;index"`
	MaterialID string          `gorm:"column:material_id;index"`
	Quantity   decimal.Decimal `gorm:"column:quantity;type:decimal(20,6);not null"`
}

func (EstimateLineItemModel) TableName() string {
	return "estimate_line_items"
}

// AllModels lists every table the engine migrates
func AllModels() []interface{} {
	return []interface{}{
		&MaterialModel{},
		&StockLevelModel{},
		&MovementModel{},
		&ReservationModel{},
		&DeliveryModel{},
		&EstimateModel{},
		&EstimateLineItemModel{},
	}
}
