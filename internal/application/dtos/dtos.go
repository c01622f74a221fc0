// Package dtos holds the read models returned by command and query handlers.
// Derived values (available, status, remaining, overdue) are computed here on
// every conversion and never stored.
package dtos

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// MaterialDTO is the catalog view of a material
type MaterialDTO struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Unit          string           `json:"unit"`
	SKU           string           `json:"sku,omitempty"`
	Barcode       string           `json:"barcode,omitempty"`
	Description   string           `json:"description,omitempty"`
	MinStockLevel decimal.Decimal  `json:"min_stock_level"`
	MaxStockLevel *decimal.Decimal `json:"max_stock_level,omitempty"`
	CurrentCost   *decimal.Decimal `json:"current_cost,omitempty"`
	AverageCost   *decimal.Decimal `json:"average_cost,omitempty"`
	SupplierID    string           `json:"supplier_id,omitempty"`
	IsActive      bool             `json:"is_active"`
	TotalQuantity *decimal.Decimal `json:"total_quantity,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func ToMaterialDTO(m *catalog.Material) MaterialDTO {
	return MaterialDTO{
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

// StockLevelDTO is the ledger row with its derived values
type StockLevelDTO struct {
	MaterialID        string          `json:"material_id"`
	Location          string          `json:"location"`
	CurrentQuantity   decimal.Decimal `json:"current_quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	Status            string          `json:"status"`
	QuantityStatus    string          `json:"quantity_status"`
	OnOrder           bool            `json:"on_order"`
	OverAllocated     bool            `json:"over_allocated"`
	LastMovementDate  *time.Time      `json:"last_movement_date,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToStockLevelDTO derives status from the material's reorder threshold
func ToStockLevelDTO(level *stock.StockLevel, minStockLevel decimal.Decimal) StockLevelDTO {
	return StockLevelDTO{
		MaterialID:        level.MaterialID(),
		Location:          level.Location(),
		CurrentQuantity:   level.CurrentQuantity(),
		ReservedQuantity:  level.ReservedQuantity(),
		AvailableQuantity: level.Available(),
		Status:            string(level.Status(minStockLevel)),
		QuantityStatus:    string(level.QuantityStatus(minStockLevel)),
		OnOrder:           level.OnOrder(),
		OverAllocated:     level.IsOverAllocated(),
		LastMovementDate:  level.LastMovementDate(),
		UpdatedAt:         level.UpdatedAt(),
	}
}

// MovementDTO is one entry of the movement log
type MovementDTO struct {
	Seq                 int64            `json:"seq"`
	ID                  string           `json:"id"`
	MaterialID          string           `json:"material_id"`
	Type                string           `json:"type"`
	Location            string           `json:"location"`
	DestinationLocation string           `json:"destination_location,omitempty"`
	Quantity            decimal.Decimal  `json:"quantity"`
	Effect              decimal.Decimal  `json:"effect"`
	UnitCost            *decimal.Decimal `json:"unit_cost,omitempty"`
	SupplierID          string           `json:"supplier_id,omitempty"`
	OrderID             string           `json:"order_id,omitempty"`
	ReservationID       string           `json:"reservation_id,omitempty"`
	DeliveryID          string           `json:"delivery_id,omitempty"`
	Reference           string           `json:"reference,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	Actor               string           `json:"actor,omitempty"`
	OccurredAt          time.Time        `json:"occurred_at"`
}

func ToMovementDTO(m *stock.Movement) MovementDTO {
	return MovementDTO{
		Seq:                 m.Seq(),
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

func ToMovementDTOs(movements []*stock.Movement) []MovementDTO {
	out := make([]MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, ToMovementDTO(m))
	}
	return out
}

// ReservationDTO is a reservation with its derived remaining quantity
type ReservationDTO struct {
	ID               string          `json:"id"`
	MaterialID       string          `json:"material_id"`
	OrderID          string          `json:"order_id"`
	Location         string          `json:"location"`
	QuantityReserved decimal.Decimal `json:"quantity_reserved"`
	QuantityUsed     decimal.Decimal `json:"quantity_used"`
	Remaining        decimal.Decimal `json:"remaining"`
	Status           string          `json:"status"`
	Discrepancy      bool            `json:"discrepancy"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	ReleasedAt       *time.Time      `json:"released_at,omitempty"`
}

func ToReservationDTO(r *reservation.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:               r.ID(),
		MaterialID:       r.MaterialID(),
		OrderID:          r.OrderID(),
		Location:         r.Location(),
		QuantityReserved: r.QuantityReserved(),
		QuantityUsed:     r.QuantityUsed(),
		Remaining:        r.Remaining(),
		Status:           string(r.Status()),
		Discrepancy:      r.HasDiscrepancy(),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
		ReleasedAt:       r.ReleasedAt(),
	}
}

func ToReservationDTOs(reservations []*reservation.Reservation) []ReservationDTO {
	out := make([]ReservationDTO, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, ToReservationDTO(r))
	}
	return out
}

// DeliveryDTO is a delivery with remaining quantity and the overdue flag
type DeliveryDTO struct {
	ID                   string           `json:"id"`
	MaterialID           string           `json:"material_id"`
	Location             string           `json:"location"`
	SupplierID           string           `json:"supplier_id,omitempty"`
	OrderID              string           `json:"order_id,omitempty"`
	QuantityOrdered      decimal.Decimal  `json:"quantity_ordered"`
	QuantityDelivered    decimal.Decimal  `json:"quantity_delivered"`
	QuantityRemaining    decimal.Decimal  `json:"quantity_remaining"`
	UnitPrice            *decimal.Decimal `json:"unit_price,omitempty"`
	Status               string           `json:"status"`
	OrderDate            time.Time        `json:"order_date"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time       `json:"actual_delivery_date,omitempty"`
	TrackingNumber       string           `json:"tracking_number,omitempty"`
	OverReceived         bool             `json:"over_received"`
	Overdue              bool             `json:"overdue"`
	Notes                string           `json:"notes,omitempty"`
}

// ToDeliveryDTO evaluates overdue against now
func ToDeliveryDTO(d *delivery.Delivery, now time.Time) DeliveryDTO {
	return DeliveryDTO{
		ID:                   d.ID(),
		MaterialID:           d.MaterialID(),
		Location:             d.Location(),
		SupplierID:           d.SupplierID(),
		OrderID:              d.OrderID(),
		QuantityOrdered:      d.QuantityOrdered(),
		QuantityDelivered:    d.QuantityDelivered(),
		QuantityRemaining:    d.QuantityRemaining(),
		UnitPrice:            d.UnitPrice(),
		Status:               d.Status().String(),
		OrderDate:            d.OrderDate(),
		ExpectedDeliveryDate: d.ExpectedDeliveryDate(),
		ActualDeliveryDate:   d.ActualDeliveryDate(),
		TrackingNumber:       d.TrackingNumber(),
		OverReceived:         d.OverReceived(),
		Overdue:              d.IsOverdue(now),
		Notes:                d.Notes(),
	}
}
