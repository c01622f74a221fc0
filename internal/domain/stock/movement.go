package stock

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementInput carries the caller-supplied fields of a movement.
// For INVENTORY_COUNT, Quantity is the counted absolute value.
type MovementInput struct {
	MaterialID          string
	Type                MovementType
	Location            string
	DestinationLocation string
	Quantity            decimal.Decimal
	UnitCost            *decimal.Decimal
	SupplierID          string
	OrderID             string
	ReservationID       string
	DeliveryID          string
	Reference           string
	Notes               string
	Actor               string
	OccurredAt          time.Time
}

// Validate checks the per-type shape rules that do not depend on ledger state
func (in MovementInput) Validate() error {
	if in.MaterialID == "" {
		return &ErrInvalidMovement{Field: "material_id", Reason: "material_id is required"}
	}
	if !in.Type.IsValid() {
		return &ErrInvalidMovement{Field: "type", Reason: fmt.Sprintf("invalid movement type: %s", in.Type)}
	}
	if in.Location == "" {
		return &ErrInvalidMovement{Field: "location", Reason: "location is required"}
	}

	if in.Type.IsAbsolute() {
		if in.Quantity.IsNegative() {
			return &ErrInvalidMovement{Field: "quantity", Reason: "counted quantity cannot be negative"}
		}
	} else if !in.Quantity.IsPositive() {
		return &ErrInvalidMovement{Field: "quantity", Reason: "quantity must be greater than zero"}
	}

	if in.Type == MovementTypeTransfer {
		if strings.TrimSpace(in.DestinationLocation) == "" {
			return &ErrInvalidMovement{Field: "destination_location", Reason: "transfer requires a destination location"}
		}
		if in.DestinationLocation == in.Location {
			return &ErrInvalidMovement{Field: "destination_location", Reason: "destination must differ from source"}
		}
	} else if in.DestinationLocation != "" {
		return &ErrInvalidMovement{Field: "destination_location", Reason: "only transfers carry a destination"}
	}

	if in.ReservationID != "" && in.Type != MovementTypeIssue {
		return &ErrInvalidMovement{Field: "reservation_id", Reason: "only issues may reference a reservation"}
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return &ErrInvalidMovement{Field: "unit_cost", Reason: "unit cost cannot be negative"}
	}
	return nil
}

// Effect returns the signed change the movement makes to current quantity at its
// source location, given the current quantity read under lock
func (in MovementInput) Effect(current decimal.Decimal) decimal.Decimal {
	switch {
	case in.Type.IsInbound():
		return in.Quantity
	case in.Type.IsAbsolute():
		return in.Quantity.Sub(current)
	default:
		return in.Quantity.Neg()
	}
}

// Movement is an immutable fact in the log
type Movement struct {
	seq                 int64
	id                  string
	materialID          string
	movementType        MovementType
	location            string
	destinationLocation string
	quantity            decimal.Decimal
	effect              decimal.Decimal
	unitCost            *decimal.Decimal
	supplierID          string
	orderID             string
	reservationID       string
	deliveryID          string
	reference           string
	notes               string
	actor               string
	occurredAt          time.Time
}

// NewMovement creates a movement with the effect computed against the locked ledger row
func NewMovement(in MovementInput, effect decimal.Decimal) (*Movement, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.OccurredAt.IsZero() {
		return nil, &ErrInvalidMovement{Field: "occurred_at", Reason: "occurred_at is required"}
	}
	return &Movement{
		id:                  uuid.New().String(),
		materialID:          in.MaterialID,
		movementType:        in.Type,
		location:            in.Location,
		destinationLocation: in.DestinationLocation,
		quantity:            in.Quantity,
		effect:              effect,
		unitCost:            in.UnitCost,
		supplierID:          in.SupplierID,
		orderID:             in.OrderID,
		reservationID:       in.ReservationID,
		deliveryID:          in.DeliveryID,
		reference:           in.Reference,
		notes:               in.Notes,
		actor:               in.Actor,
		occurredAt:          in.OccurredAt,
	}, nil
}

// ReconstructMovement rebuilds a movement from persistence
func ReconstructMovement(seq int64, id string, in MovementInput, effect decimal.Decimal) *Movement {
	return &Movement{
		seq:                 seq,
		id:                  id,
		materialID:          in.MaterialID,
		movementType:        in.Type,
		location:            in.Location,
		destinationLocation: in.DestinationLocation,
		quantity:            in.Quantity,
		effect:              effect,
		unitCost:            in.UnitCost,
		supplierID:          in.SupplierID,
		orderID:             in.OrderID,
		reservationID:       in.ReservationID,
		deliveryID:          in.DeliveryID,
		reference:           in.Reference,
		notes:               in.Notes,
		actor:               in.Actor,
		occurredAt:          in.OccurredAt,
	}
}

// AssignSeq is called by the repository once the log position is known
func (m *Movement) AssignSeq(seq int64) {
	m.seq = seq
}

// EffectAt returns the signed change this movement made at the given location
func (m *Movement) EffectAt(location string) decimal.Decimal {
	switch location {
	case m.location:
		return m.effect
	case m.destinationLocation:
		return m.quantity
	default:
		return decimal.Zero
	}
}

// Touches reports whether the movement affects the given location
func (m *Movement) Touches(location string) bool {
	return m.location == location || (m.destinationLocation != "" && m.destinationLocation == location)
}

// Getters

func (m *Movement) Seq() int64 { return m.seq }
func (m *Movement) ID() string { return m.id }
func (m *Movement) MaterialID() string { return m.materialID }
func (m *Movement) Type() MovementType { return m.movementType }
func (m *Movement) Location() string { return m.location }
func (m *Movement) DestinationLocation() string { return m.destinationLocation }
func (m *Movement) Quantity() decimal.Decimal { return m.quantity }
func (m *Movement) Effect() decimal.Decimal { return m.effect }
func (m *Movement) UnitCost() *decimal.Decimal { return m.unitCost }
func (m *Movement) SupplierID() string { return m.supplierID }
func (m *Movement) OrderID() string { return m.orderID }
func (m *Movement) ReservationID() string { return m.reservationID }
func (m *Movement) DeliveryID() string { return m.deliveryID }
func (m *Movement) Reference() string { return m.reference }
func (m *Movement) Notes() string { return m.notes }
func (m *Movement) Actor() string { return m.actor }
func (m *Movement) OccurredAt() time.Time { return m.occurredAt }
