package stock

import "fmt"

// MovementType represents the kind of quantity change a movement records
type MovementType string

const (
	// MovementTypeReceipt adds stock received from a supplier
	MovementTypeReceipt MovementType = "RECEIPT"

	// MovementTypeIssue consumes stock, optionally against a reservation
	MovementTypeIssue MovementType = "ISSUE"

	// MovementTypeReturn puts previously issued stock back
	MovementTypeReturn MovementType = "RETURN"

	// MovementTypeWriteOff removes damaged or lost stock
	MovementTypeWriteOff MovementType = "WRITE_OFF"

	// MovementTypeTransfer moves stock between two locations of the same material
	MovementTypeTransfer MovementType = "TRANSFER"

	// MovementTypeInventoryCount sets the counted absolute quantity
	MovementTypeInventoryCount MovementType = "INVENTORY_COUNT"
)

// AllMovementTypes returns all valid movement types
func AllMovementTypes() []MovementType {
	return []MovementType{
		MovementTypeReceipt,
		MovementTypeIssue,
		MovementTypeReturn,
		MovementTypeWriteOff,
		MovementTypeTransfer,
		MovementTypeInventoryCount,
	}
}

// String returns the string representation of the MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeReceipt,
		MovementTypeIssue,
		MovementTypeReturn,
		MovementTypeWriteOff,
		MovementTypeTransfer,
		MovementTypeInventoryCount:
		return true
	default:
		return false
	}
}

// IsInbound reports whether the type only ever increases current quantity
func (t MovementType) IsInbound() bool {
	return t == MovementTypeReceipt || t == MovementTypeReturn
}

// IsOutbound reports whether the type consumes available stock at its location
func (t MovementType) IsOutbound() bool {
	return t == MovementTypeIssue || t == MovementTypeWriteOff
}

// IsAbsolute reports whether applying the movement overwrites rather than adds.
// Absolute movements do not commute with anything else in the log.
func (t MovementType) IsAbsolute() bool {
	return t == MovementTypeInventoryCount
}

// ParseMovementType parses a string into a MovementType
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid movement type: %s", s)
	}
	return t, nil
}
