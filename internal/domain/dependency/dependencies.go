package dependency

import (
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// Dependencies is everything that references a material
type Dependencies struct {
	MaterialID        string
	ApprovedEstimates []EstimateReference
	OtherEstimates    []EstimateReference

	// Reservations holds every reservation row, released or not. Any row blocks
	// deletion because the foreign key does.
	Reservations []*reservation.Reservation

	// RecentMovements is informational and never blocks
	RecentMovements []*stock.Movement
}

// Split partitions estimate references into approved and non-approved
func Split(refs []EstimateReference) (approved, other []EstimateReference) {
	for _, ref := range refs {
		if ref.IsApproved() {
			approved = append(approved, ref)
		} else {
			other = append(other, ref)
		}
	}
	return approved, other
}

// EstimateCount is the number of referencing line items
func (d *Dependencies) EstimateCount() int {
	return len(d.ApprovedEstimates) + len(d.OtherEstimates)
}

// CanDelete is true when no estimate line item and no reservation references the material
func (d *Dependencies) CanDelete() bool {
	return d.EstimateCount() == 0 && len(d.Reservations) == 0
}

// Blocked returns the error describing why deletion is refused, or nil
func (d *Dependencies) Blocked() error {
	if d.CanDelete() {
		return nil
	}
	return &ErrBlockedDeletion{
		MaterialID:     d.MaterialID,
		EstimateRefs:   d.EstimateCount(),
		ReservationRef: len(d.Reservations),
	}
}
