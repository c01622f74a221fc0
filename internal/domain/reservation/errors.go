package reservation

import "fmt"

// ErrReservationNotFound indicates a reservation id does not exist
type ErrReservationNotFound struct {
	ID string
}

func (e *ErrReservationNotFound) Error() string {
	return fmt.Sprintf("reservation not found: %s", e.ID)
}

// ErrReservationReleased is returned when a released reservation is used or released again
type ErrReservationReleased struct {
	ID string
}

func (e *ErrReservationReleased) Error() string {
	return fmt.Sprintf("reservation %s is already released", e.ID)
}

// ErrReservationMismatch is returned when a movement references a reservation
// for a different material or location
type ErrReservationMismatch struct {
	ReservationID string
	Field         string
	Expected      string
	Actual        string
}

func (e *ErrReservationMismatch) Error() string {
	return fmt.Sprintf("reservation %s %s mismatch: expected %s, got %s",
		e.ReservationID, e.Field, e.Expected, e.Actual)
}
