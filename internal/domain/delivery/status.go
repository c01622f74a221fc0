package delivery

import "fmt"

// Status is the position of a delivery in its lifecycle
type Status string

const (
	StatusOrdered            Status = "ORDERED"
	StatusInTransit          Status = "IN_TRANSIT"
	StatusPartiallyDelivered Status = "PARTIALLY_DELIVERED"
	StatusDelivered          Status = "DELIVERED"
	StatusCancelled          Status = "CANCELLED"
)

// forward position along ORDERED -> IN_TRANSIT -> PARTIALLY_DELIVERED -> DELIVERED
var rank = map[Status]int{
	StatusOrdered:            0,
	StatusInTransit:          1,
	StatusPartiallyDelivered: 2,
	StatusDelivered:          3,
}

// AllStatuses returns every delivery status
func AllStatuses() []Status {
	return []Status{
		StatusOrdered,
		StatusInTransit,
		StatusPartiallyDelivered,
		StatusDelivered,
		StatusCancelled,
	}
}

func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := rank[s]
	return ok
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the state graph permits moving to next.
// Moves are forward-only and may skip states; PARTIALLY_DELIVERED may repeat
// as further partial receipts arrive. CANCELLED is reachable from any
// non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	if s == StatusPartiallyDelivered && next == StatusPartiallyDelivered {
		return true
	}
	return rank[next] > rank[s]
}

// ParseStatus parses a string into a Status
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid delivery status: %s", s)
	}
	return st, nil
}
