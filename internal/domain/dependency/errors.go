package dependency

import (
	"fmt"
	"strings"
)

// ErrBlockedDeletion is returned when a material still has dependents and no
// cascade cleared them
type ErrBlockedDeletion struct {
	MaterialID     string
	EstimateRefs   int
	ReservationRef int
}

func (e *ErrBlockedDeletion) Error() string {
	return fmt.Sprintf("material %s cannot be deleted: %d estimate line items, %d reservations",
		e.MaterialID, e.EstimateRefs, e.ReservationRef)
}

// ErrPartialCascadeFailure reports best-effort steps that failed. It accompanies
// a report and does not by itself mean the deletion failed.
type ErrPartialCascadeFailure struct {
	MaterialID string
	Failed     []StepResult
	Deleted    bool
}

func (e *ErrPartialCascadeFailure) Error() string {
	steps := make([]string, 0, len(e.Failed))
	for _, s := range e.Failed {
		steps = append(steps, string(s.Step))
	}
	return fmt.Sprintf("cascade for material %s had failing steps: %s", e.MaterialID, strings.Join(steps, ", "))
}

// ErrCascadeAborted is returned when the final delete failed after cleanup
// steps already ran. Steps holds every step outcome including the final one.
// Cleanup that succeeded is not rolled back.
type ErrCascadeAborted struct {
	MaterialID string
	Steps      []StepResult
	Err        error
}

func (e *ErrCascadeAborted) Error() string {
	ran := make([]string, 0, len(e.Steps))
	for _, s := range e.Steps {
		if s.Step != StepDeleteMaterial {
			ran = append(ran, string(s.Step))
		}
	}
	if len(ran) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (cleanup already applied: %s)", e.Err, strings.Join(ran, ", "))
}

func (e *ErrCascadeAborted) Unwrap() error {
	return e.Err
}
