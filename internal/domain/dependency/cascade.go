package dependency

// CascadeOptions selects the cleanup steps run before deleting a material
type CascadeOptions struct {
	CancelEstimates         bool
	RemoveEstimateLineItems bool
	ClearReservations       bool

	// ArchiveInsteadOfDelete takes precedence over every other option
	ArchiveInsteadOfDelete bool
}

// Any reports whether at least one cascade option is selected
func (o CascadeOptions) Any() bool {
	return o.CancelEstimates || o.RemoveEstimateLineItems || o.ClearReservations || o.ArchiveInsteadOfDelete
}

// Step names a unit of the cascade
type Step string

const (
	StepArchive                 Step = "archive"
	StepCancelEstimates         Step = "cancel_estimates"
	StepRemoveEstimateLineItems Step = "remove_estimate_line_items"
	StepClearReservations       Step = "clear_reservations"
	StepDeleteMaterial          Step = "delete_material"
)

// StepResult records the outcome of one step
type StepResult struct {
	Step     Step
	Affected int
	Failures int
	Err      error
}

// Succeeded reports whether the step finished without any failure
func (r StepResult) Succeeded() bool {
	return r.Err == nil && r.Failures == 0
}

// Report collects step results of a delete request
type Report struct {
	MaterialID string
	Archived   bool
	Deleted    bool
	Steps      []StepResult
}

// Add appends a step result
func (r *Report) Add(result StepResult) {
	r.Steps = append(r.Steps, result)
}

// FailedSteps returns the best-effort steps that did not fully succeed
func (r *Report) FailedSteps() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Step != StepDeleteMaterial && !s.Succeeded() {
			failed = append(failed, s)
		}
	}
	return failed
}

// PartialFailure returns ErrPartialCascadeFailure when any best-effort step failed
func (r *Report) PartialFailure() error {
	failed := r.FailedSteps()
	if len(failed) == 0 {
		return nil
	}
	return &ErrPartialCascadeFailure{MaterialID: r.MaterialID, Failed: failed, Deleted: r.Deleted}
}
