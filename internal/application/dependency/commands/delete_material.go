package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/adapters/metrics"
	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/dependency/services"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/dependency"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// DeleteMaterialCommand removes a material, optionally clearing its dependents
// first. ArchiveInsteadOfDelete renames and deactivates the material and
// skips every other step.
type DeleteMaterialCommand struct {
	MaterialID              string `json:"-" validate:"required"`
	CancelEstimates         bool   `json:"cancel_estimates"`
	RemoveEstimateLineItems bool   `json:"remove_estimate_line_items"`
	ClearReservations       bool   `json:"clear_reservations"`
	ArchiveInsteadOfDelete  bool   `json:"archive_instead_of_delete"`
}

// Options returns the cascade options of the command
func (c *DeleteMaterialCommand) Options() dependency.CascadeOptions {
	return dependency.CascadeOptions{
		CancelEstimates:         c.CancelEstimates,
		RemoveEstimateLineItems: c.RemoveEstimateLineItems,
		ClearReservations:       c.ClearReservations,
		ArchiveInsteadOfDelete:  c.ArchiveInsteadOfDelete,
	}
}

// StepDTO is one cascade step outcome
type StepDTO struct {
	Step     string `json:"step"`
	Affected int    `json:"affected"`
	Failures int    `json:"failures"`
	Error    string `json:"error,omitempty"`
}

// DeleteMaterialResponse is the cascade report. PartialFailure is set when a
// cleanup step failed; the material may still have been deleted. The report is
// also returned next to *dependency.ErrCascadeAborted when the final delete fails.
type DeleteMaterialResponse struct {
	MaterialID     string    `json:"material_id"`
	Archived       bool      `json:"archived"`
	Deleted        bool      `json:"deleted"`
	Steps          []StepDTO `json:"steps"`
	PartialFailure error     `json:"-"`
}

// DeleteMaterialHandler handles the DeleteMaterial command
type DeleteMaterialHandler struct {
	materials    catalog.MaterialRepository
	levels       stock.StockLevelRepository
	reservations reservation.ReservationRepository
	estimates    dependency.EstimateRepository
	resolver     *services.Resolver
	locker       shared.KeyLocker
	uow          shared.UnitOfWork
	clock        shared.Clock
}

// NewDeleteMaterialHandler creates a new DeleteMaterialHandler
func NewDeleteMaterialHandler(
	materials catalog.MaterialRepository,
	levels stock.StockLevelRepository,
	reservations reservation.ReservationRepository,
	estimates dependency.EstimateRepository,
	resolver *services.Resolver,
	locker shared.KeyLocker,
	uow shared.UnitOfWork,
	clock shared.Clock,
) *DeleteMaterialHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &DeleteMaterialHandler{
		materials:    materials,
		levels:       levels,
		reservations: reservations,
		estimates:    estimates,
		resolver:     resolver,
		locker:       locker,
		uow:          uow,
		clock:        clock,
	}
}

// Handle executes the DeleteMaterial command
func (h *DeleteMaterialHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*DeleteMaterialCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *DeleteMaterialCommand")
	}
	if err := common.ValidateRequest(cmd); err != nil {
		return nil, err
	}

	logger := common.LoggerFromContext(ctx)
	opts := cmd.Options()
	report := &dependency.Report{MaterialID: cmd.MaterialID}

	if _, err := h.materials.FindByID(ctx, cmd.MaterialID); err != nil {
		return nil, err
	}

	if opts.ArchiveInsteadOfDelete {
		result := h.archive(ctx, cmd.MaterialID)
		h.record(ctx, report, result)
		if result.Err != nil {
			return nil, result.Err
		}
		report.Archived = true
		logger.Info("material archived", "material_id", cmd.MaterialID)
		return toResponse(report), nil
	}

	deps, err := h.resolver.Blockers(ctx, cmd.MaterialID)
	if err != nil {
		return nil, err
	}
	if !opts.Any() {
		if err := deps.Blocked(); err != nil {
			return nil, err
		}
	}

	if opts.CancelEstimates {
		h.record(ctx, report, h.cancelEstimates(ctx, deps.ApprovedEstimates))
	}
	if opts.RemoveEstimateLineItems {
		h.record(ctx, report, h.removeLineItems(ctx, cmd.MaterialID))
	}
	if opts.ClearReservations {
		h.record(ctx, report, h.clearReservations(ctx, cmd.MaterialID))
	}

	final := h.deleteMaterial(ctx, cmd.MaterialID)
	h.record(ctx, report, final)
	if final.Err != nil {
		logger.Warn("material delete aborted after cascade steps",
			"material_id", cmd.MaterialID,
			"steps", len(report.Steps),
			"error", final.Err.Error())
		// the report still goes back so the caller sees what cleanup already ran
		return toResponse(report), &dependency.ErrCascadeAborted{
			MaterialID: cmd.MaterialID,
			Steps:      report.Steps,
			Err:        final.Err,
		}
	}
	report.Deleted = true

	resp := toResponse(report)
	if err := report.PartialFailure(); err != nil {
		resp.PartialFailure = err
		logger.Warn("material deleted with failing cascade steps",
			"material_id", cmd.MaterialID,
			"error", err.Error())
	} else {
		logger.Info("material deleted", "material_id", cmd.MaterialID)
	}
	return resp, nil
}

func (h *DeleteMaterialHandler) record(ctx context.Context, report *dependency.Report, result dependency.StepResult) {
	report.Add(result)
	metrics.RecordCascadeStep(string(result.Step), result.Succeeded())
	if !result.Succeeded() {
		msg := "cascade step failed"
		if result.Err != nil {
			msg = result.Err.Error()
		}
		common.LoggerFromContext(ctx).Error("cascade step failed",
			"material_id", report.MaterialID,
			"step", string(result.Step),
			"failures", result.Failures,
			"error", msg)
	}
}

func (h *DeleteMaterialHandler) archive(ctx context.Context, materialID string) dependency.StepResult {
	result := dependency.StepResult{Step: dependency.StepArchive}
	result.Err = h.uow.Do(ctx, func(ctx context.Context) error {
		material, err := h.materials.FindByIDForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		material.Archive(h.clock.Now())
		return h.materials.Save(ctx, material)
	})
	if result.Err == nil {
		result.Affected = 1
	}
	return result
}

// cancelEstimates cancels every approved estimate referencing the material.
// Each estimate is attempted independently.
func (h *DeleteMaterialHandler) cancelEstimates(ctx context.Context, approved []dependency.EstimateReference) dependency.StepResult {
	result := dependency.StepResult{Step: dependency.StepCancelEstimates}
	seen := make(map[string]bool)
	for _, ref := range approved {
		if seen[ref.EstimateID] {
			continue
		}
		seen[ref.EstimateID] = true
		if err := h.estimates.CancelEstimate(ctx, ref.EstimateID); err != nil {
			result.Failures++
			result.Err = fmt.Errorf("failed to cancel estimate %s: %w", ref.EstimateID, err)
			continue
		}
		result.Affected++
	}
	return result
}

// removeLineItems re-reads the references so estimates cancelled by the
// previous step count as non-approved
func (h *DeleteMaterialHandler) removeLineItems(ctx context.Context, materialID string) dependency.StepResult {
	result := dependency.StepResult{Step: dependency.StepRemoveEstimateLineItems}
	refs, err := h.estimates.ListReferences(ctx, materialID)
	if err != nil {
		result.Err = fmt.Errorf("failed to list estimate references: %w", err)
		return result
	}
	_, other := dependency.Split(refs)
	for _, ref := range other {
		if err := h.estimates.DeleteLineItem(ctx, ref.LineItemID); err != nil {
			result.Failures++
			result.Err = fmt.Errorf("failed to delete line item %s: %w", ref.LineItemID, err)
			continue
		}
		result.Affected++
	}
	return result
}

// clearReservations releases active reservations back to the ledger and then
// removes every reservation row of the material
func (h *DeleteMaterialHandler) clearReservations(ctx context.Context, materialID string) dependency.StepResult {
	result := dependency.StepResult{Step: dependency.StepClearReservations}

	current, err := h.reservations.ListByMaterial(ctx, materialID)
	if err != nil {
		result.Err = fmt.Errorf("failed to list reservations: %w", err)
		return result
	}
	keys := make([]string, 0, len(current)*2)
	for _, res := range current {
		keys = append(keys, shared.StockKey(res.MaterialID(), res.Location()), shared.ReservationKey(res.ID()))
	}

	unlock, err := h.locker.Lock(ctx, keys...)
	if err != nil {
		result.Err = err
		return result
	}
	defer unlock()

	result.Err = h.uow.Do(ctx, func(ctx context.Context) error {
		now := h.clock.Now()
		for _, res := range current {
			locked, err := h.reservations.FindByIDForUpdate(ctx, res.ID())
			if err != nil {
				return err
			}
			if locked.Status() != reservation.StatusActive {
				continue
			}
			returned, err := locked.Release(now)
			if err != nil {
				return err
			}
			level, err := h.levels.GetForUpdate(ctx, locked.MaterialID(), locked.Location())
			if err != nil {
				return fmt.Errorf("failed to lock stock level: %w", err)
			}
			if err := level.ApplyReservationDelta(returned.Neg(), now); err != nil {
				return err
			}
			if err := h.levels.Save(ctx, level); err != nil {
				return fmt.Errorf("failed to save stock level: %w", err)
			}
		}
		n, err := h.reservations.DeleteByMaterial(ctx, materialID)
		if err != nil {
			return fmt.Errorf("failed to delete reservations: %w", err)
		}
		result.Affected = n
		return nil
	})
	return result
}

// deleteMaterial re-checks the blockers and removes the ledger rows and the
// material in one transaction. Movements and deliveries remain as history.
func (h *DeleteMaterialHandler) deleteMaterial(ctx context.Context, materialID string) dependency.StepResult {
	result := dependency.StepResult{Step: dependency.StepDeleteMaterial}

	levels, err := h.levels.ListByMaterial(ctx, materialID)
	if err != nil {
		result.Err = fmt.Errorf("failed to list stock levels: %w", err)
		return result
	}
	keys := make([]string, 0, len(levels))
	for _, level := range levels {
		keys = append(keys, shared.StockKey(level.MaterialID(), level.Location()))
	}

	unlock, err := h.locker.Lock(ctx, keys...)
	if err != nil {
		result.Err = err
		return result
	}
	defer unlock()

	result.Err = h.uow.Do(ctx, func(ctx context.Context) error {
		if _, err := h.materials.FindByIDForUpdate(ctx, materialID); err != nil {
			return err
		}
		deps, err := h.resolver.Blockers(ctx, materialID)
		if err != nil {
			return err
		}
		if err := deps.Blocked(); err != nil {
			return err
		}
		if err := h.levels.DeleteByMaterial(ctx, materialID); err != nil {
			return fmt.Errorf("failed to delete stock levels: %w", err)
		}
		if err := h.materials.Delete(ctx, materialID); err != nil {
			return fmt.Errorf("failed to delete material: %w", err)
		}
		return nil
	})
	if result.Err == nil {
		result.Affected = 1
	}
	return result
}

func toResponse(report *dependency.Report) *DeleteMaterialResponse {
	steps := make([]StepDTO, 0, len(report.Steps))
	for _, s := range report.Steps {
		dto := StepDTO{Step: string(s.Step), Affected: s.Affected, Failures: s.Failures}
		if s.Err != nil {
			dto.Error = s.Err.Error()
		}
		steps = append(steps, dto)
	}
	return &DeleteMaterialResponse{
		MaterialID: report.MaterialID,
		Archived:   report.Archived,
		Deleted:    report.Deleted,
		Steps:      steps,
	}
}
