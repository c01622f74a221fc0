package services

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/domain/dependency"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// DefaultRecentMovements is how many movements are attached to a dependency listing
const DefaultRecentMovements = 20

// Resolver collects everything that references a material
type Resolver struct {
	estimates       dependency.EstimateRepository
	reservations    reservation.ReservationRepository
	movements       stock.MovementRepository
	recentMovements int
}

// NewResolver creates a Resolver. A non-positive recentMovements uses the default.
func NewResolver(
	estimates dependency.EstimateRepository,
	reservations reservation.ReservationRepository,
	movements stock.MovementRepository,
	recentMovements int,
) *Resolver {
	if recentMovements <= 0 {
		recentMovements = DefaultRecentMovements
	}
	return &Resolver{
		estimates:       estimates,
		reservations:    reservations,
		movements:       movements,
		recentMovements: recentMovements,
	}
}

// Resolve lists the material's dependents. Inside a unit of work the reads
// join its transaction.
func (r *Resolver) Resolve(ctx context.Context, materialID string) (*dependency.Dependencies, error) {
	blockers, err := r.Blockers(ctx, materialID)
	if err != nil {
		return nil, err
	}

	opts := stock.DefaultQueryOptions()
	opts.MaterialID = materialID
	opts.Limit = r.recentMovements
	recent, err := r.movements.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent movements: %w", err)
	}
	blockers.RecentMovements = recent
	return blockers, nil
}

// Blockers is Resolve without the informational movement history
func (r *Resolver) Blockers(ctx context.Context, materialID string) (*dependency.Dependencies, error) {
	refs, err := r.estimates.ListReferences(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("failed to list estimate references: %w", err)
	}
	reservations, err := r.reservations.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	approved, other := dependency.Split(refs)
	return &dependency.Dependencies{
		MaterialID:        materialID,
		ApprovedEstimates: approved,
		OtherEstimates:    other,
		Reservations:      reservations,
	}, nil
}
