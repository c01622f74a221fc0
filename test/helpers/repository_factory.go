package helpers

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andrescamacho/warehouse-go/internal/adapters/locking"
	"github.com/andrescamacho/warehouse-go/internal/adapters/persistence"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/application/setup"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// TestEngine is a fully wired engine over real GORM repositories
type TestEngine struct {
	DB       *gorm.DB
	Repos    setup.Repositories
	UoW      *persistence.GormUnitOfWork
	Locker   *locking.KeyedMutex
	Clock    *shared.MockClock
	Mediator mediator.Mediator
}

// NewTestRepositories creates every repository over db
func NewTestRepositories(db *gorm.DB) setup.Repositories {
	return setup.Repositories{
		Materials:    persistence.NewGormMaterialRepository(db),
		StockLevels:  persistence.NewGormStockLevelRepository(db),
		Movements:    persistence.NewGormMovementRepository(db),
		Reservations: persistence.NewGormReservationRepository(db),
		Deliveries:   persistence.NewGormDeliveryRepository(db),
		Estimates:    persistence.NewGormEstimateRepository(db),
	}
}

// NewTestEngine wires the mediator with every handler over db. The clock
// starts at a fixed instant so derived dates are deterministic.
func NewTestEngine(db *gorm.DB) (*TestEngine, error) {
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	repos := NewTestRepositories(db)
	uow := persistence.NewGormUnitOfWork(db)
	locker := locking.NewKeyedMutex(10 * time.Second)

	registry := setup.NewHandlerRegistry(repos, locker, uow, clock, 20)
	m, err := registry.CreateConfiguredMediator()
	if err != nil {
		return nil, fmt.Errorf("failed to configure mediator: %w", err)
	}

	return &TestEngine{
		DB:       db,
		Repos:    repos,
		UoW:      uow,
		Locker:   locker,
		Clock:    clock,
		Mediator: m,
	}, nil
}

// InsertEstimate stores an estimate with one line item per material id
func InsertEstimate(ctx context.Context, db *gorm.DB, id, number, status string, materialIDs ...string) error {
	now := time.Now().UTC()
	if err := db.WithContext(ctx).Create(&persistence.EstimateModel{
		ID:             id,
		EstimateNumber: number,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error; err != nil {
		return err
	}

	for i, materialID := range materialIDs {
		if err := db.WithContext(ctx).Create(&persistence.EstimateLineItemModel{
			ID:         fmt.Sprintf("%s-li-%d", id, i+1),
			EstimateID: id,
			MaterialID: materialID,
			Quantity:   decimal.NewFromInt(1),
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

// Dec parses a decimal literal, panicking on malformed test input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
