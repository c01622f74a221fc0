package setup

import (
	"reflect"

	catalogCommands "github.com/andrescamacho/warehouse-go/internal/application/catalog/commands"
	catalogQueries "github.com/andrescamacho/warehouse-go/internal/application/catalog/queries"
	deliveryCommands "github.com/andrescamacho/warehouse-go/internal/application/delivery/commands"
	deliveryQueries "github.com/andrescamacho/warehouse-go/internal/application/delivery/queries"
	dependencyCommands "github.com/andrescamacho/warehouse-go/internal/application/dependency/commands"
	dependencyQueries "github.com/andrescamacho/warehouse-go/internal/application/dependency/queries"
	dependencyServices "github.com/andrescamacho/warehouse-go/internal/application/dependency/services"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	reservationCommands "github.com/andrescamacho/warehouse-go/internal/application/reservation/commands"
	reservationQueries "github.com/andrescamacho/warehouse-go/internal/application/reservation/queries"
	stockCommands "github.com/andrescamacho/warehouse-go/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/warehouse-go/internal/application/stock/queries"
	stockServices "github.com/andrescamacho/warehouse-go/internal/application/stock/services"
	"github.com/andrescamacho/warehouse-go/internal/domain/catalog"
	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/dependency"
	"github.com/andrescamacho/warehouse-go/internal/domain/reservation"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// Repositories bundles the persistence ports the handlers need
type Repositories struct {
	Materials    catalog.MaterialRepository
	StockLevels  stock.StockLevelRepository
	Movements    stock.MovementRepository
	Reservations reservation.ReservationRepository
	Deliveries   delivery.DeliveryRepository
	Estimates    dependency.EstimateRepository
}

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	repos           Repositories
	locker          shared.KeyLocker
	uow             shared.UnitOfWork
	clock           shared.Clock
	recentMovements int

	recorder *stockServices.MovementRecorder
	resolver *dependencyServices.Resolver
}

// NewHandlerRegistry creates a new handler registry with required dependencies.
// recentMovements bounds the movement history attached to dependency listings.
func NewHandlerRegistry(
	repos Repositories,
	locker shared.KeyLocker,
	uow shared.UnitOfWork,
	clock shared.Clock,
	recentMovements int,
) *HandlerRegistry {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		repos:           repos,
		locker:          locker,
		uow:             uow,
		clock:           clock,
		recentMovements: recentMovements,
		recorder: stockServices.NewMovementRecorder(
			repos.Materials,
			repos.StockLevels,
			repos.Movements,
			repos.Reservations,
			clock,
		),
		resolver: dependencyServices.NewResolver(
			repos.Estimates,
			repos.Reservations,
			repos.Movements,
			recentMovements,
		),
	}
}

type registration struct {
	request mediator.Request
	handler mediator.RequestHandler
}

func register(m mediator.Mediator, regs []registration) error {
	for _, reg := range regs {
		if err := m.Register(reflect.TypeOf(reg.request), reg.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCatalogHandlers registers material commands and queries
func (r *HandlerRegistry) RegisterCatalogHandlers(m mediator.Mediator) error {
	setActive := catalogCommands.NewSetMaterialActiveHandler(r.repos.Materials, r.uow, r.clock)
	return register(m, []registration{
		{&catalogCommands.CreateMaterialCommand{}, catalogCommands.NewCreateMaterialHandler(r.repos.Materials, r.clock)},
		{&catalogCommands.UpdateMaterialCommand{}, catalogCommands.NewUpdateMaterialHandler(r.repos.Materials, r.uow, r.clock)},
		{&catalogCommands.DeactivateMaterialCommand{}, setActive},
		{&catalogCommands.ActivateMaterialCommand{}, setActive},
		{&catalogQueries.GetMaterialQuery{}, catalogQueries.NewGetMaterialHandler(r.repos.Materials, r.repos.StockLevels)},
		{&catalogQueries.ListMaterialsQuery{}, catalogQueries.NewListMaterialsHandler(r.repos.Materials, r.repos.StockLevels)},
	})
}

// RegisterStockHandlers registers the movement log and stock ledger handlers
func (r *HandlerRegistry) RegisterStockHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&stockCommands.RecordMovementCommand{}, stockCommands.NewRecordMovementHandler(r.recorder, r.repos.Materials, r.locker, r.uow)},
		{&stockCommands.RebuildStockLevelCommand{}, stockCommands.NewRebuildStockLevelHandler(r.repos.StockLevels, r.repos.Movements, r.locker, r.uow, r.clock)},
		{&stockQueries.GetStockLevelQuery{}, stockQueries.NewGetStockLevelHandler(r.repos.Materials, r.repos.StockLevels, r.clock)},
		{&stockQueries.ListStockLevelsQuery{}, stockQueries.NewListStockLevelsHandler(r.repos.Materials, r.repos.StockLevels)},
		{&stockQueries.GetStockSummaryQuery{}, stockQueries.NewGetStockSummaryHandler(r.repos.Materials, r.repos.StockLevels)},
		{&stockQueries.ListMovementsQuery{}, stockQueries.NewListMovementsHandler(r.repos.Movements)},
	})
}

// RegisterReservationHandlers registers reservation commands and reports
func (r *HandlerRegistry) RegisterReservationHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&reservationCommands.ReserveMaterialCommand{}, reservationCommands.NewReserveMaterialHandler(
			r.repos.Materials, r.repos.StockLevels, r.repos.Reservations, r.locker, r.uow, r.clock)},
		{&reservationCommands.ReleaseReservationCommand{}, reservationCommands.NewReleaseReservationHandler(
			r.repos.Materials, r.repos.StockLevels, r.repos.Reservations, r.locker, r.uow, r.clock)},
		{&reservationQueries.ListReservationsByOrderQuery{}, reservationQueries.NewListReservationsByOrderHandler(r.repos.Reservations)},
		{&reservationQueries.GetReservationReportQuery{}, reservationQueries.NewGetReservationReportHandler(r.repos.Reservations)},
	})
}

// RegisterDeliveryHandlers registers the delivery tracker handlers
func (r *HandlerRegistry) RegisterDeliveryHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&deliveryCommands.CreateDeliveryCommand{}, deliveryCommands.NewCreateDeliveryHandler(
			r.repos.Materials, r.repos.StockLevels, r.repos.Deliveries, r.locker, r.uow, r.clock)},
		{&deliveryCommands.UpdateDeliveryStatusCommand{}, deliveryCommands.NewUpdateDeliveryStatusHandler(
			r.repos.StockLevels, r.repos.Deliveries, r.locker, r.uow, r.clock)},
		{&deliveryCommands.RecordDeliveryReceiptCommand{}, deliveryCommands.NewRecordDeliveryReceiptHandler(
			r.recorder, r.repos.Materials, r.repos.StockLevels, r.repos.Deliveries, r.locker, r.uow, r.clock)},
		{&deliveryQueries.ListDeliveriesQuery{}, deliveryQueries.NewListDeliveriesHandler(r.repos.Deliveries, r.clock)},
		{&deliveryQueries.GetDeliveryQuery{}, deliveryQueries.NewGetDeliveryHandler(r.repos.Deliveries, r.clock)},
	})
}

// RegisterDependencyHandlers registers the dependency listing and the delete cascade
func (r *HandlerRegistry) RegisterDependencyHandlers(m mediator.Mediator) error {
	return register(m, []registration{
		{&dependencyQueries.GetDependenciesQuery{}, dependencyQueries.NewGetDependenciesHandler(r.repos.Materials, r.resolver)},
		{&dependencyCommands.DeleteMaterialCommand{}, dependencyCommands.NewDeleteMaterialHandler(
			r.repos.Materials, r.repos.StockLevels, r.repos.Reservations, r.repos.Estimates,
			r.resolver, r.locker, r.uow, r.clock)},
	})
}

// CreateConfiguredMediator creates a new mediator with every handler registered.
// Middlewares are added by the caller.
func (r *HandlerRegistry) CreateConfiguredMediator() (mediator.Mediator, error) {
	m := mediator.NewMediator()

	for _, registerFn := range []func(mediator.Mediator) error{
		r.RegisterCatalogHandlers,
		r.RegisterStockHandlers,
		r.RegisterReservationHandlers,
		r.RegisterDeliveryHandlers,
		r.RegisterDependencyHandlers,
	} {
		if err := registerFn(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}
