package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/andrescamacho/warehouse-go/internal/adapters/grpc"
	"github.com/andrescamacho/warehouse-go/internal/adapters/locking"
	"github.com/andrescamacho/warehouse-go/internal/adapters/metrics"
	"github.com/andrescamacho/warehouse-go/internal/adapters/persistence"
	"github.com/andrescamacho/warehouse-go/internal/adapters/rest"
	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/application/setup"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/config"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/database"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/logging"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/pidfile"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: search ./, ./configs, /etc/warehouse)")
	flag.Parse()

	cfg := config.MustLoadConfig(*configPath)

	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		var running *pidfile.ErrAlreadyRunning
		if errors.As(err, &running) {
			log.Fatalf("Warehouse daemon already running with PID %d", running.PID)
		}
		log.Fatalf("Failed to acquire PID file lock: %v", err)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()

	if err := run(cfg); err != nil {
		log.Printf("Fatal error: %v", err)
		pf.Release()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = common.WithLogger(ctx, logger)

	logger.Info("Starting warehouse daemon", "pid", os.Getpid(), "database", cfg.Database.Type)

	// 1. Database
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	// 2. Key locks serialising writes per (material, location)
	locker, closeLocker, err := locking.NewFromConfig(ctx, cfg.Locking)
	if err != nil {
		return err
	}
	defer closeLocker()
	logger.Info("Lock backend ready", "backend", cfg.Locking.Backend)

	// 3. Handlers
	registry := setup.NewHandlerRegistry(
		setup.Repositories{
			Materials:    persistence.NewGormMaterialRepository(db),
			StockLevels:  persistence.NewGormStockLevelRepository(db),
			Movements:    persistence.NewGormMovementRepository(db),
			Reservations: persistence.NewGormReservationRepository(db),
			Deliveries:   persistence.NewGormDeliveryRepository(db),
			Estimates:    persistence.NewGormEstimateRepository(db),
		},
		locker,
		persistence.NewGormUnitOfWork(db),
		nil,
		cfg.Inventory.RecentMovements,
	)
	med, err := registry.CreateConfiguredMediator()
	if err != nil {
		return fmt.Errorf("failed to configure mediator: %w", err)
	}

	// 4. Metrics
	var inventoryCollector *metrics.InventoryMetricsCollector
	if cfg.Metrics.Enabled {
		inventoryCollector, err = setupMetrics(med, cfg.Metrics)
		if err != nil {
			return err
		}
		logger.Info("Metrics enabled", "path", cfg.Metrics.Path)
	}

	ready := pingDatabase(db)

	// 5. Transports
	router := rest.NewRouter(rest.RouterOptions{
		Mediator:    med,
		Logger:      logger,
		RateLimit:   cfg.Server.RateLimit,
		Gatherer:    gatherer(),
		MetricsPath: cfg.Metrics.Path,
		Ready:       ready,
	})
	httpServer := rest.NewServer(cfg.Server, router, cfg.Daemon.ShutdownTimeout, logger)

	daemonServer, err := grpc.NewDaemonServer(cfg.Daemon.SocketPath, ready, grpc.DefaultProbeInterval, logger)
	if err != nil {
		return fmt.Errorf("failed to create daemon server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(gctx) })
	g.Go(func() error { return daemonServer.Run(gctx) })
	if inventoryCollector != nil {
		g.Go(func() error {
			inventoryCollector.Start(gctx)
			<-gctx.Done()
			inventoryCollector.Stop()
			return nil
		})
	}

	logger.Info("Warehouse daemon ready",
		"http", cfg.Server.Address,
		"socket", daemonServer.Addr(),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Warehouse daemon stopped")
	return nil
}

func setupMetrics(med mediator.Mediator, cfg config.MetricsConfig) (*metrics.InventoryMetricsCollector, error) {
	metrics.InitRegistry()

	commandCollector := metrics.NewCommandMetricsCollector()
	if err := commandCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}
	med.RegisterMiddleware(metrics.PrometheusMiddleware(commandCollector))

	inventoryCollector := metrics.NewInventoryMetricsCollector(med, cfg.SummaryInterval)
	if err := inventoryCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register inventory metrics: %w", err)
	}
	metrics.SetGlobalInventoryCollector(inventoryCollector)
	return inventoryCollector, nil
}

// gatherer avoids handing the router a typed nil when metrics are disabled
func gatherer() prometheus.Gatherer {
	if reg := metrics.GetRegistry(); reg != nil {
		return reg
	}
	return nil
}

func pingDatabase(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
