package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andrescamacho/warehouse-go/internal/adapters/locking"
	"github.com/andrescamacho/warehouse-go/internal/adapters/persistence"
	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	"github.com/andrescamacho/warehouse-go/internal/application/setup"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/config"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/database"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/logging"
)

// engine is the in-process inventory engine a CLI command talks to
type engine struct {
	cfg      *config.Config
	db       *gorm.DB
	mediator mediator.Mediator
	logger   *logging.Logger
	closers  []func() error
}

// withEngine loads config, connects to the database and runs fn with a
// configured mediator. Everything is torn down when fn returns.
func withEngine(fn func(ctx context.Context, e *engine) error) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// keep stdout for command output
	logCfg := cfg.Logging
	if logCfg.Output == "stdout" {
		logCfg.Output = "stderr"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx := common.WithLogger(context.Background(), logger)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	locker, closeLocker, err := locking.NewFromConfig(ctx, cfg.Locking)
	if err != nil {
		database.Close(db)
		return err
	}

	e := &engine{
		cfg:     cfg,
		db:      db,
		logger:  logger,
		closers: []func() error{closeLocker, func() error { return database.Close(db) }},
	}
	defer e.close()

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
	e.mediator, err = registry.CreateConfiguredMediator()
	if err != nil {
		return fmt.Errorf("failed to configure mediator: %w", err)
	}

	return fn(ctx, e)
}

func (e *engine) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Warn("failed to close resource", "error", err)
		}
	}
}

// resolveLocation picks the location flag, then the user default, then the
// configured default
func (e *engine) resolveLocation(flag string) string {
	if flag != "" {
		return flag
	}
	if h, err := config.NewUserConfigHandler(); err == nil {
		if userCfg, err := h.Load(); err == nil && userCfg.DefaultLocation != "" {
			return userCfg.DefaultLocation
		}
	}
	return e.cfg.Inventory.DefaultLocation
}

// resolveActor picks --actor, then the user default
func resolveActor() string {
	if actor != "" {
		return actor
	}
	if h, err := config.NewUserConfigHandler(); err == nil {
		if userCfg, err := h.Load(); err == nil {
			return userCfg.DefaultActor
		}
	}
	return ""
}

func parseDecimal(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return d, nil
}

// parseOptionalDecimal returns nil for an empty flag
func parseOptionalDecimal(name, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseDecimal(name, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseOptionalDate accepts YYYY-MM-DD or RFC3339; empty yields nil
func parseOptionalDate(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD or RFC3339", name, value)
}

func jsonOutput() bool {
	return outputFormat == "json"
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func optionalDecimal(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
