package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "warehouse.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "warehouse"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "warehouse"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "localhost:8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = 50
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 100
	}

	// Daemon defaults
	if cfg.Daemon.SocketPath == "" {
		cfg.Daemon.SocketPath = "/tmp/warehouse-daemon.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/warehouse-daemon.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Locking defaults
	if cfg.Locking.Backend == "" {
		cfg.Locking.Backend = "memory"
	}
	if cfg.Locking.TTL == 0 {
		cfg.Locking.TTL = 30 * time.Second
	}
	if cfg.Locking.RetryInterval == 0 {
		cfg.Locking.RetryInterval = 25 * time.Millisecond
	}
	if cfg.Locking.AcquireTimeout == 0 {
		cfg.Locking.AcquireTimeout = 10 * time.Second
	}
	if cfg.Locking.BreakerFailures == 0 {
		cfg.Locking.BreakerFailures = 5
	}
	if cfg.Locking.BreakerCooldown == 0 {
		cfg.Locking.BreakerCooldown = 10 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.SummaryInterval == 0 {
		cfg.Metrics.SummaryInterval = 60 * time.Second
	}

	// Inventory defaults
	if cfg.Inventory.DefaultLocation == "" {
		cfg.Inventory.DefaultLocation = "MAIN"
	}
	if cfg.Inventory.RecentMovements == 0 {
		cfg.Inventory.RecentMovements = 20
	}
}
