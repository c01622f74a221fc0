package config

import "time"

// MetricsConfig holds metrics collection and exposure configuration
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled"`

	// Path for the metrics endpoint on the HTTP server (default: /metrics)
	Path string `mapstructure:"path" validate:"required,startswith=/"`

	// How often ledger gauges are refreshed from the stock summary
	SummaryInterval time.Duration `mapstructure:"summary_interval" validate:"required"`
}
