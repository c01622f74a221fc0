package config

import "time"

// LockingConfig selects the keyed lock backend that serialises ledger writes
type LockingConfig struct {
	// "memory" for a single process, "redis" when several instances share a database
	Backend string `mapstructure:"backend" validate:"required,oneof=memory redis"`

	RedisAddress  string `mapstructure:"redis_address" validate:"required_if=Backend redis"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"min=0"`

	// Lease of a redis lock; must exceed the longest ledger transaction
	TTL time.Duration `mapstructure:"ttl" validate:"required"`

	// Pause between acquisition attempts
	RetryInterval time.Duration `mapstructure:"retry_interval" validate:"required"`

	// Upper bound on waiting for a lock when the caller sets no deadline
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout" validate:"required"`

	// Consecutive redis errors before writes fail fast for BreakerCooldown
	BreakerFailures int           `mapstructure:"breaker_failures" validate:"min=0"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}
