package locking

import (
	"context"
	"fmt"

	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/config"
)

// NewFromConfig builds the configured KeyLocker. The returned close function
// releases the backend connection, if any.
func NewFromConfig(ctx context.Context, cfg config.LockingConfig) (shared.KeyLocker, func() error, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewKeyedMutex(cfg.AcquireTimeout), func() error { return nil }, nil
	case "redis":
		rdb, err := Dial(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect lock backend: %w", err)
		}
		return NewRedisLocker(rdb, RedisLockerOptions{
			TTL:             cfg.TTL,
			RetryInterval:   cfg.RetryInterval,
			AcquireTimeout:  cfg.AcquireTimeout,
			BreakerFailures: cfg.BreakerFailures,
			BreakerCooldown: cfg.BreakerCooldown,
		}), rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown lock backend: %s", cfg.Backend)
	}
}
