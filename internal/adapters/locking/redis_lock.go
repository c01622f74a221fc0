package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another instance is never released by us
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a KeyLocker shared by every engine instance pointing at the
// same redis. Each key is a SET NX PX lease holding a random token.
type RedisLocker struct {
	client         goredis.UniversalClient
	prefix         string
	ttl            time.Duration
	retryInterval  time.Duration
	acquireTimeout time.Duration
	breaker        *breaker
}

// RedisLockerOptions configures a RedisLocker. BreakerFailures consecutive
// backend errors open the breaker for BreakerCooldown; zero disables it.
type RedisLockerOptions struct {
	Prefix          string
	TTL             time.Duration
	RetryInterval   time.Duration
	AcquireTimeout  time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
	Clock           shared.Clock
}

// NewRedisLocker creates a RedisLocker over an existing client
func NewRedisLocker(client goredis.UniversalClient, opts RedisLockerOptions) *RedisLocker {
	if opts.Prefix == "" {
		opts.Prefix = "warehouse:lock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 25 * time.Millisecond
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 10 * time.Second
	}
	return &RedisLocker{
		client:         client,
		prefix:         opts.Prefix,
		ttl:            opts.TTL,
		retryInterval:  opts.RetryInterval,
		acquireTimeout: opts.AcquireTimeout,
		breaker:        newBreaker(opts.BreakerFailures, opts.BreakerCooldown, opts.Clock),
	}
}

// Dial connects to redis and verifies the connection
func Dial(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Lock acquires every key in sorted order, retrying until the context ends
func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	if len(keys) == 0 {
		return func() {}, nil
	}

	if _, ok := ctx.Deadline(); !ok && l.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.acquireTimeout)
		defer cancel()
	}

	token := uuid.New().String()
	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquire(ctx, l.prefix+key, token); err != nil {
			l.release(held, token)
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, &shared.LockTimeoutError{Key: key}
			}
			return nil, err
		}
		held = append(held, l.prefix+key)
	}

	return func() { l.release(held, token) }, nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		var ok bool
		var setErr error
		err := l.breaker.call(func() error {
			ok, setErr = l.client.SetNX(ctx, key, token, l.ttl).Result()
			// a caller giving up is not a backend failure
			if setErr != nil && ctx.Err() != nil {
				return nil
			}
			return setErr
		})
		if errors.Is(err, ErrBackendUnavailable) {
			return err
		}
		if setErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to acquire lock %s: %w", key, setErr)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// release runs on a fresh context so that an expired caller context still
// frees the keys
func (l *RedisLocker) release(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		_ = releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err()
	}
}
