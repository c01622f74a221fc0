package locking

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// newTestRedisLocker needs a live redis at WH_TEST_REDIS_ADDR
func newTestRedisLocker(t *testing.T) *RedisLocker {
	t.Helper()
	addr := os.Getenv("WH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WH_TEST_REDIS_ADDR not set")
	}
	rdb, err := Dial(context.Background(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisLocker(rdb, RedisLockerOptions{
		Prefix:        "warehouse:test:" + t.Name() + ":",
		TTL:           time.Second,
		RetryInterval: 5 * time.Millisecond,
	})
}

func TestRedisLocker_ExcludesSecondHolder(t *testing.T) {
	l := newTestRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "stock:m1:MAIN")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "stock:m1:MAIN")
	var timeout *shared.LockTimeoutError
	require.ErrorAs(t, err, &timeout)

	unlock()
	unlock2, err := l.Lock(context.Background(), "stock:m1:MAIN")
	require.NoError(t, err)
	unlock2()
}

func TestRedisLocker_LeaseExpires(t *testing.T) {
	l := newTestRedisLocker(t)

	_, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	start := time.Now()
	unlock, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	unlock()
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}
