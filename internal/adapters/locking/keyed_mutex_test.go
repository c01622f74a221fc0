package locking

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/config"
)

func TestNormalizeKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, normalizeKeys([]string{"c", "a", "b", "a"}))
	assert.Empty(t, normalizeKeys(nil))
}

func TestKeyedMutex_SerialisesSameKey(t *testing.T) {
	m := NewKeyedMutex(0)
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(context.Background(), "stock:m1:MAIN")
			require.NoError(t, err)
			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, m.Size())
}

func TestKeyedMutex_DistinctKeysDoNotBlock(t *testing.T) {
	m := NewKeyedMutex(0)
	unlockA, err := m.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := m.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutex_TimeoutReleasesPartialAcquisition(t *testing.T) {
	m := NewKeyedMutex(0)
	unlockB, err := m.Lock(context.Background(), "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "a", "b")

	var timeout *shared.LockTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "b", timeout.Key)

	// "a" must have been released
	unlockA, err := m.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlockA()
	unlockB()
	assert.Equal(t, 0, m.Size())
}

func TestKeyedMutex_DefaultAcquireTimeout(t *testing.T) {
	m := NewKeyedMutex(20 * time.Millisecond)
	unlock, err := m.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	_, err = m.Lock(context.Background(), "k")
	var timeout *shared.LockTimeoutError
	assert.ErrorAs(t, err, &timeout)
}

func TestKeyedMutex_UnlockIsIdempotent(t *testing.T) {
	m := NewKeyedMutex(0)
	unlock, err := m.Lock(context.Background(), "k", "k")
	require.NoError(t, err)
	unlock()
	unlock()
	assert.Equal(t, 0, m.Size())
}

func TestKeyedMutex_NoKeys(t *testing.T) {
	unlock, err := NewKeyedMutex(0).Lock(context.Background())
	require.NoError(t, err)
	unlock()
}

func TestNewFromConfig(t *testing.T) {
	locker, closeFn, err := NewFromConfig(context.Background(), config.LockingConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &KeyedMutex{}, locker)
	assert.NoError(t, closeFn())

	_, _, err = NewFromConfig(context.Background(), config.LockingConfig{Backend: "etcd"})
	assert.Error(t, err)
}
