package locking

import (
	"context"
	"sync"
	"time"

	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

type keyEntry struct {
	sem  chan struct{}
	refs int
}

// KeyedMutex is an in-process KeyLocker. Entries are reference counted and
// removed once no goroutine holds or waits for the key.
type KeyedMutex struct {
	mu             sync.Mutex
	entries        map[string]*keyEntry
	acquireTimeout time.Duration
}

// NewKeyedMutex creates a KeyedMutex. acquireTimeout bounds waiting when the
// caller's context has no deadline; zero waits indefinitely.
func NewKeyedMutex(acquireTimeout time.Duration) *KeyedMutex {
	return &KeyedMutex{
		entries:        make(map[string]*keyEntry),
		acquireTimeout: acquireTimeout,
	}
}

// Lock acquires every key in sorted order. On failure nothing stays held.
func (m *KeyedMutex) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	if len(keys) == 0 {
		return func() {}, nil
	}

	if _, ok := ctx.Deadline(); !ok && m.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.acquireTimeout)
		defer cancel()
	}

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := m.acquire(ctx, key); err != nil {
			m.release(held)
			return nil, err
		}
		held = append(held, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() { m.release(held) })
	}, nil
}

func (m *KeyedMutex) acquire(ctx context.Context, key string) error {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &keyEntry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.drop(key, e)
		return &shared.LockTimeoutError{Key: key}
	}
}

func (m *KeyedMutex) release(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		m.mu.Lock()
		e := m.entries[keys[i]]
		m.mu.Unlock()
		<-e.sem
		m.drop(keys[i], e)
	}
}

func (m *KeyedMutex) drop(key string, e *keyEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

// Size returns the number of keys currently held or awaited
func (m *KeyedMutex) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
