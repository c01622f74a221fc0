package locking

import (
	"sync"
	"time"

	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

// ErrBackendUnavailable is returned while the breaker is open
var ErrBackendUnavailable = shared.ErrLockBackendUnavailable

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// breaker counts consecutive backend errors. Lock contention is not an
// error and never trips it.
type breaker struct {
	maxFailures int
	cooldown    time.Duration
	clock       shared.Clock

	mu          sync.Mutex
	state       breakerState
	failures    int
	lastFailure time.Time
}

func newBreaker(maxFailures int, cooldown time.Duration, clock shared.Clock) *breaker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &breaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		clock:       clock,
	}
}

// call runs fn unless the breaker is open. After the cooldown one probe is
// let through; its outcome closes or reopens the breaker.
func (b *breaker) call(fn func() error) error {
	if b == nil || b.maxFailures <= 0 {
		return fn()
	}

	b.mu.Lock()
	if b.state == breakerOpen {
		if b.clock.Now().Sub(b.lastFailure) < b.cooldown {
			b.mu.Unlock()
			return ErrBackendUnavailable
		}
		b.state = breakerHalfOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		b.lastFailure = b.clock.Now()
		if b.state == breakerHalfOpen || b.failures >= b.maxFailures {
			b.state = breakerOpen
		}
		return err
	}
	b.failures = 0
	b.state = breakerClosed
	return nil
}

func (b *breaker) open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == breakerOpen
}
