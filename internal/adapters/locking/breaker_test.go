package locking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

var errRedisDown = errors.New("dial tcp: connection refused")

func failing() error { return errRedisDown }
func passing() error { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	b := newBreaker(3, 10*time.Second, clock)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.call(failing), errRedisDown)
	}
	assert.True(t, b.open())

	calls := 0
	err := b.call(func() error { calls++; return nil })
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Zero(t, calls)
}

func TestBreaker_SuccessResetsTheCount(t *testing.T) {
	b := newBreaker(2, time.Second, nil)

	assert.Error(t, b.call(failing))
	assert.NoError(t, b.call(passing))
	assert.Error(t, b.call(failing))
	assert.False(t, b.open())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	b := newBreaker(1, 10*time.Second, clock)

	assert.Error(t, b.call(failing))
	assert.True(t, b.open())

	clock.Advance(11 * time.Second)
	assert.Error(t, b.call(failing))
	assert.True(t, b.open(), "a failed probe reopens")

	clock.Advance(11 * time.Second)
	assert.NoError(t, b.call(passing))
	assert.False(t, b.open())
}

func TestBreaker_DisabledWhenZero(t *testing.T) {
	b := newBreaker(0, time.Second, nil)
	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, b.call(failing), errRedisDown)
	}
	assert.False(t, b.open())
}
