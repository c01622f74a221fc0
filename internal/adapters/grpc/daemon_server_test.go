package grpc

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
)

func startServer(t *testing.T, probe func(context.Context) error) string {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "d.sock")

	srv, err := NewDaemonServer(socket, probe, 20*time.Millisecond, common.LoggerFromContext(context.Background()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return socket
}

func check(t *testing.T, socket string) string {
	t.Helper()
	client, err := NewDaemonClientGRPC(socket)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	status, err := client.HealthCheck(ctx)
	require.NoError(t, err)
	return status
}

func TestDaemonServer_ServingWhenProbePasses(t *testing.T) {
	socket := startServer(t, func(context.Context) error { return nil })
	assert.Equal(t, "SERVING", check(t, socket))
}

func TestDaemonServer_FollowsProbe(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	socket := startServer(t, func(context.Context) error {
		if failing.Load() {
			return errors.New("database unreachable")
		}
		return nil
	})

	assert.Equal(t, "NOT_SERVING", check(t, socket))

	failing.Store(false)
	assert.Eventually(t, func() bool {
		return check(t, socket) == "SERVING"
	}, time.Second, 10*time.Millisecond)
}
