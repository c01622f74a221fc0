package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
)

// ServiceName is the health service name reported for the inventory engine
const ServiceName = "warehouse.inventory"

// DefaultProbeInterval is how often the readiness probe is re-evaluated
const DefaultProbeInterval = 10 * time.Second

// DaemonServer serves the gRPC health protocol on a unix socket. The serving
// status follows a readiness probe, typically a database ping.
type DaemonServer struct {
	listener      net.Listener
	server        *grpc.Server
	health        *health.Server
	probe         func(ctx context.Context) error
	probeInterval time.Duration
	logger        common.Logger
}

// NewDaemonServer listens on socketPath, replacing a stale socket file
func NewDaemonServer(
	socketPath string,
	probe func(ctx context.Context) error,
	probeInterval time.Duration,
	logger common.Logger,
) (*DaemonServer, error) {
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// owner only
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	if probeInterval <= 0 {
		probeInterval = DefaultProbeInterval
	}

	s := &DaemonServer{
		listener:      listener,
		server:        grpc.NewServer(),
		health:        health.NewServer(),
		probe:         probe,
		probeInterval: probeInterval,
		logger:        logger,
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	return s, nil
}

// Addr returns the socket address the server listens on
func (s *DaemonServer) Addr() string {
	return s.listener.Addr().String()
}

// Run serves until ctx is done, then stops gracefully
func (s *DaemonServer) Run(ctx context.Context) error {
	s.logger.Info("daemon health server listening", "socket", s.Addr())
	s.updateStatus(ctx)

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-errChan:
			return err
		case <-ticker.C:
			s.updateStatus(ctx)
		case <-ctx.Done():
			s.logger.Info("stopping daemon health server")
			s.health.Shutdown()
			s.server.GracefulStop()
			return nil
		}
	}
}

func (s *DaemonServer) updateStatus(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := s.probe(probeCtx)
		cancel()
		if err != nil {
			s.logger.Warn("readiness probe failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
