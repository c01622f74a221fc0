package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warehouse-go/internal/adapters/grpc"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long:  `Verify that the daemon is running and can reach its database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := grpc.NewDaemonClientGRPC(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			status, err := client.HealthCheck(ctx)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			if status != "SERVING" {
				return fmt.Errorf("daemon is not serving: %s", status)
			}

			fmt.Println("✓ Daemon is healthy")
			fmt.Printf("  Socket:  %s\n", socketPath)
			fmt.Printf("  Status:  %s\n", status)

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "How long to wait for the daemon")
	return cmd
}
