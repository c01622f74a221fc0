package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile   string
	socketPath   string
	outputFormat string
	actor        string
	noColor      bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "warehouse",
		Short: "Warehouse CLI - inventory and reservation engine",
		Long: `Warehouse CLI records stock movements, reservations and supplier
deliveries against the inventory database configured in warehouse.yaml
(or WH_* environment variables).

Examples:
  warehouse material create --name "Oak board 20mm" --category wood --unit sheet --min 10
  warehouse movement record --material <id> --type RECEIPT --quantity 50 --cost 12.40
  warehouse stock get <material-id> --location MAIN
  warehouse reservation reserve --order ORD-1 --material <id> --quantity 8
  warehouse delivery receive <delivery-id> --quantity 20
  warehouse material deps <material-id>`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to config file (default: search ./, ./configs, /etc/warehouse)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", getDefaultSocketPath(),
		"Path to daemon Unix socket")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format: table or json")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "",
		"Actor recorded on movements (default from user config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")

	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewMaterialCommand())
	rootCmd.AddCommand(NewMovementCommand())
	rootCmd.AddCommand(NewStockCommand())
	rootCmd.AddCommand(NewReservationCommand())
	rootCmd.AddCommand(NewDeliveryCommand())
	rootCmd.AddCommand(NewHealthCommand())

	return rootCmd
}

// getDefaultSocketPath returns the default socket path
func getDefaultSocketPath() string {
	if path := os.Getenv("WH_DAEMON_SOCKET_PATH"); path != "" {
		return path
	}
	return "/tmp/warehouse-daemon.sock"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
