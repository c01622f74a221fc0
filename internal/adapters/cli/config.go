package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warehouse-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage warehouse configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (WH_* prefix)
2. Config file (warehouse.yaml)
3. Default values

CLI preferences (default actor and location) are stored in ~/.warehouse/config.json

Examples:
  warehouse config show
  warehouse config set-defaults --actor alice --location MAIN
  warehouse config clear-defaults`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetDefaultsCommand())
	cmd.AddCommand(newConfigClearDefaultsCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(os.Stderr, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load user config: %v\n", err)
				userCfg = &config.UserConfig{}
			}

			if jsonOutput() {
				masked := *cfg
				masked.Database.Password = maskSecret(masked.Database.Password)
				masked.Database.URL = maskPassword(masked.Database.URL)
				masked.Locking.RedisPassword = maskSecret(masked.Locking.RedisPassword)
				return printJSON(os.Stdout, map[string]interface{}{
					"config": masked,
					"user":   userCfg,
				})
			}

			fmt.Println("Warehouse Configuration")
			fmt.Println("=======================")

			fmt.Println("User Preferences:")
			fmt.Printf("  Config file:      %s\n", userConfigHandler.GetConfigPath())
			fmt.Printf("  Default actor:    %s\n", orNotSet(userCfg.DefaultActor))
			fmt.Printf("  Default location: %s\n", orNotSet(userCfg.DefaultLocation))

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}
			fmt.Printf("  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)
			fmt.Printf("  Auto Migrate:     %t\n", cfg.Database.AutoMigrate)

			fmt.Println("\nServer:")
			fmt.Printf("  Address:          %s\n", cfg.Server.Address)
			fmt.Printf("  Rate Limit:       %.1f req/s (burst: %d)\n",
				cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst)

			fmt.Println("\nDaemon:")
			fmt.Printf("  Socket Path:      %s\n", cfg.Daemon.SocketPath)
			fmt.Printf("  PID File:         %s\n", cfg.Daemon.PIDFile)
			fmt.Printf("  Shutdown Timeout: %s\n", cfg.Daemon.ShutdownTimeout)

			fmt.Println("\nLocking:")
			fmt.Printf("  Backend:          %s\n", cfg.Locking.Backend)
			if cfg.Locking.Backend == "redis" {
				fmt.Printf("  Redis:            %s (db %d)\n", cfg.Locking.RedisAddress, cfg.Locking.RedisDB)
				fmt.Printf("  Lease TTL:        %s\n", cfg.Locking.TTL)
			}
			fmt.Printf("  Acquire Timeout:  %s\n", cfg.Locking.AcquireTimeout)

			fmt.Println("\nInventory:")
			fmt.Printf("  Default Location: %s\n", cfg.Inventory.DefaultLocation)
			fmt.Printf("  Recent Movements: %d\n", cfg.Inventory.RecentMovements)

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:          %t\n", cfg.Metrics.Enabled)
			fmt.Printf("  Path:             %s\n", cfg.Metrics.Path)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

func newConfigSetDefaultsCommand() *cobra.Command {
	var defaultActor, defaultLocation string

	cmd := &cobra.Command{
		Use:   "set-defaults",
		Short: "Set the default actor and location",
		Long: `Set the actor recorded on movements and the location used when
--location is omitted.

Examples:
  warehouse config set-defaults --actor alice
  warehouse config set-defaults --location WORKSHOP`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("actor") && !cmd.Flags().Changed("location") {
				return fmt.Errorf("either --actor or --location flag is required")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			var updated config.UserConfig
			err = userConfigHandler.Update(func(c *config.UserConfig) {
				if cmd.Flags().Changed("actor") {
					c.DefaultActor = defaultActor
				}
				if cmd.Flags().Changed("location") {
					c.DefaultLocation = defaultLocation
				}
				updated = *c
			})
			if err != nil {
				return fmt.Errorf("failed to save defaults: %w", err)
			}

			fmt.Println("✓ Defaults saved")
			fmt.Printf("  Actor:    %s\n", orNotSet(updated.DefaultActor))
			fmt.Printf("  Location: %s\n", orNotSet(updated.DefaultLocation))
			return nil
		},
	}

	cmd.Flags().StringVar(&defaultActor, "actor", "", "Default actor")
	cmd.Flags().StringVar(&defaultLocation, "location", "", "Default location")
	return cmd
}

func newConfigClearDefaultsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-defaults",
		Short: "Clear the default actor and location",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			if err := userConfigHandler.Save(&config.UserConfig{}); err != nil {
				return fmt.Errorf("failed to clear defaults: %w", err)
			}

			fmt.Println("✓ Defaults cleared")
			return nil
		},
	}
}

// maskPassword hides the password component of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "xxxxx"
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
