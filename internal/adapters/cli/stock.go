package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
	stockCommands "github.com/andrescamacho/warehouse-go/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/warehouse-go/internal/application/stock/queries"
)

// NewStockCommand creates the stock command with subcommands
func NewStockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Stock ledger operations",
		Long: `Inspect stock levels and rebuild them from the movement log.

Examples:
  warehouse stock get <material-id> --location MAIN
  warehouse stock list --status LOW_STOCK
  warehouse stock summary
  warehouse stock rebuild <material-id> --location MAIN --dry-run`,
	}

	cmd.AddCommand(newStockGetCommand())
	cmd.AddCommand(newStockListCommand())
	cmd.AddCommand(newStockSummaryCommand())
	cmd.AddCommand(newStockRebuildCommand())

	return cmd
}

func newStockGetCommand() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "get <material-id>",
		Short: "Show the stock level of a material at one location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &stockQueries.GetStockLevelQuery{
					MaterialID: args[0],
					Location:   e.resolveLocation(location),
				})
				if err != nil {
					return fmt.Errorf("failed to get stock level: %w", err)
				}
				r := resp.(*stockQueries.GetStockLevelResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}
				displayStockLevels([]dtos.StockLevelDTO{r.StockLevel})
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Location (default from user config)")
	return cmd
}

func newStockListCommand() *cobra.Command {
	var materialID, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stock levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &stockQueries.ListStockLevelsQuery{MaterialID: materialID, Status: status})
				if err != nil {
					return fmt.Errorf("failed to list stock levels: %w", err)
				}
				r := resp.(*stockQueries.ListStockLevelsResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}
				displayStockLevels(r.StockLevels)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&materialID, "material", "", "Filter by material id")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status: IN_STOCK, LOW_STOCK, OUT_OF_STOCK, ON_ORDER")
	return cmd
}

func newStockSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Summarise stock across all materials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &stockQueries.GetStockSummaryQuery{})
				if err != nil {
					return fmt.Errorf("failed to summarise stock: %w", err)
				}
				r := resp.(*stockQueries.GetStockSummaryResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				fmt.Println("Stock Summary")
				fmt.Println("=============")
				fmt.Printf("  Materials:       %d (%d active)\n", r.TotalMaterials, r.ActiveMaterials)
				fmt.Printf("  Stock levels:    %d\n", r.StockLevels)
				fmt.Printf("  Over-allocated:  %d\n", r.OverAllocated)
				fmt.Printf("  Stock value:     %s\n", r.TotalStockValue.StringFixed(2))

				statuses := make([]string, 0, len(r.ByStatus))
				for s := range r.ByStatus {
					statuses = append(statuses, s)
				}
				sort.Strings(statuses)
				fmt.Println("\nBy status:")
				for _, s := range statuses {
					fmt.Printf("  %-15s %d\n", s, r.ByStatus[s])
				}

				if len(r.LowStockMaterials) > 0 {
					fmt.Println("\nLow stock:")
					for _, id := range r.LowStockMaterials {
						fmt.Printf("  %s\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newStockRebuildCommand() *cobra.Command {
	var (
		location string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "rebuild <material-id>",
		Short: "Replay the movement log and repair a drifted stock level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &stockCommands.RebuildStockLevelCommand{
					MaterialID: args[0],
					Location:   e.resolveLocation(location),
					DryRun:     dryRun,
				})
				if err != nil {
					return fmt.Errorf("failed to rebuild stock level: %w", err)
				}
				r := resp.(*stockCommands.RebuildStockLevelResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				fmt.Printf("Replayed %d movements for %s at %s\n", r.Movements, r.MaterialID, r.Location)
				fmt.Printf("  Stored:    %s\n", r.Stored)
				fmt.Printf("  Replayed:  %s\n", r.Replayed)
				fmt.Printf("  Drift:     %s\n", r.Drift)
				switch {
				case r.Repaired:
					fmt.Println("✓ Stock level repaired")
				case !r.Drift.IsZero():
					fmt.Println("⚠ Drift detected (dry run, nothing changed)")
				default:
					fmt.Println("✓ Stock level matches the movement log")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Location (default from user config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report drift without repairing it")
	return cmd
}

func displayStockLevels(levels []dtos.StockLevelDTO) {
	w := newTable()
	fmt.Fprintln(w, "MATERIAL\tLOCATION\tCURRENT\tRESERVED\tAVAILABLE\tSTATUS\tLAST MOVEMENT")
	for _, l := range levels {
		status := l.Status
		if l.OverAllocated {
			status += " (over-allocated)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.MaterialID, l.Location, l.CurrentQuantity, l.ReservedQuantity, l.AvailableQuantity, status, optionalTime(l.LastMovementDate))
	}
	w.Flush()
}
