package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	stockCommands "github.com/andrescamacho/warehouse-go/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/warehouse-go/internal/application/stock/queries"
)

// NewMovementCommand creates the movement command with subcommands
func NewMovementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movement",
		Short: "Stock movement log",
		Long: `Record and list stock movements.

Every change to stock is a movement. The stock level of a material at a
location is the running sum of its movements.

Movement Types:
  RECEIPT          - Goods received (+quantity)
  ISSUE            - Goods issued, optionally against a reservation (-quantity)
  RETURN           - Goods returned to stock (+quantity)
  TRANSFER         - Moved to --to location (-quantity here, +quantity there)
  INVENTORY_COUNT  - Counted quantity replaces the current quantity
  WRITE_OFF        - Damaged or lost goods (-quantity)

Examples:
  warehouse movement record --material <id> --type RECEIPT --quantity 50 --cost 12.40
  warehouse movement record --material <id> --type ISSUE --quantity 4 --reservation <res-id>
  warehouse movement record --material <id> --type TRANSFER --quantity 10 --location MAIN --to SITE-7
  warehouse movement list --material <id> --limit 20`,
	}

	cmd.AddCommand(newMovementRecordCommand())
	cmd.AddCommand(newMovementListCommand())

	return cmd
}

func newMovementRecordCommand() *cobra.Command {
	var (
		materialID, movementType, location, destination string
		quantity, cost                                  string
		supplier, orderID, reservationID                string
		reference, notes, occurredAt                    string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a stock movement",
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseDecimal("quantity", quantity)
			if err != nil {
				return err
			}
			unitCost, err := parseOptionalDecimal("cost", cost)
			if err != nil {
				return err
			}
			occurred, err := parseOptionalDate("at", occurredAt)
			if err != nil {
				return err
			}

			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &stockCommands.RecordMovementCommand{
					MaterialID:          materialID,
					Type:                strings.ToUpper(movementType),
					Location:            e.resolveLocation(location),
					DestinationLocation: destination,
					Quantity:            qty,
					UnitCost:            unitCost,
					SupplierID:          supplier,
					OrderID:             orderID,
					ReservationID:       reservationID,
					Reference:           reference,
					Notes:               notes,
					Actor:               resolveActor(),
					OccurredAt:          occurred,
				})
				if err != nil {
					return fmt.Errorf("failed to record movement: %w", err)
				}

				r := resp.(*stockCommands.RecordMovementResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				fmt.Printf("✓ Movement #%d recorded (%s %s at %s)\n", r.Movement.Seq, r.Movement.Type, r.Movement.Effect, r.Movement.Location)
				fmt.Printf("  Current:    %s\n", r.StockLevel.CurrentQuantity)
				fmt.Printf("  Reserved:   %s\n", r.StockLevel.ReservedQuantity)
				fmt.Printf("  Available:  %s\n", r.StockLevel.AvailableQuantity)
				fmt.Printf("  Status:     %s\n", r.StockLevel.Status)
				if r.DestinationLevel != nil {
					fmt.Printf("  %s now holds %s\n", r.DestinationLevel.Location, r.DestinationLevel.CurrentQuantity)
				}
				if r.ReservationOverUsed {
					fmt.Println("⚠ Reservation used beyond its reserved quantity")
				}
				if r.OverAllocated {
					fmt.Println("⚠ Location is over-allocated: reserved exceeds current")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&materialID, "material", "", "Material id (required)")
	cmd.Flags().StringVar(&movementType, "type", "", "Movement type (required)")
	cmd.Flags().StringVar(&location, "location", "", "Location (default from user config, then inventory.default_location)")
	cmd.Flags().StringVar(&destination, "to", "", "Destination location for TRANSFER")
	cmd.Flags().StringVar(&quantity, "quantity", "", "Quantity; the counted total for INVENTORY_COUNT (required)")
	cmd.Flags().StringVar(&cost, "cost", "", "Unit cost for RECEIPT")
	cmd.Flags().StringVar(&supplier, "supplier", "", "Supplier id")
	cmd.Flags().StringVar(&orderID, "order", "", "Work order id")
	cmd.Flags().StringVar(&reservationID, "reservation", "", "Reservation consumed by an ISSUE")
	cmd.Flags().StringVar(&reference, "reference", "", "External reference")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&occurredAt, "at", "", "When the movement happened (default now)")
	cmd.MarkFlagRequired("material")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("quantity")

	return cmd
}

func newMovementListCommand() *cobra.Command {
	var (
		query              stockQueries.ListMovementsQuery
		startDate, endDate string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movements",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if query.StartDate, err = parseOptionalDate("start-date", startDate); err != nil {
				return err
			}
			if query.EndDate, err = parseOptionalDate("end-date", endDate); err != nil {
				return err
			}
			query.Type = strings.ToUpper(query.Type)

			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &query)
				if err != nil {
					return fmt.Errorf("failed to list movements: %w", err)
				}
				r := resp.(*stockQueries.ListMovementsResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				w := newTable()
				fmt.Fprintln(w, "SEQ\tDATE\tTYPE\tMATERIAL\tLOCATION\tEFFECT\tREFERENCE")
				for _, mv := range r.Movements {
					loc := mv.Location
					if mv.DestinationLocation != "" {
						loc = mv.Location + " -> " + mv.DestinationLocation
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						mv.Seq, mv.OccurredAt.Format("2006-01-02 15:04"), mv.Type, mv.MaterialID, loc, mv.Effect, mv.Reference)
				}
				w.Flush()
				fmt.Printf("\n%d of %d movements\n", len(r.Movements), r.Total)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&query.MaterialID, "material", "", "Filter by material id")
	cmd.Flags().StringVar(&query.Location, "location", "", "Filter by location (source or destination)")
	cmd.Flags().StringVar(&query.Type, "type", "", "Filter by movement type")
	cmd.Flags().StringVar(&query.OrderID, "order", "", "Filter by work order id")
	cmd.Flags().StringVar(&query.ReservationID, "reservation", "", "Filter by reservation id")
	cmd.Flags().StringVar(&query.DeliveryID, "delivery", "", "Filter by delivery id")
	cmd.Flags().StringVar(&startDate, "start-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "End date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&query.Limit, "limit", 50, "Maximum number of movements")
	cmd.Flags().IntVar(&query.Offset, "offset", 0, "Number of movements to skip")
	cmd.Flags().StringVar(&query.OrderBy, "order-by", "", "Sort order, e.g. \"occurred_at DESC\"")

	return cmd
}
