package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	reservationCommands "github.com/andrescamacho/warehouse-go/internal/application/reservation/commands"
	reservationQueries "github.com/andrescamacho/warehouse-go/internal/application/reservation/queries"
)

// NewReservationCommand creates the reservation command with subcommands
func NewReservationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reservation",
		Short: "Reserve stock for work orders",
		Long: `Set stock aside for work orders and compare usage against it.

A reservation lowers available stock without moving it. Issuing against a
reservation consumes it; releasing returns what was not used.

Examples:
  warehouse reservation reserve --order ORD-1 --material <id> --quantity 8
  warehouse reservation release <reservation-id>
  warehouse reservation list --order ORD-1
  warehouse reservation report --order ORD-1 --order ORD-2`,
	}

	cmd.AddCommand(newReservationReserveCommand())
	cmd.AddCommand(newReservationReleaseCommand())
	cmd.AddCommand(newReservationListCommand())
	cmd.AddCommand(newReservationReportCommand())

	return cmd
}

func newReservationReserveCommand() *cobra.Command {
	var orderID, materialID, location, quantity string

	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Reserve stock for a work order",
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseDecimal("quantity", quantity)
			if err != nil {
				return err
			}

			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &reservationCommands.ReserveMaterialCommand{
					OrderID:    orderID,
					MaterialID: materialID,
					Location:   e.resolveLocation(location),
					Quantity:   qty,
				})
				if err != nil {
					return fmt.Errorf("failed to reserve: %w", err)
				}
				r := resp.(*reservationCommands.ReservationResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				fmt.Printf("✓ Reservation %s created\n", r.Reservation.ID)
				fmt.Printf("  Reserved:   %s for order %s\n", r.Reservation.QuantityReserved, r.Reservation.OrderID)
				fmt.Printf("  Available:  %s at %s\n", r.StockLevel.AvailableQuantity, r.StockLevel.Location)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&orderID, "order", "", "Work order id (required)")
	cmd.Flags().StringVar(&materialID, "material", "", "Material id (required)")
	cmd.Flags().StringVar(&location, "location", "", "Location (default from user config)")
	cmd.Flags().StringVar(&quantity, "quantity", "", "Quantity to reserve (required)")
	cmd.MarkFlagRequired("order")
	cmd.MarkFlagRequired("material")
	cmd.MarkFlagRequired("quantity")

	return cmd
}

func newReservationReleaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "release <reservation-id>",
		Short: "Release the unused part of a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &reservationCommands.ReleaseReservationCommand{ID: args[0]})
				if err != nil {
					return fmt.Errorf("failed to release reservation: %w", err)
				}
				r := resp.(*reservationCommands.ReservationResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				fmt.Printf("✓ Reservation %s released\n", r.Reservation.ID)
				fmt.Printf("  Returned:   %s\n", r.Returned)
				fmt.Printf("  Available:  %s at %s\n", r.StockLevel.AvailableQuantity, r.StockLevel.Location)
				return nil
			})
		},
	}
}

func newReservationListCommand() *cobra.Command {
	var orderID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the reservations of a work order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &reservationQueries.ListReservationsByOrderQuery{OrderID: orderID})
				if err != nil {
					return fmt.Errorf("failed to list reservations: %w", err)
				}
				r := resp.(*reservationQueries.ListReservationsByOrderResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				w := newTable()
				fmt.Fprintln(w, "ID\tMATERIAL\tLOCATION\tRESERVED\tUSED\tREMAINING\tSTATUS")
				for _, res := range r.Reservations {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						res.ID, res.MaterialID, res.Location, res.QuantityReserved, res.QuantityUsed, res.Remaining, res.Status)
				}
				w.Flush()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&orderID, "order", "", "Work order id (required)")
	cmd.MarkFlagRequired("order")
	return cmd
}

func newReservationReportCommand() *cobra.Command {
	var orderIDs []string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compare reserved and used quantities per work order",
		Long: `Report reservation efficiency per work order.

Efficiency is used / reserved as a percentage. Above 110% the order is
OVER_BUDGET, below 90% UNDER_BUDGET. A line is a discrepancy when usage
differs from the reservation by more than 5%.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &reservationQueries.GetReservationReportQuery{OrderIDs: orderIDs})
				if err != nil {
					return fmt.Errorf("failed to build report: %w", err)
				}
				r := resp.(*reservationQueries.GetReservationReportResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				w := newTable()
				fmt.Fprintln(w, "ORDER\tRESERVED\tUSED\tEFFICIENCY\tSTATUS\tDISCREPANCIES")
				for _, o := range r.Orders {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%d\n",
						o.OrderID, o.TotalReserved, o.TotalUsed, o.EfficiencyPercentage, o.Status, o.DiscrepancyCount)
				}
				w.Flush()
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&orderIDs, "order", nil, "Work order id, repeatable (required)")
	cmd.MarkFlagRequired("order")
	return cmd
}
