package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	deliveryCommands "github.com/andrescamacho/warehouse-go/internal/application/delivery/commands"
	deliveryQueries "github.com/andrescamacho/warehouse-go/internal/application/delivery/queries"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
)

// NewDeliveryCommand creates the delivery command with subcommands
func NewDeliveryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delivery",
		Short: "Track supplier deliveries",
		Long: `Track expected supplier deliveries and book their receipts.

Receiving goods against a delivery records a RECEIPT movement in the same
transaction, so stock and delivery progress never diverge.

Examples:
  warehouse delivery create --material <id> --quantity 100 --supplier ACME --expected 2024-04-02
  warehouse delivery status <id> IN_TRANSIT
  warehouse delivery receive <id> --quantity 60
  warehouse delivery list --overdue`,
	}

	cmd.AddCommand(newDeliveryCreateCommand())
	cmd.AddCommand(newDeliveryGetCommand())
	cmd.AddCommand(newDeliveryListCommand())
	cmd.AddCommand(newDeliveryStatusCommand())
	cmd.AddCommand(newDeliveryReceiveCommand())

	return cmd
}

func newDeliveryCreateCommand() *cobra.Command {
	var (
		materialID, location, supplier, orderID string
		quantity, price                         string
		orderDate, expected                     string
		tracking, notes                         string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an expected delivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseDecimal("quantity", quantity)
			if err != nil {
				return err
			}
			unitPrice, err := parseOptionalDecimal("price", price)
			if err != nil {
				return err
			}
			ordered, err := parseOptionalDate("order-date", orderDate)
			if err != nil {
				return err
			}
			expectedAt, err := parseOptionalDate("expected", expected)
			if err != nil {
				return err
			}

			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &deliveryCommands.CreateDeliveryCommand{
					MaterialID:           materialID,
					Location:             e.resolveLocation(location),
					SupplierID:           supplier,
					OrderID:              orderID,
					QuantityOrdered:      qty,
					UnitPrice:            unitPrice,
					OrderDate:            ordered,
					ExpectedDeliveryDate: expectedAt,
					TrackingNumber:       tracking,
					Notes:                notes,
				})
				if err != nil {
					return fmt.Errorf("failed to create delivery: %w", err)
				}
				return displayDelivery(resp.(*deliveryCommands.DeliveryResponse))
			})
		},
	}

	cmd.Flags().StringVar(&materialID, "material", "", "Material id (required)")
	cmd.Flags().StringVar(&location, "location", "", "Receiving location (default from user config)")
	cmd.Flags().StringVar(&supplier, "supplier", "", "Supplier id")
	cmd.Flags().StringVar(&orderID, "order", "", "Purchase order id")
	cmd.Flags().StringVar(&quantity, "quantity", "", "Quantity ordered (required)")
	cmd.Flags().StringVar(&price, "price", "", "Unit price")
	cmd.Flags().StringVar(&orderDate, "order-date", "", "Order date (default today)")
	cmd.Flags().StringVar(&expected, "expected", "", "Expected delivery date")
	cmd.Flags().StringVar(&tracking, "tracking", "", "Carrier tracking number")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.MarkFlagRequired("material")
	cmd.MarkFlagRequired("quantity")

	return cmd
}

func newDeliveryGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &deliveryQueries.GetDeliveryQuery{ID: args[0]})
				if err != nil {
					return fmt.Errorf("failed to get delivery: %w", err)
				}
				return displayDelivery(&deliveryCommands.DeliveryResponse{Delivery: resp.(*deliveryQueries.GetDeliveryResponse).Delivery})
			})
		},
	}
}

func newDeliveryListCommand() *cobra.Command {
	var query deliveryQueries.ListDeliveriesQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deliveries",
		RunE: func(cmd *cobra.Command, args []string) error {
			query.Status = strings.ToUpper(query.Status)
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &query)
				if err != nil {
					return fmt.Errorf("failed to list deliveries: %w", err)
				}
				r := resp.(*deliveryQueries.ListDeliveriesResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				w := newTable()
				fmt.Fprintln(w, "ID\tMATERIAL\tSUPPLIER\tORDERED\tDELIVERED\tSTATUS\tEXPECTED\tOVERDUE")
				for _, d := range r.Deliveries {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						d.ID, d.MaterialID, d.SupplierID, d.QuantityOrdered, d.QuantityDelivered, d.Status,
						optionalTime(d.ExpectedDeliveryDate), yesNo(d.Overdue))
				}
				w.Flush()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&query.MaterialID, "material", "", "Filter by material id")
	cmd.Flags().StringVar(&query.SupplierID, "supplier", "", "Filter by supplier id")
	cmd.Flags().StringVar(&query.OrderID, "order", "", "Filter by purchase order id")
	cmd.Flags().StringVar(&query.Status, "status", "", "Filter by status")
	cmd.Flags().BoolVar(&query.OpenOnly, "open", false, "Only deliveries still expected")
	cmd.Flags().BoolVar(&query.OverdueOnly, "overdue", false, "Only deliveries past their expected date")
	cmd.Flags().IntVar(&query.Limit, "limit", 50, "Maximum number of deliveries")
	cmd.Flags().IntVar(&query.Offset, "offset", 0, "Number of deliveries to skip")

	return cmd
}

func newDeliveryStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <IN_TRANSIT|CANCELLED>",
		Short: "Mark a delivery in transit or cancelled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &deliveryCommands.UpdateDeliveryStatusCommand{
					ID:     args[0],
					Status: strings.ToUpper(args[1]),
				})
				if err != nil {
					return fmt.Errorf("failed to update delivery: %w", err)
				}
				return displayDelivery(resp.(*deliveryCommands.DeliveryResponse))
			})
		},
	}
}

func newDeliveryReceiveCommand() *cobra.Command {
	var (
		quantity, receivedAt, notes string
		acceptOver                  bool
	)

	cmd := &cobra.Command{
		Use:   "receive <id>",
		Short: "Book goods received against a delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseDecimal("quantity", quantity)
			if err != nil {
				return err
			}
			at, err := parseOptionalDate("at", receivedAt)
			if err != nil {
				return err
			}

			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &deliveryCommands.RecordDeliveryReceiptCommand{
					DeliveryID:        args[0],
					Quantity:          qty,
					ReceivedAt:        at,
					AcceptOverReceipt: acceptOver,
					Actor:             resolveActor(),
					Notes:             notes,
				})
				if err != nil {
					return fmt.Errorf("failed to record receipt: %w", err)
				}
				return displayDelivery(resp.(*deliveryCommands.DeliveryResponse))
			})
		},
	}

	cmd.Flags().StringVar(&quantity, "quantity", "", "Quantity received (required)")
	cmd.Flags().StringVar(&receivedAt, "at", "", "When the goods arrived (default now)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().BoolVar(&acceptOver, "accept-over", false, "Accept more than the quantity still expected")
	cmd.MarkFlagRequired("quantity")

	return cmd
}

func displayDelivery(r *deliveryCommands.DeliveryResponse) error {
	if jsonOutput() {
		return printJSON(os.Stdout, r)
	}

	d := r.Delivery
	fmt.Printf("Delivery %s\n", d.ID)
	fmt.Printf("  Material:   %s at %s\n", d.MaterialID, d.Location)
	fmt.Printf("  Supplier:   %s\n", d.SupplierID)
	fmt.Printf("  Progress:   %s of %s (%s remaining)\n", d.QuantityDelivered, d.QuantityOrdered, d.QuantityRemaining)
	fmt.Printf("  Status:     %s\n", statusLine(d))
	fmt.Printf("  Expected:   %s\n", optionalTime(d.ExpectedDeliveryDate))
	if r.Movement != nil {
		fmt.Printf("  Movement:   #%d %s %s\n", r.Movement.Seq, r.Movement.Type, r.Movement.Effect)
	}
	if r.StockLevel != nil {
		fmt.Printf("  Stock:      %s current, %s available\n", r.StockLevel.CurrentQuantity, r.StockLevel.AvailableQuantity)
	}
	return nil
}

func statusLine(d dtos.DeliveryDTO) string {
	s := d.Status
	if d.Overdue {
		s += ", overdue"
	}
	if d.OverReceived {
		s += ", over-received"
	}
	return s
}
