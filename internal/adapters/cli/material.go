package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	catalogCommands "github.com/andrescamacho/warehouse-go/internal/application/catalog/commands"
	catalogQueries "github.com/andrescamacho/warehouse-go/internal/application/catalog/queries"
	dependencyCommands "github.com/andrescamacho/warehouse-go/internal/application/dependency/commands"
	dependencyQueries "github.com/andrescamacho/warehouse-go/internal/application/dependency/queries"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
)

// NewMaterialCommand creates the material command with subcommands
func NewMaterialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "material",
		Short: "Material catalog operations",
		Long: `Create, inspect and retire catalog materials.

Examples:
  warehouse material create --name "Wood screw 4x40" --category fasteners --unit pack --min 20
  warehouse material list --low-stock
  warehouse material deps <id>
  warehouse material delete <id> --clear-reservations --remove-line-items`,
	}

	cmd.AddCommand(newMaterialCreateCommand())
	cmd.AddCommand(newMaterialUpdateCommand())
	cmd.AddCommand(newMaterialGetCommand())
	cmd.AddCommand(newMaterialListCommand())
	cmd.AddCommand(newMaterialSetActiveCommand("activate", true))
	cmd.AddCommand(newMaterialSetActiveCommand("deactivate", false))
	cmd.AddCommand(newMaterialDepsCommand())
	cmd.AddCommand(newMaterialDeleteCommand())

	return cmd
}

func newMaterialCreateCommand() *cobra.Command {
	var (
		name, category, unit, sku, barcode, description, supplier string
		minStock, maxStock, cost                                  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a material",
		RunE: func(cmd *cobra.Command, args []string) error {
			minLevel, err := parseDecimal("min", minStock)
			if err != nil {
				return err
			}
			maxLevel, err := parseOptionalDecimal("max", maxStock)
			if err != nil {
				return err
			}
			currentCost, err := parseOptionalDecimal("cost", cost)
			if err != nil {
				return err
			}

			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &catalogCommands.CreateMaterialCommand{
					Name:          name,
					Category:      category,
					Unit:          unit,
					SKU:           sku,
					Barcode:       barcode,
					Description:   description,
					MinStockLevel: minLevel,
					MaxStockLevel: maxLevel,
					CurrentCost:   currentCost,
					SupplierID:    supplier,
				})
				if err != nil {
					return fmt.Errorf("failed to create material: %w", err)
				}
				return displayMaterial(resp.(*catalogCommands.MaterialResponse).Material, nil)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Material name (required)")
	cmd.Flags().StringVar(&category, "category", "", "Category, e.g. wood, metal, fasteners (required)")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit of measure, e.g. piece, m2, kg (required)")
	cmd.Flags().StringVar(&sku, "sku", "", "Stock keeping unit")
	cmd.Flags().StringVar(&barcode, "barcode", "", "Barcode")
	cmd.Flags().StringVar(&description, "description", "", "Free text description")
	cmd.Flags().StringVar(&supplier, "supplier", "", "Preferred supplier id")
	cmd.Flags().StringVar(&minStock, "min", "0", "Reorder threshold")
	cmd.Flags().StringVar(&maxStock, "max", "", "Maximum stock level")
	cmd.Flags().StringVar(&cost, "cost", "", "Current unit cost")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("unit")

	return cmd
}

func newMaterialUpdateCommand() *cobra.Command {
	var (
		name, category, unit, sku, barcode, description, supplier string
		minStock, maxStock, cost                                  string
		clearMax                                                  bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := &catalogCommands.UpdateMaterialCommand{ID: args[0], ClearMaxStock: clearMax}
			flags := cmd.Flags()
			if flags.Changed("name") {
				update.Name = &name
			}
			if flags.Changed("category") {
				update.Category = &category
			}
			if flags.Changed("unit") {
				update.Unit = &unit
			}
			if flags.Changed("sku") {
				update.SKU = &sku
			}
			if flags.Changed("barcode") {
				update.Barcode = &barcode
			}
			if flags.Changed("description") {
				update.Description = &description
			}
			if flags.Changed("supplier") {
				update.SupplierID = &supplier
			}

			var err error
			if update.MinStockLevel, err = parseOptionalDecimal("min", minStock); err != nil {
				return err
			}
			if update.MaxStockLevel, err = parseOptionalDecimal("max", maxStock); err != nil {
				return err
			}
			if update.CurrentCost, err = parseOptionalDecimal("cost", cost); err != nil {
				return err
			}

			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, update)
				if err != nil {
					return fmt.Errorf("failed to update material: %w", err)
				}
				return displayMaterial(resp.(*catalogCommands.MaterialResponse).Material, nil)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Material name")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit of measure")
	cmd.Flags().StringVar(&sku, "sku", "", "Stock keeping unit")
	cmd.Flags().StringVar(&barcode, "barcode", "", "Barcode")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&supplier, "supplier", "", "Preferred supplier id")
	cmd.Flags().StringVar(&minStock, "min", "", "Reorder threshold")
	cmd.Flags().StringVar(&maxStock, "max", "", "Maximum stock level")
	cmd.Flags().BoolVar(&clearMax, "clear-max", false, "Remove the maximum stock level")
	cmd.Flags().StringVar(&cost, "cost", "", "Current unit cost")

	return cmd
}

func newMaterialGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a material with its stock per location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &catalogQueries.GetMaterialQuery{ID: args[0]})
				if err != nil {
					return fmt.Errorf("failed to get material: %w", err)
				}
				r := resp.(*catalogQueries.GetMaterialResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}
				return displayMaterial(r.Material, r.StockLevels)
			})
		},
	}
}

func newMaterialListCommand() *cobra.Command {
	var (
		search, category, supplier string
		activeOnly, lowStock       bool
		limit, offset              int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List materials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &catalogQueries.ListMaterialsQuery{
					Search:       search,
					Category:     category,
					SupplierID:   supplier,
					ActiveOnly:   activeOnly,
					LowStockOnly: lowStock,
					Limit:        limit,
					Offset:       offset,
				})
				if err != nil {
					return fmt.Errorf("failed to list materials: %w", err)
				}
				r := resp.(*catalogQueries.ListMaterialsResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				w := newTable()
				fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tUNIT\tON HAND\tMIN\tACTIVE")
				for _, m := range r.Materials {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						m.ID, m.Name, m.Category, m.Unit, optionalDecimal(m.TotalQuantity), m.MinStockLevel, yesNo(m.IsActive))
				}
				w.Flush()
				fmt.Printf("\n%d of %d materials\n", len(r.Materials), r.Total)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Match name, SKU or barcode")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&supplier, "supplier", "", "Filter by supplier id")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only active materials")
	cmd.Flags().BoolVar(&lowStock, "low-stock", false, "Only materials at or below their reorder threshold")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of materials")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of materials to skip")

	return cmd
}

func newMaterialSetActiveCommand(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Mark a material %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				var request interface{} = &catalogCommands.DeactivateMaterialCommand{ID: args[0]}
				if active {
					request = &catalogCommands.ActivateMaterialCommand{ID: args[0]}
				}
				resp, err := e.mediator.Send(ctx, request)
				if err != nil {
					return fmt.Errorf("failed to %s material: %w", use, err)
				}
				return displayMaterial(resp.(*catalogCommands.MaterialResponse).Material, nil)
			})
		},
	}
}

func newMaterialDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <id>",
		Short: "Show estimates, reservations and movements referencing a material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &dependencyQueries.GetDependenciesQuery{MaterialID: args[0]})
				if err != nil {
					return fmt.Errorf("failed to resolve dependencies: %w", err)
				}
				deps := resp.(*dependencyQueries.GetDependenciesResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, deps)
				}
				fmt.Print(NewTreeFormatter(!noColor).FormatDependencies(deps))
				return nil
			})
		},
	}
}

func newMaterialDeleteCommand() *cobra.Command {
	var opts dependencyCommands.DeleteMaterialCommand

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete or archive a material",
		Long: `Delete a material after clearing what references it.

Without options the delete is refused while estimates or reservations
reference the material. Cleanup steps are best effort: a failing step is
reported and the remaining steps still run.

Examples:
  warehouse material delete <id>
  warehouse material delete <id> --cancel-estimates --remove-line-items --clear-reservations
  warehouse material delete <id> --archive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.MaterialID = args[0]
			return withEngine(func(ctx context.Context, e *engine) error {
				resp, err := e.mediator.Send(ctx, &opts)
				if err != nil {
					if r, ok := resp.(*dependencyCommands.DeleteMaterialResponse); ok && !jsonOutput() {
						printDeleteSteps(r)
					}
					return fmt.Errorf("failed to delete material: %w", err)
				}
				r := resp.(*dependencyCommands.DeleteMaterialResponse)
				if jsonOutput() {
					return printJSON(os.Stdout, r)
				}

				printDeleteSteps(r)

				switch {
				case r.Archived:
					fmt.Printf("\n✓ Material %s archived\n", r.MaterialID)
				case r.Deleted:
					fmt.Printf("\n✓ Material %s deleted\n", r.MaterialID)
				}
				if r.PartialFailure != nil {
					fmt.Printf("⚠ %v\n", r.PartialFailure)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.CancelEstimates, "cancel-estimates", false, "Cancel approved estimates that use the material")
	cmd.Flags().BoolVar(&opts.RemoveEstimateLineItems, "remove-line-items", false, "Remove line items of other estimates")
	cmd.Flags().BoolVar(&opts.ClearReservations, "clear-reservations", false, "Release and remove reservations")
	cmd.Flags().BoolVar(&opts.ArchiveInsteadOfDelete, "archive", false, "Rename and deactivate instead of deleting")

	return cmd
}

func printDeleteSteps(r *dependencyCommands.DeleteMaterialResponse) {
	w := newTable()
	fmt.Fprintln(w, "STEP\tAFFECTED\tFAILURES\tERROR")
	for _, s := range r.Steps {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Step, s.Affected, s.Failures, s.Error)
	}
	w.Flush()
}

func displayMaterial(m dtos.MaterialDTO, levels []dtos.StockLevelDTO) error {
	if jsonOutput() {
		return printJSON(os.Stdout, m)
	}

	fmt.Printf("Material %s\n", m.ID)
	fmt.Printf("  Name:         %s\n", m.Name)
	fmt.Printf("  Category:     %s\n", m.Category)
	fmt.Printf("  Unit:         %s\n", m.Unit)
	if m.SKU != "" {
		fmt.Printf("  SKU:          %s\n", m.SKU)
	}
	fmt.Printf("  Min / Max:    %s / %s\n", m.MinStockLevel, optionalDecimal(m.MaxStockLevel))
	fmt.Printf("  Cost:         %s (avg %s)\n", optionalDecimal(m.CurrentCost), optionalDecimal(m.AverageCost))
	fmt.Printf("  Active:       %s\n", yesNo(m.IsActive))

	if len(levels) > 0 {
		fmt.Println()
		displayStockLevels(levels)
	}
	return nil
}
