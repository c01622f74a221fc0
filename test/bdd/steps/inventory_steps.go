package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	catalogCommands "github.com/andrescamacho/warehouse-go/internal/application/catalog/commands"
	stockCommands "github.com/andrescamacho/warehouse-go/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/warehouse-go/internal/application/stock/queries"
)

type inventoryContext struct {
	*world
}

func (ctx *inventoryContext) aMaterialWithMinimumStock(name, minStock string) error {
	threshold, err := decimal.NewFromString(minStock)
	if err != nil {
		return err
	}
	resp, err := ctx.send(&catalogCommands.CreateMaterialCommand{
		Name:          name,
		Category:      "wood",
		Unit:          "sheet",
		MinStockLevel: threshold,
	})
	if err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	ctx.materials[name] = resp.(*catalogCommands.MaterialResponse).Material.ID
	return nil
}

func (ctx *inventoryContext) theMaterialIsDeactivated(name string) error {
	id, err := ctx.materialID(name)
	if err != nil {
		return err
	}
	_, err = ctx.send(&catalogCommands.DeactivateMaterialCommand{ID: id})
	return err
}

func (ctx *inventoryContext) iRecordMovementOf(movementType, quantity, name string) error {
	return ctx.recordAt(movementType, quantity, name, "", "")
}

func (ctx *inventoryContext) iRecordMovementOfAt(movementType, quantity, name, location string) error {
	return ctx.recordAt(movementType, quantity, name, location, "")
}

func (ctx *inventoryContext) iTransfer(quantity, name, from, to string) error {
	return ctx.recordAt("TRANSFER", quantity, name, from, to)
}

func (ctx *inventoryContext) recordAt(movementType, quantity, name, location, destination string) error {
	id, err := ctx.materialID(name)
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		return err
	}
	// failures are asserted by later steps
	ctx.send(&stockCommands.RecordMovementCommand{
		MaterialID:          id,
		Type:                movementType,
		Location:            location,
		DestinationLocation: destination,
		Quantity:            qty,
		Actor:               "bdd",
	})
	return nil
}

func (ctx *inventoryContext) currentQuantityShouldBe(name, want string) error {
	return ctx.currentQuantityAtShouldBe(name, "", want)
}

func (ctx *inventoryContext) currentQuantityAtShouldBe(name, location, want string) error {
	level, err := ctx.stockLevel(name, location)
	if err != nil {
		return err
	}
	return expectDecimal("current quantity", level.StockLevel.CurrentQuantity, want)
}

func (ctx *inventoryContext) availableQuantityShouldBe(name, want string) error {
	level, err := ctx.stockLevel(name, "")
	if err != nil {
		return err
	}
	return expectDecimal("available quantity", level.StockLevel.AvailableQuantity, want)
}

func (ctx *inventoryContext) reservedQuantityShouldBe(name, want string) error {
	level, err := ctx.stockLevel(name, "")
	if err != nil {
		return err
	}
	return expectDecimal("reserved quantity", level.StockLevel.ReservedQuantity, want)
}

func (ctx *inventoryContext) statusShouldBe(name, want string) error {
	level, err := ctx.stockLevel(name, "")
	if err != nil {
		return err
	}
	if level.StockLevel.Status != want {
		return fmt.Errorf("expected status %s, got %s", want, level.StockLevel.Status)
	}
	return nil
}

func (ctx *inventoryContext) shouldBeOverAllocated(name string) error {
	level, err := ctx.stockLevel(name, "")
	if err != nil {
		return err
	}
	if !level.StockLevel.OverAllocated {
		return fmt.Errorf("expected %s to be over-allocated", name)
	}
	return nil
}

func (ctx *inventoryContext) movementLogShouldHaveEntries(name string, want int) error {
	id, err := ctx.materialID(name)
	if err != nil {
		return err
	}
	resp, err := ctx.engine.Mediator.Send(context.Background(), &stockQueries.ListMovementsQuery{MaterialID: id})
	if err != nil {
		return err
	}
	if got := resp.(*stockQueries.ListMovementsResponse).Total; got != want {
		return fmt.Errorf("expected %d movements, got %d", want, got)
	}
	return nil
}

func (ctx *inventoryContext) lastMovementEffectShouldBe(want string) error {
	if ctx.lastErr != nil {
		return fmt.Errorf("last movement failed: %w", ctx.lastErr)
	}
	resp, ok := ctx.lastResponse.(*stockCommands.RecordMovementResponse)
	if !ok {
		return fmt.Errorf("last operation was not a movement")
	}
	return expectDecimal("effect", resp.Movement.Effect, want)
}

// InitializeInventoryScenario registers catalog, movement and ledger steps
func InitializeInventoryScenario(sc *godog.ScenarioContext) {
	inv := &inventoryContext{world: sharedWorld}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, sharedWorld.reset()
	})

	sc.Step(`^a material "([^"]*)" with minimum stock (\d+(?:\.\d+)?)$`, inv.aMaterialWithMinimumStock)
	sc.Step(`^the material "([^"]*)" is deactivated$`, inv.theMaterialIsDeactivated)
	sc.Step(`^I record a ([A-Z_]+) of (\d+(?:\.\d+)?) "([^"]*)"$`, inv.iRecordMovementOf)
	sc.Step(`^I record a ([A-Z_]+) of (\d+(?:\.\d+)?) "([^"]*)" at "([^"]*)"$`, inv.iRecordMovementOfAt)
	sc.Step(`^I transfer (\d+(?:\.\d+)?) "([^"]*)" from "([^"]*)" to "([^"]*)"$`, inv.iTransfer)
	sc.Step(`^the current quantity of "([^"]*)" should be (-?\d+(?:\.\d+)?)$`, inv.currentQuantityShouldBe)
	sc.Step(`^the current quantity of "([^"]*)" at "([^"]*)" should be (\d+(?:\.\d+)?)$`, inv.currentQuantityAtShouldBe)
	sc.Step(`^the available quantity of "([^"]*)" should be (-?\d+(?:\.\d+)?)$`, inv.availableQuantityShouldBe)
	sc.Step(`^the reserved quantity of "([^"]*)" should be (\d+(?:\.\d+)?)$`, inv.reservedQuantityShouldBe)
	sc.Step(`^the stock status of "([^"]*)" should be ([A-Z_]+)$`, inv.statusShouldBe)
	sc.Step(`^"([^"]*)" should be over-allocated$`, inv.shouldBeOverAllocated)
	sc.Step(`^the movement log of "([^"]*)" should have (\d+) entries$`, inv.movementLogShouldHaveEntries)
	sc.Step(`^the movement effect should be (-?\d+(?:\.\d+)?)$`, inv.lastMovementEffectShouldBe)
	sc.Step(`^the operation should succeed$`, inv.operationShouldSucceed)
	sc.Step(`^the operation should fail with "([^"]*)"$`, inv.operationShouldFailWith)
}
