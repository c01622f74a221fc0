package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	deliveryCommands "github.com/andrescamacho/warehouse-go/internal/application/delivery/commands"
	deliveryQueries "github.com/andrescamacho/warehouse-go/internal/application/delivery/queries"
)

type deliveryContext struct {
	*world
}

func (ctx *deliveryContext) aDeliveryOf(label, quantity, name string) error {
	return ctx.createDelivery(label, quantity, name, nil)
}

func (ctx *deliveryContext) aDeliveryExpectedInDays(label, quantity, name string, days int) error {
	expected := ctx.engine.Clock.Now().AddDate(0, 0, days)
	return ctx.createDelivery(label, quantity, name, &expected)
}

func (ctx *deliveryContext) createDelivery(label, quantity, name string, expected *time.Time) error {
	id, err := ctx.materialID(name)
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		return err
	}
	resp, err := ctx.send(&deliveryCommands.CreateDeliveryCommand{
		MaterialID:           id,
		SupplierID:           "acme",
		QuantityOrdered:      qty,
		ExpectedDeliveryDate: expected,
	})
	if err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	ctx.deliveries[label] = resp.(*deliveryCommands.DeliveryResponse).Delivery.ID
	return nil
}

func (ctx *deliveryContext) iReceive(quantity, label string) error {
	return ctx.receive(quantity, label, false)
}

func (ctx *deliveryContext) iReceiveAcceptingOverReceipt(quantity, label string) error {
	return ctx.receive(quantity, label, true)
}

func (ctx *deliveryContext) receive(quantity, label string, acceptOver bool) error {
	id, err := ctx.deliveryID(label)
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		return err
	}
	ctx.send(&deliveryCommands.RecordDeliveryReceiptCommand{
		DeliveryID:        id,
		Quantity:          qty,
		AcceptOverReceipt: acceptOver,
		Actor:             "bdd",
	})
	return nil
}

func (ctx *deliveryContext) iMarkDelivery(label, status string) error {
	id, err := ctx.deliveryID(label)
	if err != nil {
		return err
	}
	ctx.send(&deliveryCommands.UpdateDeliveryStatusCommand{ID: id, Status: status})
	return nil
}

func (ctx *deliveryContext) theClockAdvancesDays(days int) error {
	ctx.engine.Clock.Advance(time.Duration(days) * 24 * time.Hour)
	return nil
}

func (ctx *deliveryContext) delivery(label string) (*deliveryQueries.GetDeliveryResponse, error) {
	id, err := ctx.deliveryID(label)
	if err != nil {
		return nil, err
	}
	resp, err := ctx.engine.Mediator.Send(context.Background(), &deliveryQueries.GetDeliveryQuery{ID: id})
	if err != nil {
		return nil, err
	}
	return resp.(*deliveryQueries.GetDeliveryResponse), nil
}

func (ctx *deliveryContext) deliveryShouldBe(label, status, delivered string) error {
	resp, err := ctx.delivery(label)
	if err != nil {
		return err
	}
	if resp.Delivery.Status != status {
		return fmt.Errorf("expected delivery status %s, got %s", status, resp.Delivery.Status)
	}
	return expectDecimal("quantity delivered", resp.Delivery.QuantityDelivered, delivered)
}

func (ctx *deliveryContext) deliveryShouldBeOverdue(label string) error {
	resp, err := ctx.delivery(label)
	if err != nil {
		return err
	}
	if !resp.Delivery.Overdue {
		return fmt.Errorf("expected delivery %q to be overdue", label)
	}
	return nil
}

func (ctx *deliveryContext) overdueDeliveriesShouldBe(want int) error {
	resp, err := ctx.engine.Mediator.Send(context.Background(), &deliveryQueries.ListDeliveriesQuery{OverdueOnly: true})
	if err != nil {
		return err
	}
	if got := len(resp.(*deliveryQueries.ListDeliveriesResponse).Deliveries); got != want {
		return fmt.Errorf("expected %d overdue deliveries, got %d", want, got)
	}
	return nil
}

func (ctx *deliveryContext) onOrderShouldBe(name, want string) error {
	level, err := ctx.stockLevel(name, "")
	if err != nil {
		return err
	}
	expected := want == "true"
	if level.StockLevel.OnOrder != expected {
		return fmt.Errorf("expected on_order %v for %s, got %v", expected, name, level.StockLevel.OnOrder)
	}
	return nil
}

// InitializeDeliveryScenario registers delivery tracker steps
func InitializeDeliveryScenario(sc *godog.ScenarioContext) {
	del := &deliveryContext{world: sharedWorld}

	sc.Step(`^a delivery "([^"]*)" of (\d+(?:\.\d+)?) "([^"]*)"$`, del.aDeliveryOf)
	sc.Step(`^a delivery "([^"]*)" of (\d+(?:\.\d+)?) "([^"]*)" expected in (\d+) days$`, del.aDeliveryExpectedInDays)
	sc.Step(`^I receive (\d+(?:\.\d+)?) on delivery "([^"]*)"$`, del.iReceive)
	sc.Step(`^I receive (\d+(?:\.\d+)?) on delivery "([^"]*)" accepting over-receipt$`, del.iReceiveAcceptingOverReceipt)
	sc.Step(`^I mark delivery "([^"]*)" as ([A-Z_]+)$`, del.iMarkDelivery)
	sc.Step(`^(\d+) days pass$`, del.theClockAdvancesDays)
	sc.Step(`^delivery "([^"]*)" should be ([A-Z_]+) with (\d+(?:\.\d+)?) delivered$`, del.deliveryShouldBe)
	sc.Step(`^delivery "([^"]*)" should be overdue$`, del.deliveryShouldBeOverdue)
	sc.Step(`^there should be (\d+) overdue deliver(?:y|ies)$`, del.overdueDeliveriesShouldBe)
	sc.Step(`^"([^"]*)" should have on_order (true|false)$`, del.onOrderShouldBe)
}
