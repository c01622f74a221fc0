package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	reservationCommands "github.com/andrescamacho/warehouse-go/internal/application/reservation/commands"
	reservationQueries "github.com/andrescamacho/warehouse-go/internal/application/reservation/queries"
	stockCommands "github.com/andrescamacho/warehouse-go/internal/application/stock/commands"
)

type reservationContext struct {
	*world
}

func (ctx *reservationContext) iReserve(label, quantity, name, orderID string) error {
	id, err := ctx.materialID(name)
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		return err
	}
	resp, err := ctx.send(&reservationCommands.ReserveMaterialCommand{
		OrderID:    orderID,
		MaterialID: id,
		Quantity:   qty,
	})
	if err == nil {
		ctx.reservations[label] = resp.(*reservationCommands.ReservationResponse).Reservation.ID
	}
	return nil
}

func (ctx *reservationContext) iRelease(label string) error {
	id, err := ctx.reservationID(label)
	if err != nil {
		return err
	}
	ctx.send(&reservationCommands.ReleaseReservationCommand{ID: id})
	return nil
}

func (ctx *reservationContext) releaseShouldReturn(want string) error {
	if ctx.lastErr != nil {
		return fmt.Errorf("release failed: %w", ctx.lastErr)
	}
	resp, ok := ctx.lastResponse.(*reservationCommands.ReservationResponse)
	if !ok {
		return fmt.Errorf("last operation was not a reservation command")
	}
	return expectDecimal("returned quantity", resp.Returned, want)
}

func (ctx *reservationContext) iIssueAgainst(quantity, name, label string) error {
	materialID, err := ctx.materialID(name)
	if err != nil {
		return err
	}
	reservationID, err := ctx.reservationID(label)
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		return err
	}
	ctx.send(&stockCommands.RecordMovementCommand{
		MaterialID:    materialID,
		Type:          "ISSUE",
		Quantity:      qty,
		ReservationID: reservationID,
		Actor:         "bdd",
	})
	return nil
}

func (ctx *reservationContext) issueShouldBeOverUsed() error {
	if ctx.lastErr != nil {
		return fmt.Errorf("expected the issue to succeed, got %v", ctx.lastErr)
	}
	resp, ok := ctx.lastResponse.(*stockCommands.RecordMovementResponse)
	if !ok {
		return fmt.Errorf("last response is %T, not a movement", ctx.lastResponse)
	}
	if !resp.ReservationOverUsed {
		return fmt.Errorf("expected the reservation to be flagged as over-used")
	}
	return nil
}

func (ctx *reservationContext) reservationShouldHave(label, used, status string) error {
	id, err := ctx.reservationID(label)
	if err != nil {
		return err
	}
	for _, orderID := range ctx.orderIDs() {
		resp, err := ctx.engine.Mediator.Send(context.Background(), &reservationQueries.ListReservationsByOrderQuery{OrderID: orderID})
		if err != nil {
			return err
		}
		for _, r := range resp.(*reservationQueries.ListReservationsByOrderResponse).Reservations {
			if r.ID != id {
				continue
			}
			if err := expectDecimal("quantity used", r.QuantityUsed, used); err != nil {
				return err
			}
			if r.Status != status {
				return fmt.Errorf("expected reservation status %s, got %s", status, r.Status)
			}
			return nil
		}
	}
	return fmt.Errorf("reservation %q not found", label)
}

// orderIDs collects the orders of every reservation made in the scenario
func (ctx *reservationContext) orderIDs() []string {
	seen := make(map[string]bool)
	var orders []string
	for _, id := range ctx.reservations {
		r, err := ctx.engine.Repos.Reservations.FindByID(context.Background(), id)
		if err != nil || seen[r.OrderID()] {
			continue
		}
		seen[r.OrderID()] = true
		orders = append(orders, r.OrderID())
	}
	return orders
}

func (ctx *reservationContext) reportShouldShow(orderID string, efficiency int64, status string) error {
	resp, err := ctx.engine.Mediator.Send(context.Background(), &reservationQueries.GetReservationReportQuery{OrderIDs: []string{orderID}})
	if err != nil {
		return err
	}
	orders := resp.(*reservationQueries.GetReservationReportResponse).Orders
	if len(orders) != 1 {
		return fmt.Errorf("expected one order in the report, got %d", len(orders))
	}
	if orders[0].EfficiencyPercentage != efficiency {
		return fmt.Errorf("expected efficiency %d%%, got %d%%", efficiency, orders[0].EfficiencyPercentage)
	}
	if orders[0].Status != status {
		return fmt.Errorf("expected budget status %s, got %s", status, orders[0].Status)
	}
	return nil
}

// InitializeReservationScenario registers reservation and report steps
func InitializeReservationScenario(sc *godog.ScenarioContext) {
	res := &reservationContext{world: sharedWorld}

	sc.Step(`^I reserve "([^"]*)" of (\d+(?:\.\d+)?) "([^"]*)" for order "([^"]*)"$`, res.iReserve)
	sc.Step(`^I release reservation "([^"]*)"$`, res.iRelease)
	sc.Step(`^the release should return (\d+(?:\.\d+)?)$`, res.releaseShouldReturn)
	sc.Step(`^I issue (\d+(?:\.\d+)?) "([^"]*)" against reservation "([^"]*)"$`, res.iIssueAgainst)
	sc.Step(`^the issue should flag its reservation as over-used$`, res.issueShouldBeOverUsed)
	sc.Step(`^reservation "([^"]*)" should have used (\d+(?:\.\d+)?) with status ([A-Z]+)$`, res.reservationShouldHave)
	sc.Step(`^the report for order "([^"]*)" should show (\d+)% efficiency and ([A-Z_]+)$`, res.reportShouldShow)
}
