package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	stockQueries "github.com/andrescamacho/warehouse-go/internal/application/stock/queries"
	"github.com/andrescamacho/warehouse-go/test/helpers"
)

// world is the state shared by every step file within one scenario
type world struct {
	engine *helpers.TestEngine

	// materials maps the names used in features to catalog ids
	materials map[string]string

	// reservations and deliveries map feature labels to ids
	reservations map[string]string
	deliveries   map[string]string

	lastResponse mediator.Response
	lastErr      error
}

var sharedWorld = &world{}

func (w *world) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	engine, err := helpers.NewTestEngine(helpers.SharedTestDB)
	if err != nil {
		return err
	}
	w.engine = engine
	w.materials = make(map[string]string)
	w.reservations = make(map[string]string)
	w.deliveries = make(map[string]string)
	w.lastResponse = nil
	w.lastErr = nil
	return nil
}

// send dispatches a request and remembers its outcome for later assertions
func (w *world) send(request mediator.Request) (mediator.Response, error) {
	w.lastResponse, w.lastErr = w.engine.Mediator.Send(context.Background(), request)
	return w.lastResponse, w.lastErr
}

func (w *world) materialID(name string) (string, error) {
	id, ok := w.materials[name]
	if !ok {
		return "", fmt.Errorf("material %q was not created in this scenario", name)
	}
	return id, nil
}

func (w *world) reservationID(label string) (string, error) {
	id, ok := w.reservations[label]
	if !ok {
		return "", fmt.Errorf("reservation %q was not created in this scenario", label)
	}
	return id, nil
}

func (w *world) deliveryID(label string) (string, error) {
	id, ok := w.deliveries[label]
	if !ok {
		return "", fmt.Errorf("delivery %q was not created in this scenario", label)
	}
	return id, nil
}

func (w *world) operationShouldSucceed() error {
	if w.lastErr != nil {
		return fmt.Errorf("expected success, got: %w", w.lastErr)
	}
	return nil
}

func (w *world) operationShouldFailWith(message string) error {
	if w.lastErr == nil {
		return fmt.Errorf("expected error containing %q, got success", message)
	}
	if !strings.Contains(w.lastErr.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, w.lastErr.Error())
	}
	return nil
}

func (w *world) stockLevel(name, location string) (*stockQueries.GetStockLevelResponse, error) {
	id, err := w.materialID(name)
	if err != nil {
		return nil, err
	}
	resp, err := w.engine.Mediator.Send(context.Background(), &stockQueries.GetStockLevelQuery{MaterialID: id, Location: location})
	if err != nil {
		return nil, err
	}
	return resp.(*stockQueries.GetStockLevelResponse), nil
}

func expectDecimal(field string, got decimal.Decimal, want string) error {
	expected, err := decimal.NewFromString(want)
	if err != nil {
		return fmt.Errorf("bad expected %s %q: %w", field, want, err)
	}
	if !got.Equal(expected) {
		return fmt.Errorf("expected %s %s, got %s", field, expected, got)
	}
	return nil
}
