package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogCommands "github.com/andrescamacho/warehouse-go/internal/application/catalog/commands"
	deliveryCommands "github.com/andrescamacho/warehouse-go/internal/application/delivery/commands"
	dependencyCommands "github.com/andrescamacho/warehouse-go/internal/application/dependency/commands"
	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	reservationQueries "github.com/andrescamacho/warehouse-go/internal/application/reservation/queries"
	stockCommands "github.com/andrescamacho/warehouse-go/internal/application/stock/commands"
	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/dependency"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
	"github.com/andrescamacho/warehouse-go/internal/infrastructure/config"
	"github.com/andrescamacho/warehouse-go/test/helpers"
)

func newTestRouter(m *helpers.MockMediator) http.Handler {
	return NewRouter(RouterOptions{Mediator: m})
}

func perform(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateMaterial_BindsBodyAndReturnsCreated(t *testing.T) {
	m := helpers.NewMockMediator()
	m.Respond(&catalogCommands.CreateMaterialCommand{}, &catalogCommands.MaterialResponse{}, nil)

	w := perform(t, newTestRouter(m), http.MethodPost, "/api/v1/materials",
		`{"name":"Oak board","category":"wood","unit":"piece","min_stock_level":"5"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	cmd, ok := m.LastCall().(*catalogCommands.CreateMaterialCommand)
	require.True(t, ok)
	assert.Equal(t, "Oak board", cmd.Name)
	assert.True(t, cmd.MinStockLevel.Equal(decimal.NewFromInt(5)))
}

func TestCreateMaterial_MalformedBody(t *testing.T) {
	m := helpers.NewMockMediator()
	w := perform(t, newTestRouter(m), http.MethodPost, "/api/v1/materials", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decodeError(t, w)["error"])
	assert.Empty(t, m.Calls())
}

func TestRecordDeliveryReceipt_TakesIDFromPath(t *testing.T) {
	m := helpers.NewMockMediator()
	m.Respond(&deliveryCommands.RecordDeliveryReceiptCommand{}, &deliveryCommands.DeliveryResponse{}, nil)

	w := perform(t, newTestRouter(m), http.MethodPost, "/api/v1/deliveries/d-1/receipts", `{"quantity":"4"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	cmd := m.LastCall().(*deliveryCommands.RecordDeliveryReceiptCommand)
	assert.Equal(t, "d-1", cmd.DeliveryID)
}

func TestReservationReport_RepeatedOrderIDs(t *testing.T) {
	m := helpers.NewMockMediator()
	m.Respond(&reservationQueries.GetReservationReportQuery{}, &reservationQueries.GetReservationReportResponse{}, nil)

	w := perform(t, newTestRouter(m), http.MethodGet, "/api/v1/reservations/report?order_id=o1&order_id=o2", "")

	assert.Equal(t, http.StatusOK, w.Code)
	q := m.LastCall().(*reservationQueries.GetReservationReportQuery)
	assert.Equal(t, []string{"o1", "o2"}, q.OrderIDs)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", shared.NewValidationError("quantity", "must be greater than 0"), http.StatusUnprocessableEntity, "validation_error"},
		{"insufficient stock", &stock.ErrInsufficientStock{MaterialID: "m", Location: "MAIN"}, http.StatusConflict, "insufficient_stock"},
		{"wrapped insufficient stock", fmt.Errorf("record: %w", &stock.ErrInsufficientStock{}), http.StatusConflict, "insufficient_stock"},
		{"over delivery", &delivery.ErrOverDelivery{DeliveryID: "d"}, http.StatusConflict, "over_delivery"},
		{"invalid transition", &delivery.ErrInvalidTransition{DeliveryID: "d"}, http.StatusConflict, "invalid_transition"},
		{"blocked", &dependency.ErrBlockedDeletion{MaterialID: "m", EstimateRefs: 1}, http.StatusConflict, "blocked_deletion"},
		{"delivery sync wins over wrapped cause", &delivery.ErrDeliverySync{DeliveryID: "d", Err: &stock.ErrStockLevelNotFound{}}, http.StatusInternalServerError, "delivery_sync"},
		{"not found", shared.NewNotFoundError("material", "m"), http.StatusNotFound, "not_found"},
		{"lock timeout", &shared.LockTimeoutError{Key: "stock:m:MAIN"}, http.StatusServiceUnavailable, "lock_timeout"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := helpers.NewMockMediator()
			m.Respond(&stockCommands.RecordMovementCommand{}, nil, tt.err)

			w := perform(t, newTestRouter(m), http.MethodPost, "/api/v1/movements",
				`{"material_id":"m","type":"ISSUE","quantity":"1"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.kind, decodeError(t, w)["error"])
		})
	}
}

func TestDeleteMaterial_PartialFailureStillOK(t *testing.T) {
	m := helpers.NewMockMediator()
	m.Respond(&dependencyCommands.DeleteMaterialCommand{}, &dependencyCommands.DeleteMaterialResponse{
		MaterialID:     "m",
		Deleted:        true,
		PartialFailure: &dependency.ErrPartialCascadeFailure{MaterialID: "m", Deleted: true},
	}, nil)

	w := perform(t, newTestRouter(m), http.MethodDelete, "/api/v1/materials/m?clear_reservations=true", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, true, body["deleted"])
	assert.NotEmpty(t, body["partial_failure"])

	cmd := m.LastCall().(*dependencyCommands.DeleteMaterialCommand)
	assert.True(t, cmd.ClearReservations)
	assert.False(t, cmd.CancelEstimates)
}

func TestDeleteMaterial_AbortedDeleteCarriesSteps(t *testing.T) {
	m := helpers.NewMockMediator()
	blocked := &dependency.ErrBlockedDeletion{MaterialID: "m", EstimateRefs: 1}
	m.Respond(&dependencyCommands.DeleteMaterialCommand{}, &dependencyCommands.DeleteMaterialResponse{
		MaterialID: "m",
		Steps: []dependencyCommands.StepDTO{
			{Step: "clear_reservations", Affected: 1},
			{Step: "delete_material", Error: blocked.Error()},
		},
	}, &dependency.ErrCascadeAborted{MaterialID: "m", Err: blocked})

	w := perform(t, newTestRouter(m), http.MethodDelete, "/api/v1/materials/m?clear_reservations=true", "")

	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "blocked_deletion", body["error"])
	report, ok := body["report"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, report["deleted"])
	steps, ok := report["steps"].([]interface{})
	require.True(t, ok)
	require.Len(t, steps, 2)
	first := steps[0].(map[string]interface{})
	assert.Equal(t, "clear_reservations", first["step"])
	assert.EqualValues(t, 1, first["affected"])
}

func TestRateLimit(t *testing.T) {
	m := helpers.NewMockMediator()
	m.SetSendFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return struct{}{}, nil
	})
	router := NewRouter(RouterOptions{
		Mediator:  m,
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1},
	})

	assert.Equal(t, http.StatusOK, perform(t, router, http.MethodGet, "/api/v1/stock-summary", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(t, router, http.MethodGet, "/api/v1/stock-summary", "").Code)
	// health is outside the limited group
	assert.Equal(t, http.StatusOK, perform(t, router, http.MethodGet, "/healthz", "").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	ready := errors.New("database down")
	router := NewRouter(RouterOptions{
		Mediator: helpers.NewMockMediator(),
		Gatherer: reg,
		Ready:    func(context.Context) error { return ready },
	})

	w := perform(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	ready = nil
	w = perform(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_total 1")
}

func TestRecovery(t *testing.T) {
	m := helpers.NewMockMediator()
	m.SetSendFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		panic("handler exploded")
	})

	w := perform(t, newTestRouter(m), http.MethodGet, "/api/v1/stock-summary", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal", decodeError(t, w)["error"])
}
