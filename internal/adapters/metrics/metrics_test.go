package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
	stockQueries "github.com/andrescamacho/warehouse-go/internal/application/stock/queries"
)

type pingCommand struct{}

type summaryHandler struct{}

func (summaryHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return &stockQueries.GetStockSummaryResponse{
		ActiveMaterials: 3,
		ByStatus:        map[string]int{"IN_STOCK": 2, "LOW_STOCK": 1},
		OverAllocated:   1,
		TotalStockValue: decimal.NewFromFloat(125.5),
	}, nil
}

func TestExtractRequestName(t *testing.T) {
	assert.Equal(t, "pingCommand", extractRequestName(&pingCommand{}))
	assert.Equal(t, "UnknownRequest", extractRequestName(nil))
	assert.Equal(t, "command", requestKind("RecordMovementCommand"))
	assert.Equal(t, "query", requestKind("GetStockSummaryQuery"))
	assert.Equal(t, "other", requestKind("pingRequest"))
}

func TestPrometheusMiddleware_RecordsOutcome(t *testing.T) {
	collector := NewCommandMetricsCollector()
	mw := PrometheusMiddleware(collector)

	ok := func(ctx context.Context, request mediator.Request) (mediator.Response, error) { return "ok", nil }
	fail := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return nil, errors.New("boom")
	}

	_, err := mw(context.Background(), &pingCommand{}, ok)
	require.NoError(t, err)
	_, err = mw(context.Background(), &pingCommand{}, fail)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("pingCommand", "other", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("pingCommand", "other", "error")))
}

func TestPrometheusMiddleware_NilCollectorPassesThrough(t *testing.T) {
	mw := PrometheusMiddleware(nil)
	resp, err := mw(context.Background(), &pingCommand{}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, resp)
}

func TestInventoryCollector_GlobalRecorders(t *testing.T) {
	collector := NewInventoryMetricsCollector(nil, 0)
	SetGlobalInventoryCollector(collector)
	defer SetGlobalInventoryCollector(nil)

	RecordMovement("ISSUE", "MAIN", 4)
	RecordMovement("ISSUE", "MAIN", 1.5)
	RecordInsufficientStock("RESERVE")
	RecordReservation("reserve", 10)
	RecordDeliveryReceipt(7, true)
	RecordCascadeStep("cancel_estimates", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.movementsTotal.WithLabelValues("ISSUE", "MAIN")))
	assert.Equal(t, 5.5, testutil.ToFloat64(collector.movementQuantity.WithLabelValues("ISSUE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.insufficientStock.WithLabelValues("RESERVE")))
	assert.Equal(t, 10.0, testutil.ToFloat64(collector.reservationQuantity.WithLabelValues("reserve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.deliveryReceipts.WithLabelValues("true")))
	assert.Equal(t, 7.0, testutil.ToFloat64(collector.deliveryQuantity))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.cascadeStepsTotal.WithLabelValues("cancel_estimates", "error")))
}

func TestInventoryCollector_RecordersAreNoOpWithoutCollector(t *testing.T) {
	SetGlobalInventoryCollector(nil)
	assert.NotPanics(t, func() {
		RecordMovement("RECEIPT", "MAIN", 1)
		RecordCascadeStep("delete_material", true)
	})
}

func TestInventoryCollector_PollsSummary(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*stockQueries.GetStockSummaryQuery](m, summaryHandler{}))

	collector := NewInventoryMetricsCollector(m, time.Hour)
	collector.Start(context.Background())
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(collector.activeMaterials) == 3
	}, time.Second, 10*time.Millisecond)
	collector.Stop()

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.stockLevelsByStatus.WithLabelValues("IN_STOCK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.overAllocated))
	assert.Equal(t, 125.5, testutil.ToFloat64(collector.stockValue))
}

func TestRegister_NoRegistryIsNoOp(t *testing.T) {
	Registry = nil
	assert.NoError(t, NewCommandMetricsCollector().Register())
	assert.NoError(t, NewInventoryMetricsCollector(nil, 0).Register())
	assert.False(t, IsEnabled())
}
