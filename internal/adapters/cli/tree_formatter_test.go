package cli

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	dependencyQueries "github.com/andrescamacho/warehouse-go/internal/application/dependency/queries"
	"github.com/andrescamacho/warehouse-go/internal/application/dtos"
)

func TestTreeFormatter_BlockedMaterial(t *testing.T) {
	deps := &dependencyQueries.GetDependenciesResponse{
		MaterialID: "m1",
		ApprovedEstimates: []dependencyQueries.EstimateRefDTO{
			{EstimateID: "e1", EstimateNumber: "EST-1", EstimateStatus: "approved", LineItemID: "li1", Quantity: decimal.NewFromInt(3)},
		},
		Reservations: []dtos.ReservationDTO{
			{ID: "r1", OrderID: "o1", Status: "ACTIVE", QuantityReserved: decimal.NewFromInt(5), QuantityUsed: decimal.Zero},
		},
	}

	out := NewTreeFormatter(false).FormatDependencies(deps)

	assert.Contains(t, out, "material m1\n")
	assert.Contains(t, out, "├── approved estimates (1) [blocks delete]")
	assert.Contains(t, out, "│   └── EST-1 (approved) line li1 qty=3 [blocks delete]")
	assert.Contains(t, out, "└── recent movements (0)\n")
	assert.Contains(t, out, "blocked: 1 estimate line items, 1 reservations")
	assert.NotContains(t, out, "\033[")
}

func TestTreeFormatter_Deletable(t *testing.T) {
	deps := &dependencyQueries.GetDependenciesResponse{MaterialID: "m1", CanDelete: true}

	out := NewTreeFormatter(true).FormatDependencies(deps)

	assert.Contains(t, out, "can be deleted")
	assert.Contains(t, out, "\033[32m")
	assert.NotContains(t, out, "[blocks delete]")
}
