package common_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/application/common"
	"github.com/andrescamacho/warehouse-go/internal/domain/shared"
)

type sampleCommand struct {
	MaterialID string          `json:"material_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
}

func TestValidateRequest(t *testing.T) {
	err := common.ValidateRequest(&sampleCommand{Quantity: decimal.NewFromInt(1)})

	var validation *shared.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "material_id", validation.Field)

	err = common.ValidateRequest(&sampleCommand{MaterialID: "m", Quantity: decimal.Zero})
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "quantity", validation.Field)

	assert.NoError(t, common.ValidateRequest(&sampleCommand{MaterialID: "m", Quantity: decimal.RequireFromString("0.25")}))
}
