package stock_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

func TestMovementInput_Validate(t *testing.T) {
	base := stock.MovementInput{MaterialID: "mat-1", Location: "MAIN", Quantity: d(5), OccurredAt: now}

	tests := []struct {
		name  string
		edit  func(in *stock.MovementInput)
		field string
	}{
		{"unknown type", func(in *stock.MovementInput) { in.Type = "SPILL" }, "type"},
		{"zero quantity", func(in *stock.MovementInput) { in.Type = stock.MovementTypeIssue; in.Quantity = d(0) }, "quantity"},
		{"negative count", func(in *stock.MovementInput) { in.Type = stock.MovementTypeInventoryCount; in.Quantity = d(-1) }, "quantity"},
		{"transfer without destination", func(in *stock.MovementInput) { in.Type = stock.MovementTypeTransfer }, "destination_location"},
		{"transfer to same location", func(in *stock.MovementInput) {
			in.Type = stock.MovementTypeTransfer
			in.DestinationLocation = "MAIN"
		}, "destination_location"},
		{"receipt with destination", func(in *stock.MovementInput) {
			in.Type = stock.MovementTypeReceipt
			in.DestinationLocation = "SHOP"
		}, "destination_location"},
		{"reservation on write-off", func(in *stock.MovementInput) {
			in.Type = stock.MovementTypeWriteOff
			in.ReservationID = "res-1"
		}, "reservation_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.edit(&in)

			err := in.Validate()

			var invalid *stock.ErrInvalidMovement
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestMovementInput_CountOfZeroIsValid(t *testing.T) {
	in := stock.MovementInput{MaterialID: "mat-1", Location: "MAIN", Type: stock.MovementTypeInventoryCount, Quantity: d(0), OccurredAt: now}

	require.NoError(t, in.Validate())
	assert.True(t, in.Effect(d(7)).Equal(d(-7)))
}

func TestMovement_EffectAt(t *testing.T) {
	in := stock.MovementInput{
		MaterialID:          "mat-1",
		Type:                stock.MovementTypeTransfer,
		Location:            "MAIN",
		DestinationLocation: "SHOP",
		Quantity:            d(4),
		OccurredAt:          now,
	}
	m, err := stock.NewMovement(in, in.Effect(d(10)))
	require.NoError(t, err)

	assert.True(t, m.EffectAt("MAIN").Equal(d(-4)))
	assert.True(t, m.EffectAt("SHOP").Equal(d(4)))
	assert.True(t, m.EffectAt("YARD").IsZero())
}

func TestParseMovementType(t *testing.T) {
	typ, err := stock.ParseMovementType("WRITE_OFF")
	require.NoError(t, err)
	assert.Equal(t, stock.MovementTypeWriteOff, typ)

	_, err = stock.ParseMovementType("write_off")
	assert.Error(t, err)
}
