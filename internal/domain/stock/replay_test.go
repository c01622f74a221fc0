package stock_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// logBuilder records movements against an in-memory ledger row the same way
// the movement recorder does, so effects match what would be persisted
type logBuilder struct {
	t      *testing.T
	levels map[string]*stock.StockLevel
	log    []*stock.Movement
	at     time.Time
}

func newLogBuilder(t *testing.T) *logBuilder {
	return &logBuilder{t: t, levels: map[string]*stock.StockLevel{}, at: now}
}

func (b *logBuilder) level(location string) *stock.StockLevel {
	if l, ok := b.levels[location]; ok {
		return l
	}
	l := stock.NewStockLevel("mat-1", location, b.at)
	b.levels[location] = l
	return l
}

func (b *logBuilder) add(typ stock.MovementType, qty int64, location, destination string) {
	b.t.Helper()
	b.at = b.at.Add(time.Minute)
	in := stock.MovementInput{
		MaterialID:          "mat-1",
		Type:                typ,
		Location:            location,
		DestinationLocation: destination,
		Quantity:            d(qty),
		OccurredAt:          b.at,
	}
	src := b.level(location)
	effect := in.Effect(src.CurrentQuantity())
	m, err := stock.NewMovement(in, effect)
	require.NoError(b.t, err)
	require.NoError(b.t, src.ApplyMovementEffect(effect, b.at))
	if destination != "" {
		require.NoError(b.t, b.level(destination).ApplyMovementEffect(d(qty), b.at))
	}
	m.AssignSeq(int64(len(b.log) + 1))
	b.log = append(b.log, m)
}

func reversed(in []*stock.Movement) []*stock.Movement {
	out := make([]*stock.Movement, len(in))
	for i, m := range in {
		out[len(in)-1-i] = m
	}
	return out
}

func TestReplay_LedgerEqualsRunningSumOfEffects(t *testing.T) {
	b := newLogBuilder(t)
	b.add(stock.MovementTypeReceipt, 50, "MAIN", "")
	b.add(stock.MovementTypeIssue, 12, "MAIN", "")
	b.add(stock.MovementTypeTransfer, 8, "MAIN", "SHOP")
	b.add(stock.MovementTypeInventoryCount, 27, "MAIN", "")
	b.add(stock.MovementTypeReturn, 3, "SHOP", "")
	b.add(stock.MovementTypeWriteOff, 1, "SHOP", "")

	for _, location := range []string{"MAIN", "SHOP"} {
		stored := b.level(location).CurrentQuantity()
		assert.True(t, stored.Equal(stock.SumEffects(b.log, location)), location)
		assert.True(t, stored.Equal(stock.Replay(b.log, location)), location)
	}
	assert.True(t, b.level("MAIN").CurrentQuantity().Equal(d(27)))
	assert.True(t, b.level("SHOP").CurrentQuantity().Equal(d(10)))
}

func TestReplay_NonCountMovementsCommute(t *testing.T) {
	b := newLogBuilder(t)
	b.add(stock.MovementTypeReceipt, 40, "MAIN", "")
	b.add(stock.MovementTypeReturn, 5, "MAIN", "")
	b.add(stock.MovementTypeIssue, 10, "MAIN", "")
	b.add(stock.MovementTypeWriteOff, 2, "MAIN", "")
	b.add(stock.MovementTypeTransfer, 3, "MAIN", "SHOP")

	inOrder := stock.Replay(b.log, "MAIN")
	rev := stock.Replay(reversed(b.log), "MAIN")
	rotated := stock.Replay(append(append([]*stock.Movement{}, b.log[2:]...), b.log[:2]...), "MAIN")

	assert.True(t, inOrder.Equal(d(30)))
	assert.True(t, inOrder.Equal(rev))
	assert.True(t, inOrder.Equal(rotated))
}

func TestReplay_InventoryCountDoesNotCommute(t *testing.T) {
	b := newLogBuilder(t)
	b.add(stock.MovementTypeReceipt, 40, "MAIN", "")
	b.add(stock.MovementTypeInventoryCount, 35, "MAIN", "")
	b.add(stock.MovementTypeIssue, 10, "MAIN", "")

	inOrder := stock.Replay(b.log, "MAIN")
	countLast := stock.Replay([]*stock.Movement{b.log[0], b.log[2], b.log[1]}, "MAIN")

	assert.True(t, inOrder.Equal(d(25)))
	assert.True(t, countLast.Equal(d(35)))
	assert.False(t, inOrder.Equal(countLast))
}

func TestDrift(t *testing.T) {
	drift := stock.Drift{Stored: d(12), Replayed: d(10)}

	assert.True(t, drift.HasDrift())
	assert.True(t, drift.Delta().Equal(d(-2)))
	assert.False(t, stock.Drift{Stored: decimal.RequireFromString("1.50"), Replayed: decimal.RequireFromString("1.5")}.HasDrift())
}
