package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/warehouse-go/internal/domain/delivery"
	"github.com/andrescamacho/warehouse-go/internal/domain/stock"
)

// refreshOnOrder sets the ledger's on-order flag from whether any open
// delivery still targets the key. Must run inside the caller's unit of work.
func refreshOnOrder(
	ctx context.Context,
	levels stock.StockLevelRepository,
	deliveries delivery.DeliveryRepository,
	materialID, location string,
	now time.Time,
) (*stock.StockLevel, error) {
	open, err := deliveries.HasOpen(ctx, materialID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check open deliveries: %w", err)
	}
	level, err := levels.GetForUpdate(ctx, materialID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock level: %w", err)
	}
	if level.OnOrder() == open {
		return level, nil
	}
	level.SetOnOrder(open, now)
	if err := levels.Save(ctx, level); err != nil {
		return nil, fmt.Errorf("failed to save stock level: %w", err)
	}
	return level, nil
}
