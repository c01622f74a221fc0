package stock

import "github.com/shopspring/decimal"

// Replay recomputes current quantity at a location from movements in the given
// order, applying each by its type: counts overwrite, everything else adds.
//
// Receipts, issues, returns, write-offs and transfers commute, so any ordering
// of them yields the same result. Inventory counts do not: moving a count
// relative to other movements changes the outcome.
func Replay(movements []*Movement, location string) decimal.Decimal {
	current := decimal.Zero
	for _, m := range movements {
		if !m.Touches(location) {
			continue
		}
		if m.Type().IsAbsolute() && m.Location() == location {
			current = m.Quantity()
			continue
		}
		switch location {
		case m.Location():
			if m.Type().IsInbound() {
				current = current.Add(m.Quantity())
			} else {
				current = current.Sub(m.Quantity())
			}
		case m.DestinationLocation():
			current = current.Add(m.Quantity())
		}
	}
	return current
}

// SumEffects returns the running sum of recorded signed effects at a location.
// For a log in sequence order this equals Replay.
func SumEffects(movements []*Movement, location string) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.EffectAt(location))
	}
	return total
}

// Drift compares a stored ledger quantity with the value replayed from the log
type Drift struct {
	Stored   decimal.Decimal
	Replayed decimal.Decimal
}

// Delta is replayed minus stored
func (d Drift) Delta() decimal.Decimal {
	return d.Replayed.Sub(d.Stored)
}

// HasDrift reports whether the ledger disagrees with its log
func (d Drift) HasDrift() bool {
	return !d.Stored.Equal(d.Replayed)
}
