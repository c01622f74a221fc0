package reservation

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BudgetStatus classifies an order's consumption against its plan
type BudgetStatus string

const (
	BudgetOver  BudgetStatus = "OVER_BUDGET"
	BudgetUnder BudgetStatus = "UNDER_BUDGET"
	BudgetOn    BudgetStatus = "ON_BUDGET"
)

const (
	overBudgetAbove  = 110
	underBudgetBelow = 90
)

// Line is one reservation inside an order report
type Line struct {
	Reservation *Reservation
	Variance    decimal.Decimal // used - reserved
	Discrepancy bool
}

// OrderReport aggregates every reservation of one order
type OrderReport struct {
	OrderID              string
	TotalReserved        decimal.Decimal
	TotalUsed            decimal.Decimal
	EfficiencyPercentage int64
	Status               BudgetStatus
	DiscrepancyCount     int
	Lines                []Line
}

// Efficiency returns round(used / reserved * 100). With nothing reserved it is
// 0 when nothing was used either, otherwise the order counts as over budget.
func Efficiency(totalReserved, totalUsed decimal.Decimal) (int64, BudgetStatus) {
	if totalReserved.IsZero() {
		if totalUsed.IsPositive() {
			return 0, BudgetOver
		}
		return 0, BudgetOn
	}
	pct := totalUsed.Mul(hundred).Div(totalReserved).Round(0).IntPart()
	switch {
	case pct > overBudgetAbove:
		return pct, BudgetOver
	case pct < underBudgetBelow:
		return pct, BudgetUnder
	default:
		return pct, BudgetOn
	}
}

// BuildOrderReports groups reservations by order, sorted by order id
func BuildOrderReports(reservations []*Reservation) []OrderReport {
	byOrder := make(map[string]*OrderReport)
	var orderIDs []string

	for _, r := range reservations {
		report, ok := byOrder[r.OrderID()]
		if !ok {
			report = &OrderReport{
				OrderID:       r.OrderID(),
				TotalReserved: decimal.Zero,
				TotalUsed:     decimal.Zero,
			}
			byOrder[r.OrderID()] = report
			orderIDs = append(orderIDs, r.OrderID())
		}

		line := Line{
			Reservation: r,
			Variance:    r.QuantityUsed().Sub(r.QuantityReserved()),
			Discrepancy: r.HasDiscrepancy(),
		}
		if line.Discrepancy {
			report.DiscrepancyCount++
		}
		report.Lines = append(report.Lines, line)
		report.TotalReserved = report.TotalReserved.Add(r.QuantityReserved())
		report.TotalUsed = report.TotalUsed.Add(r.QuantityUsed())
	}

	sort.Strings(orderIDs)
	reports := make([]OrderReport, 0, len(orderIDs))
	for _, id := range orderIDs {
		report := byOrder[id]
		report.EfficiencyPercentage, report.Status = Efficiency(report.TotalReserved, report.TotalUsed)
		reports = append(reports, *report)
	}
	return reports
}
