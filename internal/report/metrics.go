package report

import "github.com/shopspring/decimal"

// Metrics are the headline dashboard numbers for a window.
type Metrics struct {
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpense    decimal.Decimal `json:"total_expense"`
	TotalInvestment decimal.Decimal `json:"total_investment"`
	// NetSavings is income minus expense minus investment: money moved into
	// investments does not count as available savings.
	NetSavings decimal.Decimal `json:"net_savings"`
}

// ComputeMetrics sums each bucket list and derives net savings.
func ComputeMetrics(income, expense, investment []Bucket) Metrics {
	in := Total(income)
	out := Total(expense)
	inv := Total(investment)
	return Metrics{
		TotalIncome:     in,
		TotalExpense:    out,
		TotalInvestment: inv,
		NetSavings:      in.Sub(out).Sub(inv),
	}
}
