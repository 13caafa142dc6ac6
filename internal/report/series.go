package report

import (
	"github.com/shopspring/decimal"

	"fincircle/internal/core"
)

// MonthlySeries holds one total per calendar month, index 0 being January.
type MonthlySeries [12]decimal.Decimal

// BuildMonthlySeries adds the magnitude of every record of flow into the
// bucket of its calendar month. Months without activity stay zero.
func BuildMonthlySeries(records []core.LedgerRecord, flow core.FlowType) MonthlySeries {
	var s MonthlySeries
	for _, r := range records {
		if r.Flow != flow {
			continue
		}
		m := r.Date.MonthIndex()
		s[m] = s[m].Add(r.Magnitude())
	}
	return s
}

// Sum returns the total of all twelve months.
func (s MonthlySeries) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s {
		total = total.Add(v)
	}
	return total
}
