// Package report turns ledger records into the derived values a dashboard
// renders: windowed totals, category buckets, monthly series, headline
// metrics, pie geometry and the CSV export.
//
// Every function here is a pure transformation of its input. Nothing is
// cached and records are never modified, so reports for different windows can
// be computed concurrently without coordination.
package report

import "fincircle/internal/core"

// FlowReport groups the derived values of one flow type.
type FlowReport struct {
	Flow    core.FlowType `json:"flow"`
	Buckets []Bucket      `json:"buckets"`
	Monthly MonthlySeries `json:"monthly"`
	Arcs    []ArcSlice    `json:"arcs"`
}

// Report is everything computed for one window.
type Report struct {
	Window      Window     `json:"window"`
	RecordCount int        `json:"record_count"`
	Metrics     Metrics    `json:"metrics"`
	Income      FlowReport `json:"income"`
	Expense     FlowReport `json:"expense"`
	Investment  FlowReport `json:"investment"`
}

// Build runs the whole pipeline for w over records of any flow type.
func Build(records []core.LedgerRecord, w Window) Report {
	inWindow := Filter(records, w)

	income := buildFlow(inWindow, core.Income)
	expense := buildFlow(inWindow, core.Expense)
	investment := buildFlow(inWindow, core.Investment)

	return Report{
		Window:      w,
		RecordCount: len(inWindow),
		Metrics:     ComputeMetrics(income.Buckets, expense.Buckets, investment.Buckets),
		Income:      income,
		Expense:     expense,
		Investment:  investment,
	}
}

func buildFlow(records []core.LedgerRecord, flow core.FlowType) FlowReport {
	buckets := Aggregate(records, flow)
	return FlowReport{
		Flow:    flow,
		Buckets: buckets,
		Monthly: BuildMonthlySeries(records, flow),
		Arcs:    EncodeArcs(buckets),
	}
}

// PaletteFor returns the fixed palette used for a flow type.
func PaletteFor(flow core.FlowType) Palette {
	switch flow {
	case core.Income:
		return IncomePalette
	case core.Investment:
		return InvestmentPalette
	default:
		return ExpensePalette
	}
}
