package report

import "fincircle/internal/core"

// Filter keeps the records whose calendar date falls inside w, preserving
// input order. The input slice is never modified.
func Filter(records []core.LedgerRecord, w Window) []core.LedgerRecord {
	out := make([]core.LedgerRecord, 0, len(records))
	for _, r := range records {
		if w.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// ByFlow keeps the records of one flow type, preserving input order.
func ByFlow(records []core.LedgerRecord, flow core.FlowType) []core.LedgerRecord {
	out := make([]core.LedgerRecord, 0, len(records))
	for _, r := range records {
		if r.Flow == flow {
			out = append(out, r)
		}
	}
	return out
}
