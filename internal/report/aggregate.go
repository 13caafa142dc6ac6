package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"fincircle/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Bucket is the aggregated total of one category label within a flow type.
type Bucket struct {
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
	Ordinal    int             `json:"ordinal"`
}

// Aggregate groups the records of flow by label and returns the buckets sorted
// by amount, largest first. Equal amounts keep the order in which their labels
// were first seen. A zero total yields an empty slice.
func Aggregate(records []core.LedgerRecord, flow core.FlowType) []Bucket {
	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, r := range records {
		if r.Flow != flow {
			continue
		}
		label := r.Label()
		prev, seen := sums[label]
		if !seen {
			order = append(order, label)
		}
		sums[label] = prev.Add(r.Magnitude())
	}

	total := decimal.Zero
	for _, label := range order {
		total = total.Add(sums[label])
	}
	if total.IsZero() {
		return []Bucket{}
	}

	buckets := make([]Bucket, 0, len(order))
	for _, label := range order {
		amt := sums[label]
		buckets = append(buckets, Bucket{
			Label:      label,
			Amount:     amt,
			Percentage: amt.Mul(hundred).DivRound(total, 12).InexactFloat64(),
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Amount.GreaterThan(buckets[j].Amount)
	})
	for i := range buckets {
		buckets[i].Ordinal = i
	}
	return buckets
}

// Total sums the bucket amounts.
func Total(buckets []Bucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Amount)
	}
	return total
}
