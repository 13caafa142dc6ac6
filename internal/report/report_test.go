package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincircle/internal/core"
)

func rec(id, amount string, flow core.FlowType, cat, sub, date string) core.LedgerRecord {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.LedgerRecord{
		ID:          id,
		Amount:      decimal.RequireFromString(amount),
		Flow:        flow,
		Category:    cat,
		Subcategory: sub,
		Date:        d,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func exampleLedger() []core.LedgerRecord {
	return []core.LedgerRecord{
		rec("1", "100", core.Income, "Salary", "", "2025-01-15"),
		rec("2", "40", core.Expense, "Food", "", "2025-01-20"),
		rec("3", "60", core.Expense, "Rent", "", "2025-02-01"),
	}
}

func TestBuild_Example(t *testing.T) {
	r := Build(exampleLedger(), YearWindow(2025))

	assert.True(t, r.Metrics.TotalIncome.Equal(dec("100")))
	assert.True(t, r.Metrics.TotalExpense.Equal(dec("100")))
	assert.True(t, r.Metrics.TotalInvestment.IsZero())
	assert.True(t, r.Metrics.NetSavings.IsZero())
	assert.Equal(t, 3, r.RecordCount)

	require.Len(t, r.Expense.Buckets, 2)
	assert.Equal(t, "Rent", r.Expense.Buckets[0].Label)
	assert.True(t, r.Expense.Buckets[0].Amount.Equal(dec("60")))
	assert.InDelta(t, 60.0, r.Expense.Buckets[0].Percentage, 1e-9)
	assert.Equal(t, 0, r.Expense.Buckets[0].Ordinal)
	assert.Equal(t, "Food", r.Expense.Buckets[1].Label)
	assert.InDelta(t, 40.0, r.Expense.Buckets[1].Percentage, 1e-9)
	assert.Equal(t, 1, r.Expense.Buckets[1].Ordinal)

	want := []string{"40", "60", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0"}
	for i, w := range want {
		assert.Truef(t, r.Expense.Monthly[i].Equal(dec(w)), "month %d: got %s", i, r.Expense.Monthly[i])
	}

	require.Len(t, r.Expense.Arcs, 2)
	assert.Equal(t, 0.0, r.Expense.Arcs[0].StartAngleDeg)
	assert.InDelta(t, 216.0, r.Expense.Arcs[0].EndAngleDeg, 1e-9)
	assert.Equal(t, 360.0, r.Expense.Arcs[1].EndAngleDeg)
}

func TestBuild_Empty(t *testing.T) {
	r := Build(nil, YearWindow(2025))
	assert.Empty(t, r.Income.Buckets)
	assert.Empty(t, r.Expense.Buckets)
	assert.Empty(t, r.Investment.Arcs)
	assert.True(t, r.Metrics.NetSavings.IsZero())
	assert.True(t, r.Expense.Monthly.Sum().IsZero())
}

func TestBuild_NetSavingsSubtractsInvestment(t *testing.T) {
	recs := append(exampleLedger(),
		rec("4", "500", core.Income, "Bonus", "", "2025-03-01"),
		rec("5", "150", core.Investment, "Stocks", "ETF", "2025-03-02"),
	)
	r := Build(recs, YearWindow(2025))
	assert.True(t, r.Metrics.NetSavings.Equal(dec("350")), "got %s", r.Metrics.NetSavings)
	assert.True(t, r.Metrics.TotalInvestment.Equal(dec("150")))
	require.Len(t, r.Investment.Buckets, 1)
	assert.Equal(t, "Stocks / ETF", r.Investment.Buckets[0].Label)
}

func TestFilter(t *testing.T) {
	recs := []core.LedgerRecord{
		rec("a", "1", core.Expense, "X", "", "2024-12-31"),
		rec("b", "1", core.Expense, "X", "", "2025-01-01"),
		rec("c", "1", core.Expense, "X", "", "2025-02-28"),
		rec("d", "1", core.Expense, "X", "", "2025-12-31T23:59:59-08:00"),
		rec("e", "1", core.Expense, "X", "", "2026-01-01"),
	}

	ids := func(rs []core.LedgerRecord) string {
		var out []string
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return strings.Join(out, ",")
	}

	assert.Equal(t, "b,c,d", ids(Filter(recs, YearWindow(2025))))
	assert.Equal(t, "c", ids(Filter(recs, MonthWindow(2025, 1))))
	assert.Equal(t, "d", ids(Filter(recs, MonthWindow(2025, 11))))
	assert.Empty(t, Filter(recs, MonthWindow(2025, 5)))
	assert.Empty(t, Filter(nil, YearWindow(2025)))
	assert.Equal(t, "a", recs[0].ID, "input must not be reordered")
}

func TestWindow(t *testing.T) {
	assert.NoError(t, YearWindow(2025).Validate())
	assert.NoError(t, MonthWindow(2025, 0).Validate())
	assert.ErrorIs(t, MonthWindow(2025, 12).Validate(), core.ErrInvalidMonth)
	assert.ErrorIs(t, MonthWindow(2025, -1).Validate(), core.ErrInvalidMonth)

	w := MonthWindow(2024, 1)
	assert.Equal(t, "2024-02-01", w.Start().String())
	assert.Equal(t, "2024-02-29", w.End().String())
	assert.Equal(t, "February", w.MonthName())
	assert.Equal(t, "2024-01", w.Key())

	y := YearWindow(2025)
	assert.Equal(t, "2025-01-01", y.Start().String())
	assert.Equal(t, "2025-12-31", y.End().String())
	assert.Equal(t, "", y.MonthName())
}

func TestAggregate_NormalizesSignAndUsesFlowType(t *testing.T) {
	recs := []core.LedgerRecord{
		rec("1", "-40", core.Expense, "Food", "", "2025-01-01"),
		rec("2", "-10", core.Income, "Refund", "", "2025-01-02"),
		rec("3", "20", core.Expense, "Food", "", "2025-01-03"),
	}
	exp := Aggregate(recs, core.Expense)
	require.Len(t, exp, 1)
	assert.True(t, exp[0].Amount.Equal(dec("60")))
	assert.Equal(t, 100.0, exp[0].Percentage)

	inc := Aggregate(recs, core.Income)
	require.Len(t, inc, 1)
	assert.True(t, inc[0].Amount.Equal(dec("10")), "negative income correction counts as income")
}

func TestAggregate_TiesKeepFirstSeenOrder(t *testing.T) {
	recs := []core.LedgerRecord{
		rec("1", "10", core.Expense, "B", "", "2025-01-01"),
		rec("2", "30", core.Expense, "C", "", "2025-01-01"),
		rec("3", "10", core.Expense, "A", "", "2025-01-01"),
		rec("4", "10", core.Expense, "", "", "2025-01-01"),
	}
	got := Aggregate(recs, core.Expense)
	require.Len(t, got, 4)
	var labels []string
	for i, b := range got {
		labels = append(labels, b.Label)
		assert.Equal(t, i, b.Ordinal)
	}
	assert.Equal(t, []string{"C", "B", "A", core.OtherCategory}, labels)
}

func TestAggregate_ZeroTotal(t *testing.T) {
	recs := []core.LedgerRecord{rec("1", "0", core.Expense, "Food", "", "2025-01-01")}
	got := Aggregate(recs, core.Expense)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, EncodeArcs(got))
}

func manyBuckets(n int) []core.LedgerRecord {
	var recs []core.LedgerRecord
	for i := 0; i < n; i++ {
		amount := fmt.Sprintf("%d.%02d", (i*37)%101+1, (i*13)%100)
		recs = append(recs, rec(fmt.Sprint(i), amount, core.Expense, fmt.Sprintf("Cat%d", i%17), fmt.Sprintf("Sub%d", i%3), "2025-06-15"))
	}
	return recs
}

func TestAggregate_PercentagesSumTo100(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 51, 300} {
		buckets := Aggregate(manyBuckets(n), core.Expense)
		require.NotEmpty(t, buckets)
		sum := 0.0
		for _, b := range buckets {
			sum += b.Percentage
		}
		assert.InDeltaf(t, 100.0, sum, 1e-6, "n=%d", n)
	}
}

func TestMonthlySeriesMatchesAggregate(t *testing.T) {
	recs := manyBuckets(120)
	recs = append(recs,
		rec("x", "-12.5", core.Expense, "Misc", "", "2025-01-05"),
		rec("y", "99", core.Expense, "Misc", "", "2025-11-30"),
		rec("z", "7", core.Income, "Misc", "", "2025-11-30"),
	)
	filtered := Filter(recs, YearWindow(2025))
	series := BuildMonthlySeries(filtered, core.Expense)
	assert.True(t, series.Sum().Equal(Total(Aggregate(filtered, core.Expense))))
	assert.True(t, series[0].Equal(dec("12.5")))
}

func TestEncodeArcs_Closure(t *testing.T) {
	for _, n := range []int{2, 3, 9, 51, 300} {
		arcs := EncodeArcs(Aggregate(manyBuckets(n), core.Expense))
		require.NotEmpty(t, arcs)
		assert.Equal(t, 0.0, arcs[0].StartAngleDeg)
		assert.Equal(t, 360.0, arcs[len(arcs)-1].EndAngleDeg, "n=%d", n)
		for i := 1; i < len(arcs); i++ {
			assert.Equal(t, arcs[i-1].EndAngleDeg, arcs[i].StartAngleDeg)
			assert.GreaterOrEqual(t, arcs[i].EndAngleDeg, arcs[i].StartAngleDeg)
			assert.Equal(t, i, arcs[i].ColorIndex)
		}
	}
}

func TestEncodeArcs_ThirdsCloseExactly(t *testing.T) {
	buckets := []Bucket{
		{Label: "a", Amount: dec("1"), Ordinal: 0},
		{Label: "b", Amount: dec("1"), Ordinal: 1},
		{Label: "c", Amount: dec("1"), Ordinal: 2},
	}
	arcs := EncodeArcs(buckets)
	require.Len(t, arcs, 3)
	assert.InDelta(t, 120.0, arcs[0].EndAngleDeg, 1e-9)
	assert.InDelta(t, 240.0, arcs[1].EndAngleDeg, 1e-9)
	assert.Equal(t, 360.0, arcs[2].EndAngleDeg)
	assert.False(t, arcs[0].LargeArc)
}

func TestEncodeArcs_SingleBucketIsFullCircle(t *testing.T) {
	arcs := EncodeArcs([]Bucket{{Label: "Salary", Amount: dec("100"), Percentage: 100}})
	require.Len(t, arcs, 1)
	a := arcs[0]
	assert.True(t, a.FullCircle)
	assert.True(t, a.LargeArc)
	assert.Equal(t, 0.0, a.StartAngleDeg)
	assert.Equal(t, 360.0, a.EndAngleDeg)
	assert.InDelta(t, 0.0, a.Start.X, 1e-12)
	assert.InDelta(t, -1.0, a.Start.Y, 1e-12)
}

func TestEncodeArcs_Empty(t *testing.T) {
	assert.Empty(t, EncodeArcs(nil))
	assert.Empty(t, EncodeArcs([]Bucket{}))
}

func TestPaletteCycles(t *testing.T) {
	p := Palette{"r", "g", "b"}
	assert.Equal(t, "r", p.Color(0))
	assert.Equal(t, "b", p.Color(2))
	assert.Equal(t, "r", p.Color(3))
	assert.Equal(t, "g", p.Color(7))
	assert.Equal(t, "", Palette{}.Color(1))
	assert.Equal(t, InvestmentPalette, PaletteFor(core.Investment))
}

func TestSerializeCSV(t *testing.T) {
	recs := exampleLedger()
	out := SerializeCSV(recs, CSVRaw)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, CSVHeader, lines[0])
	assert.Equal(t, "2025-01-15,income,Salary,,100,", lines[1])
	assert.Equal(t, "2025-01-20,expense,Food,,40,", lines[2])
	assert.Equal(t, "2025-02-01,expense,Rent,,60,", lines[3])

	assert.Equal(t, out, SerializeCSV(recs, CSVQuoted), "plain values are identical in both modes")
	assert.Equal(t, CSVHeader+"\n", SerializeCSV(nil, CSVRaw))
}

func TestSerializeCSV_Delimiters(t *testing.T) {
	r := rec("1", "-12.50", core.Expense, "Food, Drinks", "Bar", "2025-03-01")
	r.Notes = "said \"cheers\"\nthen left"

	raw := SerializeCSV([]core.LedgerRecord{r}, CSVRaw)
	assert.Equal(t, CSVHeader+"\n2025-03-01,expense,Food, Drinks,Bar,-12.5,said \"cheers\"\nthen left", raw)

	quoted := SerializeCSV([]core.LedgerRecord{r}, CSVQuoted)
	assert.Equal(t, CSVHeader+"\n2025-03-01,expense,\"Food, Drinks\",Bar,-12.5,\"said \"\"cheers\"\"\nthen left\"", quoted)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "finance-report-2025.csv", ExportFilename(YearWindow(2025), "csv"))
	assert.Equal(t, "finance-report-2025-January.csv", ExportFilename(MonthWindow(2025, 0), ".csv"))
	assert.Equal(t, "finance-report-2025-December.xlsx", ExportFilename(MonthWindow(2025, 11), "xlsx"))
	assert.Equal(t, CSVRaw, ParseCSVMode("RAW"))
	assert.Equal(t, CSVQuoted, ParseCSVMode(""))
}
