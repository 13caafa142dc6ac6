package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincircle/internal/core"
	"fincircle/internal/report"
	"fincircle/internal/sheets"
)

type fakeSource struct {
	rows map[sheets.RecordKind][]core.RawRecord
	err  error
}

func (f *fakeSource) FetchRecords(_ context.Context, _ string, _ report.Window, kind sheets.RecordKind) ([]core.RawRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[kind], nil
}

type fakeYears struct {
	years []int
	err   error
}

func (f fakeYears) ListYears(context.Context, string) ([]int, error) {
	return f.years, f.err
}

func sampleSource() *fakeSource {
	return &fakeSource{rows: map[sheets.RecordKind][]core.RawRecord{
		sheets.Transactions: {
			{ID: "1", Amount: "100", Type: "income", Category: "Salary", Date: "2025-01-15"},
			{ID: "2", Amount: "-40", Type: "expense", Category: "Food", Date: "2025-01-20", Notes: "lunch, dinner"},
			{ID: "3", Amount: "60", Type: "expense", Category: "Rent", Date: "2025-02-01"},
			{ID: "4", Amount: "999", Type: "expense", Category: "Rent", Date: "2024-02-01"},
		},
		sheets.Investments: {
			{ID: "i1", Amount: "25", Category: "ETF", Date: "2025-01-05"},
		},
	}}
}

func TestSummaryCombinesLedgers(t *testing.T) {
	svc := NewReportService(sampleSource(), nil)

	rep, err := svc.Summary(context.Background(), "alice", report.YearWindow(2025))
	require.NoError(t, err)

	assert.Equal(t, 4, rep.RecordCount)
	assert.Equal(t, "100", rep.Metrics.TotalIncome.String())
	assert.Equal(t, "100", rep.Metrics.TotalExpense.String())
	assert.Equal(t, "25", rep.Metrics.TotalInvestment.String())
	assert.Equal(t, "-25", rep.Metrics.NetSavings.String())
	require.Len(t, rep.Expense.Buckets, 2)
	assert.Equal(t, "Rent", rep.Expense.Buckets[0].Label)
	require.Len(t, rep.Investment.Arcs, 1)
	assert.True(t, rep.Investment.Arcs[0].FullCircle)
}

func TestSummaryMonthWindow(t *testing.T) {
	svc := NewReportService(sampleSource(), nil)
	rep, err := svc.Summary(context.Background(), "alice", report.MonthWindow(2025, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.RecordCount)
	assert.Equal(t, "60", rep.Metrics.TotalExpense.String())
}

func TestSummaryErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewReportService(sampleSource(), nil).Summary(ctx, " ", report.YearWindow(2025))
	assert.ErrorIs(t, err, ErrMissingOwner)

	_, err = NewReportService(sampleSource(), nil).Summary(ctx, "alice", report.MonthWindow(2025, 12))
	assert.ErrorIs(t, err, core.ErrInvalidMonth)

	down := &fakeSource{err: errors.New("connection refused")}
	_, err = NewReportService(down, nil).Summary(ctx, "alice", report.YearWindow(2025))
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	bad := sampleSource()
	bad.rows[sheets.Transactions] = append(bad.rows[sheets.Transactions],
		core.RawRecord{ID: "x", Amount: "abc", Type: "expense", Date: "2025-03-01"})
	_, err = NewReportService(bad, nil).Summary(ctx, "alice", report.YearWindow(2025))
	var mre *core.MalformedRecordError
	require.ErrorAs(t, err, &mre)
	assert.Equal(t, "x", mre.RecordID)
	assert.ErrorIs(t, err, core.ErrMalformedRecord)
}

func TestExportCSVUsesTransactionsOnly(t *testing.T) {
	svc := NewReportService(sampleSource(), nil)
	f, err := svc.ExportCSV(context.Background(), "alice", report.YearWindow(2025), report.CSVQuoted)
	require.NoError(t, err)

	assert.Equal(t, "finance-report-2025.csv", f.Filename)
	assert.Equal(t, report.CSVContentType, f.ContentType)
	lines := strings.Split(string(f.Data), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, report.CSVHeader, lines[0])
	assert.Equal(t, `2025-01-20,expense,Food,,-40,"lunch, dinner"`, lines[2])
}

func TestExportDispatch(t *testing.T) {
	svc := NewReportService(sampleSource(), nil)
	ctx := context.Background()

	f, err := svc.Export(ctx, "alice", report.MonthWindow(2025, 0), "XLSX")
	require.NoError(t, err)
	assert.Equal(t, "finance-report-2025-January.xlsx", f.Filename)
	assert.NotEmpty(t, f.Data)

	f, err = svc.Export(ctx, "alice", report.YearWindow(2025), "")
	require.NoError(t, err)
	assert.Equal(t, "finance-report-2025.csv", f.Filename)

	_, err = svc.Export(ctx, "alice", report.YearWindow(2025), "pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestAvailableYears(t *testing.T) {
	svc := NewReportService(sampleSource(), fakeYears{years: []int{2021, 2025}})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	years, err := svc.AvailableYears(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []int{2026, 2025, 2024, 2023, 2021}, years)

	noLister := NewReportService(sampleSource(), nil)
	noLister.now = svc.now
	years, err = noLister.AvailableYears(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []int{2026, 2025, 2024, 2023}, years)

	failing := NewReportService(sampleSource(), fakeYears{err: errors.New("boom")})
	_, err = failing.AvailableYears(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
