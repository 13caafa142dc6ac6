package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincircle/internal/core"
	"fincircle/internal/report"
	"fincircle/internal/sheets"
)

func TestStoreFetchFiltersOwnerAndYear(t *testing.T) {
	s := New()
	s.Seed(sheets.Transactions,
		core.RawRecord{ID: "a", OwnerID: "alice", Date: "2025-01-15", Type: "income", Amount: "100"},
		core.RawRecord{ID: "b", OwnerID: "alice", Date: "2024-03-01", Type: "expense", Amount: "5"},
		core.RawRecord{ID: "c", OwnerID: "bob", Date: "2025-02-01", Type: "expense", Amount: "7"},
		core.RawRecord{ID: "d", OwnerID: "alice", Date: "garbage", Type: "expense", Amount: "1"},
	)

	got, err := s.FetchRecords(context.Background(), "alice", report.YearWindow(2025), sheets.Transactions)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"a", "d"}, ids)

	inv, err := s.FetchRecords(context.Background(), "alice", report.YearWindow(2025), sheets.Investments)
	require.NoError(t, err)
	assert.Empty(t, inv)
}

func TestStoreAppendSkipsDuplicates(t *testing.T) {
	s := New()
	rec := core.LedgerRecord{
		ID:       "x1",
		OwnerID:  "alice",
		Amount:   decimal.NewFromInt(12),
		Flow:     core.Expense,
		Category: "Food",
		Date:     core.NewDate(2025, 4, 2),
	}
	n, err := s.AppendRecords(context.Background(), sheets.Transactions, []core.LedgerRecord{rec, rec})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec.ID = ""
	n, err = s.AppendRecords(context.Background(), sheets.Transactions, []core.LedgerRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.FetchRecords(context.Background(), "alice", report.YearWindow(2025), sheets.Transactions)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEmpty(t, got[1].ID)

	_, err = s.AppendRecords(context.Background(), sheets.RecordKind("nope"), nil)
	assert.Error(t, err)
}

func TestStoreListYears(t *testing.T) {
	s := New()
	s.Seed(sheets.Transactions, core.RawRecord{OwnerID: "alice", Date: "2023-01-01"})
	s.Seed(sheets.Investments,
		core.RawRecord{OwnerID: "alice", Date: "2025-06-01"},
		core.RawRecord{OwnerID: "alice", Date: "2023-07-01"},
		core.RawRecord{OwnerID: "bob", Date: "2019-07-01"},
	)
	years, err := s.ListYears(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2023}, years)
}

func TestReadCSVMatchesHeaderNames(t *testing.T) {
	in := "Date,Type,Category,Subcategory,Amount,Notes,Owner\n" +
		"2025-01-02,expense,Food,Groceries,12.50,\"milk, eggs\",alice\n" +
		"\n" +
		"2025-01-03,income,Salary,,1000,,\n"
	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "milk, eggs", rows[0].Notes)
	assert.Equal(t, "alice", rows[0].OwnerID)
	assert.Equal(t, "Groceries", rows[0].Subcategory)
	assert.Equal(t, "", rows[1].OwnerID)
	assert.Equal(t, "1000", rows[1].Amount)

	rows, err = ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFiles(dir)
	require.NoError(t, err)
	years, _ := s.ListYears(context.Background(), DefaultOwner)
	assert.Empty(t, years)

	mustWrite := func(name, content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	mustWrite("transactions.csv", "date,type,category,amount\n2025-01-01,expense,Rent,60\n")
	mustWrite("investments.csv", "date,type,category,amount\n2024-01-01,investment,ETF,10\n")

	s, err = NewFromFiles(dir)
	require.NoError(t, err)
	years, err = s.ListYears(context.Background(), DefaultOwner)
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2024}, years)

	rows, err := s.FetchRecords(context.Background(), DefaultOwner, report.YearWindow(2025), sheets.Transactions)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Rent", rows[0].Category)
}
