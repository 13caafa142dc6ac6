// Package export renders reports into spreadsheet workbooks.
package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"fincircle/internal/core"
	"fincircle/internal/report"
)

const (
	LedgerSheet  = "Ledger"
	SummarySheet = "Summary"
	MonthlySheet = "Monthly"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var monthHeaders = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type styles struct {
	header  int
	money   int
	percent int
}

// Workbook builds an xlsx document with the ledger rows, the category
// breakdown and the monthly series of rep.
func Workbook(rep report.Report, ledger []core.LedgerRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", LedgerSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SummarySheet, MonthlySheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeLedger(f, st, ledger); err != nil {
		return nil, fmt.Errorf("ledger sheet: %w", err)
	}
	if err := writeSummary(f, st, rep); err != nil {
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeMonthly(f, st, rep); err != nil {
		return nil, fmt.Errorf("monthly sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#34495E"}, Pattern: 1},
	})
	if err != nil {
		return st, fmt.Errorf("header style: %w", err)
	}
	st.money, err = f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return st, fmt.Errorf("money style: %w", err)
	}
	st.percent, err = f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return st, fmt.Errorf("percent style: %w", err)
	}
	return st, nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRange(f *excelize.File, sheet string, col1, row1, col2, row2, style int) error {
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func writeLedger(f *excelize.File, st styles, ledger []core.LedgerRecord) error {
	if err := writeRow(f, LedgerSheet, 1, "Date", "Type", "Category", "Subcategory", "Amount", "Notes"); err != nil {
		return err
	}
	if err := styleRange(f, LedgerSheet, 1, 1, 6, 1, st.header); err != nil {
		return err
	}
	for i, r := range ledger {
		if err := writeRow(f, LedgerSheet, i+2,
			r.Date.String(), string(r.Flow), r.Category, r.Subcategory, money(r.Amount), r.Notes); err != nil {
			return err
		}
	}
	if len(ledger) > 0 {
		if err := styleRange(f, LedgerSheet, 5, 2, 5, len(ledger)+1, st.money); err != nil {
			return err
		}
	}
	return f.SetColWidth(LedgerSheet, "A", "F", 16)
}

func writeSummary(f *excelize.File, st styles, rep report.Report) error {
	title := strconv.Itoa(rep.Window.Year)
	if rep.Window.HasMonth() {
		title = rep.Window.MonthName() + " " + title
	}
	if err := writeRow(f, SummarySheet, 1, "Report", title); err != nil {
		return err
	}
	metrics := []struct {
		label string
		value decimal.Decimal
	}{
		{"Total income", rep.Metrics.TotalIncome},
		{"Total expense", rep.Metrics.TotalExpense},
		{"Total investment", rep.Metrics.TotalInvestment},
		{"Net savings", rep.Metrics.NetSavings},
	}
	row := 2
	for _, m := range metrics {
		if err := writeRow(f, SummarySheet, row, m.label, money(m.value)); err != nil {
			return err
		}
		row++
	}
	if err := styleRange(f, SummarySheet, 2, 2, 2, row-1, st.money); err != nil {
		return err
	}

	row++
	if err := writeRow(f, SummarySheet, row, "Flow", "Category", "Amount", "Share"); err != nil {
		return err
	}
	if err := styleRange(f, SummarySheet, 1, row, 4, row, st.header); err != nil {
		return err
	}
	row++
	first := row
	for _, fr := range []report.FlowReport{rep.Income, rep.Expense, rep.Investment} {
		for _, b := range fr.Buckets {
			if err := writeRow(f, SummarySheet, row, string(fr.Flow), b.Label, money(b.Amount), b.Percentage/100); err != nil {
				return err
			}
			row++
		}
	}
	if row > first {
		if err := styleRange(f, SummarySheet, 3, first, 3, row-1, st.money); err != nil {
			return err
		}
		if err := styleRange(f, SummarySheet, 4, first, 4, row-1, st.percent); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "D", 18)
}

func writeMonthly(f *excelize.File, st styles, rep report.Report) error {
	if err := writeRow(f, MonthlySheet, 1, "Month", "Income", "Expense", "Investment"); err != nil {
		return err
	}
	if err := styleRange(f, MonthlySheet, 1, 1, 4, 1, st.header); err != nil {
		return err
	}
	for m := 0; m < 12; m++ {
		if err := writeRow(f, MonthlySheet, m+2, monthHeaders[m],
			money(rep.Income.Monthly[m]),
			money(rep.Expense.Monthly[m]),
			money(rep.Investment.Monthly[m])); err != nil {
			return err
		}
	}
	return styleRange(f, MonthlySheet, 2, 2, 4, 13, st.money)
}
