package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"fincircle/internal/core"
)

// CSVHeader is the first line of every ledger export.
const CSVHeader = "Date,Type,Category,Subcategory,Amount,Notes"

// CSVContentType is the MIME type of the export download.
const CSVContentType = "text/csv"

// CSVMode selects how field values are written.
type CSVMode int

const (
	// CSVQuoted quotes fields containing commas, quotes or line breaks
	// following RFC 4180. This is the default for exports.
	CSVQuoted CSVMode = iota
	// CSVRaw joins the raw field values with commas and no escaping. A
	// comma or newline inside a category or note breaks the column layout;
	// it exists for consumers that depend on the legacy byte layout.
	CSVRaw
)

// ParseCSVMode maps "raw" to CSVRaw and anything else to CSVQuoted.
func ParseCSVMode(s string) CSVMode {
	if strings.EqualFold(strings.TrimSpace(s), "raw") {
		return CSVRaw
	}
	return CSVQuoted
}

// SerializeCSV writes the header followed by one line per record in input
// order. Lines are separated by "\n"; the last record line has no trailing
// newline, and an empty ledger yields the header followed by "\n".
func SerializeCSV(records []core.LedgerRecord, mode CSVMode) string {
	rows := make([]string, 0, len(records))
	for _, r := range records {
		fields := csvFields(r)
		if mode == CSVRaw {
			rows = append(rows, strings.Join(fields, ","))
			continue
		}
		rows = append(rows, quoteRow(fields))
	}
	return CSVHeader + "\n" + strings.Join(rows, "\n")
}

func csvFields(r core.LedgerRecord) []string {
	return []string{
		r.Date.String(),
		string(r.Flow),
		r.Category,
		r.Subcategory,
		r.Amount.String(),
		r.Notes,
	}
}

func quoteRow(fields []string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// Write only fails on the underlying writer; bytes.Buffer does not fail.
	_ = w.Write(fields)
	w.Flush()
	return strings.TrimSuffix(buf.String(), "\n")
}

// ExportFilename returns "finance-report-<year>[-<MonthName>]" with ext
// appended, e.g. "finance-report-2025-January.csv".
func ExportFilename(w Window, ext string) string {
	name := "finance-report-" + strconv.Itoa(w.Year)
	if w.HasMonth() {
		name += "-" + w.MonthName()
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}
