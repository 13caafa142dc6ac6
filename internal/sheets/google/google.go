package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fincircle/internal/core"
	"fincircle/internal/report"
	ports "fincircle/internal/sheets"
)

// Options configures the spreadsheet layout and credentials.
type Options struct {
	SpreadsheetID string
	// Base tab names without year; the client prefixes the year, e.g.
	// "2025 Transactions".
	TransactionsSheet string
	InvestmentsSheet  string
	CredentialsJSON   string
	CredentialsFile   string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	investmentsSheet  string
}

var (
	_ ports.RecordSource = (*Client)(nil)
	_ ports.RecordWriter = (*Client)(nil)
	_ ports.YearLister   = (*Client)(nil)
)

// Column order used when appending rows.
var ledgerColumns = []string{"ID", "Date", "Type", "Category", "Subcategory", "Amount", "Notes", "Owner", "Group"}

// New creates a Sheets client using Service Account credentials.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, opts Options) *Client {
	tx := strings.TrimSpace(opts.TransactionsSheet)
	if tx == "" {
		tx = "Transactions"
	}
	inv := strings.TrimSpace(opts.InvestmentsSheet)
	if inv == "" {
		inv = "Investments"
	}
	return &Client{
		svc:               svc,
		spreadsheetID:     strings.TrimSpace(opts.SpreadsheetID),
		transactionsSheet: tx,
		investmentsSheet:  inv,
	}
}

// newSheetsService falls back to GOOGLE_APPLICATION_CREDENTIALS when
// neither inline JSON nor a credentials file is configured.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(opts.CredentialsFile)
	if opts.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case opts.CredentialsJSON != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) sheetBase(kind ports.RecordKind) (string, error) {
	switch kind {
	case ports.Transactions:
		return c.transactionsSheet, nil
	case ports.Investments:
		return c.investmentsSheet, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
}

// FetchRecords reads the year tab for the kind. A missing tab yields no rows.
func (c *Client) FetchRecords(ctx context.Context, ownerID string, window report.Window, kind ports.RecordKind) ([]core.RawRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	base, err := c.sheetBase(kind)
	if err != nil {
		return nil, err
	}
	sheetName := yearPrefixedName(base, window.Year)
	rng := a1Range(sheetName, "A:Z")
	// Unformatted numbers and serial dates keep the sheet's locale out of parsing
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		if isMissingRange(err) {
			slog.WarnContext(ctx, "Ledger tab not found", "sheet", sheetName, "kind", kind)
			return []core.RawRecord{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseLedgerRows(resp.Values, ownerID), nil
}

// AppendRecords appends rows to each record's year tab, in input order.
func (c *Client) AppendRecords(ctx context.Context, kind ports.RecordKind, records []core.LedgerRecord) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	base, err := c.sheetBase(kind)
	if err != nil {
		return 0, err
	}

	byYear := map[int][][]interface{}{}
	var years []int
	for _, rec := range records {
		y := rec.Date.Year()
		if _, ok := byYear[y]; !ok {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], []interface{}{
			rec.ID,
			rec.Date.String(),
			string(rec.Flow),
			rec.Category,
			rec.Subcategory,
			// A number, not text, so USER_ENTERED does not reparse it in the sheet's locale
			rec.Amount.InexactFloat64(),
			rec.Notes,
			rec.OwnerID,
			rec.GroupID,
		})
	}

	appended := 0
	for _, y := range years {
		rng := a1Range(yearPrefixedName(base, y), "A:I")
		vr := &gsheet.ValueRange{Values: byYear[y]}
		_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		if err != nil {
			return appended, fmt.Errorf("append to %s: %w", rng, err)
		}
		appended += len(byYear[y])
	}
	return appended, nil
}

// ListYears returns the years that have a ledger tab, newest first. Tabs are
// shared by all owners so ownerID is not used.
func (c *Client) ListYears(ctx context.Context, _ string) ([]int, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return yearsFromTitles(titles, c.transactionsSheet, c.investmentsSheet), nil
}

func yearsFromTitles(titles []string, bases ...string) []int {
	set := map[int]struct{}{}
	for _, t := range titles {
		y, rest, ok := splitYearPrefix(t)
		if !ok {
			continue
		}
		for _, b := range bases {
			if strings.EqualFold(rest, b) {
				set[y] = struct{}{}
			}
		}
	}
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if _, _, ok := splitYearPrefix(base); ok {
		return base
	}
	return fmt.Sprintf("%d %s", year, base)
}

func splitYearPrefix(s string) (int, string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 5 || s[4] != ' ' {
		return 0, "", false
	}
	y, err := strconv.Atoi(s[0:4])
	if err != nil || y <= 1900 || y >= 3000 {
		return 0, "", false
	}
	return y, strings.TrimSpace(s[5:]), true
}

func a1Range(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cells)
}

func isMissingRange(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range")
}
