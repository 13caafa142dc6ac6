package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fincircle/internal/core"
	"fincircle/internal/export"
	"fincircle/internal/report"
	"fincircle/internal/sheets"
)

var (
	ErrMissingOwner      = errors.New("missing owner id")
	ErrSourceUnavailable = errors.New("record source unavailable")
	ErrUnknownFormat     = errors.New("unknown export format")
)

// Export formats accepted by Export.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Years always offered for selection, alongside the current year and any
// year that has data.
var baselineYears = []int{2023, 2024, 2025}

// ExportFile is a rendered export ready to be served or written to disk.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService composes the reporting pipeline over an injected record
// source. It holds no per-request state.
type ReportService struct {
	source sheets.RecordSource
	years  sheets.YearLister
	now    func() time.Time
}

// NewReportService wires the pipeline. years may be nil.
func NewReportService(source sheets.RecordSource, years sheets.YearLister) *ReportService {
	return &ReportService{
		source: source,
		years:  years,
		now:    time.Now,
	}
}

// Summary builds the full report for the window from both ledgers.
func (s *ReportService) Summary(ctx context.Context, ownerID string, w report.Window) (report.Report, error) {
	sets, err := s.load(ctx, ownerID, w, sheets.Transactions, sheets.Investments)
	if err != nil {
		return report.Report{}, err
	}
	rep := report.Build(flatten(sets), w)

	slog.DebugContext(ctx, "Report built",
		"owner", ownerID,
		"window", w.Key(),
		"records", rep.RecordCount)
	return rep, nil
}

// ExportCSV serializes the window's transactions.
func (s *ReportService) ExportCSV(ctx context.Context, ownerID string, w report.Window, mode report.CSVMode) (ExportFile, error) {
	sets, err := s.load(ctx, ownerID, w, sheets.Transactions)
	if err != nil {
		return ExportFile{}, err
	}
	body := report.SerializeCSV(report.Filter(sets[0], w), mode)
	return ExportFile{
		Filename:    report.ExportFilename(w, "csv"),
		ContentType: report.CSVContentType,
		Data:        []byte(body),
	}, nil
}

// ExportXLSX renders the window's transactions and report as a workbook.
func (s *ReportService) ExportXLSX(ctx context.Context, ownerID string, w report.Window) (ExportFile, error) {
	sets, err := s.load(ctx, ownerID, w, sheets.Transactions, sheets.Investments)
	if err != nil {
		return ExportFile{}, err
	}
	rep := report.Build(flatten(sets), w)
	data, err := export.Workbook(rep, report.Filter(sets[0], w))
	if err != nil {
		return ExportFile{}, fmt.Errorf("render workbook: %w", err)
	}
	return ExportFile{
		Filename:    report.ExportFilename(w, "xlsx"),
		ContentType: export.XLSXContentType,
		Data:        data,
	}, nil
}

// Export dispatches on format name.
func (s *ReportService) Export(ctx context.Context, ownerID string, w report.Window, format string) (ExportFile, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return s.ExportCSV(ctx, ownerID, w, report.CSVQuoted)
	case FormatXLSX:
		return s.ExportXLSX(ctx, ownerID, w)
	default:
		return ExportFile{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// AvailableYears returns selectable years, newest first: the baseline years,
// the current year and any year the backend reports data for.
func (s *ReportService) AvailableYears(ctx context.Context, ownerID string) ([]int, error) {
	set := map[int]struct{}{s.now().Year(): {}}
	for _, y := range baselineYears {
		set[y] = struct{}{}
	}
	if s.years != nil && ownerID != "" {
		ys, err := s.years.ListYears(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("%w: list years: %w", ErrSourceUnavailable, err)
		}
		for _, y := range ys {
			set[y] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for y := range set {
		out = append(out, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

// load fetches the requested kinds concurrently and returns one parsed set
// per kind, in argument order. The first malformed row aborts the request.
func (s *ReportService) load(ctx context.Context, ownerID string, w report.Window, kinds ...sheets.RecordKind) ([][]core.LedgerRecord, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrMissingOwner
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	raws := make([][]core.RawRecord, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			rows, err := s.source.FetchRecords(gctx, ownerID, w, kind)
			if err != nil {
				return fmt.Errorf("%w: fetch %s: %w", ErrSourceUnavailable, kind, err)
			}
			raws[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "Failed to fetch ledger records",
			"owner", ownerID,
			"window", w.Key(),
			"error", err)
		return nil, err
	}

	sets := make([][]core.LedgerRecord, len(kinds))
	for i, kind := range kinds {
		rows := raws[i]
		if kind == sheets.Investments {
			rows = defaultFlow(rows, core.Investment)
		}
		parsed, err := core.ParseRecords(rows)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", kind, err)
		}
		sets[i] = parsed
	}
	return sets, nil
}

func flatten(sets [][]core.LedgerRecord) []core.LedgerRecord {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	out := make([]core.LedgerRecord, 0, n)
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// defaultFlow fills a blank type column; investment ledgers often omit it.
func defaultFlow(rows []core.RawRecord, flow core.FlowType) []core.RawRecord {
	out := make([]core.RawRecord, len(rows))
	for i, r := range rows {
		if strings.TrimSpace(r.Type) == "" {
			r.Type = string(flow)
		}
		out[i] = r
	}
	return out
}
