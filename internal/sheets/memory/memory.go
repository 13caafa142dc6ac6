package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"fincircle/internal/core"
	"fincircle/internal/report"
	"fincircle/internal/sheets"
)

// DefaultOwner is used for seeded rows that carry no owner column.
const DefaultOwner = "local"

// Store keeps raw ledger rows per kind in memory. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	rows map[sheets.RecordKind][]core.RawRecord
}

var (
	_ sheets.RecordSource = (*Store)(nil)
	_ sheets.RecordWriter = (*Store)(nil)
	_ sheets.YearLister   = (*Store)(nil)
)

func New() *Store {
	return &Store{rows: map[sheets.RecordKind][]core.RawRecord{}}
}

// NewFromFiles seeds the store from transactions.csv and investments.csv in
// base. Missing files leave the corresponding kind empty.
func NewFromFiles(base string) (*Store, error) {
	s := New()
	for _, kind := range []sheets.RecordKind{sheets.Transactions, sheets.Investments} {
		path := filepath.Join(base, string(kind)+".csv")
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open seed %s: %w", path, err)
		}
		rows, err := ReadCSV(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
		s.Seed(kind, rows...)
	}
	return s, nil
}

// Seed stores raw rows as-is, without validation. Rows without an id get one.
func (s *Store) Seed(kind sheets.RecordKind, rows ...core.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.OwnerID == "" {
			r.OwnerID = DefaultOwner
		}
		s.rows[kind] = append(s.rows[kind], r)
	}
}

// FetchRecords returns the owner's rows of the given kind whose date falls in
// the window's year. Rows with an unreadable date are kept so the caller can
// report them as malformed.
func (s *Store) FetchRecords(_ context.Context, ownerID string, window report.Window, kind sheets.RecordKind) ([]core.RawRecord, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.RawRecord, 0)
	for _, r := range s.rows[kind] {
		if r.OwnerID != ownerID {
			continue
		}
		if d, err := core.ParseDate(r.Date); err == nil && d.Year() != window.Year {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// AppendRecords stores validated records and returns how many were added.
// Records whose id already exists are skipped.
func (s *Store) AppendRecords(_ context.Context, kind sheets.RecordKind, records []core.LedgerRecord) (int, error) {
	if !kind.IsValid() {
		return 0, fmt.Errorf("unknown record kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(s.rows[kind]))
	for _, r := range s.rows[kind] {
		seen[r.ID] = struct{}{}
	}
	added := 0
	for _, rec := range records {
		raw := rec.Raw()
		if raw.ID == "" {
			raw.ID = uuid.NewString()
		}
		if _, ok := seen[raw.ID]; ok {
			continue
		}
		seen[raw.ID] = struct{}{}
		s.rows[kind] = append(s.rows[kind], raw)
		added++
	}
	return added, nil
}

// ListYears returns the distinct years present for the owner, newest first.
func (s *Store) ListYears(_ context.Context, ownerID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := map[int]struct{}{}
	for _, rows := range s.rows {
		for _, r := range rows {
			if r.OwnerID != ownerID {
				continue
			}
			if d, err := core.ParseDate(r.Date); err == nil {
				set[d.Year()] = struct{}{}
			}
		}
	}
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// ReadCSV parses ledger rows from CSV with a header line. Columns are matched
// by name, case-insensitively: id, owner, group, date, type, category,
// subcategory, amount, notes. Unknown columns are ignored.
func ReadCSV(r io.Reader) ([]core.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(row []string, names ...string) string {
		for _, n := range names {
			if i, ok := idx[n]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	var out []core.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		out = append(out, core.RawRecord{
			ID:          get(row, "id"),
			OwnerID:     get(row, "owner", "owner_id", "user", "user_id"),
			GroupID:     get(row, "group", "group_id"),
			Date:        get(row, "date"),
			Type:        get(row, "type", "flow"),
			Category:    get(row, "category"),
			Subcategory: get(row, "subcategory"),
			Amount:      get(row, "amount"),
			Notes:       get(row, "notes", "note", "description"),
		})
	}
	return out, nil
}
