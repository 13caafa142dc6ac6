package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fincircle/internal/core"
	"fincircle/internal/report"
	"fincircle/internal/sheets"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores ledger records in a local SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ sheets.RecordSource = (*SQLiteRepository)(nil)
	_ sheets.RecordWriter = (*SQLiteRepository)(nil)
	_ sheets.YearLister   = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FetchRecords implements sheets.RecordSource. Rows come back in insertion
// order, restricted to the window's date range.
func (r *SQLiteRepository) FetchRecords(ctx context.Context, ownerID string, window report.Window, kind sheets.RecordKind) ([]core.RawRecord, error) {
	rows, err := r.queries.ListRecordsInRange(ctx, ListRecordsInRangeParams{
		OwnerID: ownerID,
		Kind:    string(kind),
		From:    window.Start().String(),
		To:      window.End().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s for %s (window=%s): %w", kind, ownerID, window.Key(), err)
	}

	out := make([]core.RawRecord, len(rows))
	for i, row := range rows {
		out[i] = core.RawRecord{
			ID:          row.ID,
			Amount:      row.Amount,
			Type:        row.Type,
			Category:    row.Category,
			Subcategory: row.Subcategory,
			Date:        row.Date,
			OwnerID:     row.OwnerID,
			GroupID:     row.GroupID,
			Notes:       row.Notes,
		}
	}
	return out, nil
}

// AppendRecords implements sheets.RecordWriter. All records are written in a
// single transaction; records whose id already exists are skipped.
func (r *SQLiteRepository) AppendRecords(ctx context.Context, kind sheets.RecordKind, records []core.LedgerRecord) (int, error) {
	if !kind.IsValid() {
		return 0, fmt.Errorf("unknown record kind %q", kind)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	inserted := 0
	for _, rec := range records {
		n, err := q.InsertRecord(ctx, InsertRecordParams{
			ID:          rec.ID,
			Kind:        string(kind),
			OwnerID:     rec.OwnerID,
			GroupID:     rec.GroupID,
			Type:        string(rec.Flow),
			Amount:      rec.Amount.String(),
			Category:    rec.Category,
			Subcategory: rec.Subcategory,
			Date:        rec.Date.String(),
			Notes:       rec.Notes,
		})
		if err != nil {
			return 0, fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Ledger records saved to SQLite",
		"kind", kind,
		"received", len(records),
		"inserted", inserted)

	return inserted, nil
}

// ListYears implements sheets.YearLister.
func (r *SQLiteRepository) ListYears(ctx context.Context, ownerID string) ([]int, error) {
	years, err := r.queries.ListYears(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list years for %s: %w", ownerID, err)
	}
	out := make([]int, len(years))
	for i, y := range years {
		out[i] = int(y)
	}
	return out, nil
}

// CountRecords returns how many records an owner has across both kinds.
func (r *SQLiteRepository) CountRecords(ctx context.Context, ownerID string) (int64, error) {
	n, err := r.queries.CountRecords(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("count records for %s: %w", ownerID, err)
	}
	return n, nil
}
