package sheets

import (
	"context"

	"fincircle/internal/core"
	"fincircle/internal/report"
)

// RecordKind names the two record collections a feed keeps apart.
type RecordKind string

const (
	Transactions RecordKind = "transactions"
	Investments  RecordKind = "investments"
)

// IsValid reports whether k is a known collection.
func (k RecordKind) IsValid() bool {
	return k == Transactions || k == Investments
}

// Ports for outbound adapters. Authorization and owner scoping happen before
// these are called; implementations only filter by owner and year.
type (
	// RecordSource supplies raw ledger records for an owner. Implementations
	// may return records outside the window; the engine filters again.
	RecordSource interface {
		FetchRecords(ctx context.Context, ownerID string, window report.Window, kind RecordKind) ([]core.RawRecord, error)
	}

	// RecordWriter stores parsed records.
	RecordWriter interface {
		AppendRecords(ctx context.Context, kind RecordKind, records []core.LedgerRecord) (int, error)
	}

	// YearLister reports which years hold data for an owner.
	YearLister interface {
		ListYears(ctx context.Context, ownerID string) ([]int, error)
	}
)
