package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the SQL used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// LedgerRecord mirrors a ledger_records row.
type LedgerRecord struct {
	Seq         int64
	ID          string
	Kind        string
	OwnerID     string
	GroupID     string
	Type        string
	Amount      string
	Category    string
	Subcategory string
	Date        string
	Notes       string
}

const insertRecord = `
INSERT INTO ledger_records (id, kind, owner_id, group_id, type, amount, category, subcategory, date, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`

type InsertRecordParams struct {
	ID          string
	Kind        string
	OwnerID     string
	GroupID     string
	Type        string
	Amount      string
	Category    string
	Subcategory string
	Date        string
	Notes       string
}

// InsertRecord returns the number of inserted rows: 0 when the id exists.
func (q *Queries) InsertRecord(ctx context.Context, arg InsertRecordParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertRecord,
		arg.ID, arg.Kind, arg.OwnerID, arg.GroupID, arg.Type,
		arg.Amount, arg.Category, arg.Subcategory, arg.Date, arg.Notes)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listRecordsInRange = `
SELECT seq, id, kind, owner_id, group_id, type, amount, category, subcategory, date, notes
FROM ledger_records
WHERE owner_id = ? AND kind = ? AND substr(date, 1, 10) BETWEEN ? AND ?
ORDER BY seq`

type ListRecordsInRangeParams struct {
	OwnerID string
	Kind    string
	From    string
	To      string
}

func (q *Queries) ListRecordsInRange(ctx context.Context, arg ListRecordsInRangeParams) ([]LedgerRecord, error) {
	rows, err := q.db.QueryContext(ctx, listRecordsInRange, arg.OwnerID, arg.Kind, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerRecord
	for rows.Next() {
		var i LedgerRecord
		if err := rows.Scan(
			&i.Seq, &i.ID, &i.Kind, &i.OwnerID, &i.GroupID, &i.Type,
			&i.Amount, &i.Category, &i.Subcategory, &i.Date, &i.Notes,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listYears = `
SELECT DISTINCT CAST(substr(date, 1, 4) AS INTEGER) AS year
FROM ledger_records
WHERE owner_id = ?
ORDER BY year DESC`

func (q *Queries) ListYears(ctx context.Context, ownerID string) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listYears, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var y int64
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		items = append(items, y)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRecords = `SELECT COUNT(*) FROM ledger_records WHERE owner_id = ?`

func (q *Queries) CountRecords(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRecords, ownerID).Scan(&n)
	return n, err
}
