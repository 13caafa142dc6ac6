package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income     FlowType = "income"
	Expense    FlowType = "expense"
	Investment FlowType = "investment"
)

// OtherCategory labels records that arrive without a category.
const OtherCategory = "Other"

type (
	// FlowType classifies a record as income, expense or investment movement.
	FlowType string

	// Date is a plain calendar date. The time part is always midnight UTC and
	// carries no timezone meaning.
	Date struct {
		time.Time
	}

	// LedgerRecord is the normalized record consumed by the reporting engine.
	LedgerRecord struct {
		ID          string
		Amount      decimal.Decimal // signed or unsigned depending on the feed
		Flow        FlowType
		Category    string
		Subcategory string // empty when absent
		Date        Date
		OwnerID     string
		GroupID     string // empty when absent
		Notes       string
	}

	// RawRecord is a record as delivered by a feed, before validation.
	RawRecord struct {
		ID          string
		Amount      string
		Type        string
		Category    string
		Subcategory string
		Date        string
		OwnerID     string
		GroupID     string
		Notes       string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidFlowType = errors.New("invalid flow type")
	ErrInvalidMonth    = errors.New("invalid month")

	// ErrMalformedRecord matches any *MalformedRecordError via errors.Is.
	ErrMalformedRecord = errors.New("malformed record")
)

// MalformedRecordError identifies the record and field that could not be parsed.
type MalformedRecordError struct {
	RecordID string
	Field    string
	Value    string
	Err      error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %q: %s=%q: %v", e.RecordID, e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// ParseFlowType accepts the flow names case-insensitively. "investments" is
// accepted as an alias used by some feeds.
func ParseFlowType(s string) (FlowType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	case "investment", "investments":
		return Investment, nil
	default:
		return "", ErrInvalidFlowType
	}
}

// IsValid reports whether f is one of the three known flow types.
func (f FlowType) IsValid() bool {
	switch f {
	case Income, Expense, Investment:
		return true
	}
	return false
}

func (f FlowType) String() string { return string(f) }

// NewDate creates a new Date from year, month (1-12) and day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate reads the calendar date of s. Both "2006-01-02" and timestamps
// starting with a date ("2006-01-02T15:04:05Z", "2006-01-02 15:04") are
// accepted; for timestamps the date is taken as written, with no conversion
// between zones.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return Date{}, ErrInvalidDate
	}
	if len(s) > 10 && s[10] != 'T' && s[10] != ' ' {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the month (1-12)
func (d Date) Month() int {
	return int(d.Time.Month())
}

// MonthIndex returns the zero-based month (0-11).
func (d Date) MonthIndex() int {
	return int(d.Time.Month()) - 1
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Magnitude returns the non-negative amount used for every aggregate.
func (r LedgerRecord) Magnitude() decimal.Decimal {
	return r.Amount.Abs()
}

// CategoryLabel returns the category, or OtherCategory when it is blank.
func (r LedgerRecord) CategoryLabel() string {
	if c := strings.TrimSpace(r.Category); c != "" {
		return c
	}
	return OtherCategory
}

// Label is the bucket label: "category" or "category / subcategory".
func (r LedgerRecord) Label() string {
	cat := r.CategoryLabel()
	if sub := strings.TrimSpace(r.Subcategory); sub != "" {
		return cat + " / " + sub
	}
	return cat
}

// ParseRecord validates a raw feed record. Amount, date and type failures are
// reported as *MalformedRecordError rather than coerced to zero.
func ParseRecord(raw RawRecord) (LedgerRecord, error) {
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return LedgerRecord{}, &MalformedRecordError{RecordID: raw.ID, Field: "amount", Value: raw.Amount, Err: err}
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return LedgerRecord{}, &MalformedRecordError{RecordID: raw.ID, Field: "date", Value: raw.Date, Err: err}
	}
	flow, err := ParseFlowType(raw.Type)
	if err != nil {
		return LedgerRecord{}, &MalformedRecordError{RecordID: raw.ID, Field: "type", Value: raw.Type, Err: err}
	}
	return LedgerRecord{
		ID:          strings.TrimSpace(raw.ID),
		Amount:      amount,
		Flow:        flow,
		Category:    strings.TrimSpace(raw.Category),
		Subcategory: strings.TrimSpace(raw.Subcategory),
		Date:        date,
		OwnerID:     strings.TrimSpace(raw.OwnerID),
		GroupID:     strings.TrimSpace(raw.GroupID),
		Notes:       raw.Notes,
	}, nil
}

// ParseRecords converts a whole feed, stopping at the first malformed record.
func ParseRecords(raws []RawRecord) ([]LedgerRecord, error) {
	out := make([]LedgerRecord, 0, len(raws))
	for _, raw := range raws {
		r, err := ParseRecord(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Raw converts a record back to its feed representation.
func (r LedgerRecord) Raw() RawRecord {
	return RawRecord{
		ID:          r.ID,
		Amount:      r.Amount.String(),
		Type:        string(r.Flow),
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Date:        r.Date.String(),
		OwnerID:     r.OwnerID,
		GroupID:     r.GroupID,
		Notes:       r.Notes,
	}
}
