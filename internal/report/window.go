package report

import (
	"fmt"
	"strconv"
	"time"

	"fincircle/internal/core"
)

// Window is a calendar year, optionally narrowed to one month.
type Window struct {
	Year  int  `json:"year"`
	Month *int `json:"month,omitempty"` // 0-11; nil selects the whole year
}

// YearWindow selects a full calendar year.
func YearWindow(year int) Window {
	return Window{Year: year}
}

// MonthWindow selects one month (0-11) of year.
func MonthWindow(year, month int) Window {
	m := month
	return Window{Year: year, Month: &m}
}

// Validate rejects month indexes outside 0-11.
func (w Window) Validate() error {
	if w.Month != nil && (*w.Month < 0 || *w.Month > 11) {
		return fmt.Errorf("%w: %d (want 0-11)", core.ErrInvalidMonth, *w.Month)
	}
	return nil
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d core.Date) bool {
	if d.Year() != w.Year {
		return false
	}
	return w.Month == nil || d.MonthIndex() == *w.Month
}

// HasMonth reports whether the window is narrowed to a month.
func (w Window) HasMonth() bool {
	return w.Month != nil
}

// Start returns the first day covered by the window.
func (w Window) Start() core.Date {
	if w.Month == nil {
		return core.NewDate(w.Year, 1, 1)
	}
	return core.NewDate(w.Year, *w.Month+1, 1)
}

// End returns the last day covered by the window.
func (w Window) End() core.Date {
	if w.Month == nil {
		return core.NewDate(w.Year, 12, 31)
	}
	// day 0 of the following month is the last day of this one
	return core.NewDate(w.Year, *w.Month+2, 0)
}

// MonthName returns the English month name, or "" for a whole-year window.
func (w Window) MonthName() string {
	if w.Month == nil {
		return ""
	}
	return time.Month(*w.Month + 1).String()
}

// Key is a stable string form, used for cache keys and logs.
func (w Window) Key() string {
	if w.Month == nil {
		return strconv.Itoa(w.Year)
	}
	return fmt.Sprintf("%d-%02d", w.Year, *w.Month)
}
