package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fincircle/internal/core"
	"fincircle/internal/report"
)

var errBadRequest = errors.New("bad request")

const maxBodyBytes = 4 << 10

// parseWindow reads year (default: current year) and month (0-11, or "all"
// / empty for the whole year) from the query.
func parseWindow(q url.Values, now time.Time) (report.Window, error) {
	w := report.YearWindow(now.Year())
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return report.Window{}, fmt.Errorf("%w: invalid year %q", errBadRequest, v)
		}
		w.Year = y
	}
	v := strings.TrimSpace(q.Get("month"))
	if v == "" || strings.EqualFold(v, "all") {
		return w, nil
	}
	m, err := strconv.Atoi(v)
	if err != nil {
		return report.Window{}, fmt.Errorf("%w: invalid month %q", errBadRequest, v)
	}
	w = report.MonthWindow(w.Year, m)
	if err := w.Validate(); err != nil {
		return report.Window{}, err
	}
	return w, nil
}

// exportRequest is the body of POST /exports. Missing fields fall back to
// the current year, the whole year and CSV.
type exportRequest struct {
	Year   int    `json:"year"`
	Month  *int   `json:"month"`
	Format string `json:"format"`
}

func parseExportRequest(r *http.Request, now time.Time) (report.Window, string, error) {
	var req exportRequest
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return report.Window{}, "", fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	if req.Year == 0 {
		req.Year = now.Year()
	}
	w := report.Window{Year: req.Year, Month: req.Month}
	if err := w.Validate(); err != nil {
		return report.Window{}, "", err
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = "csv"
	}
	return w, format, nil
}

// isClientError reports errors caused by the request rather than the data.
func isClientError(err error) bool {
	return errors.Is(err, errBadRequest) || errors.Is(err, core.ErrInvalidMonth)
}
