package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fincircle/internal/amqp"
	"fincircle/internal/log"
	"fincircle/internal/report"
)

type handlers struct {
	reports    ReportAPI
	publisher  ExportPublisher
	ready      func(ctx context.Context) error
	invalidate func(ownerID string)
	now        func() time.Time
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeErrorMessage(w, r, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	win, err := parseWindow(r.URL.Query(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.reports.Summary(r.Context(), owner, win)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	win, err := parseWindow(r.URL.Query(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	mode := report.ParseCSVMode(r.URL.Query().Get("mode"))
	file, err := h.reports.ExportCSV(r.Context(), owner, win, mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, file.ContentType, file.Filename, file.Data)
}

func (h *handlers) exportXLSX(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	win, err := parseWindow(r.URL.Query(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	file, err := h.reports.ExportXLSX(r.Context(), owner, win)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, file.ContentType, file.Filename, file.Data)
}

func (h *handlers) years(w http.ResponseWriter, r *http.Request) {
	years, err := h.reports.AvailableYears(r.Context(), chi.URLParam(r, "owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"years": years})
}

func (h *handlers) enqueueExport(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		writeErrorMessage(w, r, http.StatusServiceUnavailable, "asynchronous exports are disabled")
		return
	}
	owner := chi.URLParam(r, "owner")
	win, format, err := parseExportRequest(r, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg := amqp.NewExportRequestMessage(owner, win, format)
	if err := msg.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.publisher.PublishExportRequest(r.Context(), msg); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to enqueue export",
			log.NewFields().WithReport(owner, win.Key()).WithError(err)...)
		writeErrorMessage(w, r, http.StatusServiceUnavailable, "export queue unavailable")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":       msg.ID,
		"status":   "queued",
		"filename": report.ExportFilename(win, msg.Format),
	})
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	if h.invalidate != nil {
		h.invalidate(chi.URLParam(r, "owner"))
	}
	w.WriteHeader(http.StatusNoContent)
}
