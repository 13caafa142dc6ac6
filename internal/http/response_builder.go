package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"fincircle/internal/amqp"
	"fincircle/internal/core"
	"fincircle/internal/log"
	"fincircle/internal/services"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
	RecordID  string `json:"record_id,omitempty"`
	Field     string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", log.FieldError, err)
	}
}

func writeErrorMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg, RequestID: middleware.GetReqID(r.Context())})
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Error: err.Error(), RequestID: middleware.GetReqID(r.Context())}
	status := http.StatusInternalServerError

	var mre *core.MalformedRecordError
	switch {
	case errors.As(err, &mre):
		status = http.StatusUnprocessableEntity
		body.RecordID = mre.RecordID
		body.Field = mre.Field
	case isClientError(err),
		errors.Is(err, services.ErrMissingOwner),
		errors.Is(err, services.ErrUnknownFormat),
		errors.Is(err, amqp.ErrInvalidMessage):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrSourceUnavailable):
		status = http.StatusBadGateway
	}

	logger := log.FromContext(r.Context())
	if status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldStatusCode, status)
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	writeJSON(w, status, body)
}

// writeFile sends an export as an attachment.
func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	if contentType == "text/csv" {
		contentType += "; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
