package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fincircle/internal/amqp"
	"fincircle/internal/core"
	"fincircle/internal/report"
	"fincircle/internal/services"
)

// Exporter renders an export file for an owner and window.
type Exporter interface {
	Export(ctx context.Context, ownerID string, w report.Window, format string) (services.ExportFile, error)
}

// ExportWorker turns export requests into files under dir/<owner>/.
type ExportWorker struct {
	exporter Exporter
	dir      string
}

func NewExportWorker(exporter Exporter, dir string) *ExportWorker {
	return &ExportWorker{exporter: exporter, dir: dir}
}

// HandleExportRequest renders and writes one export. Errors that retrying
// cannot fix are logged and swallowed so the message is not requeued.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	slog.InfoContext(ctx, "Processing export request",
		"id", msg.ID,
		"owner", msg.OwnerID,
		"window", msg.Window().Key(),
		"format", msg.Format)

	ownerDir, err := w.ownerDir(msg.OwnerID)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping export request", "id", msg.ID, "error", err)
		return nil
	}

	file, err := w.exporter.Export(ctx, msg.OwnerID, msg.Window(), msg.Format)
	if err != nil {
		if isPermanent(err) {
			slog.ErrorContext(ctx, "Dropping export request",
				"id", msg.ID,
				"owner", msg.OwnerID,
				"error", err)
			return nil
		}
		return fmt.Errorf("render export: %w", err)
	}

	path, err := writeFileAtomic(ownerDir, file.Filename, file.Data)
	if err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	slog.InfoContext(ctx, "Export written",
		"id", msg.ID,
		"owner", msg.OwnerID,
		"path", path,
		"bytes", len(file.Data))
	return nil
}

func (w *ExportWorker) ownerDir(ownerID string) (string, error) {
	clean := strings.TrimSpace(ownerID)
	if clean == "" || clean == "." || clean == ".." || strings.ContainsAny(clean, `/\`) {
		return "", fmt.Errorf("owner id %q is not usable as a directory name", ownerID)
	}
	return filepath.Join(w.dir, clean), nil
}

func isPermanent(err error) bool {
	return errors.Is(err, core.ErrMalformedRecord) ||
		errors.Is(err, core.ErrInvalidMonth) ||
		errors.Is(err, services.ErrUnknownFormat) ||
		errors.Is(err, services.ErrMissingOwner)
}

// writeFileAtomic writes through a temp file and renames it into place so
// readers never see a partial export.
func writeFileAtomic(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename export: %w", err)
	}
	return path, nil
}
