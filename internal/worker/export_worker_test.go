package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincircle/internal/amqp"
	"fincircle/internal/core"
	"fincircle/internal/report"
	"fincircle/internal/services"
	"fincircle/internal/sheets"
	"fincircle/internal/sheets/memory"
)

type stubExporter struct {
	err   error
	calls int
}

func (s *stubExporter) Export(_ context.Context, _ string, w report.Window, format string) (services.ExportFile, error) {
	s.calls++
	if s.err != nil {
		return services.ExportFile{}, s.err
	}
	return services.ExportFile{Filename: report.ExportFilename(w, format), Data: []byte("data")}, nil
}

func TestExportWorkerWritesFile(t *testing.T) {
	store := memory.New()
	store.Seed(sheets.Transactions,
		core.RawRecord{OwnerID: "alice", Date: "2025-03-04", Type: "expense", Category: "Food", Amount: "12"})
	dir := t.TempDir()
	w := NewExportWorker(services.NewReportService(store, store), dir)

	msg := amqp.NewExportRequestMessage("alice", report.MonthWindow(2025, 2), "csv")
	require.NoError(t, w.HandleExportRequest(context.Background(), msg))

	data, err := os.ReadFile(filepath.Join(dir, "alice", "finance-report-2025-March.csv"))
	require.NoError(t, err)
	assert.Equal(t, report.CSVHeader+"\n2025-03-04,expense,Food,,12,", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "alice"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestExportWorkerErrorHandling(t *testing.T) {
	ctx := context.Background()
	msg := amqp.NewExportRequestMessage("alice", report.YearWindow(2025), "csv")

	transient := &stubExporter{err: errors.New("sheets timeout")}
	err := NewExportWorker(transient, t.TempDir()).HandleExportRequest(ctx, msg)
	assert.Error(t, err, "transient failures are returned for requeue")

	permanent := &stubExporter{err: &core.MalformedRecordError{RecordID: "x", Field: "amount", Err: core.ErrInvalidAmount}}
	err = NewExportWorker(permanent, t.TempDir()).HandleExportRequest(ctx, msg)
	assert.NoError(t, err, "malformed data is dropped")

	unsafe := amqp.NewExportRequestMessage("../etc", report.YearWindow(2025), "csv")
	stub := &stubExporter{}
	assert.NoError(t, NewExportWorker(stub, t.TempDir()).HandleExportRequest(ctx, unsafe))
	assert.Zero(t, stub.calls)
}
