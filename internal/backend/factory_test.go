package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincircle/internal/cache"
	"fincircle/internal/config"
	"fincircle/internal/report"
	"fincircle/internal/sheets"
)

func TestCreateMemoryBackendWithCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.csv"),
		[]byte("owner,date,type,category,amount\nalice,2025-01-01,expense,Rent,60\n"), 0o644))

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:          MemoryBackend,
		DataDirectory: dir,
		CacheTTL:      time.Minute,
		CacheMaxSize:  8,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Invalidate)
	require.NotNil(t, res.Cache)
	assert.IsType(t, &cache.CachedSource{}, res.Source)

	rows, err := res.Source.FetchRecords(context.Background(), "alice", report.YearWindow(2025), sheets.Transactions)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	res.Invalidate("alice")
}

func TestCreateSQLiteBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Cleanup() })

	assert.Nil(t, res.Invalidate, "cache disabled with zero TTL")
	assert.Nil(t, res.Cache)
	assert.Equal(t, sheets.RecordSource(res.Backend), res.Source)
	require.NotNil(t, res.Ping)
	assert.NoError(t, res.Ping(context.Background()))
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.CreateBackend(context.Background(), Config{Type: "mongo"})
	assert.Error(t, err)
	_, err = f.CreateBackend(context.Background(), Config{Type: SheetsBackend})
	assert.ErrorContains(t, err, "Spreadsheet ID")
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	app := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "x.db",
		DataDir:      "seed",
		CacheTTL:     time.Second,
		CacheMaxSize: 4,
	}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "seed", cfg.DataDirectory)
	assert.Equal(t, 4, cfg.CacheMaxSize)

	app.DataBackend = "nope"
	_, err = FromAppConfig(app)
	assert.Error(t, err)
}
