package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fincircle/internal/cache"
	"fincircle/internal/core"
	gsheet "fincircle/internal/sheets/google"
	"fincircle/internal/sheets/memory"
	"fincircle/internal/storage"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		res, err = f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	res.Source = res.Backend
	if config.CacheTTL > 0 {
		lru := cache.NewLRUCache[[]core.RawRecord](config.CacheMaxSize, config.CacheTTL)
		cached := cache.NewCachedSource(res.Backend, lru)
		res.Source = cached
		res.Cache = lru
		res.Invalidate = func(ownerID string) { cached.Invalidate(ownerID) }
		f.logger.Info("Record cache enabled",
			"ttl", config.CacheTTL,
			"max_size", config.CacheMaxSize)
	}
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{
		Backend: repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:     config.GoogleSpreadsheetID,
		TransactionsSheet: config.GoogleTransactionsSheet,
		InvestmentsSheet:  config.GoogleInvestmentsSheet,
		CredentialsJSON:   config.GoogleServiceAccountJSON,
		CredentialsFile:   config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)
	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}
	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return &BackendResult{Backend: store}, nil
}
