package backend

import (
	"context"

	"fincircle/internal/cache"
	"fincircle/internal/sheets"
)

// Backend is what every data backend provides.
type Backend interface {
	sheets.RecordSource
	sheets.RecordWriter
	sheets.YearLister
}

type CleanupFunc func() error

// BackendResult holds the backend plus the wrappers the factory added.
// Source is the read path and may be a caching decorator over Backend.
type BackendResult struct {
	Backend Backend
	Source  sheets.RecordSource
	// Invalidate drops cached records for an owner; nil without a cache.
	Invalidate func(ownerID string)
	// Cache is the record cache to register for periodic cleanup; nil
	// without a cache.
	Cache cache.Cleaner
	// Ping reports backend readiness; nil when there is nothing to check.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
