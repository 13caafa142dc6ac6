package backend

import (
	"errors"
	"fmt"
	"time"

	"fincircle/internal/config"
)

type Config struct {
	Type BackendType

	SQLiteDBPath string

	GoogleSpreadsheetID      string
	GoogleTransactionsSheet  string
	GoogleInvestmentsSheet   string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory backend seed directory
	DataDirectory string

	// Zero TTL disables the record cache.
	CacheTTL     time.Duration
	CacheMaxSize int
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type:                     backendType,
		SQLiteDBPath:             appConfig.SQLiteDBPath,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleTransactionsSheet:  appConfig.GoogleTransactionsSheet,
		GoogleInvestmentsSheet:   appConfig.GoogleInvestmentsSheet,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		DataDirectory:            appConfig.DataDir,
		CacheTTL:                 appConfig.CacheTTL,
		CacheMaxSize:             appConfig.CacheMaxSize,
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
	}
	return nil
}
