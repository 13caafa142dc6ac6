// Command ledger-import loads a CSV ledger into the SQLite backend.
//
//	ledger-import -file transactions.csv -owner alice [-kind investments] [-group family]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"fincircle/internal/cli"
	"fincircle/internal/config"
	"fincircle/internal/core"
	"fincircle/internal/log"
	"fincircle/internal/sheets"
	"fincircle/internal/sheets/memory"
	"fincircle/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	file := flag.String("file", "", "CSV file to import (required)")
	owner := flag.String("owner", "", "owner id for rows without one (required)")
	group := flag.String("group", "", "group id for rows without one")
	kind := flag.String("kind", string(sheets.Transactions), "ledger kind: transactions or investments")
	dbPath := flag.String("db", cfg.SQLiteDBPath, "SQLite database path")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing")
	flag.Parse()

	logger := cli.SetupLogger(cfg, log.ComponentImport)

	if *file == "" || strings.TrimSpace(*owner) == "" {
		flag.Usage()
		os.Exit(2)
	}
	k := sheets.RecordKind(*kind)
	if k != sheets.Transactions && k != sheets.Investments {
		logger.Error("Unknown ledger kind", "kind", *kind)
		os.Exit(2)
	}

	records, err := readLedger(*file, k, strings.TrimSpace(*owner), strings.TrimSpace(*group))
	if err != nil {
		logger.Error("Import failed", log.NewFields().WithOperation(log.OpImport).With("file", *file).WithError(err)...)
		os.Exit(1)
	}
	if *dryRun {
		logger.Info("Dry run complete", log.FieldRecordCount, len(records), "file", *file)
		return
	}

	repo, err := storage.NewSQLiteRepository(*dbPath)
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err, "path", *dbPath)
		os.Exit(1)
	}
	defer repo.Close()

	inserted, err := repo.AppendRecords(context.Background(), k, records)
	if err != nil {
		logger.Error("Import failed", log.NewFields().WithOperation(log.OpImport).WithError(err)...)
		repo.Close()
		os.Exit(1)
	}
	version, _, err := storage.SchemaVersion(*dbPath)
	if err != nil {
		logger.Warn("Could not read schema version", log.FieldError, err)
	}
	logger.Info("Import complete",
		log.FieldRecordCount, len(records),
		"inserted", inserted,
		"skipped", len(records)-inserted,
		"kind", k,
		"schema_version", version)
}

// readLedger parses every row, filling blank ids, owners and groups. Blank
// investment types default to the investment flow. The first malformed row
// aborts the import.
func readLedger(path string, kind sheets.RecordKind, owner, group string) ([]core.LedgerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raws, err := memory.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for i := range raws {
		r := &raws[i]
		if strings.TrimSpace(r.ID) == "" {
			r.ID = uuid.NewString()
		}
		if strings.TrimSpace(r.OwnerID) == "" {
			r.OwnerID = owner
		}
		if strings.TrimSpace(r.GroupID) == "" {
			r.GroupID = group
		}
		if kind == sheets.Investments && strings.TrimSpace(r.Type) == "" {
			r.Type = string(core.Investment)
		}
	}
	return core.ParseRecords(raws)
}
