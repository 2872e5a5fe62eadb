package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"bet-ledger-lab/internal/config"
	"bet-ledger-lab/internal/ingestion"
	"bet-ledger-lab/internal/ledgerfile"
)

type ingestCmd struct {
	cfg *config.Config

	root     string
	pattern  string
	ledger   string
	cleanCSV string
	store    string
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "normalize and deduplicate raw bet exports into a ledger" }
func (*ingestCmd) Usage() string {
	return `bdash ingest [-root <dir>] [-pattern <glob>] [-ledger <file>] [-clean-csv <file>] [-store postgres|clickhouse]

  Reads every export in -root matching -pattern, reconciles headers, parses
  values, deduplicates bets and writes the typed ledger file. With -store the
  ledger also replaces the contents of the database ledger table.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.root, "root", "data/raw", "Directory holding raw exports")
	f.StringVar(&c.pattern, "pattern", "*.csv", "Glob pattern for export files")
	f.StringVar(&c.ledger, "ledger", "data/ledger.csv", "Typed ledger output file")
	f.StringVar(&c.cleanCSV, "clean-csv", "", "Optional human-readable cleaned CSV")
	f.StringVar(&c.store, "store", "", "Also load the ledger into a database (postgres, clickhouse)")
	dsnFlags(f, c.cfg)
}

func (c *ingestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger("ingest")

	runner := ingestion.NewRunner(ingestion.NewNormalizer(ingestion.DefaultSynonyms), logger)
	result, err := runner.Run(ctx, c.root, c.pattern)
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(filepath.Dir(c.ledger), 0o755); err != nil {
		return fail(fmt.Errorf("create ledger dir: %w", err))
	}
	if err := ledgerfile.WriteFile(c.ledger, result.Ledger); err != nil {
		return fail(err)
	}
	logger.Printf("Wrote ledger %s", c.ledger)

	if c.cleanCSV != "" {
		if err := ledgerfile.WriteCleanFile(c.cleanCSV, result.Ledger); err != nil {
			return fail(err)
		}
		logger.Printf("Wrote cleaned CSV %s", c.cleanCSV)
	}

	if c.store != "" {
		if c.store == storeFile {
			return fail(fmt.Errorf("-store must be postgres or clickhouse"))
		}
		store, cleanup, err := openLedgerStore(ctx, c.store, "", c.cfg)
		if err != nil {
			return fail(err)
		}
		defer cleanup()

		if err := store.ReplaceAll(ctx, result.Ledger); err != nil {
			return fail(fmt.Errorf("store ledger: %w", err))
		}
		logger.Printf("Loaded %d entries into %s", len(result.Ledger), c.store)
	}

	fmt.Printf("Files:   %d\n", len(result.FilesProcessed))
	for _, name := range result.FilesProcessed {
		fmt.Printf("  %s\n", name)
	}
	fmt.Printf("Rows:    %d\n", result.Rows)
	fmt.Printf("Deduped: %d\n", result.DedupedRows)
	fmt.Printf("Days:    %d\n", len(result.Daily))
	fmt.Printf("Months:  %d\n", len(result.Monthly))

	return subcommands.ExitSuccess
}
