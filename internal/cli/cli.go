// Package cli implements the bdash subcommands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"bet-ledger-lab/internal/config"
	"bet-ledger-lab/internal/ingestion"
	"bet-ledger-lab/internal/ledgerfile"
	"bet-ledger-lab/internal/storage"
	chstore "bet-ledger-lab/internal/storage/clickhouse"
	"bet-ledger-lab/internal/storage/memory"
	"bet-ledger-lab/internal/storage/migrations"
	pgstore "bet-ledger-lab/internal/storage/postgres"
)

// Exit codes beyond subcommands.ExitSuccess and subcommands.ExitFailure.
const (
	ExitMissingInput subcommands.ExitStatus = 2
	ExitStructural   subcommands.ExitStatus = 3
)

// Store kinds accepted by -store and -source flags.
const (
	storeFile       = "file"
	storePostgres   = "postgres"
	storeClickhouse = "clickhouse"
)

// Register adds every bdash subcommand to the commander.
func Register(c *subcommands.Commander, cfg *config.Config) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&ingestCmd{cfg: cfg}, "ledger")
	c.Register(&riskCmd{cfg: cfg}, "analytics")
	c.Register(&exportCmd{cfg: cfg}, "analytics")
	c.Register(&serveCmd{cfg: cfg}, "analytics")
}

// exitStatus maps an error onto the process exit code.
func exitStatus(err error) subcommands.ExitStatus {
	switch {
	case err == nil:
		return subcommands.ExitSuccess
	case errors.Is(err, ingestion.ErrNoInput), errors.Is(err, fs.ErrNotExist):
		return ExitMissingInput
	case errors.Is(err, ingestion.ErrMissingColumn), errors.Is(err, ledgerfile.ErrMalformed):
		return ExitStructural
	default:
		return subcommands.ExitFailure
	}
}

// fail reports err on stderr and returns the matching exit code.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitStatus(err)
}

func newLogger(name string) *log.Logger {
	return log.New(os.Stdout, "["+name+"] ", log.LstdFlags|log.Lshortfile)
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(w io.Writer, md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprint(w, md)
}

// openLedgerStore returns a ledger store of the given kind plus a cleanup
// function. Database stores are migrated before use. A "file" store is an
// in-memory store loaded from ledgerPath.
func openLedgerStore(ctx context.Context, kind, ledgerPath string, cfg *config.Config) (storage.LedgerStore, func(), error) {
	switch kind {
	case storeFile, "":
		entries, err := ledgerfile.ReadFile(ledgerPath)
		if err != nil {
			return nil, nil, err
		}
		store := memory.NewLedgerStore()
		if err := store.InsertBulk(ctx, entries); err != nil {
			return nil, nil, fmt.Errorf("load ledger into memory: %w", err)
		}
		return store, func() {}, nil

	case storePostgres:
		pool, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewLedgerStore(pool), pool.Close, nil

	case storeClickhouse:
		if cfg.ClickhouseDSN == "" {
			return nil, nil, errors.New("clickhouse store requires BDASH_CLICKHOUSE_DSN or -clickhouse-dsn")
		}
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		return chstore.NewLedgerStore(conn), func() { conn.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q (want file, postgres or clickhouse)", kind)
	}
}

// dsnFlags binds the database DSN flags, defaulting to the loaded config.
func dsnFlags(f *flag.FlagSet, cfg *config.Config) {
	f.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	f.StringVar(&cfg.ClickhouseDSN, "clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string")
}

func openPostgres(ctx context.Context, cfg *config.Config) (*pgstore.Pool, error) {
	if cfg.PostgresDSN == "" {
		return nil, errors.New("postgres store requires BDASH_POSTGRES_DSN or -postgres-dsn")
	}
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}
	return pool, nil
}
