package cli

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"bet-ledger-lab/internal/api"
	"bet-ledger-lab/internal/config"
	"bet-ledger-lab/internal/risk"
)

type serveCmd struct {
	cfg *config.Config

	ledger string
	source string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve read-only ledger analytics over HTTP" }
func (*serveCmd) Usage() string {
	return `bdash serve [-ledger <file>] [-source file|postgres|clickhouse] [-addr <host:port>]

  Endpoints:
    GET /health
    GET /metrics
    GET /api/stats
    GET /api/daily?from=YYYY-MM-DD&to=YYYY-MM-DD
    GET /api/drawdown
    GET /api/tables
    GET /api/tables/{name}
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "ledger", "data/ledger.csv", "Typed ledger file produced by ingest")
	f.StringVar(&c.source, "source", storeFile, "Where to read the ledger from (file, postgres, clickhouse)")
	f.StringVar(&c.cfg.ListenAddr, "addr", c.cfg.ListenAddr, "HTTP listen address")
	f.StringVar(&c.cfg.Currency, "currency", c.cfg.Currency, "Reporting currency (ISO code)")
	dsnFlags(f, c.cfg)
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger("serve")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openLedgerStore(ctx, c.source, c.ledger, c.cfg)
	if err != nil {
		return fail(err)
	}
	defer cleanup()

	handler := api.NewHandler(store, risk.NewEngine(c.cfg.Risk), c.cfg.Currency, logger)
	if err := api.Serve(ctx, c.cfg.ListenAddr, api.NewRouter(handler, c.cfg.CORSOrigins), logger); err != nil {
		return fail(err)
	}
	logger.Println("Shutdown complete")
	return subcommands.ExitSuccess
}
