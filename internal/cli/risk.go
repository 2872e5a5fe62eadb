package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"bet-ledger-lab/internal/config"
	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/reporting"
	"bet-ledger-lab/internal/risk"
	"bet-ledger-lab/internal/storage"
	chstore "bet-ledger-lab/internal/storage/clickhouse"
	"bet-ledger-lab/internal/storage/migrations"
	pgstore "bet-ledger-lab/internal/storage/postgres"
)

type riskCmd struct {
	cfg *config.Config

	ledger       string
	source       string
	out          string
	snapshot     bool
	publishDaily bool
	quiet        bool
}

func (*riskCmd) Name() string     { return "risk" }
func (*riskCmd) Synopsis() string { return "compute equity, drawdown, rolling and streak analytics" }
func (*riskCmd) Usage() string {
	return `bdash risk [-ledger <file>] [-source file|postgres|clickhouse] [-out <dir>] [-snapshot] [-publish-daily]

  Recomputes the risk analytics from the ledger and writes the chart series,
  worst days, rolling metrics, headline stats and RISK_REPORT.md into -out.
  -snapshot records the headline stats in Postgres; -publish-daily appends
  days not yet stored to the ClickHouse daily_pnl table.
`
}

func (c *riskCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "ledger", "data/ledger.csv", "Typed ledger file produced by ingest")
	f.StringVar(&c.source, "source", storeFile, "Where to read the ledger from (file, postgres, clickhouse)")
	f.StringVar(&c.out, "out", "reports/risk", "Output directory for risk artifacts")
	f.StringVar(&c.cfg.Currency, "currency", c.cfg.Currency, "Reporting currency (ISO code)")
	f.BoolVar(&c.snapshot, "snapshot", false, "Record headline stats in Postgres")
	f.BoolVar(&c.publishDaily, "publish-daily", false, "Append the daily series to ClickHouse")
	f.BoolVar(&c.quiet, "q", false, "Do not print the report")
	dsnFlags(f, c.cfg)
}

func (c *riskCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger("risk")

	store, cleanup, err := openLedgerStore(ctx, c.source, c.ledger, c.cfg)
	if err != nil {
		return fail(err)
	}
	defer cleanup()

	generator := reporting.NewGenerator(store, risk.NewEngine(c.cfg.Risk), c.cfg.Currency)
	report, err := generator.Generate(ctx)
	if err != nil {
		return fail(err)
	}

	paths, err := reporting.WriteArtifacts(c.out, report)
	if err != nil {
		return fail(err)
	}
	for _, p := range paths {
		logger.Printf("Wrote %s", p)
	}

	if c.snapshot {
		if err := c.saveSnapshot(ctx, report, logger); err != nil {
			return fail(err)
		}
	}
	if c.publishDaily {
		n, err := c.publish(ctx, report.Risk.Daily)
		if err != nil {
			return fail(err)
		}
		logger.Printf("Published %d new day(s) to clickhouse", n)
	}

	if !c.quiet {
		printMarkdown(os.Stdout, reporting.RenderMarkdown(report))
	}
	return subcommands.ExitSuccess
}

func (c *riskCmd) saveSnapshot(ctx context.Context, report *reporting.Report, logger *log.Logger) error {
	pool, err := openPostgres(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	return recordSnapshot(ctx, pgstore.NewRiskSnapshotStore(pool), report, logger)
}

// recordSnapshot stores the headline stats of report and logs the change
// against the previous snapshot, if any.
func recordSnapshot(ctx context.Context, store storage.RiskSnapshotStore, report *reporting.Report, logger *log.Logger) error {
	prev, err := store.GetLatest(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Println("No previous risk snapshot")
	case err != nil:
		return fmt.Errorf("read latest snapshot: %w", err)
	default:
		logger.Printf("Previous snapshot %s: total %.2f over %d days (now %.2f over %d days)",
			prev.RunID, prev.Stats.TotalPL, prev.Stats.Days, report.Risk.Stats.TotalPL, report.Risk.Stats.Days)
	}

	snap := &domain.RiskSnapshot{
		RunID:     uuid.New().String(),
		CreatedAt: report.GeneratedAt,
		FirstDay:  report.Summary.FirstDay,
		LastDay:   report.Summary.LastDay,
		Stats:     report.Risk.Stats,
	}
	if err := store.Insert(ctx, snap); err != nil {
		return fmt.Errorf("insert risk snapshot: %w", err)
	}
	return nil
}

func (c *riskCmd) publish(ctx context.Context, daily []domain.DailyPoint) (int, error) {
	if c.cfg.ClickhouseDSN == "" {
		return 0, fmt.Errorf("-publish-daily requires BDASH_CLICKHOUSE_DSN or -clickhouse-dsn")
	}
	conn, err := migrations.RunClickhouseMigrations(ctx, c.cfg.ClickhouseDSN)
	if err != nil {
		return 0, fmt.Errorf("clickhouse migrations: %w", err)
	}
	defer conn.Close()

	return appendNewDays(ctx, chstore.NewDailySeriesStore(conn), daily)
}

// appendNewDays inserts the points whose day is not stored yet.
// The daily series store is append-only, so stored days are left untouched.
func appendNewDays(ctx context.Context, store storage.DailySeriesStore, daily []domain.DailyPoint) (int, error) {
	if len(daily) == 0 {
		return 0, nil
	}

	existing, err := store.GetByDayRange(ctx, daily[0].Day, daily[len(daily)-1].Day)
	if err != nil {
		return 0, fmt.Errorf("read stored days: %w", err)
	}
	stored := make(map[time.Time]struct{}, len(existing))
	for _, p := range existing {
		stored[p.Day.UTC()] = struct{}{}
	}

	var fresh []domain.DailyPoint
	for _, p := range daily {
		if _, ok := stored[p.Day.UTC()]; !ok {
			fresh = append(fresh, p)
		}
	}
	if err := store.InsertBulk(ctx, fresh); err != nil {
		return 0, fmt.Errorf("insert daily series: %w", err)
	}
	return len(fresh), nil
}
