package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/redis/go-redis/v9"

	"bet-ledger-lab/internal/config"
	"bet-ledger-lab/internal/export"
	"bet-ledger-lab/internal/reporting"
	"bet-ledger-lab/internal/risk"
)

type exportCmd struct {
	cfg *config.Config

	ledger string
	source string
	out    string
	prefix string
	ttl    time.Duration
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "publish the summary tables to CSV files and Redis" }
func (*exportCmd) Usage() string {
	return `bdash export [-ledger <file>] [-out <dir>] [-redis-addr <host:port>] [-ttl <duration>]

  Builds the By Day, By Week, By Month, KPIs and optional slice tables and
  writes them to every configured sink: one CSV per table in -out and one
  JSON document per table in Redis.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "ledger", "data/ledger.csv", "Typed ledger file produced by ingest")
	f.StringVar(&c.source, "source", storeFile, "Where to read the ledger from (file, postgres, clickhouse)")
	f.StringVar(&c.out, "out", "reports/tables", "Directory for table CSVs (empty to skip)")
	f.StringVar(&c.cfg.RedisAddr, "redis-addr", c.cfg.RedisAddr, "Redis address (empty to skip)")
	f.StringVar(&c.prefix, "redis-prefix", "bdash:", "Redis key prefix")
	f.DurationVar(&c.ttl, "ttl", 0, "Expiry for Redis keys (0 keeps them)")
	f.StringVar(&c.cfg.Currency, "currency", c.cfg.Currency, "Reporting currency (ISO code)")
	dsnFlags(f, c.cfg)
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := newLogger("export")

	var sinks []export.TableSink
	if c.out != "" {
		sinks = append(sinks, export.NewDirSink(c.out))
	}
	if c.cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     c.cfg.RedisAddr,
			Password: c.cfg.RedisPassword,
			DB:       c.cfg.RedisDB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("connect redis %s: %w", c.cfg.RedisAddr, err))
		}
		sinks = append(sinks, export.NewRedisSink(client, c.ttl).WithPrefix(c.prefix))
	}
	if len(sinks) == 0 {
		fmt.Fprintln(f.Output(), "Error: no sink configured, set -out or -redis-addr")
		return subcommands.ExitUsageError
	}

	store, cleanup, err := openLedgerStore(ctx, c.source, c.ledger, c.cfg)
	if err != nil {
		return fail(err)
	}
	defer cleanup()

	report, err := reporting.NewGenerator(store, risk.NewEngine(c.cfg.Risk), c.cfg.Currency).Generate(ctx)
	if err != nil {
		return fail(err)
	}

	if err := export.NewExporter(logger, sinks...).Export(ctx, report.Tables); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
