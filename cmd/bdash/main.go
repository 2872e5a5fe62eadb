// Command bdash ingests bet exports into a ledger and reports risk analytics.
//
// Usage:
//
//	bdash ingest -root data/raw -pattern '*.csv' -ledger data/ledger.csv
//	bdash risk -ledger data/ledger.csv -out reports/risk
//	bdash export -ledger data/ledger.csv -out reports/tables -redis-addr localhost:6379
//	bdash serve -ledger data/ledger.csv -addr :8080
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"bet-ledger-lab/internal/cli"
	"bet-ledger-lab/internal/config"
)

func main() {
	cfg := config.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander, cfg)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
