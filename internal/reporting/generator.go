package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/observability"
	"bet-ledger-lab/internal/risk"
	"bet-ledger-lab/internal/storage"
)

// Artifact file names written by WriteArtifacts.
const (
	EquityCurveFile = "equity_curve.csv"
	UnderwaterFile  = "underwater_drawdown.csv"
	WorstDaysFile   = "worst_days.csv"
	RollingFile     = "rolling_metrics.csv"
	StatsFile       = "stats.json"
	MarkdownFile    = "RISK_REPORT.md"
	HTMLFile        = "RISK_REPORT.html"
)

// Generator produces reports from stored data.
type Generator struct {
	ledgerStore storage.LedgerStore
	engine      *risk.Engine
	currency    string
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(ledgerStore storage.LedgerStore, engine *risk.Engine, currency string) *Generator {
	return &Generator{
		ledgerStore: ledgerStore,
		engine:      engine,
		currency:    currency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads the stored ledger and builds a complete report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	ledger, err := g.ledgerStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return g.Build(ledger), nil
}

// Build computes a report from a ledger held in memory.
func (g *Generator) Build(ledger []*domain.LedgerEntry) *Report {
	analytics := g.engine.Analyze(ledger)

	return &Report{
		GeneratedAt: g.now(),
		Currency:    g.currency,
		Summary:     summarize(ledger),
		Risk:        analytics,
		Windows:     g.engine.Config(),
		Tables:      BuildTables(ledger, analytics, g.currency),
	}
}

func summarize(ledger []*domain.LedgerEntry) LedgerSummary {
	s := LedgerSummary{Entries: len(ledger)}
	for _, e := range ledger {
		if e.Day == "" {
			s.Undated++
			continue
		}
		s.Dated++
		if s.FirstDay == "" || e.Day < s.FirstDay {
			s.FirstDay = e.Day
		}
		if e.Day > s.LastDay {
			s.LastDay = e.Day
		}
	}
	return s
}

// WriteArtifacts writes the chart series, worst days, rolling metrics,
// headline stats and the Markdown and HTML reports into dir, creating it if needed.
// Returns the written paths in a fixed order.
func WriteArtifacts(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	stats, err := json.MarshalIndent(r.Risk.Stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}
	html, err := RenderHTML(r)
	if err != nil {
		return nil, err
	}

	artifacts := []struct {
		name    string
		content []byte
	}{
		{EquityCurveFile, []byte(RenderCSV(EquityTable(r.Risk)))},
		{UnderwaterFile, []byte(RenderCSV(DrawdownTable(r.Risk)))},
		{WorstDaysFile, []byte(RenderCSV(WorstDaysTable(r.Risk)))},
		{RollingFile, []byte(RenderCSV(RollingTable(r.Risk, r.Windows)))},
		{StatsFile, append(stats, '\n')},
		{MarkdownFile, []byte(RenderMarkdown(r))},
		{HTMLFile, html},
	}

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(dir, a.name)
		if err := os.WriteFile(path, a.content, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", a.name, err)
		}
		observability.RecordReportWritten()
		paths = append(paths, path)
	}
	return paths, nil
}
