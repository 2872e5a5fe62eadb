package risk

import (
	"time"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/observability"
)

// Report bundles every derived series for one ledger.
// All fields are recomputed from the ledger on each Analyze call.
type Report struct {
	Daily     []domain.DailyPoint
	Equity    []domain.EquityPoint
	Drawdown  []domain.DrawdownPoint
	Rolling   []domain.RollingPoint
	WorstDays []domain.DailyPoint
	Stats     domain.RiskStats
}

// Engine computes risk analytics with a fixed configuration.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Analyze derives the daily series and all analytics from a ledger.
// It never fails; degenerate ledgers yield zero-valued results.
func (e *Engine) Analyze(ledger []*domain.LedgerEntry) *Report {
	start := time.Now()
	report := e.AnalyzeDaily(AggregateDaily(ledger))
	observability.RecordRiskRun(len(report.Daily), time.Since(start).Seconds())
	return report
}

// AnalyzeDaily computes analytics from an already aggregated daily series.
func (e *Engine) AnalyzeDaily(daily []domain.DailyPoint) *Report {
	equity := EquityCurve(daily)
	return &Report{
		Daily:     daily,
		Equity:    equity,
		Drawdown:  DrawdownFrame(equity),
		Rolling:   RollingMetrics(daily, e.cfg),
		WorstDays: WorstDays(daily, e.cfg.WorstDays),
		Stats:     HeadlineStats(daily),
	}
}
