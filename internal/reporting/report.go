package reporting

import (
	"time"

	"bet-ledger-lab/internal/risk"
)

// Report represents the risk report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Currency    string

	// Ledger Summary
	Summary LedgerSummary

	// Analytics over the daily series
	Risk    *risk.Report
	Windows risk.Config

	// Summary tables (By Day, By Week, By Month, KPIs, optional slices)
	Tables []*Table
}

// LedgerSummary describes the ledger the report was computed from.
type LedgerSummary struct {
	Entries  int
	Dated    int
	Undated  int
	FirstDay string // YYYY-MM-DD, empty when no entry is dated
	LastDay  string
}

// Table returns the summary table with the given name, or nil.
func (r *Report) Table(name string) *Table {
	for _, t := range r.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}
