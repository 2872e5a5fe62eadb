package reporting

import (
	"fmt"
	"sort"
	"time"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/risk"
)

// Summary table names.
const (
	TableByDay     = "By Day"
	TableByWeek    = "By Week"
	TableByMonth   = "By Month"
	TableKPIs      = "KPIs"
	TableBySport   = "By Sport"
	TableByCountry = "By Country"
	TableByTrack   = "By Track"
)

// Table is a named grid of typed cells. Cells are string, int, float64,
// time.Time (a calendar day) or nil (absent).
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// BuildTables derives the summary tables from a ledger and its analytics.
// Slice tables are included only when at least one entry carries the column.
func BuildTables(ledger []*domain.LedgerEntry, r *risk.Report, currency string) []*Table {
	tables := []*Table{
		byDayTable(r),
		byWeekTable(r.Daily),
		byMonthTable(r.Daily),
		kpiTable(r.Stats, currency),
	}

	slices := []struct {
		name   string
		column string
		field  func(*domain.LedgerEntry) string
	}{
		{TableBySport, "Sport", func(e *domain.LedgerEntry) string { return e.Sport }},
		{TableByCountry, "Country", func(e *domain.LedgerEntry) string { return e.Country }},
		{TableByTrack, "Track", func(e *domain.LedgerEntry) string { return e.Track }},
	}
	for _, s := range slices {
		if t := groupTable(s.name, s.column, ledger, s.field); t != nil {
			tables = append(tables, t)
		}
	}

	return tables
}

func byDayTable(r *risk.Report) *Table {
	t := &Table{Name: TableByDay, Columns: []string{"Date", "Daily P/L", "Cumulative P/L"}}
	for i, p := range r.Daily {
		t.Rows = append(t.Rows, []any{p.Day, p.ProfitLoss, r.Equity[i].Equity})
	}
	return t
}

// weekEnding returns the Sunday closing the week that contains day.
func weekEnding(day time.Time) time.Time {
	return day.AddDate(0, 0, (7-int(day.Weekday()))%7)
}

func byWeekTable(daily []domain.DailyPoint) *Table {
	t := &Table{Name: TableByWeek, Columns: []string{"Week (ends Sun)", "Weekly P/L"}}
	if len(daily) == 0 {
		return t
	}

	sums := make(map[time.Time]float64)
	for _, p := range daily {
		sums[weekEnding(p.Day)] += p.ProfitLoss
	}

	last := weekEnding(daily[len(daily)-1].Day)
	for w := weekEnding(daily[0].Day); !w.After(last); w = w.AddDate(0, 0, 7) {
		t.Rows = append(t.Rows, []any{w, sums[w]})
	}
	return t
}

func byMonthTable(daily []domain.DailyPoint) *Table {
	t := &Table{Name: TableByMonth, Columns: []string{"Month", "Monthly P/L"}}
	if len(daily) == 0 {
		return t
	}

	monthStart := func(d time.Time) time.Time {
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	sums := make(map[time.Time]float64)
	for _, p := range daily {
		sums[monthStart(p.Day)] += p.ProfitLoss
	}

	last := monthStart(daily[len(daily)-1].Day)
	for m := monthStart(daily[0].Day); !m.After(last); m = m.AddDate(0, 1, 0) {
		t.Rows = append(t.Rows, []any{m.Format("2006-01"), sums[m]})
	}
	return t
}

func kpiTable(s domain.RiskStats, currency string) *Table {
	return &Table{
		Name:    TableKPIs,
		Columns: []string{"Metric", "Value"},
		Rows: [][]any{
			{fmt.Sprintf("Total P/L (%s)", currency), s.TotalPL},
			{"Days", s.Days},
			{fmt.Sprintf("Average daily (%s)", currency), s.MeanDaily},
			{fmt.Sprintf("Median daily (%s)", currency), s.MedianDaily},
			{"Strike rate", s.StrikeRate},
			{fmt.Sprintf("Max drawdown (%s)", currency), s.MaxDrawdown},
			{"Max drawdown (%)", s.MaxDrawdownPct},
			{"Longest losing streak (days)", s.LongestLosingStreak},
			{"Longest winning streak (days)", s.LongestWinningStreak},
		},
	}
}

// groupTable sums profit/loss per non-empty value of field, largest total first.
// Returns nil when no entry has a value.
func groupTable(name, column string, ledger []*domain.LedgerEntry, field func(*domain.LedgerEntry) string) *Table {
	totals := make(map[string]float64)
	for _, e := range ledger {
		if v := field(e); v != "" {
			totals[v] += e.PL()
		}
	}
	if len(totals) == 0 {
		return nil
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if totals[keys[i]] != totals[keys[j]] {
			return totals[keys[i]] > totals[keys[j]]
		}
		return keys[i] < keys[j]
	})

	t := &Table{Name: name, Columns: []string{column, "Total P/L"}}
	for _, k := range keys {
		t.Rows = append(t.Rows, []any{k, totals[k]})
	}
	return t
}

// EquityTable is the equity curve chart series.
func EquityTable(r *risk.Report) *Table {
	t := &Table{Name: "equity_curve", Columns: []string{"day", "equity"}}
	for _, p := range r.Equity {
		t.Rows = append(t.Rows, []any{p.Day, p.Equity})
	}
	return t
}

// DrawdownTable is the underwater chart series.
func DrawdownTable(r *risk.Report) *Table {
	t := &Table{Name: "underwater_drawdown", Columns: []string{"day", "equity", "roll_max", "drawdown", "drawdown_pct"}}
	for _, p := range r.Drawdown {
		t.Rows = append(t.Rows, []any{p.Day, p.Equity, p.Peak, p.Drawdown, p.Fraction})
	}
	return t
}

// WorstDaysTable lists the lowest daily totals, ascending.
func WorstDaysTable(r *risk.Report) *Table {
	t := &Table{Name: "worst_days", Columns: []string{"day", "daily_pl"}}
	for _, p := range r.WorstDays {
		t.Rows = append(t.Rows, []any{p.Day, p.ProfitLoss})
	}
	return t
}

// RollingTable lists rolling metrics per day. Column names carry the window lengths.
func RollingTable(r *risk.Report, cfg risk.Config) *Table {
	m := cfg.Medium.Length
	t := &Table{
		Name: "rolling_metrics",
		Columns: []string{
			"day", "daily_pl", "equity", "win",
			fmt.Sprintf("rolling_sum_%d", cfg.Short.Length),
			fmt.Sprintf("rolling_sum_%d", m),
			fmt.Sprintf("rolling_sum_%d", cfg.Long.Length),
			fmt.Sprintf("rolling_mean_%d", m),
			fmt.Sprintf("rolling_std_%d", m),
			fmt.Sprintf("rolling_sr_%d", m),
			fmt.Sprintf("rolling_sharpe_%d", m),
		},
	}
	for _, p := range r.Rolling {
		win := 0
		if p.Win {
			win = 1
		}
		t.Rows = append(t.Rows, []any{
			p.Day, p.ProfitLoss, p.Equity, win,
			optional(p.SumShort), optional(p.SumMedium), optional(p.SumLong),
			optional(p.MeanMedium), optional(p.StdMedium), optional(p.StrikeRate), optional(p.RatioMedium),
		})
	}
	return t
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
