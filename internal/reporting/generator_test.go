package reporting

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/risk"
	"bet-ledger-lab/internal/storage/memory"
)

var fixedTime = time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

// entryAt builds a settled ledger entry; an empty day leaves it undated.
func entryAt(seq int, day string, pl float64, sport string) *domain.LedgerEntry {
	e := &domain.LedgerEntry{Seq: seq, DedupeKey: "id:" + strings.Repeat("x", seq), Day: day}
	e.ProfitLoss = &pl
	e.Sport = sport
	if day != "" {
		settled, _ := time.Parse("2006-01-02", day)
		settled = settled.Add(14 * time.Hour)
		e.SettledAt = &settled
		e.Month = day[:7]
	}
	return e
}

func testLedger() []*domain.LedgerEntry {
	return []*domain.LedgerEntry{
		entryAt(1, "2025-06-27", 10, "Racing"), // Friday
		entryAt(2, "2025-06-28", -4, "Racing"),
		entryAt(3, "2025-06-28", -1, "Tennis"),
		entryAt(4, "2025-06-30", 7.5, ""), // Monday
		entryAt(5, "2025-08-03", -2, "Tennis"),
		entryAt(6, "", 100, "Racing"),
	}
}

func setupGenerator(t *testing.T) *Generator {
	t.Helper()
	store := memory.NewLedgerStore()
	require.NoError(t, store.InsertBulk(context.Background(), testLedger()))
	return NewGenerator(store, risk.NewEngine(risk.DefaultConfig()), "AUD").
		WithClock(func() time.Time { return fixedTime })
}

func TestGenerate_Deterministic(t *testing.T) {
	ctx := context.Background()

	var first *Report
	for run := 0; run < 3; run++ {
		report, err := setupGenerator(t).Generate(ctx)
		require.NoError(t, err)
		if first == nil {
			first = report
			continue
		}
		assert.Equal(t, first, report, "run %d", run)
	}

	assert.True(t, first.GeneratedAt.Equal(fixedTime))
	assert.Equal(t, LedgerSummary{Entries: 6, Dated: 5, Undated: 1, FirstDay: "2025-06-27", LastDay: "2025-08-03"}, first.Summary)
	assert.InDelta(t, 10.5, first.Risk.Stats.TotalPL, 1e-9, "undated entries are excluded from the daily series")
}

func TestBuildTables_ByDay(t *testing.T) {
	report := setupGenerator(t).Build(testLedger())

	byDay := report.Table(TableByDay)
	require.NotNil(t, byDay)
	assert.Equal(t, []string{"Date", "Daily P/L", "Cumulative P/L"}, byDay.Columns)
	require.Len(t, byDay.Rows, 4)
	assert.Equal(t, -5.0, byDay.Rows[1][1])
	assert.Equal(t, 5.0, byDay.Rows[1][2])
	assert.Equal(t, 10.5, byDay.Rows[3][2])
}

func TestBuildTables_ByWeekFillsGaps(t *testing.T) {
	report := setupGenerator(t).Build(testLedger())

	byWeek := report.Table(TableByWeek)
	require.NotNil(t, byWeek)

	// Weeks ending 2025-06-29, 07-06, 07-13, 07-20, 07-27, 08-03.
	require.Len(t, byWeek.Rows, 6)
	assert.Equal(t, "2025-06-29", FormatCell(byWeek.Rows[0][0]))
	assert.Equal(t, 5.0, byWeek.Rows[0][1])
	assert.Equal(t, 7.5, byWeek.Rows[1][1])
	assert.Equal(t, 0.0, byWeek.Rows[2][1])
	assert.Equal(t, "2025-08-03", FormatCell(byWeek.Rows[5][0]), "a Sunday closes its own week")
	assert.Equal(t, -2.0, byWeek.Rows[5][1])
}

func TestBuildTables_ByMonthFillsGaps(t *testing.T) {
	report := setupGenerator(t).Build(testLedger())

	byMonth := report.Table(TableByMonth)
	require.NotNil(t, byMonth)
	assert.Equal(t, [][]any{
		{"2025-06", 12.5},
		{"2025-07", 0.0},
		{"2025-08", -2.0},
	}, byMonth.Rows)
}

func TestBuildTables_KPIs(t *testing.T) {
	report := setupGenerator(t).Build(testLedger())

	kpis := report.Table(TableKPIs)
	require.NotNil(t, kpis)
	require.Len(t, kpis.Rows, 9)
	assert.Equal(t, "Total P/L (AUD)", kpis.Rows[0][0])
	assert.Equal(t, 10.5, kpis.Rows[0][1])
	assert.Equal(t, "Days", kpis.Rows[1][0])
	assert.Equal(t, 4, kpis.Rows[1][1])
	assert.Equal(t, "Strike rate", kpis.Rows[4][0])
	assert.Equal(t, 0.5, kpis.Rows[4][1])
}

func TestBuildTables_OptionalSlices(t *testing.T) {
	report := setupGenerator(t).Build(testLedger())

	bySport := report.Table(TableBySport)
	require.NotNil(t, bySport)
	assert.Equal(t, []string{"Sport", "Total P/L"}, bySport.Columns)
	assert.Equal(t, [][]any{
		{"Racing", 106.0},
		{"Tennis", -3.0},
	}, bySport.Rows)

	assert.Nil(t, report.Table(TableByCountry))
	assert.Nil(t, report.Table(TableByTrack))
}

func TestBuildTables_EmptyLedger(t *testing.T) {
	report := setupGenerator(t).Build(nil)

	for _, name := range []string{TableByDay, TableByWeek, TableByMonth} {
		table := report.Table(name)
		require.NotNil(t, table, name)
		assert.Empty(t, table.Rows, name)
	}
	require.NotNil(t, report.Table(TableKPIs))
	assert.Contains(t, RenderMarkdown(report), "No settled days.")
}

func TestRenderCSV(t *testing.T) {
	table := &Table{
		Columns: []string{"Track", "Day", "P/L", "Count", "Rolling"},
		Rows: [][]any{
			{"Flemington, VIC", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), -1.25, 3, nil},
		},
	}

	want := "Track,Day,P/L,Count,Rolling\n\"Flemington, VIC\",2025-01-02,-1.25,3,\n"
	assert.Equal(t, want, RenderCSV(table))
}

func TestRollingTable_Columns(t *testing.T) {
	report := setupGenerator(t).Build(testLedger())
	table := RollingTable(report.Risk, report.Windows)

	assert.Equal(t, "rolling_sum_14", table.Columns[4])
	assert.Equal(t, "rolling_sharpe_28", table.Columns[10])
	require.Len(t, table.Rows, 4)
	assert.Nil(t, table.Rows[3][4], "fewer than five observations")
	assert.Equal(t, 1, table.Rows[0][3])
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(1234.5, "AUD"))
	assert.Equal(t, "-$3.00", FormatMoney(-3, "AUD"))
	assert.Equal(t, "12.50", FormatMoney(12.5, "NOPE"))
}

func TestRenderMarkdown_Format(t *testing.T) {
	report := setupGenerator(t).Build(testLedger())
	md := RenderMarkdown(report)

	for _, section := range []string{"# Risk Report", "## Ledger", "## Headline Stats", "## Rolling", "## Monthly P/L", "## Worst Days"} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "| Total P/L | $10.50 |")
	assert.Contains(t, md, "| 2025-06-28 | -$5.00 |")
	assert.Contains(t, md, "Generated: 2025-08-01T09:00:00Z")
}

func TestWriteArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "risk")
	report := setupGenerator(t).Build(testLedger())

	paths, err := WriteArtifacts(dir, report)
	require.NoError(t, err)
	require.Len(t, paths, 7)

	for _, name := range []string{EquityCurveFile, UnderwaterFile, WorstDaysFile, RollingFile, StatsFile, MarkdownFile, HTMLFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	raw, err := os.ReadFile(filepath.Join(dir, StatsFile))
	require.NoError(t, err)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 10.5, stats["total_pl"])
	assert.Equal(t, 4.0, stats["days"])
	assert.Contains(t, stats, "longest_losing_streak_days")

	equity, err := os.ReadFile(filepath.Join(dir, EquityCurveFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(equity)), "\n")
	assert.Equal(t, "day,equity", lines[0])
	assert.Equal(t, "2025-08-03,10.5", lines[len(lines)-1])
}

func TestRenderHTML(t *testing.T) {
	report := setupGenerator(t).Build(testLedger())

	html, err := RenderHTML(report)
	require.NoError(t, err)

	page := string(html)
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<h1>Risk Report</h1>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<td>2025-06-28</td>")
}
