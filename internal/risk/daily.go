package risk

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bet-ledger-lab/internal/domain"
)

// AggregateDaily collapses a ledger into one profit/loss total per calendar day.
// Entries without a settlement time are dropped; absent profit/loss counts as zero.
// Totals are accumulated exactly and the result is day-ascending with unique days.
func AggregateDaily(ledger []*domain.LedgerEntry) []domain.DailyPoint {
	totals := make(map[time.Time]decimal.Decimal)
	for _, e := range ledger {
		if e.SettledAt == nil {
			continue
		}
		day := truncateDay(*e.SettledAt)
		totals[day] = totals[day].Add(decimal.NewFromFloat(e.PL()))
	}

	days := make([]time.Time, 0, len(totals))
	for d := range totals {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	series := make([]domain.DailyPoint, len(days))
	for i, d := range days {
		series[i] = domain.DailyPoint{Day: d, ProfitLoss: totals[d].InexactFloat64()}
	}
	return series
}

// truncateDay returns midnight UTC of the timestamp's wall-clock date.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
