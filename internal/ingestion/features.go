package ingestion

import (
	"fmt"

	"bet-ledger-lab/internal/domain"
)

// AddFeatures attaches calendar buckets and the running profit/loss total to
// each entry and numbers it, in the order given. Entries without a settlement time keep empty
// buckets but still carry the cumulative value. Absent profit/loss adds zero.
func AddFeatures(entries []*domain.LedgerEntry) {
	cumulative := 0.0
	for i, e := range entries {
		e.Seq = i + 1
		cumulative += e.PL()
		e.Cumulative = cumulative

		if e.SettledAt == nil {
			e.Day, e.Week, e.Month = "", "", ""
			continue
		}
		t := *e.SettledAt
		e.Day = t.Format("2006-01-02")
		e.Month = t.Format("2006-01")
		year, week := t.ISOWeek()
		e.Week = fmt.Sprintf("%04d-W%02d", year, week)
	}
}

// Rollup sums profit/loss per bucket label, keeping first-seen label order.
// Entries are expected in ledger order, so dated buckets come out ascending and
// the undated bucket (empty label) last.
func Rollup(entries []*domain.LedgerEntry, label func(*domain.LedgerEntry) string) []domain.Bucket {
	index := make(map[string]int)
	var buckets []domain.Bucket

	for _, e := range entries {
		l := label(e)
		i, ok := index[l]
		if !ok {
			i = len(buckets)
			index[l] = i
			buckets = append(buckets, domain.Bucket{Label: l})
		}
		buckets[i].ProfitLoss += e.PL()
		buckets[i].Bets++
	}
	return buckets
}

// ByDay labels an entry with its calendar day.
func ByDay(e *domain.LedgerEntry) string { return e.Day }

// ByMonth labels an entry with its calendar month.
func ByMonth(e *domain.LedgerEntry) string { return e.Month }
