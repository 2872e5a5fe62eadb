package domain

// LedgerEntry is a deduplicated BetRecord with derived calendar features.
// Day, Week and Month are empty when SettledAt is absent.
type LedgerEntry struct {
	BetRecord

	Seq        int // 1-based position in ledger order
	DedupeKey  string
	Day        string  // YYYY-MM-DD
	Week       string  // ISO week, YYYY-Www
	Month      string  // YYYY-MM
	Cumulative float64 // running profit/loss in ledger order
}

// Bucket is one row of a day or month rollup.
// Label is empty for records without a settlement time.
type Bucket struct {
	Label      string
	ProfitLoss float64
	Bets       int
}
