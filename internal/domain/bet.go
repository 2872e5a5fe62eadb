package domain

import "time"

// RawRow is one untyped line from an export file.
// Headers and Values are index-aligned; headers may repeat, vary in case, or use synonyms.
type RawRow struct {
	Headers    []string
	Values     []string
	SourceFile string // provenance (file name, not path)
	Line       int    // 1-based data line within SourceFile
}

// BetRecord is the typed, ledger-ready representation of one settled bet.
// Nil pointer fields mean the value was absent or failed to parse.
type BetRecord struct {
	SettledAt  *time.Time // ordering key
	PlacedAt   *time.Time
	ProfitLoss *float64 // reporting currency
	Stake      *float64
	BetID      string
	BetType    string
	Market     string
	Selection  string
	Event      string
	Sport      string
	Country    string
	Track      string
	Odds       *float64
	SourceFile string

	// Extra holds non-canonical columns passed through unchanged.
	Extra map[string]string
}

// PL returns profit/loss, treating an absent value as zero.
func (b *BetRecord) PL() float64 {
	if b.ProfitLoss == nil {
		return 0
	}
	return *b.ProfitLoss
}

// Canonical field names.
const (
	FieldSettledAt  = "settled_at"
	FieldPlacedAt   = "placed_at"
	FieldProfitLoss = "profit_loss"
	FieldStake      = "stake"
	FieldBetID      = "bet_id"
	FieldBetType    = "bet_type"
	FieldMarket     = "market"
	FieldSelection  = "selection"
	FieldEvent      = "event"
	FieldSport      = "sport"
	FieldCountry    = "country"
	FieldTrack      = "track"
	FieldOdds       = "odds"
)
