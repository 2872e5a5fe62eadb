package ingestion

import (
	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/idhash"
)

// DedupeKey returns the identity of a bet. With byID the explicit bet id is
// used; otherwise a content hash of (market, selection, settled_at, stake,
// profit_loss). The two key spaces are prefixed so an id can never collide
// with a hash.
func DedupeKey(r *domain.BetRecord, byID bool) string {
	if byID {
		return "id:" + r.BetID
	}
	return "h:" + idhash.ComputeBetKey(r.Market, r.Selection, r.SettledAt, r.Stake, r.ProfitLoss)
}

// KeyedByID reports whether every record carries a bet id.
// An empty batch is not keyed by id.
func KeyedByID(records []*domain.BetRecord) bool {
	if len(records) == 0 {
		return false
	}
	for _, r := range records {
		if r.BetID == "" {
			return false
		}
	}
	return true
}

// Deduplicate keeps the first record for each dedupe key in the given order
// and drops every later one. The key kind is chosen once for the batch: ids
// only when every record has one, content hashes for all records otherwise.
// Records must already be in ledger order so the earliest-settled copy of a
// bet is the one retained.
// Returns the retained records with their keys, and the number removed.
func Deduplicate(records []*domain.BetRecord) ([]*domain.LedgerEntry, int) {
	byID := KeyedByID(records)
	seen := make(map[string]struct{}, len(records))
	kept := make([]*domain.LedgerEntry, 0, len(records))

	for _, r := range records {
		key := DedupeKey(r, byID)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, &domain.LedgerEntry{BetRecord: *r, DedupeKey: key})
	}

	return kept, len(records) - len(kept)
}
