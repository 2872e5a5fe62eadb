package ingestion

import (
	"errors"
	"sort"
	"time"

	"bet-ledger-lab/internal/domain"
)

// ErrInvalidOrdering is returned when records are not in ledger order.
var ErrInvalidOrdering = errors.New("records are not in settlement order")

// SortRecords stably orders records by (settled_at ASC, placed_at ASC).
// Absent timestamps sort last; full ties keep their input order.
func SortRecords(records []*domain.BetRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return compareRecords(records[i], records[j]) < 0
	})
}

// ValidateRecordOrdering checks that records are in ledger order.
// Returns ErrInvalidOrdering if not.
func ValidateRecordOrdering(records []*domain.BetRecord) error {
	for i := 1; i < len(records); i++ {
		if compareRecords(records[i-1], records[i]) > 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareRecords returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (settled_at ASC nulls last, placed_at ASC nulls last)
func compareRecords(a, b *domain.BetRecord) int {
	if c := compareOptionalTime(a.SettledAt, b.SettledAt); c != 0 {
		return c
	}
	return compareOptionalTime(a.PlacedAt, b.PlacedAt)
}

func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
