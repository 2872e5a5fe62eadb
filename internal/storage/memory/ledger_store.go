package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/storage"
)

// LedgerStore is an in-memory implementation of storage.LedgerStore.
type LedgerStore struct {
	mu   sync.RWMutex
	data map[string]*domain.LedgerEntry // keyed by dedupe_key
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		data: make(map[string]*domain.LedgerEntry),
	}
}

// InsertBulk adds multiple entries atomically. Fails entire batch on any duplicate.
func (s *LedgerStore) InsertBulk(_ context.Context, entries []*domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateBatch(entries, s.data); err != nil {
		return err
	}
	for _, e := range entries {
		s.data[e.DedupeKey] = cloneEntry(e)
	}
	return nil
}

// ReplaceAll discards all entries and stores the given batch.
func (s *LedgerStore) ReplaceAll(_ context.Context, entries []*domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateBatch(entries, nil); err != nil {
		return err
	}
	data := make(map[string]*domain.LedgerEntry, len(entries))
	for _, e := range entries {
		data[e.DedupeKey] = cloneEntry(e)
	}
	s.data = data
	return nil
}

// validateBatch checks entries against each other and against existing keys.
func validateBatch(entries []*domain.LedgerEntry, existing map[string]*domain.LedgerEntry) error {
	batchKeys := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e == nil || e.DedupeKey == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := existing[e.DedupeKey]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[e.DedupeKey]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[e.DedupeKey] = struct{}{}
	}
	return nil
}

// GetAll retrieves the full ledger ordered by seq ASC.
func (s *LedgerStore) GetAll(_ context.Context) ([]*domain.LedgerEntry, error) {
	return s.filter(func(*domain.LedgerEntry) bool { return true }), nil
}

// GetByDayRange retrieves entries settled within [fromDay, toDay] (inclusive).
func (s *LedgerStore) GetByDayRange(_ context.Context, fromDay, toDay string) ([]*domain.LedgerEntry, error) {
	return s.filter(func(e *domain.LedgerEntry) bool {
		return e.Day != "" && e.Day >= fromDay && e.Day <= toDay
	}), nil
}

// Count returns the number of stored entries.
func (s *LedgerStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

func (s *LedgerStore) filter(keep func(*domain.LedgerEntry) bool) []*domain.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LedgerEntry
	for _, e := range s.data {
		if keep(e) {
			result = append(result, cloneEntry(e))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})

	return result
}

func cloneEntry(e *domain.LedgerEntry) *domain.LedgerEntry {
	entryCopy := *e
	if e.Extra != nil {
		entryCopy.Extra = maps.Clone(e.Extra)
	}
	return &entryCopy
}

var _ storage.LedgerStore = (*LedgerStore)(nil)
