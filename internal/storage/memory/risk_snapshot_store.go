package memory

import (
	"context"
	"sort"
	"sync"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/storage"
)

// RiskSnapshotStore is an in-memory implementation of storage.RiskSnapshotStore.
type RiskSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RiskSnapshot // keyed by run_id
}

// NewRiskSnapshotStore creates a new in-memory risk snapshot store.
func NewRiskSnapshotStore() *RiskSnapshotStore {
	return &RiskSnapshotStore{
		data: make(map[string]*domain.RiskSnapshot),
	}
}

// Insert adds a new snapshot. Returns ErrDuplicateKey if run_id exists.
func (s *RiskSnapshotStore) Insert(_ context.Context, snap *domain.RiskSnapshot) error {
	if snap == nil || snap.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[snap.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	snapCopy := *snap
	s.data[snap.RunID] = &snapCopy
	return nil
}

// GetLatest retrieves the most recent snapshot. Returns ErrNotFound if empty.
func (s *RiskSnapshotStore) GetLatest(ctx context.Context) (*domain.RiskSnapshot, error) {
	all, _ := s.GetAll(ctx)
	if len(all) == 0 {
		return nil, storage.ErrNotFound
	}
	return all[len(all)-1], nil
}

// GetAll retrieves all snapshots ordered by created_at ASC, then run_id.
func (s *RiskSnapshotStore) GetAll(_ context.Context) ([]*domain.RiskSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.RiskSnapshot, 0, len(s.data))
	for _, snap := range s.data {
		snapCopy := *snap
		result = append(result, &snapCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].RunID < result[j].RunID
	})

	return result, nil
}

var _ storage.RiskSnapshotStore = (*RiskSnapshotStore)(nil)
