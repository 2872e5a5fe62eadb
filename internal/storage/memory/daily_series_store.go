package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/storage"
)

// DailySeriesStore is an in-memory implementation of storage.DailySeriesStore.
type DailySeriesStore struct {
	mu   sync.RWMutex
	data map[int64]domain.DailyPoint // keyed by day unix seconds
}

// NewDailySeriesStore creates a new in-memory daily series store.
func NewDailySeriesStore() *DailySeriesStore {
	return &DailySeriesStore{
		data: make(map[int64]domain.DailyPoint),
	}
}

// InsertBulk adds multiple points. Fails entire batch on duplicate.
func (s *DailySeriesStore) InsertBulk(_ context.Context, points []domain.DailyPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[int64]struct{}, len(points))
	for _, p := range points {
		if p.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		key := p.Day.Unix()
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		s.data[p.Day.Unix()] = p
	}
	return nil
}

// GetByDayRange retrieves points within [from, to] (inclusive), ordered by day ASC.
func (s *DailySeriesStore) GetByDayRange(_ context.Context, from, to time.Time) ([]domain.DailyPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.DailyPoint
	for _, p := range s.data {
		if !p.Day.Before(from) && !p.Day.After(to) {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day.Before(result[j].Day)
	})

	return result, nil
}

var _ storage.DailySeriesStore = (*DailySeriesStore)(nil)
