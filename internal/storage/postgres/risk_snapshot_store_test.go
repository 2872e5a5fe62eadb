package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/storage"
)

func TestRiskSnapshotStore_InsertAndGetLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRiskSnapshotStore(pool)

	_, err := store.GetLatest(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	older := &domain.RiskSnapshot{
		RunID:     "run-1",
		CreatedAt: base,
		FirstDay:  "2025-01-01",
		LastDay:   "2025-04-30",
		Stats: domain.RiskStats{
			TotalPL:              123.45,
			Days:                 80,
			MeanDaily:            1.54,
			MedianDaily:          -0.5,
			StrikeRate:           0.45,
			MaxDrawdown:          -60,
			MaxDrawdownPct:       -0.4,
			LongestLosingStreak:  6,
			LongestWinningStreak: 4,
		},
	}
	newer := &domain.RiskSnapshot{RunID: "run-2", CreatedAt: base.Add(24 * time.Hour)}

	require.NoError(t, store.Insert(ctx, older))
	require.NoError(t, store.Insert(ctx, newer))

	latest, err := store.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.RunID)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, older.Stats, all[0].Stats)
	assert.Equal(t, "2025-04-30", all[0].LastDay)
	assert.True(t, all[0].CreatedAt.Equal(base))

	assert.ErrorIs(t, store.Insert(ctx, older), storage.ErrDuplicateKey)
	assert.ErrorIs(t, store.Insert(ctx, &domain.RiskSnapshot{}), storage.ErrInvalidInput)
}
