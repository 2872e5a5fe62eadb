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

func testEntry(seq int, key, day string, pl float64) *domain.LedgerEntry {
	e := &domain.LedgerEntry{Seq: seq, DedupeKey: key, Day: day, Cumulative: pl}
	e.ProfitLoss = ptr(pl)
	e.Market = "Win"
	if day != "" {
		settled, _ := time.Parse("2006-01-02", day)
		e.SettledAt = ptr(settled.Add(13*time.Hour + 5*time.Minute))
		e.Month = day[:7]
	}
	return e
}

func TestLedgerStore_InsertBulkAndGetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	first := testEntry(1, "id:1", "2025-04-01", 12.5)
	first.Stake = ptr(10.0)
	first.Extra = map[string]string{"Comment": "each way"}
	undated := testEntry(3, "h:abc", "", -1)

	require.NoError(t, store.InsertBulk(ctx, []*domain.LedgerEntry{
		undated,
		testEntry(2, "id:2", "2025-04-02", -3),
		first,
	}))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "id:1", got[0].DedupeKey)
	assert.True(t, first.SettledAt.Equal(*got[0].SettledAt))
	assert.Equal(t, 12.5, *got[0].ProfitLoss)
	assert.Equal(t, 10.0, *got[0].Stake)
	assert.Nil(t, got[0].Odds)
	assert.Equal(t, map[string]string{"Comment": "each way"}, got[0].Extra)
	assert.Equal(t, "2025-04", got[0].Month)

	assert.Equal(t, "h:abc", got[2].DedupeKey)
	assert.Nil(t, got[2].SettledAt)
	assert.Nil(t, got[2].Extra)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLedgerStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []*domain.LedgerEntry{testEntry(1, "id:1", "2025-04-01", 1)}))

	err := store.InsertBulk(ctx, []*domain.LedgerEntry{
		testEntry(2, "id:2", "2025-04-02", 1),
		testEntry(3, "id:1", "2025-04-03", 1),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "COPY is all-or-nothing")

	err = store.InsertBulk(ctx, []*domain.LedgerEntry{testEntry(4, "", "", 1)})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestLedgerStore_ReplaceAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []*domain.LedgerEntry{testEntry(1, "id:old", "2025-01-01", 1)}))
	require.NoError(t, store.ReplaceAll(ctx, []*domain.LedgerEntry{
		testEntry(1, "id:a", "2025-02-01", 2),
		testEntry(2, "id:old", "2025-02-02", 3),
	}))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "id:a", got[0].DedupeKey)
	assert.Equal(t, "2025-02-02", got[1].Day)

	err = store.ReplaceAll(ctx, []*domain.LedgerEntry{testEntry(1, "id:x", "", 1), testEntry(2, "id:x", "", 1)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "failed replace rolls back")
}

func TestLedgerStore_GetByDayRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []*domain.LedgerEntry{
		testEntry(1, "id:1", "2025-04-01", 1),
		testEntry(2, "id:2", "2025-04-02", 2),
		testEntry(3, "id:3", "2025-04-09", 3),
		testEntry(4, "id:4", "", 4),
	}))

	got, err := store.GetByDayRange(ctx, "2025-04-02", "2025-04-30")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "id:2", got[0].DedupeKey)
	assert.Equal(t, "id:3", got[1].DedupeKey)
}
