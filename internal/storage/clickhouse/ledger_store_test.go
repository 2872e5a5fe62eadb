package clickhouse

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
	e.Sport = "Horse Racing"
	if day != "" {
		settled, _ := time.Parse("2006-01-02", day)
		e.SettledAt = ptr(settled.Add(9*time.Hour + 123*time.Millisecond))
	}
	return e
}

func TestLedgerStore_InsertBulkAndGetAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(conn)

	first := testEntry(1, "id:1", "2025-04-01", 12.5)
	first.Extra = map[string]string{"Comment": "each way"}

	require.NoError(t, store.InsertBulk(ctx, []*domain.LedgerEntry{
		testEntry(3, "h:abc", "", -1),
		testEntry(2, "id:2", "2025-04-02", -3),
		first,
	}))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "id:1", got[0].DedupeKey)
	require.NotNil(t, got[0].SettledAt)
	assert.True(t, first.SettledAt.Equal(*got[0].SettledAt))
	assert.Equal(t, 12.5, *got[0].ProfitLoss)
	assert.Nil(t, got[0].Stake)
	assert.Equal(t, first.Extra, got[0].Extra)
	assert.Nil(t, got[2].SettledAt)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLedgerStore_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.LedgerEntry{testEntry(1, "id:1", "2025-04-01", 1)}))

	err := store.InsertBulk(ctx, []*domain.LedgerEntry{testEntry(2, "id:1", "2025-04-02", 1)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	err = store.InsertBulk(ctx, []*domain.LedgerEntry{
		testEntry(2, "id:2", "2025-04-02", 1),
		testEntry(3, "id:2", "2025-04-02", 1),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLedgerStore_ReplaceAllAndRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(conn)

	require.NoError(t, store.InsertBulk(ctx, []*domain.LedgerEntry{testEntry(1, "id:old", "2025-01-01", 1)}))
	require.NoError(t, store.ReplaceAll(ctx, []*domain.LedgerEntry{
		testEntry(1, "id:1", "2025-04-01", 1),
		testEntry(2, "id:2", "2025-04-05", 2),
		testEntry(3, "id:3", "", 3),
	}))

	got, err := store.GetByDayRange(ctx, "2025-04-02", "2025-04-30")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id:2", got[0].DedupeKey)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
