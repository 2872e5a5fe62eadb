package storage

import (
	"context"
	"time"

	"bet-ledger-lab/internal/domain"
)

// LedgerStore provides access to bet_ledger storage.
type LedgerStore interface {
	// InsertBulk adds entries atomically. Fails entire batch if any dedupe_key exists.
	InsertBulk(ctx context.Context, entries []*domain.LedgerEntry) error

	// ReplaceAll discards the stored ledger and writes entries in its place.
	ReplaceAll(ctx context.Context, entries []*domain.LedgerEntry) error

	// GetAll retrieves the full ledger ordered by seq ASC.
	GetAll(ctx context.Context) ([]*domain.LedgerEntry, error)

	// GetByDayRange retrieves entries settled within [fromDay, toDay] (inclusive, YYYY-MM-DD).
	GetByDayRange(ctx context.Context, fromDay, toDay string) ([]*domain.LedgerEntry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
}

// DailySeriesStore provides access to daily_pnl storage.
type DailySeriesStore interface {
	// InsertBulk adds points atomically. Fails entire batch if any day exists.
	InsertBulk(ctx context.Context, points []domain.DailyPoint) error

	// GetByDayRange retrieves points within [from, to] (inclusive), ordered by day ASC.
	GetByDayRange(ctx context.Context, from, to time.Time) ([]domain.DailyPoint, error)
}

// RiskSnapshotStore provides access to risk_snapshots storage.
type RiskSnapshotStore interface {
	// Insert adds a snapshot. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, s *domain.RiskSnapshot) error

	// GetLatest retrieves the most recent snapshot. Returns ErrNotFound if none exist.
	GetLatest(ctx context.Context) (*domain.RiskSnapshot, error)

	// GetAll retrieves all snapshots ordered by created_at ASC.
	GetAll(ctx context.Context) ([]*domain.RiskSnapshot, error)
}
