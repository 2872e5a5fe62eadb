package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/storage"
)

// RiskSnapshotStore implements storage.RiskSnapshotStore using PostgreSQL.
type RiskSnapshotStore struct {
	pool *Pool
}

// NewRiskSnapshotStore creates a new RiskSnapshotStore.
func NewRiskSnapshotStore(pool *Pool) *RiskSnapshotStore {
	return &RiskSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RiskSnapshotStore = (*RiskSnapshotStore)(nil)

const selectSnapshot = `
	SELECT run_id, created_at, first_day, last_day,
	       total_pl, days, avg_daily, median_daily, strike_rate,
	       max_drawdown, max_drawdown_pct, longest_losing_streak, longest_winning_streak
	FROM risk_snapshots
`

// Insert adds a new snapshot. Returns ErrDuplicateKey if run_id exists.
func (s *RiskSnapshotStore) Insert(ctx context.Context, snap *domain.RiskSnapshot) error {
	if snap == nil || snap.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO risk_snapshots (
			run_id, created_at, first_day, last_day,
			total_pl, days, avg_daily, median_daily, strike_rate,
			max_drawdown, max_drawdown_pct, longest_losing_streak, longest_winning_streak
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	st := snap.Stats
	_, err := s.pool.Exec(ctx, query,
		snap.RunID,
		snap.CreatedAt,
		snap.FirstDay,
		snap.LastDay,
		st.TotalPL,
		st.Days,
		st.MeanDaily,
		st.MedianDaily,
		st.StrikeRate,
		st.MaxDrawdown,
		st.MaxDrawdownPct,
		st.LongestLosingStreak,
		st.LongestWinningStreak,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert risk snapshot: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot. Returns ErrNotFound if none exist.
func (s *RiskSnapshotStore) GetLatest(ctx context.Context) (*domain.RiskSnapshot, error) {
	row := s.pool.QueryRow(ctx, selectSnapshot+` ORDER BY created_at DESC, run_id DESC LIMIT 1`)

	snap, err := scanSnapshot(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest risk snapshot: %w", err)
	}
	return snap, nil
}

// GetAll retrieves all snapshots ordered by created_at ASC.
func (s *RiskSnapshotStore) GetAll(ctx context.Context) ([]*domain.RiskSnapshot, error) {
	rows, err := s.pool.Query(ctx, selectSnapshot+` ORDER BY created_at ASC, run_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("get risk snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.RiskSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan risk snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk snapshots: %w", err)
	}
	return snaps, nil
}

// scanSnapshot scans a single row into a RiskSnapshot.
func scanSnapshot(row pgx.Row) (*domain.RiskSnapshot, error) {
	var snap domain.RiskSnapshot
	st := &snap.Stats

	err := row.Scan(
		&snap.RunID, &snap.CreatedAt, &snap.FirstDay, &snap.LastDay,
		&st.TotalPL, &st.Days, &st.MeanDaily, &st.MedianDaily, &st.StrikeRate,
		&st.MaxDrawdown, &st.MaxDrawdownPct, &st.LongestLosingStreak, &st.LongestWinningStreak,
	)
	if err != nil {
		return nil, err
	}
	snap.CreatedAt = snap.CreatedAt.UTC()
	return &snap, nil
}
