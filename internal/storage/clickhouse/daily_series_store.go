package clickhouse

import (
	"context"
	"fmt"
	"time"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/storage"
)

// DailySeriesStore implements storage.DailySeriesStore using ClickHouse.
type DailySeriesStore struct {
	conn *Conn
}

// NewDailySeriesStore creates a new DailySeriesStore.
func NewDailySeriesStore(conn *Conn) *DailySeriesStore {
	return &DailySeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailySeriesStore = (*DailySeriesStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate day.
func (s *DailySeriesStore) InsertBulk(ctx context.Context, points []domain.DailyPoint) (err error) {
	if len(points) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { observe("daily_insert_bulk", start, err) }()

	// Check for intra-batch duplicates and find the batch range
	seen := make(map[string]struct{}, len(points))
	from, to := points[0].Day, points[0].Day
	for _, p := range points {
		if p.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		k := p.Day.Format("2006-01-02")
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		if p.Day.Before(from) {
			from = p.Day
		}
		if p.Day.After(to) {
			to = p.Day
		}
	}

	// Check for duplicates against existing rows
	existing, err := s.GetByDayRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	for _, p := range existing {
		if _, dup := seen[p.Day.Format("2006-01-02")]; dup {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO daily_pnl (day, profit_loss)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, p := range points {
		if err := batch.Append(p.Day.UTC(), p.ProfitLoss); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByDayRange retrieves points within [from, to] (inclusive), ordered by day ASC.
func (s *DailySeriesStore) GetByDayRange(ctx context.Context, from, to time.Time) ([]domain.DailyPoint, error) {
	query := `
		SELECT day, profit_loss
		FROM daily_pnl
		WHERE day >= toDate(?) AND day <= toDate(?)
		ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query daily series: %w", err)
	}
	defer rows.Close()

	var points []domain.DailyPoint
	for rows.Next() {
		var p domain.DailyPoint
		if err := rows.Scan(&p.Day, &p.ProfitLoss); err != nil {
			return nil, fmt.Errorf("scan daily row: %w", err)
		}
		p.Day = p.Day.UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily rows: %w", err)
	}
	return points, nil
}
