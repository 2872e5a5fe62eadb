package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/storage"
)

// LedgerStore implements storage.LedgerStore using ClickHouse.
type LedgerStore struct {
	conn *Conn
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(conn *Conn) *LedgerStore {
	return &LedgerStore{conn: conn}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

const selectLedger = `
	SELECT dedupe_key, seq, settled_at, placed_at, profit_loss, stake, odds,
	       bet_id, bet_type, market, selection, event, sport, country, track,
	       source_file, day, week, month, cumulative, extra
	FROM bet_ledger
`

// InsertBulk adds entries. Fails entire batch on duplicate dedupe_key.
// MergeTree does not enforce keys, so duplicates are checked before sending.
func (s *LedgerStore) InsertBulk(ctx context.Context, entries []*domain.LedgerEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { observe("ledger_insert_bulk", start, err) }()

	existing, err := s.keys(ctx)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e == nil || e.DedupeKey == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := existing[e.DedupeKey]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := seen[e.DedupeKey]; exists {
			return storage.ErrDuplicateKey
		}
		seen[e.DedupeKey] = struct{}{}
	}

	return s.send(ctx, entries)
}

// ReplaceAll truncates the table and inserts entries. The two steps are not
// atomic: a failed send leaves the table empty.
func (s *LedgerStore) ReplaceAll(ctx context.Context, entries []*domain.LedgerEntry) (err error) {
	start := time.Now()
	defer func() { observe("ledger_replace_all", start, err) }()

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e == nil || e.DedupeKey == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[e.DedupeKey]; exists {
			return storage.ErrDuplicateKey
		}
		seen[e.DedupeKey] = struct{}{}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE IF EXISTS bet_ledger`); err != nil {
		return fmt.Errorf("truncate ledger: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	return s.send(ctx, entries)
}

func (s *LedgerStore) send(ctx context.Context, entries []*domain.LedgerEntry) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO bet_ledger (
			dedupe_key, seq, settled_at, placed_at, profit_loss, stake, odds,
			bet_id, bet_type, market, selection, event, sport, country, track,
			source_file, day, week, month, cumulative, extra
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range entries {
		extra := ""
		if len(e.Extra) > 0 {
			b, err := json.Marshal(e.Extra)
			if err != nil {
				return fmt.Errorf("encode extra: %w", err)
			}
			extra = string(b)
		}

		err = batch.Append(
			e.DedupeKey, uint32(e.Seq), utcPtr(e.SettledAt), utcPtr(e.PlacedAt), e.ProfitLoss, e.Stake, e.Odds,
			e.BetID, e.BetType, e.Market, e.Selection, e.Event, e.Sport, e.Country, e.Track,
			e.SourceFile, e.Day, e.Week, e.Month, e.Cumulative, extra,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAll retrieves the full ledger ordered by seq ASC.
func (s *LedgerStore) GetAll(ctx context.Context) (entries []*domain.LedgerEntry, err error) {
	start := time.Now()
	defer func() { observe("ledger_get_all", start, err) }()

	rows, err := s.conn.Query(ctx, selectLedger+` ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	return scanLedger(rows)
}

// GetByDayRange retrieves entries settled within [fromDay, toDay] (inclusive).
func (s *LedgerStore) GetByDayRange(ctx context.Context, fromDay, toDay string) ([]*domain.LedgerEntry, error) {
	rows, err := s.conn.Query(ctx, selectLedger+`
		WHERE day != '' AND day >= ? AND day <= ?
		ORDER BY seq ASC
	`, fromDay, toDay)
	if err != nil {
		return nil, fmt.Errorf("query ledger by day range: %w", err)
	}
	defer rows.Close()

	return scanLedger(rows)
}

// Count returns the number of stored entries.
func (s *LedgerStore) Count(ctx context.Context) (int, error) {
	var n uint64
	if err := s.conn.QueryRow(ctx, `SELECT count() FROM bet_ledger`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger: %w", err)
	}
	return int(n), nil
}

// keys loads every stored dedupe key.
func (s *LedgerStore) keys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.conn.Query(ctx, `SELECT dedupe_key FROM bet_ledger`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

// scanLedger scans multiple rows into ledger entries.
func scanLedger(rows chRows) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry

	for rows.Next() {
		var e domain.LedgerEntry
		var seq uint32
		var extra string

		err := rows.Scan(
			&e.DedupeKey, &seq, &e.SettledAt, &e.PlacedAt, &e.ProfitLoss, &e.Stake, &e.Odds,
			&e.BetID, &e.BetType, &e.Market, &e.Selection, &e.Event, &e.Sport, &e.Country, &e.Track,
			&e.SourceFile, &e.Day, &e.Week, &e.Month, &e.Cumulative, &extra,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}

		e.Seq = int(seq)
		if extra != "" {
			if err := json.Unmarshal([]byte(extra), &e.Extra); err != nil {
				return nil, fmt.Errorf("decode extra for %s: %w", e.DedupeKey, err)
			}
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}

	return entries, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
