package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL.
type LedgerStore struct {
	pool *Pool
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

var ledgerColumns = []string{
	"dedupe_key", "seq", "settled_at", "placed_at", "profit_loss", "stake", "odds",
	"bet_id", "bet_type", "market", "selection", "event", "sport", "country", "track",
	"source_file", "day", "week", "month", "cumulative", "extra",
}

const selectLedger = `
	SELECT dedupe_key, seq, settled_at, placed_at, profit_loss, stake, odds,
	       bet_id, bet_type, market, selection, event, sport, country, track,
	       source_file, day, week, month, cumulative, extra
	FROM bet_ledger
`

// InsertBulk adds entries atomically via COPY. Fails entire batch on any duplicate.
func (s *LedgerStore) InsertBulk(ctx context.Context, entries []*domain.LedgerEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { observe("ledger_insert_bulk", start, err) }()

	rows, err := ledgerRows(entries)
	if err != nil {
		return err
	}

	_, err = s.pool.CopyFrom(ctx, pgx.Identifier{"bet_ledger"}, ledgerColumns, pgx.CopyFromRows(rows))
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("copy ledger: %w", err)
	}
	return nil
}

// ReplaceAll deletes the stored ledger and copies entries in one transaction.
func (s *LedgerStore) ReplaceAll(ctx context.Context, entries []*domain.LedgerEntry) (err error) {
	start := time.Now()
	defer func() { observe("ledger_replace_all", start, err) }()

	rows, err := ledgerRows(entries)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM bet_ledger`); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"bet_ledger"}, ledgerColumns, pgx.CopyFromRows(rows)); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("copy ledger: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves the full ledger ordered by seq ASC.
func (s *LedgerStore) GetAll(ctx context.Context) (entries []*domain.LedgerEntry, err error) {
	start := time.Now()
	defer func() { observe("ledger_get_all", start, err) }()

	rows, err := s.pool.Query(ctx, selectLedger+` ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	defer rows.Close()

	return scanLedger(rows)
}

// GetByDayRange retrieves entries settled within [fromDay, toDay] (inclusive).
func (s *LedgerStore) GetByDayRange(ctx context.Context, fromDay, toDay string) (entries []*domain.LedgerEntry, err error) {
	start := time.Now()
	defer func() { observe("ledger_get_by_day_range", start, err) }()

	rows, err := s.pool.Query(ctx, selectLedger+`
		WHERE day <> '' AND day >= $1 AND day <= $2
		ORDER BY seq ASC
	`, fromDay, toDay)
	if err != nil {
		return nil, fmt.Errorf("get ledger by day range: %w", err)
	}
	defer rows.Close()

	return scanLedger(rows)
}

// Count returns the number of stored entries.
func (s *LedgerStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM bet_ledger`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger: %w", err)
	}
	return n, nil
}

func ledgerRows(entries []*domain.LedgerEntry) ([][]any, error) {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		if e == nil || e.DedupeKey == "" {
			return nil, storage.ErrInvalidInput
		}

		var extra []byte
		if len(e.Extra) > 0 {
			b, err := json.Marshal(e.Extra)
			if err != nil {
				return nil, fmt.Errorf("encode extra: %w", err)
			}
			extra = b
		}

		rows = append(rows, []any{
			e.DedupeKey, int32(e.Seq), e.SettledAt, e.PlacedAt, e.ProfitLoss, e.Stake, e.Odds,
			e.BetID, e.BetType, e.Market, e.Selection, e.Event, e.Sport, e.Country, e.Track,
			e.SourceFile, e.Day, e.Week, e.Month, e.Cumulative, extra,
		})
	}
	return rows, nil
}

// scanLedger scans multiple rows into ledger entries.
func scanLedger(rows pgx.Rows) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry

	for rows.Next() {
		var e domain.LedgerEntry
		var seq int32
		var extra []byte

		err := rows.Scan(
			&e.DedupeKey, &seq, &e.SettledAt, &e.PlacedAt, &e.ProfitLoss, &e.Stake, &e.Odds,
			&e.BetID, &e.BetType, &e.Market, &e.Selection, &e.Event, &e.Sport, &e.Country, &e.Track,
			&e.SourceFile, &e.Day, &e.Week, &e.Month, &e.Cumulative, &extra,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}

		e.Seq = int(seq)
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &e.Extra); err != nil {
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
