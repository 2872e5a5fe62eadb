package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bet-ledger-lab/internal/reporting"
)

const (
	defaultKeyPrefix = "bdash:"
	tableKeyFormat   = "%stable:%s" // bdash:table:by_day
	indexKeyFormat   = "%stables"   // bdash:tables
)

// ErrTableNotFound is returned by ReadTable for an unknown table.
var ErrTableNotFound = errors.New("table not found")

// StoredTable is the JSON document written per table.
type StoredTable struct {
	Name      string    `json:"name"`
	Columns   []string  `json:"columns"`
	Rows      [][]any   `json:"rows"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStoredTable converts a summary table into its JSON document form.
func NewStoredTable(t *reporting.Table, updatedAt time.Time) *StoredTable {
	return &StoredTable{
		Name:      t.Name,
		Columns:   t.Columns,
		Rows:      jsonRows(t.Rows),
		UpdatedAt: updatedAt,
	}
}

// RedisSink stores each table as a JSON string plus an index set of slugs.
type RedisSink struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisSink creates a sink on an existing client. A zero ttl keeps keys forever.
func NewRedisSink(client *redis.Client, ttl time.Duration) *RedisSink {
	return &RedisSink{
		redis:  client,
		prefix: defaultKeyPrefix,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithPrefix sets the key namespace.
func (s *RedisSink) WithPrefix(prefix string) *RedisSink {
	s.prefix = prefix
	return s
}

// Name implements TableSink.
func (s *RedisSink) Name() string { return "redis" }

// WriteTables replaces the stored table set in one transaction.
func (s *RedisSink) WriteTables(ctx context.Context, tables []*reporting.Table) error {
	indexKey := fmt.Sprintf(indexKeyFormat, s.prefix)

	stale, err := s.redis.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("read table index: %w", err)
	}

	pipe := s.redis.TxPipeline()
	for _, slug := range stale {
		pipe.Del(ctx, fmt.Sprintf(tableKeyFormat, s.prefix, slug))
	}
	pipe.Del(ctx, indexKey)

	updatedAt := s.now()
	for _, t := range tables {
		slug := Slug(t.Name)
		data, err := json.Marshal(NewStoredTable(t, updatedAt))
		if err != nil {
			return fmt.Errorf("marshal table %s: %w", t.Name, err)
		}
		pipe.Set(ctx, fmt.Sprintf(tableKeyFormat, s.prefix, slug), data, s.ttl)
		pipe.SAdd(ctx, indexKey, slug)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, indexKey, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec: %w", err)
	}
	return nil
}

// ReadTable loads one stored table by name or slug.
func (s *RedisSink) ReadTable(ctx context.Context, name string) (*StoredTable, error) {
	data, err := s.redis.Get(ctx, fmt.Sprintf(tableKeyFormat, s.prefix, Slug(name))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc StoredTable
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal table %s: %w", name, err)
	}
	return &doc, nil
}

// ListTables returns the slugs of the stored tables.
func (s *RedisSink) ListTables(ctx context.Context) ([]string, error) {
	return s.redis.SMembers(ctx, fmt.Sprintf(indexKeyFormat, s.prefix)).Result()
}

// jsonRows keeps numbers and strings typed and renders days as YYYY-MM-DD.
func jsonRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, c := range row {
			if day, ok := c.(time.Time); ok {
				cells[j] = day.Format("2006-01-02")
				continue
			}
			cells[j] = c
		}
		out[i] = cells
	}
	return out
}

var _ TableSink = (*RedisSink)(nil)
