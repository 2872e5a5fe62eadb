// Package export publishes summary tables to external destinations.
package export

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"bet-ledger-lab/internal/observability"
	"bet-ledger-lab/internal/reporting"
)

// TableSink receives a complete set of summary tables. Each call replaces
// whatever the sink held from a previous export.
type TableSink interface {
	Name() string
	WriteTables(ctx context.Context, tables []*reporting.Table) error
}

// Exporter fans a table set out to every configured sink.
type Exporter struct {
	sinks  []TableSink
	logger *log.Logger
}

// NewExporter creates an exporter. A nil logger discards output.
func NewExporter(logger *log.Logger, sinks ...TableSink) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Exporter{sinks: sinks, logger: logger}
}

// Export writes tables to each sink in order, stopping at the first failure.
func (e *Exporter) Export(ctx context.Context, tables []*reporting.Table) error {
	for _, s := range e.sinks {
		if err := s.WriteTables(ctx, tables); err != nil {
			return fmt.Errorf("export to %s: %w", s.Name(), err)
		}
		observability.RecordTablesExported(s.Name(), len(tables))
		e.logger.Printf("Exported %d tables to %s", len(tables), s.Name())
	}
	return nil
}

// Slug turns a table name into a key or file stem: "By Day" -> "by_day".
func Slug(name string) string {
	var sb strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}
