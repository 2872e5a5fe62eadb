package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"bet-ledger-lab/internal/reporting"
)

// DirSink writes one CSV file per table into a directory.
type DirSink struct {
	dir string
}

// NewDirSink creates a sink rooted at dir. The directory is created on write.
func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

// Name implements TableSink.
func (s *DirSink) Name() string { return "dir" }

// WriteTables writes <slug>.csv for each table.
func (s *DirSink) WriteTables(ctx context.Context, tables []*reporting.Table) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(s.dir, Slug(t.Name)+".csv")
		if err := os.WriteFile(path, []byte(reporting.RenderCSV(t)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

var _ TableSink = (*DirSink)(nil)
