package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"bet-ledger-lab/internal/domain"
)

// ErrNoInput is returned when the file pattern matches nothing.
var ErrNoInput = errors.New("no input files matched")

// defaultLoadWorkers bounds concurrent file reads.
const defaultLoadWorkers = 4

// FindInputs returns the files in dir matching a glob pattern, sorted by name.
// Returns ErrNoInput if nothing matches.
func FindInputs(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoInput, pattern, dir)
	}

	sort.Slice(files, func(i, j int) bool {
		return filepath.Base(files[i]) < filepath.Base(files[j])
	})
	return files, nil
}

// Batch is the loaded content of a set of export files.
// Headers holds each file's header row, including files with no data rows,
// so the batch schema does not depend on which files carry rows.
type Batch struct {
	Headers [][]string
	Rows    []domain.RawRow
}

// LoadFile reads one comma-delimited export with a header row.
// Every cell is kept as text; rows are tagged with the file's base name.
func LoadFile(path string) ([]string, []domain.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	headers, rows, err := ReadRows(f, filepath.Base(path))
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return headers, rows, nil
}

// ReadRows parses CSV text into its header and raw rows.
// An empty input yields no header and no rows.
func ReadRows(r io.Reader, source string) ([]string, []domain.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	var rows []domain.RawRow
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read line %d: %w", line+2, err)
		}
		line++
		if isBlank(record) {
			continue
		}
		rows = append(rows, domain.RawRow{
			Headers:    headers,
			Values:     record,
			SourceFile: source,
			Line:       line,
		})
	}
	return headers, rows, nil
}

// LoadAll reads files concurrently and concatenates their rows in the order
// of paths. Order across files does not affect the ledger, which is sorted
// afterwards, but it keeps runs reproducible.
func LoadAll(ctx context.Context, paths []string) (*Batch, error) {
	perFile := make([][]domain.RawRow, len(paths))
	headers := make([][]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultLoadWorkers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, rows, err := LoadFile(p)
			if err != nil {
				return err
			}
			headers[i] = h
			perFile[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &Batch{}
	for i, rows := range perFile {
		if headers[i] != nil {
			batch.Headers = append(batch.Headers, headers[i])
		}
		batch.Rows = append(batch.Rows, rows...)
	}
	return batch, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
