package ingestion

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/observability"
)

// Result is the outcome of one ingestion run.
// Ledger is immutable once returned; consumers must not modify entries.
type Result struct {
	Ledger         []*domain.LedgerEntry
	Daily          []domain.Bucket
	Monthly        []domain.Bucket
	FilesProcessed []string // base names, in load order
	Rows           int      // rows retained
	DedupedRows    int      // rows removed as duplicates
}

// Runner composes loading, normalization, deduplication and feature extraction.
type Runner struct {
	normalizer *Normalizer
	logger     *log.Logger
}

// NewRunner creates an ingestion runner.
// A nil logger discards output.
func NewRunner(normalizer *Normalizer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{normalizer: normalizer, logger: logger}
}

// Run ingests every file in dir matching pattern.
// Steps:
//  1. Find inputs (sorted by name) -> ErrNoInput if none
//  2. Load rows, tagged with source file
//  3. Normalize -> ErrMissingColumn if a required column is absent everywhere
//  4. Deduplicate in settlement order
//  5. Add calendar features and cumulative P/L
//  6. Build day and month rollups
func (r *Runner) Run(ctx context.Context, dir, pattern string) (*Result, error) {
	start := time.Now()

	paths, err := FindInputs(dir, pattern)
	if err != nil {
		observability.RecordIngestionRun("no_input", time.Since(start).Seconds())
		return nil, err
	}
	r.logger.Printf("Found %d input file(s) in %s", len(paths), dir)

	batch, err := LoadAll(ctx, paths)
	if err != nil {
		observability.RecordIngestionRun("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("load inputs: %w", err)
	}

	result, err := r.Process(batch)
	if err != nil {
		observability.RecordIngestionRun("structural", time.Since(start).Seconds())
		return nil, err
	}

	for _, p := range paths {
		result.FilesProcessed = append(result.FilesProcessed, filepath.Base(p))
	}
	observability.RecordFilesProcessed(len(paths))
	observability.RecordIngestionRun("success", time.Since(start).Seconds())

	r.logger.Printf("Ingested %d rows (%d deduped) from %d file(s)", result.Rows, result.DedupedRows, len(paths))
	return result, nil
}

// Process runs normalization, deduplication and feature extraction over a
// batch that is already in memory.
func (r *Runner) Process(batch *Batch) (*Result, error) {
	records, err := r.normalizer.NormalizeBatch(batch.Headers, batch.Rows)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	if err := ValidateRecordOrdering(records); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	ledger, removed := Deduplicate(records)
	AddFeatures(ledger)

	observability.RecordRowsIngested(len(ledger), removed)

	return &Result{
		Ledger:      ledger,
		Daily:       Rollup(ledger, ByDay),
		Monthly:     Rollup(ledger, ByMonth),
		Rows:        len(ledger),
		DedupedRows: removed,
	}, nil
}
