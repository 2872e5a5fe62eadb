package ingestion

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bet-ledger-lab/internal/domain"
	"bet-ledger-lab/internal/observability"
)

// ErrMissingColumn is returned when a required canonical column is absent
// from every input file. It aborts the whole batch.
var ErrMissingColumn = errors.New("missing required column")

// requiredColumns must exist in the reconciled schema of the batch.
var requiredColumns = []string{domain.FieldSettledAt, domain.FieldProfitLoss}

// canonicalColumns are consumed into typed BetRecord fields; every other
// reconciled column is carried in BetRecord.Extra.
var canonicalColumns = map[string]struct{}{
	domain.FieldSettledAt:  {},
	domain.FieldPlacedAt:   {},
	domain.FieldProfitLoss: {},
	domain.FieldStake:      {},
	domain.FieldBetID:      {},
	domain.FieldBetType:    {},
	domain.FieldMarket:     {},
	domain.FieldSelection:  {},
	domain.FieldEvent:      {},
	domain.FieldSport:      {},
	domain.FieldCountry:    {},
	domain.FieldTrack:      {},
	domain.FieldOdds:       {},
}

// Normalizer turns raw rows into typed, time-sorted bet records.
type Normalizer struct {
	reconciler *HeaderReconciler
}

// NewNormalizer creates a normalizer using the given synonym table.
func NewNormalizer(synonyms map[string]string) *Normalizer {
	return &Normalizer{reconciler: NewHeaderReconciler(synonyms)}
}

// Normalize processes a batch of raw rows whose schema is given by the rows'
// own headers.
func (n *Normalizer) Normalize(rows []domain.RawRow) ([]*domain.BetRecord, error) {
	return n.NormalizeBatch(nil, rows)
}

// NormalizeBatch processes a batch of raw rows.
// headers lists the header row of every input file, including files without
// data rows; together with the rows' headers it forms the batch schema.
// Steps:
//  1. Reconcile headers onto canonical names (once per distinct header list)
//  2. Coalesce duplicate canonical columns per row
//  3. Check required columns across the batch schema
//  4. Parse timestamps, money and numeric cells; failures become nil
//  5. Trim descriptive strings
//  6. Stable sort by (settled_at ASC, placed_at ASC), absent values last
//
// Output is one record per input row.
func (n *Normalizer) NormalizeBatch(headers [][]string, rows []domain.RawRow) ([]*domain.BetRecord, error) {
	schemas := make(map[string]*Schema)
	union := make(map[string]struct{})

	schemaFor := func(h []string) *Schema {
		sig := strings.Join(h, "\x1f")
		schema, ok := schemas[sig]
		if !ok {
			schema = n.reconciler.Reconcile(h)
			schemas[sig] = schema
			for _, col := range schema.Columns {
				union[col] = struct{}{}
			}
		}
		return schema
	}

	for _, h := range headers {
		schemaFor(h)
	}
	coalesced := make([]map[string]string, len(rows))
	for i, row := range rows {
		coalesced[i] = schemaFor(row.Headers).Coalesce(row.Values)
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := union[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	records := make([]*domain.BetRecord, len(rows))
	for i, row := range rows {
		records[i] = buildRecord(coalesced[i], row.SourceFile)
	}

	SortRecords(records)
	return records, nil
}

// buildRecord parses one coalesced row. It never fails: unparseable cells
// are left nil and counted.
func buildRecord(cells map[string]string, sourceFile string) *domain.BetRecord {
	r := &domain.BetRecord{
		SettledAt:  parseTimeCell(cells, domain.FieldSettledAt),
		PlacedAt:   parseTimeCell(cells, domain.FieldPlacedAt),
		ProfitLoss: parseMoneyCell(cells, domain.FieldProfitLoss),
		Stake:      parseMoneyCell(cells, domain.FieldStake),
		Odds:       parseNumberCell(cells, domain.FieldOdds),
		BetID:      tidy(cells[domain.FieldBetID]),
		BetType:    tidy(cells[domain.FieldBetType]),
		Market:     tidy(cells[domain.FieldMarket]),
		Selection:  tidy(cells[domain.FieldSelection]),
		Event:      tidy(cells[domain.FieldEvent]),
		Sport:      tidy(cells[domain.FieldSport]),
		Country:    tidy(cells[domain.FieldCountry]),
		Track:      tidy(cells[domain.FieldTrack]),
		SourceFile: tidy(sourceFile),
	}

	for name, value := range cells {
		if _, ok := canonicalColumns[name]; ok {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[name] = value
	}
	return r
}

func parseTimeCell(cells map[string]string, field string) *time.Time {
	raw, ok := cells[field]
	if !ok {
		return nil
	}
	t, ok := ParseTimestamp(raw)
	if !ok {
		recordFailure(field, raw)
		return nil
	}
	return &t
}

func parseMoneyCell(cells map[string]string, field string) *float64 {
	raw, ok := cells[field]
	if !ok {
		return nil
	}
	v, ok := ParseMoney(raw)
	if !ok {
		recordFailure(field, raw)
		return nil
	}
	return &v
}

func parseNumberCell(cells map[string]string, field string) *float64 {
	raw, ok := cells[field]
	if !ok {
		return nil
	}
	v, ok := ParseNumber(raw)
	if !ok {
		recordFailure(field, raw)
		return nil
	}
	return &v
}

// recordFailure counts a cell that had content but did not parse.
// Empty cells are plain absences, not failures.
func recordFailure(field, raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	observability.RecordParseFailure(field)
}

// tidy trims a descriptive string and collapses internal whitespace runs.
func tidy(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
