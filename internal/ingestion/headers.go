package ingestion

import (
	"strings"

	"bet-ledger-lab/internal/domain"
)

// DefaultSynonyms maps known raw export headers onto canonical field names.
// Keys are matched case-insensitively after trimming.
var DefaultSynonyms = map[string]string{
	// Dates
	"Settled date": domain.FieldSettledAt,
	"Settled":      domain.FieldSettledAt,

	// Placement and start time variants
	"Bet placed":         domain.FieldPlacedAt,
	"Placed":             domain.FieldPlacedAt,
	"Start time":         domain.FieldPlacedAt,
	"Start time (local)": domain.FieldPlacedAt,

	// P/L and stake
	"Profit/Loss (AUD)": domain.FieldProfitLoss,
	"Profit/Loss":       domain.FieldProfitLoss,
	"P/L (AUD)":         domain.FieldProfitLoss,
	"P/L":               domain.FieldProfitLoss,
	"Stake (AUD)":       domain.FieldStake,
	"Stake":             domain.FieldStake,

	// Identifiers and descriptors
	"Bid type":   domain.FieldBetType,
	"Bet type":   domain.FieldBetType,
	"Bet ID":     domain.FieldBetID,
	"BetID":      domain.FieldBetID,
	"Market":     domain.FieldMarket,
	"Selection":  domain.FieldSelection,
	"Event":      domain.FieldEvent,
	"Sport":      domain.FieldSport,
	"Country":    domain.FieldCountry,
	"Track Name": domain.FieldTrack,
	"Venue":      domain.FieldTrack,
	"Odds":       domain.FieldOdds,
	"Price":      domain.FieldOdds,
}

// HeaderReconciler renames raw headers onto canonical field names.
// The lookup table is normalized once at construction and never mutated.
type HeaderReconciler struct {
	lookup map[string]string
}

// NewHeaderReconciler builds a reconciler from a synonym table.
// Canonical names map to themselves so already-canonical exports reconcile too.
func NewHeaderReconciler(synonyms map[string]string) *HeaderReconciler {
	lookup := make(map[string]string, len(synonyms)*2)
	for raw, canonical := range synonyms {
		lookup[normalizeHeader(raw)] = canonical
		lookup[normalizeHeader(canonical)] = canonical
	}
	return &HeaderReconciler{lookup: lookup}
}

// Resolve returns the canonical name for a raw header, or the trimmed header
// itself when it has no synonym.
func (r *HeaderReconciler) Resolve(header string) string {
	if canonical, ok := r.lookup[normalizeHeader(header)]; ok {
		return canonical
	}
	return strings.TrimSpace(header)
}

// Schema is the reconciled column layout of one input file.
// Columns lists distinct names in first-encounter order; Sources[name] lists the
// raw column indexes that map to name, in raw-header order.
type Schema struct {
	Columns []string
	Sources map[string][]int
}

// Has reports whether the schema carries a column.
func (s *Schema) Has(name string) bool {
	_, ok := s.Sources[name]
	return ok
}

// Reconcile maps a raw header list onto a Schema.
func (r *HeaderReconciler) Reconcile(headers []string) *Schema {
	s := &Schema{Sources: make(map[string][]int, len(headers))}
	for i, h := range headers {
		name := r.Resolve(h)
		if _, seen := s.Sources[name]; !seen {
			s.Columns = append(s.Columns, name)
		}
		s.Sources[name] = append(s.Sources[name], i)
	}
	return s
}

// Coalesce collapses a raw row onto the schema. When several raw columns share
// a canonical name, the first non-empty value in raw-header order wins.
func (s *Schema) Coalesce(values []string) map[string]string {
	out := make(map[string]string, len(s.Columns))
	for _, name := range s.Columns {
		var chosen string
		for _, idx := range s.Sources[name] {
			if idx >= len(values) {
				continue
			}
			if strings.TrimSpace(values[idx]) != "" {
				chosen = values[idx]
				break
			}
		}
		out[name] = chosen
	}
	return out
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
