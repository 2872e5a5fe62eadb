// Package ledgerfile reads and writes the canonical ledger as delimited text.
//
// The typed format keeps every field needed to reload a ledger without loss:
// timestamps as RFC 3339 with nanoseconds, numbers at full precision, derived
// calendar features, and pass-through columns as a JSON object. The clean
// format is a human-facing export with pass-through columns expanded.
package ledgerfile

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"bet-ledger-lab/internal/domain"
)

// ErrMalformed is returned when a ledger file does not have the expected layout.
var ErrMalformed = errors.New("malformed ledger file")

// Columns is the header of the typed ledger format.
var Columns = []string{
	"seq",
	"dedupe_key",
	domain.FieldSettledAt,
	domain.FieldPlacedAt,
	domain.FieldProfitLoss,
	domain.FieldStake,
	domain.FieldOdds,
	domain.FieldBetID,
	domain.FieldBetType,
	domain.FieldMarket,
	domain.FieldSelection,
	domain.FieldEvent,
	domain.FieldSport,
	domain.FieldCountry,
	domain.FieldTrack,
	"source_file",
	"day",
	"week",
	"month",
	"cumulative",
	"extra",
}

// Write encodes entries in the typed format.
func Write(w io.Writer, entries []*domain.LedgerEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}

	for _, e := range entries {
		extra := ""
		if len(e.Extra) > 0 {
			b, err := json.Marshal(e.Extra)
			if err != nil {
				return fmt.Errorf("encode extra for %s: %w", e.DedupeKey, err)
			}
			extra = string(b)
		}

		record := []string{
			strconv.Itoa(e.Seq),
			e.DedupeKey,
			formatTime(e.SettledAt),
			formatTime(e.PlacedAt),
			formatFloat(e.ProfitLoss),
			formatFloat(e.Stake),
			formatFloat(e.Odds),
			e.BetID,
			e.BetType,
			e.Market,
			e.Selection,
			e.Event,
			e.Sport,
			e.Country,
			e.Track,
			e.SourceFile,
			e.Day,
			e.Week,
			e.Month,
			strconv.FormatFloat(e.Cumulative, 'g', -1, 64),
			extra,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read decodes a typed ledger. Columns are located by header name, so column
// order may differ from Columns, but every column must be present.
func Read(r io.Reader) ([]*domain.LedgerEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	for _, c := range Columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformed, c)
		}
	}

	var entries []*domain.LedgerEntry
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d", ErrMalformed, line, len(record), len(header))
		}

		e, err := decodeRecord(func(c string) string { return record[index[c]] })
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func decodeRecord(field func(string) string) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{
		DedupeKey: field("dedupe_key"),
		Day:       field("day"),
		Week:      field("week"),
		Month:     field("month"),
	}
	e.BetID = field(domain.FieldBetID)
	e.BetType = field(domain.FieldBetType)
	e.Market = field(domain.FieldMarket)
	e.Selection = field(domain.FieldSelection)
	e.Event = field(domain.FieldEvent)
	e.Sport = field(domain.FieldSport)
	e.Country = field(domain.FieldCountry)
	e.Track = field(domain.FieldTrack)
	e.SourceFile = field("source_file")

	var err error
	if e.Seq, err = strconv.Atoi(field("seq")); err != nil {
		return nil, fmt.Errorf("seq: %w", err)
	}
	if e.Cumulative, err = strconv.ParseFloat(field("cumulative"), 64); err != nil {
		return nil, fmt.Errorf("cumulative: %w", err)
	}
	if e.SettledAt, err = parseTime(field(domain.FieldSettledAt)); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.FieldSettledAt, err)
	}
	if e.PlacedAt, err = parseTime(field(domain.FieldPlacedAt)); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.FieldPlacedAt, err)
	}
	if e.ProfitLoss, err = parseFloat(field(domain.FieldProfitLoss)); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.FieldProfitLoss, err)
	}
	if e.Stake, err = parseFloat(field(domain.FieldStake)); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.FieldStake, err)
	}
	if e.Odds, err = parseFloat(field(domain.FieldOdds)); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.FieldOdds, err)
	}
	if raw := field("extra"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &e.Extra); err != nil {
			return nil, fmt.Errorf("extra: %w", err)
		}
	}
	return e, nil
}

// WriteFile writes entries to path in the typed format.
func WriteFile(path string, entries []*domain.LedgerEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("write ledger %s: %w", path, err)
	}
	return f.Close()
}

// ReadFile reads a typed ledger from path.
func ReadFile(path string) ([]*domain.LedgerEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	return entries, nil
}

// WriteClean writes a human-facing export: canonical columns, then every
// pass-through column seen in the ledger, in name order.
func WriteClean(w io.Writer, entries []*domain.LedgerEntry) error {
	extraSet := make(map[string]struct{})
	for _, e := range entries {
		for k := range e.Extra {
			extraSet[k] = struct{}{}
		}
	}
	extras := make([]string, 0, len(extraSet))
	for k := range extraSet {
		extras = append(extras, k)
	}
	sort.Strings(extras)

	header := []string{
		domain.FieldSettledAt, domain.FieldPlacedAt, domain.FieldProfitLoss, domain.FieldStake,
		domain.FieldOdds, domain.FieldBetID, domain.FieldBetType, domain.FieldMarket,
		domain.FieldSelection, domain.FieldEvent, domain.FieldSport, domain.FieldCountry,
		domain.FieldTrack, "source_file", "cumulative",
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append(header, extraHeaders(header, extras)...)); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			formatTime(e.SettledAt), formatTime(e.PlacedAt), formatFloat(e.ProfitLoss), formatFloat(e.Stake),
			formatFloat(e.Odds), e.BetID, e.BetType, e.Market,
			e.Selection, e.Event, e.Sport, e.Country,
			e.Track, e.SourceFile, strconv.FormatFloat(e.Cumulative, 'f', -1, 64),
		}
		for _, k := range extras {
			record = append(record, e.Extra[k])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// extraHeaders names the pass-through columns so none repeats a fixed column:
// a colliding name is prefixed with "extra_" until it is unique.
func extraHeaders(fixed, extras []string) []string {
	reserved := make(map[string]struct{}, len(fixed))
	used := make(map[string]struct{}, len(fixed)+len(extras))
	for _, h := range fixed {
		reserved[h] = struct{}{}
		used[h] = struct{}{}
	}
	for _, k := range extras {
		used[k] = struct{}{}
	}

	names := make([]string, len(extras))
	for i, k := range extras {
		name := k
		if _, clash := reserved[k]; clash {
			for {
				name = "extra_" + name
				if _, taken := used[name]; !taken {
					break
				}
			}
			used[name] = struct{}{}
		}
		names[i] = name
	}
	return names
}

// WriteCleanFile writes the clean export to path.
func WriteCleanFile(path string, entries []*domain.LedgerEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteClean(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("write clean csv %s: %w", path, err)
	}
	return f.Close()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
