package ledgerfile

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bet-ledger-lab/internal/domain"
)

func sampleLedger() []*domain.LedgerEntry {
	settled := time.Date(2025, 7, 1, 18, 30, 0, 123000000, time.FixedZone("AEST", 10*3600))
	placed := settled.Add(-2 * time.Hour)
	pl, stake, odds := -12.345678901, 20.0, 3.4

	first := &domain.LedgerEntry{
		Seq:        1,
		DedupeKey:  "id:1.234",
		Day:        "2025-07-01",
		Week:       "2025-W27",
		Month:      "2025-07",
		Cumulative: -12.345678901,
	}
	first.SettledAt = &settled
	first.PlacedAt = &placed
	first.ProfitLoss = &pl
	first.Stake = &stake
	first.Odds = &odds
	first.BetID = "1.234"
	first.Market = "R3 1200m, Maiden"
	first.Selection = "Fast \"Horse\""
	first.Sport = "Horse Racing"
	first.SourceFile = "export_1.csv"
	first.Extra = map[string]string{"Comment": "late scratching", "Bonus": ""}

	second := &domain.LedgerEntry{Seq: 2, DedupeKey: "h:abc", Cumulative: -12.345678901}
	second.SourceFile = "export_2.csv"

	return []*domain.LedgerEntry{first, second}
}

func TestWriteRead_PreservesTypes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleLedger()))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := sampleLedger()
	first := got[0]
	assert.Equal(t, want[0].Seq, first.Seq)
	assert.Equal(t, want[0].DedupeKey, first.DedupeKey)
	require.NotNil(t, first.SettledAt)
	assert.True(t, want[0].SettledAt.Equal(*first.SettledAt))
	assert.True(t, want[0].PlacedAt.Equal(*first.PlacedAt))
	assert.Equal(t, *want[0].ProfitLoss, *first.ProfitLoss)
	assert.Equal(t, *want[0].Odds, *first.Odds)
	assert.Equal(t, want[0].Market, first.Market)
	assert.Equal(t, want[0].Selection, first.Selection)
	assert.Equal(t, want[0].Extra, first.Extra)
	assert.Equal(t, "2025-W27", first.Week)
	assert.Equal(t, want[0].Cumulative, first.Cumulative)

	second := got[1]
	assert.Nil(t, second.SettledAt)
	assert.Nil(t, second.ProfitLoss)
	assert.Nil(t, second.Stake)
	assert.Nil(t, second.Extra)
	assert.Equal(t, "", second.Day)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, WriteFile(path, sampleLedger()))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing column", "seq,dedupe_key\n1,id:1\n"},
		{"bad number", strings.Join(Columns, ",") + "\n1,k,,,abc,,,,,,,,,,,,,,,0,\n"},
		{"bad time", strings.Join(Columns, ",") + "\n1,k,yesterday,,,,,,,,,,,,,,,,,0,\n"},
		{"short row", strings.Join(Columns, ",") + "\n1,k\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestWriteClean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteClean(&buf, sampleLedger()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], ",source_file,cumulative,Bonus,Comment"))
	assert.Contains(t, lines[1], "late scratching")
	assert.True(t, strings.HasPrefix(lines[2], ",,,,"), "absent values render empty")
}

func TestWriteClean_ExtraColumnCollisions(t *testing.T) {
	entries := sampleLedger()
	entries[0].Extra = map[string]string{"source_file": "upload-7", "cumulative": "99", "extra_cumulative": "x"}

	var buf bytes.Buffer
	require.NoError(t, WriteClean(&buf, entries))

	header := strings.Split(strings.SplitN(buf.String(), "\n", 2)[0], ",")
	seen := make(map[string]bool)
	for _, h := range header {
		assert.False(t, seen[h], "duplicate header %q", h)
		seen[h] = true
	}
	assert.True(t, seen["extra_source_file"])
	assert.True(t, seen["extra_extra_cumulative"])
	assert.True(t, seen["extra_cumulative"])
	assert.Contains(t, buf.String(), "upload-7")
}
