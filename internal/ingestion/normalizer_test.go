package ingestion

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bet-ledger-lab/internal/domain"
)

func rawRows(source string, headers []string, lines ...[]string) []domain.RawRow {
	rows := make([]domain.RawRow, len(lines))
	for i, l := range lines {
		rows[i] = domain.RawRow{Headers: headers, Values: l, SourceFile: source, Line: i + 1}
	}
	return rows
}

func TestNormalize_MissingRequiredColumn(t *testing.T) {
	n := NewNormalizer(DefaultSynonyms)
	rows := rawRows("a.csv", []string{"Settled date", "Market"},
		[]string{"03-Aug-25 10:00", "Win"},
	)

	_, err := n.Normalize(rows)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), domain.FieldProfitLoss)
}

func TestNormalize_RequiredColumnFromAnyFile(t *testing.T) {
	n := NewNormalizer(DefaultSynonyms)
	rows := append(
		rawRows("a.csv", []string{"Settled date", "P/L"}, []string{"03-Aug-25 10:00", "1.00"}),
		rawRows("b.csv", []string{"Settled date", "Market"}, []string{"04-Aug-25 10:00", "Win"})...,
	)

	records, err := n.Normalize(rows)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Nil(t, records[1].ProfitLoss)
	assert.Equal(t, "Win", records[1].Market)
}

func TestNormalizeBatch_HeadersWithoutRows(t *testing.T) {
	n := NewNormalizer(DefaultSynonyms)

	records, err := n.NormalizeBatch([][]string{{"Settled date", "Profit/Loss"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = n.NormalizeBatch([][]string{{"Market", "Stake"}}, nil)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestNormalize_ParseFailuresDegradeToNil(t *testing.T) {
	n := NewNormalizer(DefaultSynonyms)
	rows := rawRows("a.csv",
		[]string{"Settled date", "Profit/Loss (AUD)", "Stake", "Odds", "Market", "Notes"},
		[]string{"not a date", "oops", "(2.00)", "SP", "  Race   1 ", "keep me"},
	)

	records, err := n.Normalize(rows)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Nil(t, r.SettledAt)
	assert.Nil(t, r.ProfitLoss)
	assert.Nil(t, r.Odds)
	require.NotNil(t, r.Stake)
	assert.Equal(t, -2.0, *r.Stake)
	assert.Equal(t, "Race 1", r.Market)
	assert.Equal(t, "a.csv", r.SourceFile)
	assert.Equal(t, map[string]string{"Notes": "keep me"}, r.Extra)
}

func TestNormalize_SortOrder(t *testing.T) {
	n := NewNormalizer(DefaultSynonyms)
	headers := []string{"Settled date", "Bet placed", "P/L", "Selection"}
	rows := rawRows("a.csv", headers,
		[]string{"", "", "1", "undated"},
		[]string{"05-Aug-25 10:00", "", "1", "late"},
		[]string{"03-Aug-25 10:00", "03-Aug-25 09:00", "1", "tie-b"},
		[]string{"03-Aug-25 10:00", "03-Aug-25 08:00", "1", "tie-a"},
		[]string{"03-Aug-25 10:00", "", "1", "tie-none-1"},
		[]string{"03-Aug-25 10:00", "", "1", "tie-none-2"},
	)

	records, err := n.Normalize(rows)
	require.NoError(t, err)

	var got []string
	for _, r := range records {
		got = append(got, r.Selection)
	}
	assert.Equal(t, []string{"tie-a", "tie-b", "tie-none-1", "tie-none-2", "late", "undated"}, got)
	assert.NoError(t, ValidateRecordOrdering(records))
}

func TestNormalize_DuplicateColumnsCoalesce(t *testing.T) {
	n := NewNormalizer(DefaultSynonyms)
	rows := rawRows("a.csv", []string{"Settled Date", "Profit/Loss", "P/L (AUD)"},
		[]string{"03-Aug-25 10:00", "", "4.50"},
	)

	records, err := n.Normalize(rows)
	require.NoError(t, err)
	require.NotNil(t, records[0].ProfitLoss)
	assert.Equal(t, 4.5, *records[0].ProfitLoss)
	assert.True(t, records[0].SettledAt.Equal(time.Date(2025, 8, 3, 10, 0, 0, 0, time.UTC)))
}

func TestValidateRecordOrdering(t *testing.T) {
	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	ordered := []*domain.BetRecord{{SettledAt: &early}, {SettledAt: &late}, {}}
	assert.NoError(t, ValidateRecordOrdering(ordered))

	unordered := []*domain.BetRecord{{}, {SettledAt: &early}}
	assert.ErrorIs(t, ValidateRecordOrdering(unordered), ErrInvalidOrdering)
}
