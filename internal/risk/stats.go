package risk

import (
	"sort"

	"bet-ledger-lab/internal/domain"
)

// HeadlineStats computes the scalar summary of a daily series.
// Every field is 0 for an empty series.
func HeadlineStats(daily []domain.DailyPoint) domain.RiskStats {
	n := len(daily)
	if n == 0 {
		return domain.RiskStats{}
	}

	values := make([]float64, n)
	for i, p := range daily {
		values[i] = p.ProfitLoss
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	maxDD, maxPct := MaxDrawdown(DrawdownFrame(EquityCurve(daily)))
	losing, winning := Streaks(daily)

	return domain.RiskStats{
		TotalPL:              sum(values),
		Days:                 n,
		MeanDaily:            computeMean(values),
		MedianDaily:          computePercentile(sorted, 0.50),
		StrikeRate:           strikeRate(values),
		MaxDrawdown:          maxDD,
		MaxDrawdownPct:       maxPct,
		LongestLosingStreak:  losing,
		LongestWinningStreak: winning,
	}
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile (0.50 = median).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
