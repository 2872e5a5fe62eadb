package risk

import (
	"math"

	"bet-ledger-lab/internal/domain"
)

// RollingMetrics computes windowed statistics for every day of the series.
// Sums are produced for all three windows; mean, sample std-dev, mean/std
// ratio and strike rate for the medium window. A statistic is nil until its
// window holds at least MinObs days.
func RollingMetrics(daily []domain.DailyPoint, cfg Config) []domain.RollingPoint {
	values := make([]float64, len(daily))
	for i, p := range daily {
		values[i] = p.ProfitLoss
	}

	out := make([]domain.RollingPoint, len(daily))
	equity := 0.0
	for i, p := range daily {
		equity += p.ProfitLoss
		rp := domain.RollingPoint{
			Day:        p.Day,
			ProfitLoss: p.ProfitLoss,
			Equity:     equity,
			Win:        p.ProfitLoss > 0,
		}

		if w, ok := window(values, i, cfg.Short); ok {
			rp.SumShort = ptr(sum(w))
		}
		if w, ok := window(values, i, cfg.Long); ok {
			rp.SumLong = ptr(sum(w))
		}
		if w, ok := window(values, i, cfg.Medium); ok {
			mean := computeMean(w)
			std := computeStddev(w, mean)
			rp.SumMedium = ptr(sum(w))
			rp.MeanMedium = ptr(mean)
			rp.StdMedium = ptr(std)
			rp.RatioMedium = ptr(safeDiv(mean, std))
			rp.StrikeRate = ptr(strikeRate(w))
		}

		out[i] = rp
	}
	return out
}

// window returns the trailing window ending at index i, and whether it holds
// enough observations.
func window(values []float64, i int, w Window) ([]float64, bool) {
	length, min, ok := w.bounds()
	if !ok {
		return nil, false
	}
	start := i - length + 1
	if start < 0 {
		start = 0
	}
	win := values[start : i+1]
	if len(win) < min {
		return nil, false
	}
	return win, true
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// computeMean calculates arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0 // Need at least 2 samples for sample stddev
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// strikeRate is the fraction of values strictly above zero.
func strikeRate(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	wins := 0
	for _, v := range values {
		if v > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(values))
}

func ptr(v float64) *float64 {
	return &v
}
