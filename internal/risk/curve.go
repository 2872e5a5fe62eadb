package risk

import "bet-ledger-lab/internal/domain"

// EquityCurve returns the running cumulative sum of the daily series.
func EquityCurve(daily []domain.DailyPoint) []domain.EquityPoint {
	curve := make([]domain.EquityPoint, len(daily))
	equity := 0.0
	for i, p := range daily {
		equity += p.ProfitLoss
		curve[i] = domain.EquityPoint{Day: p.Day, Equity: equity}
	}
	return curve
}

// DrawdownFrame computes the running peak, absolute drawdown and drawdown
// fraction for an equity curve. The fraction is drawdown/peak while the peak
// is positive and 0 otherwise.
func DrawdownFrame(curve []domain.EquityPoint) []domain.DrawdownPoint {
	frame := make([]domain.DrawdownPoint, len(curve))
	for i, p := range curve {
		peak := p.Equity
		if i > 0 && frame[i-1].Peak > peak {
			peak = frame[i-1].Peak
		}
		dd := p.Equity - peak
		frame[i] = domain.DrawdownPoint{
			Day:      p.Day,
			Equity:   p.Equity,
			Peak:     peak,
			Drawdown: dd,
			Fraction: safeDiv(dd, peak),
		}
	}
	return frame
}

// MaxDrawdown returns the most negative absolute drawdown and drawdown fraction
// in the frame. Both are 0 for an empty frame.
func MaxDrawdown(frame []domain.DrawdownPoint) (float64, float64) {
	var maxDD, maxPct float64
	for _, p := range frame {
		if p.Drawdown < maxDD {
			maxDD = p.Drawdown
		}
		if p.Fraction < maxPct {
			maxPct = p.Fraction
		}
	}
	return maxDD, maxPct
}

// safeDiv divides by a strictly positive denominator and returns 0 otherwise.
func safeDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
