package domain

import "time"

// DailyPoint is the signed profit/loss total for one calendar day.
type DailyPoint struct {
	Day        time.Time // midnight UTC
	ProfitLoss float64
}

// EquityPoint is a cumulative profit/loss value on a given day.
type EquityPoint struct {
	Day    time.Time
	Equity float64
}

// DrawdownPoint is one row of the drawdown frame.
type DrawdownPoint struct {
	Day      time.Time
	Equity   float64
	Peak     float64 // running maximum of Equity
	Drawdown float64 // Equity - Peak, always <= 0
	Fraction float64 // Drawdown / Peak, 0 when Peak <= 0
}

// RollingPoint holds windowed statistics for one day.
// Nil fields have fewer in-window observations than the window minimum.
type RollingPoint struct {
	Day        time.Time
	ProfitLoss float64
	Equity     float64
	Win        bool

	SumShort    *float64
	SumMedium   *float64
	SumLong     *float64
	MeanMedium  *float64
	StdMedium   *float64
	RatioMedium *float64 // mean / std, 0 when std is 0
	StrikeRate  *float64 // fraction of in-window days > 0
}

// RiskStats is the scalar headline summary of a daily series.
type RiskStats struct {
	TotalPL              float64 `json:"total_pl"`
	Days                 int     `json:"days"`
	MeanDaily            float64 `json:"avg_daily"`
	MedianDaily          float64 `json:"median_daily"`
	StrikeRate           float64 `json:"strike_rate"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	MaxDrawdownPct       float64 `json:"max_drawdown_pct"`
	LongestLosingStreak  int     `json:"longest_losing_streak_days"`
	LongestWinningStreak int     `json:"longest_winning_streak_days"`
}

// RiskSnapshot records the headline stats of one analytics run.
type RiskSnapshot struct {
	RunID     string
	CreatedAt time.Time
	FirstDay  string // YYYY-MM-DD, empty for an empty series
	LastDay   string
	Stats     RiskStats
}
