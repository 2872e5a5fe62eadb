package risk

import (
	"sort"

	"bet-ledger-lab/internal/domain"
)

// Streaks returns the longest runs of consecutive calendar days with a
// negative total (losing) and a positive total (winning).
// A zero day breaks both; a missing day in the series breaks both.
func Streaks(daily []domain.DailyPoint) (losing, winning int) {
	curLoss, curWin := 0, 0
	for i, p := range daily {
		if i > 0 && !p.Day.Equal(daily[i-1].Day.AddDate(0, 0, 1)) {
			curLoss, curWin = 0, 0
		}

		switch {
		case p.ProfitLoss < 0:
			curLoss++
			curWin = 0
		case p.ProfitLoss > 0:
			curWin++
			curLoss = 0
		default:
			curLoss, curWin = 0, 0
		}

		if curLoss > losing {
			losing = curLoss
		}
		if curWin > winning {
			winning = curWin
		}
	}
	return losing, winning
}

// WorstDays returns the n days with the lowest totals, ascending by value.
// Ties keep day order. Returns min(n, len(daily)) points.
func WorstDays(daily []domain.DailyPoint, n int) []domain.DailyPoint {
	if n <= 0 || len(daily) == 0 {
		return nil
	}
	sorted := make([]domain.DailyPoint, len(daily))
	copy(sorted, daily)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProfitLoss < sorted[j].ProfitLoss
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
