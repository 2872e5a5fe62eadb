package reporting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	s := r.Risk.Stats

	// Header
	sb.WriteString("# Risk Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Ledger Summary
	sb.WriteString("## Ledger\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Bets | %d |\n", r.Summary.Entries))
	sb.WriteString(fmt.Sprintf("| Settled | %d |\n", r.Summary.Dated))
	sb.WriteString(fmt.Sprintf("| Unsettled | %d |\n", r.Summary.Undated))
	sb.WriteString(fmt.Sprintf("| First Day | %s |\n", orDash(r.Summary.FirstDay)))
	sb.WriteString(fmt.Sprintf("| Last Day | %s |\n", orDash(r.Summary.LastDay)))
	sb.WriteString("\n")

	// Headline Stats
	sb.WriteString("## Headline Stats\n\n")
	if s.Days == 0 {
		sb.WriteString("No settled days.\n\n")
	} else {
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Total P/L | %s |\n", FormatMoney(s.TotalPL, r.Currency)))
		sb.WriteString(fmt.Sprintf("| Days | %d |\n", s.Days))
		sb.WriteString(fmt.Sprintf("| Average Daily | %s |\n", FormatMoney(s.MeanDaily, r.Currency)))
		sb.WriteString(fmt.Sprintf("| Median Daily | %s |\n", FormatMoney(s.MedianDaily, r.Currency)))
		sb.WriteString(fmt.Sprintf("| Strike Rate | %.1f%% |\n", s.StrikeRate*100))
		sb.WriteString(fmt.Sprintf("| Max Drawdown | %s |\n", FormatMoney(s.MaxDrawdown, r.Currency)))
		sb.WriteString(fmt.Sprintf("| Max Drawdown (%% of peak) | %.1f%% |\n", s.MaxDrawdownPct*100))
		sb.WriteString(fmt.Sprintf("| Longest Losing Streak | %d days |\n", s.LongestLosingStreak))
		sb.WriteString(fmt.Sprintf("| Longest Winning Streak | %d days |\n", s.LongestWinningStreak))
		sb.WriteString("\n")
	}

	// Rolling (latest day)
	if n := len(r.Risk.Rolling); n > 0 {
		last := r.Risk.Rolling[n-1]
		sb.WriteString(fmt.Sprintf("## Rolling (as of %s)\n\n", last.Day.Format("2006-01-02")))
		sb.WriteString("| Window | Sum |\n")
		sb.WriteString("|--------|-----|\n")
		sb.WriteString(fmt.Sprintf("| %d days | %s |\n", r.Windows.Short.Length, optionalMoney(last.SumShort, r.Currency)))
		sb.WriteString(fmt.Sprintf("| %d days | %s |\n", r.Windows.Medium.Length, optionalMoney(last.SumMedium, r.Currency)))
		sb.WriteString(fmt.Sprintf("| %d days | %s |\n", r.Windows.Long.Length, optionalMoney(last.SumLong, r.Currency)))
		sb.WriteString("\n")
		if last.StrikeRate != nil {
			sb.WriteString(fmt.Sprintf("%d-day strike rate %.1f%%, mean/std ratio %.3f.\n\n",
				r.Windows.Medium.Length, *last.StrikeRate*100, *last.RatioMedium))
		}
	}

	// Monthly
	if t := r.Table(TableByMonth); t != nil && len(t.Rows) > 0 {
		sb.WriteString("## Monthly P/L\n\n")
		sb.WriteString("| Month | P/L |\n")
		sb.WriteString("|-------|-----|\n")
		for _, row := range t.Rows {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", row[0], FormatMoney(row[1].(float64), r.Currency)))
		}
		sb.WriteString("\n")
	}

	// Worst Days
	sb.WriteString("## Worst Days\n\n")
	if len(r.Risk.WorstDays) > 0 {
		sb.WriteString("| Day | P/L |\n")
		sb.WriteString("|-----|-----|\n")
		for _, p := range r.Risk.WorstDays {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", p.Day.Format("2006-01-02"), FormatMoney(p.ProfitLoss, r.Currency)))
		}
	} else {
		sb.WriteString("No settled days.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// FormatMoney renders an amount in the given ISO currency, rounded to the
// currency's minor unit. Unknown currencies fall back to two decimals.
func FormatMoney(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return strconv.FormatFloat(amount, 'f', 2, 64)
	}

	factor := decimal.New(1, int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func optionalMoney(v *float64, currency string) string {
	if v == nil {
		return "-"
	}
	return FormatMoney(*v, currency)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
