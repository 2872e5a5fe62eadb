package ingestion

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseMoney parses a money-like cell into a signed amount.
// "(1.23)" is negative, currency symbols (including the A$ and AU$
// prefixes), thousands separators and embedded whitespace are ignored, and a
// doubled minus collapses to one.
// Returns false for empty or unparseable input.
func ParseMoney(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}

	neg := false
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		s = s[1 : len(s)-1]
		neg = true
	}
	s = stripDollarPrefix(s)

	s = strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, "--", "-")
	if s == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if neg {
		d = d.Neg()
	}
	return d.InexactFloat64(), true
}

// dollarPrefixes are letter-qualified dollar signs, matched case-insensitively.
var dollarPrefixes = []string{"AU$", "A$"}

// stripDollarPrefix removes a leading A$ or AU$, keeping a leading minus.
func stripDollarPrefix(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", strings.TrimSpace(s[1:])
	}
	for _, p := range dollarPrefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return sign + s[len(p):]
		}
	}
	return sign + s
}

// exportLayouts are the layouts written by exchange statement exports.
// They are tried first so "03-Aug-25" is never read month-first.
var exportLayouts = []string{
	"2-Jan-06 15:04",
	"2-Jan-06 15:04:05",
	"2-Jan-2006 15:04",
	"2-Jan-2006 15:04:05",
	"2-Jan-06",
	"2-Jan-2006",
}

// fallbackLayouts cover other common renderings. Ambiguous numeric dates are
// read day-before-month.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 3:04:05 PM",
	"2/1/2006 3:04 PM",
	"2/1/2006",
	"2/1/06 15:04",
	"2/1/06",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
	"2.1.2006 15:04",
	"2.1.2006",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"2 January 2006 15:04",
	"2 January 2006",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp parses a date/time cell.
// Returns false for empty or unparseable input.
func ParseTimestamp(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range exportLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber coerces a numeric cell such as odds.
// Returns false for empty, unparseable or non-finite input.
func ParseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
