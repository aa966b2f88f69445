package domain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxTimeframeUnits caps the number in a timeframe so date arithmetic
// cannot overflow.
const maxTimeframeUnits = 10000

var (
	weeksPattern  = regexp.MustCompile(`(\d+)\s*week`)
	monthsPattern = regexp.MustCompile(`(\d+)\s*month`)
	daysPattern   = regexp.MustCompile(`(\d+)\s*day`)
)

// CalculateTargetDate turns a timeframe such as "6 weeks" into a date
// relative to from. A unit without a number uses that unit's default
// (4 weeks, 3 months, 30 days); anything else is three months out.
func CalculateTargetDate(timeframe string, from time.Time) time.Time {
	tf := strings.ToLower(timeframe)
	switch {
	case strings.Contains(tf, "week"):
		return from.AddDate(0, 0, 7*numberOr(weeksPattern, tf, 4))
	case strings.Contains(tf, "month"):
		return from.AddDate(0, numberOr(monthsPattern, tf, 3), 0)
	case strings.Contains(tf, "day"):
		return from.AddDate(0, 0, numberOr(daysPattern, tf, 30))
	default:
		return from.AddDate(0, 3, 0)
	}
}

func numberOr(re *regexp.Regexp, s string, fallback int) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(m[1])
	switch {
	case errors.Is(err, strconv.ErrRange) || n > maxTimeframeUnits:
		return maxTimeframeUnits
	case err != nil || n == 0:
		return fallback
	}
	return n
}
