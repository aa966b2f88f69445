package services

import (
	"math"
	"regexp"
	"strconv"
)

// MinutesPerDay is the length of a working day.
const MinutesPerDay = 8 * 60

// DefaultDurationMinutes is used when no unit can be found.
const DefaultDurationMinutes = 60

// MaxDurationMinutes caps parsed estimates at ten years of working days.
const MaxDurationMinutes = 10 * 365 * MinutesPerDay

var (
	hoursPattern   = regexp.MustCompile(`(?i)(\d+)\s*h`)
	minutesPattern = regexp.MustCompile(`(?i)(\d+)\s*m`)
	daysPattern    = regexp.MustCompile(`(?i)(\d+)\s*d`)
)

// ParseDuration turns free text such as "2 hours" or "1 day 30 min" into
// minutes. The first match of each unit counts; nothing parseable yields
// DefaultDurationMinutes and the result never exceeds MaxDurationMinutes.
func ParseDuration(text string) int {
	total := firstNumber(hoursPattern, text)*60 +
		firstNumber(minutesPattern, text) +
		firstNumber(daysPattern, text)*MinutesPerDay
	switch {
	case total == 0:
		return DefaultDurationMinutes
	case total > MaxDurationMinutes:
		return MaxDurationMinutes
	}
	return int(total)
}

// firstNumber parses in float64 so digit runs beyond int range saturate
// instead of wrapping.
func firstNumber(re *regexp.Regexp, text string) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsInf(n, 0) {
		return MaxDurationMinutes
	}
	return n
}
