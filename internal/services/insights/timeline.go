package insights

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var timelinePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)(?:\s*(?:-|–|to)\s*(\d+(?:\.\d+)?))?\s*(days?|d|weeks?|wks?|w|months?|mos?|m|quarters?|q|years?|yrs?|y)?\b`)

var unitDays = map[string]float64{
	"":  1,
	"d": 1, "day": 1, "days": 1,
	"w": 7, "wk": 7, "wks": 7, "week": 7, "weeks": 7,
	"m": 30, "mo": 30, "mos": 30, "month": 30, "months": 30,
	"q": 90, "quarter": 90, "quarters": 90,
	"y": 365, "yr": 365, "yrs": 365, "year": 365, "years": 365,
}

var immediate = []string{"immediate", "immediately", "now", "asap", "today"}

// calendarPattern matches dates such as "Q3" or "H1" that are not durations
var calendarPattern = regexp.MustCompile(`\b(?:q[1-4]|h[12])\b`)

// maxTimelineDays bounds a usable timeline at ten years
const maxTimelineDays = 3650

// ParseTimeline converts labels such as "30 days", "6-8 weeks" or "1 quarter" into days.
// Ranges resolve to their upper bound. Returns false when no duration is found,
// when the label names a calendar period ("Q3 2025", "2026") or when the
// duration exceeds ten years.
func ParseTimeline(label string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return 0, false
	}
	for _, word := range immediate {
		if s == word {
			return 0, true
		}
	}

	if calendarPattern.MatchString(s) {
		return 0, false
	}

	m := timelinePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] != "" {
		upper, err := strconv.ParseFloat(m[2], 64)
		if err != nil || upper < value {
			return 0, false
		}
		value = upper
	}
	if m[2] == "" && m[3] == "" && value >= 1900 && value <= 2100 && value == math.Trunc(value) {
		// a bare year
		return 0, false
	}
	total := math.Ceil(value * unitDays[m[3]])
	if total > maxTimelineDays {
		return 0, false
	}
	return int(total), true
}
