package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// parseNumeric parses a cell as a number using the configured separators.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	// Reject inf/nan spellings; they are labels in practice.
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05",
	"1/2/2006", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"02.01.2006", "2006-01", "Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "02-Jan-2006", "2006",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var (
	hoursPattern   = regexp.MustCompile(`(\d+)\s*hour`)
	minutesPattern = regexp.MustCompile(`(\d+)\s*minute`)
)

// durationHours converts "8 hours 45 minutes" style text into hours rounded
// to two decimals. Either part may be absent; non-string values yield 0.
func durationHours(v Value) float64 {
	if v.Kind != String {
		return 0
	}
	h, m := 0, 0
	if g := hoursPattern.FindStringSubmatch(v.Str); g != nil {
		h, _ = strconv.Atoi(g[1])
	}
	if g := minutesPattern.FindStringSubmatch(v.Str); g != nil {
		m, _ = strconv.Atoi(g[1])
	}
	return roundTo2(float64(h) + float64(m)/60.0)
}

func roundTo2(x float64) float64 {
	return math.Round(x*100) / 100
}
