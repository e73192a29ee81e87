package util

import (
    "strconv"
    "time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t, true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}

// DayFormat is the wire format for daily bar dates.
const DayFormat = "2006-01-02"

// FormatDay renders a time as a daily bar date.
func FormatDay(t time.Time) string { return t.Format(DayFormat) }

// NextBusinessDay returns the first weekday strictly after t. Exchange
// holidays are not modeled; weekends only.
func NextBusinessDay(t time.Time) time.Time {
	d := t.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// NextBusinessDays returns the n weekdays strictly after t, in order.
func NextBusinessDays(t time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	d := t
	for i := 0; i < n; i++ {
		d = NextBusinessDay(d)
		out = append(out, d)
	}
	return out
}