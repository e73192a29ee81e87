package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}
func TestNextBusinessDaySkipsWeekend(t *testing.T) {
    // 2024-10-11 is a Friday.
    fri := time.Date(2024, 10, 11, 0, 0, 0, 0, time.UTC)
    got := NextBusinessDay(fri)
    if got.Weekday() != time.Monday || got.Day() != 14 {
        t.Fatalf("unexpected next business day %v", got)
    }
}

func TestNextBusinessDays(t *testing.T) {
    // 2024-10-10 is a Thursday: Fri, Mon, Tue follow.
    thu := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
    got := NextBusinessDays(thu, 3)
    if len(got) != 3 {
        t.Fatalf("expected 3 days, got %d", len(got))
    }
    wantDays := []int{11, 14, 15}
    for i, d := range got {
        if d.Day() != wantDays[i] {
            t.Fatalf("day %d = %v, want day-of-month %d", i, d, wantDays[i])
        }
    }
}
