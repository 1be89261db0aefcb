package util

import (
	"strconv"
	"time"
)

// ParseTime accepts RFC3339 timestamps and bare unix epochs. Integers of
// twelve or more digits are read as milliseconds, which covers exchange
// feeds that ship millisecond bar times.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}, false
	}
	if n >= 100_000_000_000 {
		return time.UnixMilli(n), true
	}
	return time.Unix(n, 0), true
}

// ParseTimeDefault falls back to def when s is empty or unparseable.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ClampRange narrows [from, to] so the window never exceeds max, keeping
// the recent end. A non-positive max leaves the range untouched.
func ClampRange(from, to time.Time, max time.Duration) (time.Time, time.Time) {
	if max <= 0 || !to.After(from) {
		return from, to
	}
	if to.Sub(from) > max {
		from = to.Add(-max)
	}
	return from, to
}
