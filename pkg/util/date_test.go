package util

import (
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	got, ok := ParseTime("2024-10-10T10:10:10Z")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTimeUnixSeconds(t *testing.T) {
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got, ok := ParseTime("1728555010")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != want.Unix() {
		t.Fatalf("got unix %d, want %d", got.Unix(), want.Unix())
	}
}

func TestParseTimeUnixMillis(t *testing.T) {
	got, ok := ParseTime("1728555010500")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UnixMilli() != 1728555010500 {
		t.Fatalf("got millis %d", got.UnixMilli())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if got := ParseTimeDefault("", def); !got.Equal(def) {
		t.Fatalf("empty input should yield default, got %v", got)
	}
	if got := ParseTimeDefault("not-a-time", def); !got.Equal(def) {
		t.Fatalf("bad input should yield default, got %v", got)
	}
}

func TestClampRange(t *testing.T) {
	to := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	from := to.Add(-90 * 24 * time.Hour)

	gotFrom, gotTo := ClampRange(from, to, 30*24*time.Hour)
	if !gotTo.Equal(to) {
		t.Fatalf("to should be unchanged, got %v", gotTo)
	}
	if want := to.Add(-30 * 24 * time.Hour); !gotFrom.Equal(want) {
		t.Fatalf("from should be clamped to %v, got %v", want, gotFrom)
	}

	gotFrom, gotTo = ClampRange(from, to, 0)
	if !gotFrom.Equal(from) || !gotTo.Equal(to) {
		t.Fatalf("zero max should leave range untouched")
	}
}
