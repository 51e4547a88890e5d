package utils

import (
	"testing"
	"time"
)

func TestClockOffset(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                 "00:00:00",
		30 * time.Second:                  "00:00:30",
		2*time.Minute + 18*time.Second:    "00:02:18",
		time.Hour + 1500*time.Millisecond: "01:00:02",
		-time.Second:                      "00:00:00",
	}
	for d, want := range cases {
		if got := ClockOffset(d); got != want {
			t.Fatalf("ClockOffset(%s): expected %s, got %s", d, want, got)
		}
	}
}

func TestISOTimestamp(t *testing.T) {
	at := time.Date(2025, 1, 15, 14, 23, 0, 123456000, time.FixedZone("CET", 3600))
	if got := ISOTimestamp(at); got != "2025-01-15T13:23:00.123456Z" {
		t.Fatalf("unexpected timestamp %s", got)
	}
	if _, err := ParseRFC3339(""); err == nil {
		t.Fatalf("expected error for empty value")
	}
}
