package util

import (
	"testing"
	"time"
)

func TestFormatCoordinates(t *testing.T) {
	got := FormatCoordinates(40.6944, -73.9213)
	if got != "40.694400, -73.921300" {
		t.Fatalf("unexpected coordinates %q", got)
	}
}

func TestFormatWait(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "a moment"},
		{20 * time.Second, "a few seconds"},
		{61 * time.Second, "2 minutes"},
		{time.Minute, "1 minute"},
		{time.Hour, "1 hour"},
		{90 * time.Minute, "2 hours"},
	}
	for _, tt := range tests {
		if got := FormatWait(tt.d); got != tt.want {
			t.Errorf("FormatWait(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSchedule(t *testing.T) {
	if got := FormatSchedule("TBD", "TBD"); got != "Not scheduled" {
		t.Errorf("got %q", got)
	}
	if got := FormatSchedule("2025-06-20", "TBD"); got != "2025-06-20" {
		t.Errorf("got %q", got)
	}
	if got := FormatSchedule("2025-06-20", "19:00"); got != "2025-06-20 19:00" {
		t.Errorf("got %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("Bushwick, Brooklyn, NY", 10); got != "Bushwic..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}
