package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatCoordinates formats a coordinate pair with six decimals, the
// precision the backend expects for activity locations.
func FormatCoordinates(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', 6, 64) + ", " + strconv.FormatFloat(lng, 'f', 6, 64)
}

// FormatWait turns a retry-after duration into "a few seconds", "1 minute", "12 minutes" or "2 hours".
func FormatWait(d time.Duration) string {
	switch {
	case d <= 0:
		return "a moment"
	case d < time.Minute:
		return "a few seconds"
	case d < time.Hour:
		return plural(int(math.Ceil(d.Minutes())), "minute")
	default:
		return plural(int(math.Ceil(d.Hours())), "hour")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatDateHuman formats a timestamp with humanized relative display.
// "Today", "Yesterday", "3d ago", "Jan 15", "Jan 15 '24"
func FormatDateHuman(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	local := t.In(now.Location())
	dateDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, now.Location())

	days := int(today.Sub(dateDay).Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return fmt.Sprintf("%dd ago", days)
	case local.Year() == now.Year():
		return local.Format("Jan 02")
	default:
		return local.Format("Jan 02 '06")
	}
}

// FormatSchedule renders the date fields of an activity, hiding the TBD placeholder.
func FormatSchedule(day, clock string) string {
	day = strings.TrimSpace(day)
	clock = strings.TrimSpace(clock)
	if day == "" || day == "TBD" {
		return "Not scheduled"
	}
	if clock == "" || clock == "TBD" {
		return day
	}
	return day + " " + clock
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
