package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the calendar date format used across the API (YYYY-MM-DD).
const Layout = "2006-01-02"

// lenientLayouts are tried, in order, when a date is not in Layout.
var lenientLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
}

// WeekRange is a Monday-start week with its seven calendar dates.
type WeekRange struct {
	Start time.Time
	Dates [7]string
}

// Contains reports whether the ISO date falls inside the week.
func (w WeekRange) Contains(date string) bool {
	for _, d := range w.Dates {
		if d == date {
			return true
		}
	}
	return false
}

// StartOfWeek returns the Monday at 00:00 UTC of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// DatesOfWeek lists start and the six following days as ISO dates.
func DatesOfWeek(start time.Time) []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = FormatISO(start.AddDate(0, 0, i))
	}
	return out
}

// Week returns the WeekRange containing t.
func Week(t time.Time) WeekRange {
	start := StartOfWeek(t)
	var w WeekRange
	w.Start = start
	copy(w.Dates[:], DatesOfWeek(start))
	return w
}

// FormatISO formats t as a UTC calendar date.
func FormatISO(t time.Time) string {
	return t.UTC().Format(Layout)
}

// TruncateISO keeps the first 10 characters of an ISO-prefixed string.
func TruncateISO(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:10]
}

// DaysAgo returns the local calendar date n days before now.
func DaysAgo(now time.Time, n int) string {
	return now.Local().AddDate(0, 0, -n).Format(Layout)
}

// IsISODate reports whether s is a valid YYYY-MM-DD calendar date.
func IsISODate(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// ParseOr parses user input as a date. Input that is not YYYY-MM-DD is
// parsed leniently; when nothing matches, fallback is returned.
func ParseOr(input string, fallback time.Time) time.Time {
	s := strings.TrimSpace(input)
	if s == "" {
		return fallback
	}
	if t, err := time.Parse(Layout, s); err == nil {
		return t
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

// Between enumerates the ISO dates from..to inclusive.
func Between(from, to string) ([]string, error) {
	start, err := time.Parse(Layout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	end, err := time.Parse(Layout, to)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", to, err)
	}

	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(Layout))
	}
	return out, nil
}
