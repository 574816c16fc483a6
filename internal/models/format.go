package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// timestampLayouts are tried in order when reading a stored timestamp.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses s with the first matching layout. It returns nil when
// nothing matches; callers treat that as "unknown date".
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// ParseUploadDate parses the provider's YYYYMMDD encoding as midnight UTC.
func ParseUploadDate(s string) *time.Time {
	if len(s) != 8 {
		return nil
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatTimestamp renders t in the fixed-width form used for storage. Stored
// values are compared as text, so every writer must go through here.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatDuration renders seconds as m:ss or h:mm:ss. Unknown or zero is "--:--".
func FormatDuration(seconds *int64) string {
	if seconds == nil || *seconds == 0 {
		return "--:--"
	}
	s := *seconds
	hours := s / 3600
	minutes := (s % 3600) / 60
	secs := s % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FormatViews abbreviates a view count: 999, 1K, 2.5M.
func FormatViews(count *uint64) string {
	if count == nil {
		return ""
	}
	c := *count
	switch {
	case c >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(c)/1_000_000)
	case c >= 1_000:
		return fmt.Sprintf("%dK", c/1000)
	default:
		return fmt.Sprintf("%d", c)
	}
}

const day = 24 * time.Hour

// relativeMagnitudes give the compact "5m ago" ... "1y ago" form. Each entry
// applies below its D.
var relativeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "1m %s", DivBy: 1},
	{D: time.Hour, Format: "%dm %s", DivBy: time.Minute},
	{D: day, Format: "%dh %s", DivBy: time.Hour},
	{D: 7 * day, Format: "%dd %s", DivBy: day},
	{D: 30 * day, Format: "%dw %s", DivBy: 7 * day},
	{D: 365 * day, Format: "%dmo %s", DivBy: 30 * day},
	{D: math.MaxInt64, Format: "%dy %s", DivBy: 365 * day},
}

// RelativeDate describes how long ago date was relative to now.
func RelativeDate(date, now time.Time) string {
	if date.After(now) {
		return "upcoming"
	}
	return humanize.CustomRelTime(date, now, "ago", "from now", relativeMagnitudes)
}
