package model

import "time"

// TimestampLayout is the storage format for all record timestamps.
// Fixed-width, zero-padded, always UTC, so lexicographic order on the
// stored strings equals chronological order. The metrics device index
// sorts on these strings, and summary aggregation compares them
// directly.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in the storage format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a stored timestamp string.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}
