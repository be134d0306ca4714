package utils

import (
	"strings"
	"time"
)

// TimestampLayout - ISO-8601 в UTC с миллисекундами, как Date.toISOString().
// Строки в таком формате сортируются лексикографически так же, как по времени.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DateLayout - только дата (покупка, гарантия).
const DateLayout = "2006-01-02"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp разбирает и наш формат, и любой RFC3339.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// IsISODate - "2024-01-15" или полный ISO-8601 таймстамп.
func IsISODate(s string) bool {
	if _, err := time.Parse(DateLayout, s); err == nil {
		return true
	}
	_, ok := ParseTimestamp(s)
	return ok
}
