package utils

import (
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	ts := time.Date(2024, 6, 1, 11, 0, 0, 123456789, moscow)
	assert.Equal(t, "2024-06-01T08:00:00.123Z", FormatTimestamp(ts))
}

func TestParseTimestamp(t *testing.T) {
	got, ok := ParseTimestamp("2024-06-01T08:00:00.123Z")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 1, 8, 0, 0, 123000000, time.UTC), got)

	got, ok = ParseTimestamp("2024-06-01T11:00:00+03:00")
	assert.True(t, ok)
	assert.Equal(t, 8, got.Hour())

	_, ok = ParseTimestamp("")
	assert.False(t, ok)
	_, ok = ParseTimestamp("yesterday")
	assert.False(t, ok)
}

func TestIsISODate(t *testing.T) {
	assert.True(t, IsISODate("2024-01-15"))
	assert.True(t, IsISODate("2024-01-15T09:00:00.000Z"))
	assert.False(t, IsISODate("15.01.2024"))
	assert.False(t, IsISODate("2024-13-01"))
}

func TestTrimmedStringAndFirstPresent(t *testing.T) {
	assert.Equal(t, null.StringFrom("x"), TrimmedString(null.StringFrom("  x ")))
	assert.False(t, TrimmedString(null.StringFrom("   ")).Valid)
	assert.False(t, TrimmedString(null.String{}).Valid)

	assert.Equal(t, null.StringFrom("b"), FirstPresent(null.StringFrom(" "), null.String{}, null.StringFrom("b")))
	assert.False(t, FirstPresent().Valid)
}
