package engine

import (
	"time"

	"github.com/tartampluch/go-hijri/internal/config"
)

// Clock abstracts time.Now() to allow deterministic testing.
// The evaluator, the scheduler and the feed all read "now" through it.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// DayIndex is a day-granularity counter: the number of days between
// 1970-01-01 and a local calendar date.
type DayIndex int64

// DayIndexOf returns the index of the local calendar date of t.
// The wall-clock date is used as-is, so the index does not move with the UTC offset.
func DayIndexOf(t time.Time) DayIndex {
	y, m, d := t.Date()
	return DayIndex(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / config.SecondsPerDay)
}
