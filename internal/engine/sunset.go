package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-hijri/internal/config"
)

var (
	// h:mm AM/PM, hour 1..12, optional space before the period.
	reTime12 = regexp.MustCompile(`^(1[0-2]|0?[1-9]):([0-5][0-9])\s*(AM|PM)$`)
	// H:mm or HH:mm, hour 0..23.
	reTime24 = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
)

// SunsetConfig is the local wall-clock time at which the Hijri day changes.
type SunsetConfig struct {
	Hour   int
	Minute int
}

// DefaultSunset returns 18:00.
func DefaultSunset() SunsetConfig {
	s, _ := ParseSunsetTime(config.DefaultSunsetTime)
	return s
}

// ParseSunsetTime accepts "HH:MM" in 24-hour form or "h:MM AM/PM" in 12-hour form
// (case-insensitive, surrounding whitespace ignored).
func ParseSunsetTime(raw string) (SunsetConfig, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return SunsetConfig{}, invalid(config.FieldSunset, config.ReasonEmpty)
	}

	if m := reTime12.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		switch {
		case m[3] == config.PeriodPM && hour != config.HoursPerHalfDay:
			hour += config.HoursPerHalfDay
		case m[3] == config.PeriodAM && hour == config.HoursPerHalfDay:
			hour = 0
		}
		return SunsetConfig{Hour: hour, Minute: minute}, nil
	}

	if m := reTime24.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return SunsetConfig{Hour: hour, Minute: minute}, nil
	}

	return SunsetConfig{}, invalid(config.FieldSunset, config.ReasonTimeFormat)
}

// String returns the canonical stored form, "HH:MM".
func (s SunsetConfig) String() string {
	return fmt.Sprintf(config.TimeFormat24, s.Hour, s.Minute)
}

// Format12h renders the time for display, e.g. "6:30 PM".
func (s SunsetConfig) Format12h() string {
	period := config.PeriodAM
	if s.Hour >= config.HoursPerHalfDay {
		period = config.PeriodPM
	}
	hour := s.Hour % config.HoursPerHalfDay
	if hour == 0 {
		hour = config.HoursPerHalfDay
	}
	return fmt.Sprintf(config.TimeFormat12, hour, s.Minute, period)
}

// Reached reports whether the wall-clock time of now is at or past sunset.
func (s SunsetConfig) Reached(now time.Time) bool {
	h, m := now.Hour(), now.Minute()
	return h > s.Hour || (h == s.Hour && m >= s.Minute)
}

// On returns the sunset instant on the calendar day of t, in t's location.
func (s SunsetConfig) On(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, s.Hour, s.Minute, 0, 0, t.Location())
}

// Next returns the first sunset strictly after now.
func (s SunsetConfig) Next(now time.Time) time.Time {
	today := s.On(now)
	if today.After(now) {
		return today
	}
	y, mo, d := now.Date()
	return time.Date(y, mo, d+1, s.Hour, s.Minute, 0, 0, now.Location())
}

// Previous returns the latest sunset at or before now.
func (s SunsetConfig) Previous(now time.Time) time.Time {
	today := s.On(now)
	if !today.After(now) {
		return today
	}
	y, mo, d := now.Date()
	return time.Date(y, mo, d-1, s.Hour, s.Minute, 0, 0, now.Location())
}
