package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/tartampluch/go-hijri/internal/engine"
)

func TestParseSunsetTime(t *testing.T) {
	tests := []struct {
		input   string
		want    string // 24h form
		wantErr bool
	}{
		{"18:00", "18:00", false},
		{"6:30 PM", "18:30", false},
		{"6:30pm", "18:30", false},
		{"  06:05 am ", "06:05", false},
		{"12:00 AM", "00:00", false},
		{"12:15 PM", "12:15", false},
		{"0:00", "00:00", false},
		{"23:59", "23:59", false},
		{"7:5", "", true},
		{"24:00", "", true},
		{"13:00 PM", "", true},
		{"18h30", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sc, err := engine.ParseSunsetTime(tt.input)
			if tt.wantErr {
				var verr *engine.ValidationError
				require.True(t, errors.As(err, &verr), "Expected ValidationError, got %v", err)
				assert.Equal(t, config.FieldSunset, verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sc.String())
		})
	}
}

func TestSunsetConfig_Format12h(t *testing.T) {
	tests := []struct {
		sc   engine.SunsetConfig
		want string
	}{
		{engine.SunsetConfig{Hour: 18, Minute: 30}, "6:30 PM"},
		{engine.SunsetConfig{Hour: 0, Minute: 5}, "12:05 AM"},
		{engine.SunsetConfig{Hour: 12, Minute: 0}, "12:00 PM"},
		{engine.SunsetConfig{Hour: 9, Minute: 45}, "9:45 AM"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sc.Format12h())
		})
	}
}

func TestSunsetConfig_RoundTrip12h(t *testing.T) {
	sc, err := engine.ParseSunsetTime("6:30 PM")
	require.NoError(t, err)
	assert.Equal(t, "18:30", sc.String())

	again, err := engine.ParseSunsetTime(sc.Format12h())
	require.NoError(t, err)
	assert.Equal(t, sc, again)
}

func TestSunsetConfig_Next(t *testing.T) {
	sc := engine.DefaultSunset()
	loc := time.Local

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"One minute before", time.Date(2025, 3, 10, 17, 59, 0, 0, loc), time.Date(2025, 3, 10, 18, 0, 0, 0, loc)},
		{"One minute after", time.Date(2025, 3, 10, 18, 1, 0, 0, loc), time.Date(2025, 3, 11, 18, 0, 0, 0, loc)},
		{"Exactly at sunset", time.Date(2025, 3, 10, 18, 0, 0, 0, loc), time.Date(2025, 3, 11, 18, 0, 0, 0, loc)},
		{"Month boundary", time.Date(2025, 2, 28, 20, 0, 0, 0, loc), time.Date(2025, 3, 1, 18, 0, 0, 0, loc)},
		{"Year boundary", time.Date(2025, 12, 31, 19, 0, 0, 0, loc), time.Date(2026, 1, 1, 18, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(sc.Next(tt.now)), "want %s got %s", tt.want, sc.Next(tt.now))
		})
	}
}

func TestSunsetConfig_PreviousAndReached(t *testing.T) {
	sc := engine.SunsetConfig{Hour: 18, Minute: 0}
	before := time.Date(2025, 3, 10, 17, 59, 0, 0, time.UTC)
	after := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	assert.False(t, sc.Reached(before))
	assert.True(t, sc.Reached(after))

	assert.Equal(t, time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC), sc.Previous(before))
	assert.Equal(t, after, sc.Previous(after))
}

func TestDayIndexOf(t *testing.T) {
	morning := time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC)
	night := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	next := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, engine.DayIndexOf(morning), engine.DayIndexOf(night))
	assert.Equal(t, engine.DayIndexOf(morning)+1, engine.DayIndexOf(next))
	assert.Equal(t, engine.DayIndex(0), engine.DayIndexOf(time.Date(1970, 1, 1, 12, 0, 0, 0, time.UTC)))

	// The wall-clock date decides, not the UTC instant.
	tokyo := time.FixedZone("JST", 9*60*60)
	lateTokyo := time.Date(2025, 3, 11, 1, 0, 0, 0, tokyo) // Still 2025-03-10 in UTC.
	assert.Equal(t, engine.DayIndexOf(next), engine.DayIndexOf(lateTokyo))
}
