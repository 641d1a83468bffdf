package engine_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/tartampluch/go-hijri/internal/engine"
)

func decodeFeed(t *testing.T, data []byte) *ical.Calendar {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	return cal
}

func TestFeedGenerator_Render(t *testing.T) {
	now := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
	gen := &engine.FeedGenerator{
		Clock: &MockClock{CurrentTime: now},
		FormatSummary: func(d engine.HijriDate) string {
			return "Hijri " + d.String()
		},
	}

	snap := engine.Snapshot{
		Date:   engine.HijriDate{Day: 15, Month: 7, Year: 1447},
		Sunset: engine.SunsetConfig{Hour: 18, Minute: 0},
	}
	data, err := gen.Render(snap)
	require.NoError(t, err)

	cal := decodeFeed(t, data)
	events := cal.Events()
	require.Len(t, events, 1)
	ev := events[0]

	summary, err := ev.Props.Text(config.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Hijri 15 - 7 - 1447", summary)

	start, err := ev.DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), start)

	end, err := ev.DateTimeEnd(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC), end)

	assert.Empty(t, ev.Children, "No alarm outside month end")
}

func TestFeedGenerator_MonthEndAlarm(t *testing.T) {
	gen := &engine.FeedGenerator{Clock: &MockClock{CurrentTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}}

	data, err := gen.Render(engine.Snapshot{
		Date:   engine.HijriDate{Day: 29, Month: 8, Year: 1447},
		Sunset: engine.DefaultSunset(),
	})
	require.NoError(t, err)

	ev := decodeFeed(t, data).Events()[0]
	summary, _ := ev.Props.Text(config.PropSummary)
	assert.Equal(t, "29/8/1447 AH", summary)

	require.Len(t, ev.Children, 1)
	alarm := ev.Children[0]
	assert.Equal(t, config.ICalComponent, alarm.Name)
	desc, _ := alarm.Props.Text(config.PropDescription)
	assert.Equal(t, config.NotifBody, desc)
}

func TestFeedGenerator_StableUID(t *testing.T) {
	clock := &MockClock{CurrentTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	gen := &engine.FeedGenerator{Clock: clock}
	snap := engine.Snapshot{Date: engine.HijriDate{Day: 2, Month: 1, Year: 1447}, Sunset: engine.DefaultSunset()}

	first, err := gen.Render(snap)
	require.NoError(t, err)
	clock.CurrentTime = clock.CurrentTime.Add(time.Hour)
	second, err := gen.Render(snap)
	require.NoError(t, err)

	uid1, _ := decodeFeed(t, first).Events()[0].Props.Text(config.PropUID)
	uid2, _ := decodeFeed(t, second).Events()[0].Props.Text(config.PropUID)
	assert.Equal(t, uid1, uid2)
	assert.Contains(t, uid1, "@"+config.ICalDomain)
}
