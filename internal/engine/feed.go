package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-hijri/internal/config"
)

// FeedGenerator renders the current Hijri day as an iCalendar feed.
// The event runs from the last sunset to the next one, which is how the
// Hijri day is delimited.
type FeedGenerator struct {
	Clock Clock

	// FormatSummary allows the UI to inject localized strings into the feed.
	FormatSummary func(d HijriDate) string

	// MonthEndText is the alarm text attached on day 29. Defaults to the English reminder.
	MonthEndText string
}

// Render builds the VCALENDAR for snap.
func (g *FeedGenerator) Render(snap Snapshot) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := g.Clock.Now()
	d := snap.Date

	summary := fmt.Sprintf(config.FallbackSummary, d.Day, d.Month, d.Year)
	if g.FormatSummary != nil {
		summary = g.FormatSummary(d)
	}

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, feedUID(d))
	event.Props.SetText(config.PropSummary, summary)

	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(now.UTC())
	event.Props.Set(stamp)

	start := ical.NewProp(config.PropDTStart)
	start.SetDateTime(snap.Sunset.Previous(now).UTC())
	event.Props.Set(start)

	end := ical.NewProp(config.PropDTEnd)
	end.SetDateTime(snap.Sunset.Next(now).UTC())
	event.Props.Set(end)

	if snap.MonthEnd() {
		text := g.MonthEndText
		if text == "" {
			text = config.NotifBody
		}
		addAlarm(event, text)
	}

	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedRendered,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeySizeBytes, buf.Len())
	return buf.Bytes(), nil
}

// feedUID is stable for a given Hijri date so clients update instead of duplicating.
func feedUID(d HijriDate) string {
	input := fmt.Sprintf(config.FormatHashInput, d.Day, d.Month, d.Year, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}

// addAlarm appends a DISPLAY alarm firing at the start of the event.
func addAlarm(event *ical.Event, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = config.ICalTrigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
