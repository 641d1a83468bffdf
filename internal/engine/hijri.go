package engine

import (
	"fmt"

	"github.com/tartampluch/go-hijri/internal/config"
)

// HijriDate is a lunar calendar date. Months have 29 or 30 days, decided by
// moon sighting, so the 30th only exists when a user confirms it.
type HijriDate struct {
	Day   int
	Month int
	Year  int
}

// DefaultDate is the state used before anything was stored.
func DefaultDate() HijriDate {
	return HijriDate{Day: config.DefaultDay, Month: config.DefaultMonth, Year: config.DefaultYear}
}

// Validate checks the ranges accepted from users: day 1..30, month 1..12, year >= 1.
func (d HijriDate) Validate() error {
	if d.Day < config.MinDay || d.Day > config.MaxDay {
		return invalid(config.FieldDay, config.ReasonDayRange)
	}
	if d.Month < config.MinMonth || d.Month > config.MaxMonth {
		return invalid(config.FieldMonth, config.ReasonMonthRange)
	}
	if d.Year < config.MinYear {
		return invalid(config.FieldYear, config.ReasonYearRange)
	}
	return nil
}

// AtMonthEnd reports whether automatic advancing is on hold.
func (d HijriDate) AtMonthEnd() bool {
	return d.Day == config.MonthEndDay
}

// String renders the date the way the input field expects it back: "D - M - Y".
func (d HijriDate) String() string {
	return fmt.Sprintf(config.DateFormatInput, d.Day, d.Month, d.Year)
}

// nextMonthStart returns day 1 of the following month, wrapping the year after month 12.
func (d HijriDate) nextMonthStart() HijriDate {
	month, year := d.Month+1, d.Year
	if month > config.MaxMonth {
		month = config.MinMonth
		year++
	}
	return HijriDate{Day: config.MinDay, Month: month, Year: year}
}

// EventKind enumerates the inputs of the date state machine.
type EventKind int

const (
	// EventAdvanceOneDay is the automatic, sunset-driven advance.
	EventAdvanceOneDay EventKind = iota
	// EventSetDate is an explicit, caller-validated overwrite.
	EventSetDate
)

func (k EventKind) String() string {
	switch k {
	case EventAdvanceOneDay:
		return "advance"
	case EventSetDate:
		return "set_date"
	default:
		return "unknown"
	}
}

// Event is one input of Transition.
type Event struct {
	Kind EventKind
	Date HijriDate // only meaningful for EventSetDate
}

// AdvanceOneDay builds the automatic advance event.
func AdvanceOneDay() Event {
	return Event{Kind: EventAdvanceOneDay}
}

// SetDate builds an explicit overwrite event.
func SetDate(d HijriDate) Event {
	return Event{Kind: EventSetDate, Date: d}
}

// ConfirmThirtyDayMonth builds the overwrite that moves the current month to its 30th day.
// The following AdvanceOneDay rolls to day 1 of the next month.
func ConfirmThirtyDayMonth(current HijriDate) Event {
	return SetDate(HijriDate{Day: config.MaxDay, Month: current.Month, Year: current.Year})
}

// Transition is the pure date state machine.
//
// AdvanceOneDay moves days 1..28 forward by one, leaves day 29 untouched
// (month end must be confirmed by a person) and rolls day 30 to the first
// day of the next month.
//
// SetDate stores the given date, except that day 1 entered while the
// current day is 29 or 30 means "the month ended": the supplied month and
// year are ignored and the next month is used instead.
func Transition(current HijriDate, ev Event) HijriDate {
	switch ev.Kind {
	case EventAdvanceOneDay:
		switch {
		case current.Day <= config.LastAutoDay:
			return HijriDate{Day: current.Day + 1, Month: current.Month, Year: current.Year}
		case current.Day == config.MonthEndDay:
			return current
		default:
			return current.nextMonthStart()
		}

	case EventSetDate:
		if ev.Date.Day == config.MinDay && current.Day >= config.MonthEndDay {
			return current.nextMonthStart()
		}
		return ev.Date
	}
	return current
}
