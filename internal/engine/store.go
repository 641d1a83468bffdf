package engine

import (
	"errors"

	"github.com/tartampluch/go-hijri/internal/config"
)

// DateStore persists the calendar state: the current Hijri date, the sunset
// time, the last-applied marker and the first-launch flag.
// Implementations return errors that wrap ErrPersistenceUnavailable.
type DateStore interface {
	LoadDate() (HijriDate, error)
	SaveDate(HijriDate) error
	LoadSunset() (SunsetConfig, error)
	SaveSunset(SunsetConfig) error

	// LoadMarker returns the day index of the last applied advance.
	// ok is false while no marker was ever stored.
	LoadMarker() (marker DayIndex, ok bool, err error)
	SaveMarker(DayIndex) error

	// SaveAdvance stores an automatic advance and its marker in one write.
	SaveAdvance(d HijriDate, marker DayIndex) error

	// LoadResolved returns the day on which a manual edit made after sunset
	// settled the date. ok is false while no such edit was ever stored.
	LoadResolved() (day DayIndex, ok bool, err error)
	// SaveResolved stores a manual edit made after sunset together with its day.
	SaveResolved(d HijriDate, day DayIndex) error

	FirstLaunch() (bool, error)
	CompleteFirstLaunch() error
}

// Preferences is the subset of fyne.Preferences used by PrefsStore.
type Preferences interface {
	IntWithFallback(key string, fallback int) int
	SetInt(key string, value int)
	StringWithFallback(key, fallback string) string
	SetString(key string, value string)
	BoolWithFallback(key string, fallback bool) bool
	SetBool(key string, value bool)
}

var errNoPrefs = errors.New(config.ErrPrefsMissing)

// markerUnset is stored in place of a marker that was never captured.
const markerUnset = -1

// PrefsStore keeps the state in the application preferences.
type PrefsStore struct {
	Prefs Preferences
}

// NewPrefsStore wraps a preferences backend.
func NewPrefsStore(p Preferences) *PrefsStore {
	return &PrefsStore{Prefs: p}
}

func (s *PrefsStore) LoadDate() (HijriDate, error) {
	if s.Prefs == nil {
		return HijriDate{}, persistenceError(config.ErrStoreRead, errNoPrefs)
	}
	d := HijriDate{
		Day:   s.Prefs.IntWithFallback(config.PrefDay, config.DefaultDay),
		Month: s.Prefs.IntWithFallback(config.PrefMonth, config.DefaultMonth),
		Year:  s.Prefs.IntWithFallback(config.PrefYear, config.DefaultYear),
	}
	if err := d.Validate(); err != nil {
		return HijriDate{}, persistenceError(config.ErrStoreCorrupt, err)
	}
	return d, nil
}

func (s *PrefsStore) SaveDate(d HijriDate) error {
	if s.Prefs == nil {
		return persistenceError(config.ErrStoreWrite, errNoPrefs)
	}
	s.Prefs.SetInt(config.PrefDay, d.Day)
	s.Prefs.SetInt(config.PrefMonth, d.Month)
	s.Prefs.SetInt(config.PrefYear, d.Year)
	return nil
}

func (s *PrefsStore) LoadSunset() (SunsetConfig, error) {
	if s.Prefs == nil {
		return SunsetConfig{}, persistenceError(config.ErrStoreRead, errNoPrefs)
	}
	raw := s.Prefs.StringWithFallback(config.PrefSunsetTime, config.DefaultSunsetTime)
	sc, err := ParseSunsetTime(raw)
	if err != nil {
		return SunsetConfig{}, persistenceError(config.ErrStoreCorrupt, err)
	}
	return sc, nil
}

func (s *PrefsStore) SaveSunset(sc SunsetConfig) error {
	if s.Prefs == nil {
		return persistenceError(config.ErrStoreWrite, errNoPrefs)
	}
	s.Prefs.SetString(config.PrefSunsetTime, sc.String())
	return nil
}

func (s *PrefsStore) LoadMarker() (DayIndex, bool, error) {
	if s.Prefs == nil {
		return 0, false, persistenceError(config.ErrStoreRead, errNoPrefs)
	}
	v := s.Prefs.IntWithFallback(config.PrefLastMarker, markerUnset)
	if v < 0 {
		return 0, false, nil
	}
	return DayIndex(v), true, nil
}

func (s *PrefsStore) SaveMarker(m DayIndex) error {
	if s.Prefs == nil {
		return persistenceError(config.ErrStoreWrite, errNoPrefs)
	}
	s.Prefs.SetInt(config.PrefLastMarker, int(m))
	return nil
}

// SaveAdvance writes the date before the marker. Preferences offer no
// transaction; a crash in between leaves the marker stale.
func (s *PrefsStore) SaveAdvance(d HijriDate, m DayIndex) error {
	if err := s.SaveDate(d); err != nil {
		return err
	}
	return s.SaveMarker(m)
}

func (s *PrefsStore) LoadResolved() (DayIndex, bool, error) {
	if s.Prefs == nil {
		return 0, false, persistenceError(config.ErrStoreRead, errNoPrefs)
	}
	v := s.Prefs.IntWithFallback(config.PrefResolvedDay, markerUnset)
	if v < 0 {
		return 0, false, nil
	}
	return DayIndex(v), true, nil
}

func (s *PrefsStore) SaveResolved(d HijriDate, day DayIndex) error {
	if err := s.SaveDate(d); err != nil {
		return err
	}
	s.Prefs.SetInt(config.PrefResolvedDay, int(day))
	return nil
}

func (s *PrefsStore) FirstLaunch() (bool, error) {
	if s.Prefs == nil {
		return false, persistenceError(config.ErrStoreRead, errNoPrefs)
	}
	return s.Prefs.BoolWithFallback(config.PrefFirstLaunch, true), nil
}

func (s *PrefsStore) CompleteFirstLaunch() error {
	if s.Prefs == nil {
		return persistenceError(config.ErrStoreWrite, errNoPrefs)
	}
	s.Prefs.SetBool(config.PrefFirstLaunch, false)
	return nil
}
