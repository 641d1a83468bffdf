package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/tartampluch/go-hijri/internal/engine"
)

// storeFactories runs the same contract against both DateStore implementations.
func storeFactories(t *testing.T) map[string]func() engine.DateStore {
	return map[string]func() engine.DateStore{
		"Prefs": func() engine.DateStore {
			return engine.NewPrefsStore(test.NewApp().Preferences())
		},
		"File": func() engine.DateStore {
			fs, err := engine.NewFileStore(filepath.Join(t.TempDir(), "nested", config.StateFileName))
			require.NoError(t, err)
			return fs
		},
	}
}

func TestDateStore_Defaults(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()

			d, err := s.LoadDate()
			require.NoError(t, err)
			assert.Equal(t, engine.DefaultDate(), d)

			sc, err := s.LoadSunset()
			require.NoError(t, err)
			assert.Equal(t, config.DefaultSunsetTime, sc.String())

			_, ok, err := s.LoadMarker()
			require.NoError(t, err)
			assert.False(t, ok, "Marker must be unset on a fresh store")

			first, err := s.FirstLaunch()
			require.NoError(t, err)
			assert.True(t, first)
		})
	}
}

func TestDateStore_RoundTrip(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()

			want := engine.HijriDate{Day: 29, Month: 7, Year: 1447}
			require.NoError(t, s.SaveDate(want))
			require.NoError(t, s.SaveSunset(engine.SunsetConfig{Hour: 18, Minute: 30}))
			require.NoError(t, s.SaveMarker(engine.DayIndex(20000)))
			require.NoError(t, s.CompleteFirstLaunch())

			d, err := s.LoadDate()
			require.NoError(t, err)
			assert.Equal(t, want, d)

			sc, err := s.LoadSunset()
			require.NoError(t, err)
			assert.Equal(t, "18:30", sc.String())

			m, ok, err := s.LoadMarker()
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, engine.DayIndex(20000), m)

			first, err := s.FirstLaunch()
			require.NoError(t, err)
			assert.False(t, first)
		})
	}
}

func TestDateStore_AdvanceAndResolved(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()

			_, ok, err := s.LoadResolved()
			require.NoError(t, err)
			assert.False(t, ok, "Resolved day must be unset on a fresh store")

			advanced := engine.HijriDate{Day: 11, Month: 3, Year: 1447}
			require.NoError(t, s.SaveAdvance(advanced, engine.DayIndex(20001)))

			d, err := s.LoadDate()
			require.NoError(t, err)
			assert.Equal(t, advanced, d)
			m, ok, err := s.LoadMarker()
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, engine.DayIndex(20001), m)

			settled := engine.HijriDate{Day: 1, Month: 4, Year: 1447}
			require.NoError(t, s.SaveResolved(settled, engine.DayIndex(20002)))

			d, err = s.LoadDate()
			require.NoError(t, err)
			assert.Equal(t, settled, d)
			r, ok, err := s.LoadResolved()
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, engine.DayIndex(20002), r)

			m, _, err = s.LoadMarker()
			require.NoError(t, err)
			assert.Equal(t, engine.DayIndex(20001), m, "A manual edit leaves the marker alone")
		})
	}
}

func TestFileStore_AdvanceIsOneWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.StateFileName)
	s, err := engine.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveDate(engine.HijriDate{Day: 10, Month: 3, Year: 1447}))

	// An unreadable file rejects the combined write as a whole.
	require.NoError(t, os.WriteFile(path, []byte("{not json"), config.FilePermUserRW))
	err = s.SaveAdvance(engine.HijriDate{Day: 11, Month: 3, Year: 1447}, engine.DayIndex(20001))
	assert.ErrorIs(t, err, engine.ErrPersistenceUnavailable)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "Nothing was partially written")
}

func TestPrefsStore_CorruptValue(t *testing.T) {
	prefs := test.NewApp().Preferences()
	prefs.SetInt(config.PrefDay, 45)
	prefs.SetString(config.PrefSunsetTime, "dusk")
	s := engine.NewPrefsStore(prefs)

	_, err := s.LoadDate()
	assert.ErrorIs(t, err, engine.ErrPersistenceUnavailable)

	_, err = s.LoadSunset()
	assert.ErrorIs(t, err, engine.ErrPersistenceUnavailable)
}

func TestPrefsStore_NoBackend(t *testing.T) {
	s := engine.NewPrefsStore(nil)
	_, err := s.LoadDate()
	assert.ErrorIs(t, err, engine.ErrPersistenceUnavailable)
	assert.ErrorIs(t, s.SaveDate(engine.DefaultDate()), engine.ErrPersistenceUnavailable)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.StateFileName)

	s1, err := engine.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.SaveDate(engine.HijriDate{Day: 3, Month: 2, Year: 1447}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, config.FilePermUserRW, info.Mode().Perm())

	s2, err := engine.NewFileStore(path)
	require.NoError(t, err)
	d, err := s2.LoadDate()
	require.NoError(t, err)
	assert.Equal(t, engine.HijriDate{Day: 3, Month: 2, Year: 1447}, d)

	// Sunset untouched by the date write.
	sc, err := s2.LoadSunset()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSunsetTime, sc.String())
}

func TestFileStore_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.StateFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), config.FilePermUserRW))

	s, err := engine.NewFileStore(path)
	require.NoError(t, err)

	_, err = s.LoadDate()
	assert.ErrorIs(t, err, engine.ErrPersistenceUnavailable)

	err = s.SaveDate(engine.DefaultDate())
	assert.ErrorIs(t, err, engine.ErrPersistenceUnavailable, "A write must not clobber an unreadable file")
}

func TestNewFileStore_EmptyPath(t *testing.T) {
	_, err := engine.NewFileStore("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrStorePathEmpty)
}
