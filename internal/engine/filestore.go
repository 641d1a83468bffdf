package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tartampluch/go-hijri/internal/config"
)

// FileStore implements DateStore on a single JSON file.
// It backs the headless mode, where no preferences backend exists.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates the parent directory and returns a store for path.
// The file itself is created on the first save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New(config.ErrStorePathEmpty)
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil {
		return nil, persistenceError(config.ErrCreateDir, err)
	}
	return &FileStore{path: path}, nil
}

// fileState is the on-disk layout. Pointer fields distinguish "never written".
type fileState struct {
	Day         int    `json:"day"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	SunsetTime  string `json:"sunset_time"`
	LastMarker  *int64 `json:"last_update_marker,omitempty"`
	ResolvedDay *int64 `json:"resolved_day,omitempty"`
	FirstLaunch *bool  `json:"first_launch,omitempty"`
}

func defaultFileState() fileState {
	return fileState{
		Day:        config.DefaultDay,
		Month:      config.DefaultMonth,
		Year:       config.DefaultYear,
		SunsetTime: config.DefaultSunsetTime,
	}
}

// read must be called with mu held.
func (f *FileStore) read() (fileState, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultFileState(), nil
		}
		return fileState{}, persistenceError(config.ErrStoreRead, err)
	}

	st := defaultFileState()
	if err := json.Unmarshal(data, &st); err != nil {
		return fileState{}, persistenceError(config.ErrStoreDecode, err)
	}
	return st, nil
}

// write must be called with mu held.
func (f *FileStore) write(st fileState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return persistenceError(config.ErrStoreEncode, err)
	}

	// Atomic replace.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, config.FilePermUserRW); err != nil {
		return persistenceError(config.ErrStoreWrite, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return persistenceError(config.ErrStoreWrite, err)
	}
	return nil
}

func (f *FileStore) update(fn func(*fileState)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.read()
	if err != nil {
		return err
	}
	fn(&st)
	return f.write(st)
}

func (f *FileStore) LoadDate() (HijriDate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.read()
	if err != nil {
		return HijriDate{}, err
	}
	d := HijriDate{Day: st.Day, Month: st.Month, Year: st.Year}
	if err := d.Validate(); err != nil {
		return HijriDate{}, persistenceError(config.ErrStoreCorrupt, err)
	}
	return d, nil
}

func (f *FileStore) SaveDate(d HijriDate) error {
	return f.update(func(st *fileState) {
		st.Day, st.Month, st.Year = d.Day, d.Month, d.Year
	})
}

func (f *FileStore) LoadSunset() (SunsetConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.read()
	if err != nil {
		return SunsetConfig{}, err
	}
	sc, err := ParseSunsetTime(st.SunsetTime)
	if err != nil {
		return SunsetConfig{}, persistenceError(config.ErrStoreCorrupt, err)
	}
	return sc, nil
}

func (f *FileStore) SaveSunset(sc SunsetConfig) error {
	return f.update(func(st *fileState) {
		st.SunsetTime = sc.String()
	})
}

func (f *FileStore) LoadMarker() (DayIndex, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.read()
	if err != nil {
		return 0, false, err
	}
	if st.LastMarker == nil {
		return 0, false, nil
	}
	return DayIndex(*st.LastMarker), true, nil
}

func (f *FileStore) SaveMarker(m DayIndex) error {
	v := int64(m)
	return f.update(func(st *fileState) {
		st.LastMarker = &v
	})
}

// SaveAdvance replaces the date and the marker in a single rename.
func (f *FileStore) SaveAdvance(d HijriDate, m DayIndex) error {
	v := int64(m)
	return f.update(func(st *fileState) {
		st.Day, st.Month, st.Year = d.Day, d.Month, d.Year
		st.LastMarker = &v
	})
}

func (f *FileStore) LoadResolved() (DayIndex, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.read()
	if err != nil {
		return 0, false, err
	}
	if st.ResolvedDay == nil {
		return 0, false, nil
	}
	return DayIndex(*st.ResolvedDay), true, nil
}

func (f *FileStore) SaveResolved(d HijriDate, day DayIndex) error {
	v := int64(day)
	return f.update(func(st *fileState) {
		st.Day, st.Month, st.Year = d.Day, d.Month, d.Year
		st.ResolvedDay = &v
	})
}

func (f *FileStore) FirstLaunch() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.read()
	if err != nil {
		return false, err
	}
	return st.FirstLaunch == nil || *st.FirstLaunch, nil
}

func (f *FileStore) CompleteFirstLaunch() error {
	done := false
	return f.update(func(st *fileState) {
		st.FirstLaunch = &done
	})
}

// DefaultStatePath returns the headless state file under the user config dir.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrConfigDir, err)
	}
	return filepath.Join(dir, config.AppID, config.StateFileName), nil
}
