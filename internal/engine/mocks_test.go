package engine_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tartampluch/go-hijri/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// registration is one call recorded by FakeHost.
type registration struct {
	Handle string
	FireAt time.Time
	Exact  bool
}

// FakeHost records trigger registrations. RefuseExact simulates a host
// without exact-alarm permission.
type FakeHost struct {
	mu          sync.Mutex
	RefuseExact bool
	Registered  []registration
	Cancelled   []string
	pending     map[string]registration
}

func (h *FakeHost) Register(handle string, fireAt time.Time, exact bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if exact && h.RefuseExact {
		return fmt.Errorf("%w: permission denied", engine.ErrSchedulingUnavailable)
	}
	if h.pending == nil {
		h.pending = make(map[string]registration)
	}
	r := registration{Handle: handle, FireAt: fireAt, Exact: exact}
	h.pending[handle] = r
	h.Registered = append(h.Registered, r)
	return nil
}

func (h *FakeHost) Cancel(handle string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pending, handle)
	h.Cancelled = append(h.Cancelled, handle)
	return nil
}

// Pending returns the registration currently armed for handle.
func (h *FakeHost) Pending(handle string) (registration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.pending[handle]
	return r, ok
}

// RecordingNotifier keeps every notification handed to it.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []engine.Notification
}

func (n *RecordingNotifier) Notify(msg engine.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, msg)
}

func (n *RecordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Sent)
}

// MockStore simulates the persistence layer using `testify/mock`.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) LoadDate() (engine.HijriDate, error) {
	args := m.Called()
	return args.Get(0).(engine.HijriDate), args.Error(1)
}

func (m *MockStore) SaveDate(d engine.HijriDate) error {
	return m.Called(d).Error(0)
}

func (m *MockStore) LoadSunset() (engine.SunsetConfig, error) {
	args := m.Called()
	return args.Get(0).(engine.SunsetConfig), args.Error(1)
}

func (m *MockStore) SaveSunset(sc engine.SunsetConfig) error {
	return m.Called(sc).Error(0)
}

func (m *MockStore) LoadMarker() (engine.DayIndex, bool, error) {
	args := m.Called()
	return args.Get(0).(engine.DayIndex), args.Bool(1), args.Error(2)
}

func (m *MockStore) SaveMarker(idx engine.DayIndex) error {
	return m.Called(idx).Error(0)
}

func (m *MockStore) SaveAdvance(d engine.HijriDate, idx engine.DayIndex) error {
	return m.Called(d, idx).Error(0)
}

func (m *MockStore) LoadResolved() (engine.DayIndex, bool, error) {
	args := m.Called()
	return args.Get(0).(engine.DayIndex), args.Bool(1), args.Error(2)
}

func (m *MockStore) SaveResolved(d engine.HijriDate, idx engine.DayIndex) error {
	return m.Called(d, idx).Error(0)
}

func (m *MockStore) FirstLaunch() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CompleteFirstLaunch() error {
	return m.Called().Error(0)
}
