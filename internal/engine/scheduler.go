package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-hijri/internal/config"
)

// TriggerHost is the host trigger-delivery primitive.
//
// Register arms handle to fire at or after fireAt, replacing any pending
// registration under the same handle. Delivery is at-least-once.
// When exact delivery is requested but refused, Register returns an error
// wrapping ErrSchedulingUnavailable and registers nothing.
type TriggerHost interface {
	Register(handle string, fireAt time.Time, exact bool) error
	Cancel(handle string) error
}

// SunsetScheduler arms the daily trigger at the next sunset.
// It does not re-arm itself: callers invoke Reschedule once per cycle.
type SunsetScheduler struct {
	Host   TriggerHost
	Store  DateStore
	Clock  Clock
	Handle string

	mu sync.Mutex // Serializes cancel-then-register.
}

// NewSunsetScheduler returns a scheduler using the default trigger handle.
func NewSunsetScheduler(host TriggerHost, store DateStore, clock Clock) *SunsetScheduler {
	return &SunsetScheduler{
		Host:   host,
		Store:  store,
		Clock:  clock,
		Handle: config.TriggerHandle,
	}
}

// Next computes the next sunset instant after the clock's current time.
func (s *SunsetScheduler) Next() (time.Time, error) {
	sc, err := s.Store.LoadSunset()
	if err != nil {
		return time.Time{}, err
	}
	return sc.Next(s.Clock.Now()), nil
}

// Reschedule cancels the pending trigger and registers one at the next sunset.
// Exact delivery is requested first; a refusal degrades to inexact delivery.
func (s *SunsetScheduler) Reschedule(ctx context.Context) (time.Time, error) {
	if s.Host == nil {
		return time.Time{}, errors.New(config.ErrHostMissing)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fireAt, err := s.Next()
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrReschedule, err)
	}

	log := slog.With(
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyHandle, s.Handle,
	)

	if err := s.Host.Cancel(s.Handle); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrCancel, err)
	}

	exact := true
	err = s.Host.Register(s.Handle, fireAt, exact)
	if errors.Is(err, ErrSchedulingUnavailable) {
		log.WarnContext(ctx, config.MsgExactFallback, config.LogKeyError, err)
		exact = false
		err = s.Host.Register(s.Handle, fireAt, exact)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrRegister, err)
	}

	log.InfoContext(ctx, config.MsgRescheduled,
		config.LogKeyFireAt, fireAt.Format(config.LogTimeLayout),
		config.LogKeyExact, exact)
	return fireAt, nil
}
