package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tartampluch/go-hijri/internal/config"
)

// Outcome classifies a DailyEvaluator run.
type Outcome int

const (
	OutcomeAdvanced       Outcome = iota // One day was applied.
	OutcomeAlreadyApplied                // The marker already covers today.
	OutcomeBeforeSunset                  // Sunset not reached yet.
	OutcomeMonthEndHold                  // Day 29: reminder raised, nothing written.
	OutcomeResolvedByHand                // A manual edit after sunset already set today.
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeAlreadyApplied:
		return "already_applied"
	case OutcomeBeforeSunset:
		return "before_sunset"
	case OutcomeMonthEndHold:
		return "month_end_hold"
	case OutcomeResolvedByHand:
		return "resolved_by_hand"
	default:
		return "unknown"
	}
}

// EvalResult describes what an evaluation did.
type EvalResult struct {
	Outcome     Outcome
	Before      HijriDate
	After       HijriDate
	Today       DayIndex
	NextTrigger time.Time // Zero when rescheduling failed.
}

// Snapshot is the read model handed to observers (tray, feed).
type Snapshot struct {
	Date        HijriDate
	Sunset      SunsetConfig
	NextTrigger time.Time
}

// MonthEnd reports whether the displayed date waits for a month-end decision.
func (s Snapshot) MonthEnd() bool {
	return s.Date.AtMonthEnd()
}

// Service is the single writer of the calendar state. It runs the daily
// evaluation and the manual commands under one lock.
type Service struct {
	Store     DateStore
	Clock     Clock
	Scheduler *SunsetScheduler
	Gate      *NotificationGate

	mu sync.Mutex // Guards read-decide-write on Store.

	obsMu     sync.RWMutex
	observers []func(Snapshot)
	next      time.Time
}

// NewService wires the evaluator and its collaborators.
func NewService(store DateStore, clock Clock, scheduler *SunsetScheduler, gate *NotificationGate) *Service {
	return &Service{
		Store:     store,
		Clock:     clock,
		Scheduler: scheduler,
		Gate:      gate,
	}
}

// Subscribe registers fn to receive a Snapshot after every state change.
func (s *Service) Subscribe(fn func(Snapshot)) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

// Start runs the initial evaluation, which also arms the first trigger.
func (s *Service) Start(ctx context.Context) (EvalResult, error) {
	return s.Evaluate(ctx)
}

// Evaluate is invoked on every trigger delivery and on foreground re-checks.
// It applies at most one advance per local calendar day and always ends by
// arming the next trigger, whatever branch ran.
func (s *Service) Evaluate(ctx context.Context) (EvalResult, error) {
	res, err := s.evaluate(ctx)

	log := slog.With(config.LogKeyComponent, config.CompEvaluator)
	if err != nil {
		log.ErrorContext(ctx, config.ErrEvaluate, config.LogKeyError, err)
		err = fmt.Errorf("%s: %w", config.ErrEvaluate, err)
	} else {
		log.InfoContext(ctx, config.MsgEvaluated,
			config.LogKeyOutcome, res.Outcome.String(),
			config.LogKeyBefore, res.Before.String(),
			config.LogKeyAfter, res.After.String(),
			config.LogKeyDayIndex, int64(res.Today))
	}

	next, rerr := s.reschedule(ctx)
	if rerr == nil {
		res.NextTrigger = next
	}

	if err == nil {
		s.publish(ctx)
	}
	return res, errors.Join(err, rerr)
}

func (s *Service) evaluate(ctx context.Context) (EvalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Clock.Now()
	today := DayIndexOf(now)
	res := EvalResult{Today: today}

	marker, ok, err := s.Store.LoadMarker()
	if err != nil {
		return res, err
	}
	if !ok {
		if err := s.Store.SaveMarker(today); err != nil {
			return res, err
		}
		marker = today
		slog.DebugContext(ctx, config.MsgMarkerCaptured,
			config.LogKeyComponent, config.CompEvaluator,
			config.LogKeyMarker, int64(marker))
	}

	date, err := s.Store.LoadDate()
	if err != nil {
		return res, err
	}
	res.Before, res.After = date, date

	// The marker never moves backwards, so a clock set back is a no-op too.
	if marker >= today {
		res.Outcome = OutcomeAlreadyApplied
		return res, nil
	}

	sunset, err := s.Store.LoadSunset()
	if err != nil {
		return res, err
	}
	if !sunset.Reached(now) {
		res.Outcome = OutcomeBeforeSunset
		return res, nil
	}

	// The user already entered tonight's date, e.g. in answer to the reminder.
	resolved, ok, err := s.Store.LoadResolved()
	if err != nil {
		return res, err
	}
	if ok && resolved >= today {
		slog.DebugContext(ctx, config.MsgResolvedByHand,
			config.LogKeyComponent, config.CompEvaluator,
			config.LogKeyDayIndex, int64(resolved))
		res.Outcome = OutcomeResolvedByHand
		return res, nil
	}

	// Keep trying every day until a person resolves the month end.
	if date.AtMonthEnd() {
		s.Gate.Raise(ctx, date)
		res.Outcome = OutcomeMonthEndHold
		return res, nil
	}

	after := Transition(date, AdvanceOneDay())
	if err := s.Store.SaveAdvance(after, today); err != nil {
		return res, err
	}

	res.After = after
	res.Outcome = OutcomeAdvanced
	return res, nil
}

// SubmitDate parses "D M Y" (spaces or hyphens) and stores it.
// Entering day 1 while the stored day is 29 or 30 moves to the next month
// regardless of the month and year typed.
func (s *Service) SubmitDate(ctx context.Context, raw string) (HijriDate, error) {
	d, err := ParseDateInput(raw)
	if err != nil {
		logRejected(ctx, err, raw)
		return HijriDate{}, err
	}
	return s.SetDate(ctx, d)
}

// SetDate applies an already parsed date. The last-applied marker is left alone.
func (s *Service) SetDate(ctx context.Context, d HijriDate) (HijriDate, error) {
	if err := d.Validate(); err != nil {
		logRejected(ctx, err, d.String())
		return HijriDate{}, err
	}
	return s.apply(ctx, func(HijriDate) (Event, error) { return SetDate(d), nil })
}

// ConfirmThirtyDayMonth moves the current month to its 30th day.
// It is rejected unless the stored day is 29.
func (s *Service) ConfirmThirtyDayMonth(ctx context.Context) (HijriDate, error) {
	return s.apply(ctx, func(cur HijriDate) (Event, error) {
		if !cur.AtMonthEnd() {
			return Event{}, invalid(config.FieldDay, config.ReasonNotMonthEnd)
		}
		return ConfirmThirtyDayMonth(cur), nil
	})
}

func (s *Service) apply(ctx context.Context, event func(cur HijriDate) (Event, error)) (HijriDate, error) {
	cur, next, ev, err := s.write(event)
	if err != nil {
		logRejected(ctx, err, cur.String())
		return HijriDate{}, err
	}

	msg := config.MsgDateSubmitted
	if ev.Kind == EventSetDate && next != ev.Date {
		msg = config.MsgMonthConfirmed
	}
	slog.InfoContext(ctx, msg,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyBefore, cur.String(),
		config.LogKeyAfter, next.String())

	_, rerr := s.reschedule(ctx)
	s.publish(ctx)
	return next, rerr
}

// write stores the edited date. After today's sunset the edit also settles
// tonight, so a later evaluation the same evening leaves it alone.
func (s *Service) write(event func(cur HijriDate) (Event, error)) (cur, next HijriDate, ev Event, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, err = s.Store.LoadDate(); err != nil {
		return cur, next, ev, err
	}
	if ev, err = event(cur); err != nil {
		return cur, next, ev, err
	}
	sunset, err := s.Store.LoadSunset()
	if err != nil {
		return cur, next, ev, err
	}

	next = Transition(cur, ev)
	now := s.Clock.Now()
	if sunset.Reached(now) {
		err = s.Store.SaveResolved(next, DayIndexOf(now))
	} else {
		err = s.Store.SaveDate(next)
	}
	return cur, next, ev, err
}

// SubmitSunsetTime accepts "HH:MM" or "h:MM AM/PM", stores the 24-hour form
// and re-arms the trigger.
func (s *Service) SubmitSunsetTime(ctx context.Context, raw string) (SunsetConfig, error) {
	sc, err := ParseSunsetTime(raw)
	if err != nil {
		logRejected(ctx, err, raw)
		return SunsetConfig{}, err
	}

	s.mu.Lock()
	err = s.Store.SaveSunset(sc)
	s.mu.Unlock()
	if err != nil {
		return SunsetConfig{}, err
	}

	slog.InfoContext(ctx, config.MsgSunsetSubmitted,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeySunset, sc.String())

	_, rerr := s.reschedule(ctx)
	s.publish(ctx)
	return sc, rerr
}

// Snapshot reads the current state.
func (s *Service) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date, err := s.Store.LoadDate()
	if err != nil {
		return Snapshot{}, err
	}
	sunset, err := s.Store.LoadSunset()
	if err != nil {
		return Snapshot{}, err
	}

	s.obsMu.RLock()
	next := s.next
	s.obsMu.RUnlock()

	return Snapshot{Date: date, Sunset: sunset, NextTrigger: next}, nil
}

// FirstLaunch reports whether onboarding is still pending.
func (s *Service) FirstLaunch() (bool, error) {
	return s.Store.FirstLaunch()
}

// CompleteFirstLaunch flips the first-launch flag. It never flips back.
func (s *Service) CompleteFirstLaunch(ctx context.Context) error {
	if err := s.Store.CompleteFirstLaunch(); err != nil {
		return err
	}
	slog.InfoContext(ctx, config.MsgFirstLaunch, config.LogKeyComponent, config.CompEngine)
	return nil
}

func (s *Service) reschedule(ctx context.Context) (time.Time, error) {
	if s.Scheduler == nil {
		return time.Time{}, errors.New(config.ErrHostMissing)
	}
	next, err := s.Scheduler.Reschedule(ctx)
	if err != nil {
		slog.ErrorContext(ctx, config.ErrReschedule,
			config.LogKeyComponent, config.CompScheduler,
			config.LogKeyError, err)
		return time.Time{}, err
	}

	s.obsMu.Lock()
	s.next = next
	s.obsMu.Unlock()
	return next, nil
}

func (s *Service) publish(ctx context.Context) {
	snap, err := s.Snapshot()
	if err != nil {
		slog.ErrorContext(ctx, config.ErrStoreRead,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyError, err)
		return
	}

	s.obsMu.RLock()
	observers := slices.Clone(s.observers)
	s.obsMu.RUnlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func logRejected(ctx context.Context, err error, raw string) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		slog.InfoContext(ctx, config.MsgValidation,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyField, verr.Field,
			config.LogKeyValue, raw)
	}
}
