// Package trigger implements the host trigger-delivery primitive on an
// in-process go-quartz scheduler.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/tartampluch/go-hijri/internal/engine"
)

// DeliverFunc receives a fired trigger.
type DeliverFunc func(ctx context.Context, handle string) error

// QuartzHost registers one-shot jobs keyed by handle.
//
// Exact delivery fires at the requested instant. When exact delivery is not allowed,
// exact registrations are refused with engine.ErrSchedulingUnavailable and
// inexact ones are rounded up to the next config.InexactWindow boundary.
type QuartzHost struct {
	sched      quartz.Scheduler
	allowExact bool
	clock      engine.Clock

	mu      sync.RWMutex
	deliver DeliverFunc
}

var _ engine.TriggerHost = (*QuartzHost)(nil)

// NewQuartzHost creates the scheduler. Call Start before registering.
func NewQuartzHost(ctx context.Context, allowExact bool) (*QuartzHost, error) {
	sched, err := quartz.NewStdScheduler(
		quartz.WithOutdatedThreshold(config.TriggerMisfireGrace),
		quartz.WithLogger(logger.NewSlogLogger(ctx, slog.Default().With(config.LogKeyComponent, config.CompTrigger))),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSchedulerInit, err)
	}
	return &QuartzHost{
		sched:      sched,
		allowExact: allowExact,
		clock:      engine.RealClock{},
	}, nil
}

// OnDeliver sets the callback run when a trigger fires.
func (h *QuartzHost) OnDeliver(fn DeliverFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliver = fn
}

// Start runs the scheduler until ctx is cancelled or Stop is called.
func (h *QuartzHost) Start(ctx context.Context) {
	h.sched.Start(ctx)
}

// Stop shuts the scheduler down.
func (h *QuartzHost) Stop() {
	h.sched.Stop()
}

// Wait blocks until running deliveries have returned.
func (h *QuartzHost) Wait(ctx context.Context) {
	h.sched.Wait(ctx)
}

// Register arms handle at fireAt, replacing any pending registration.
func (h *QuartzHost) Register(handle string, fireAt time.Time, exact bool) error {
	if exact && !h.allowExact {
		return fmt.Errorf("%w: %s", engine.ErrSchedulingUnavailable, handle)
	}
	if !exact {
		fireAt = alignUp(fireAt, config.InexactWindow)
	}

	delay := max(fireAt.Sub(h.clock.Now()), 0)

	opts := quartz.NewDefaultJobDetailOptions()
	opts.Replace = true
	detail := quartz.NewJobDetailWithOptions(
		&deliveryJob{host: h, handle: handle},
		jobKey(handle),
		opts,
	)

	if err := h.sched.ScheduleJob(detail, quartz.NewRunOnceTrigger(delay)); err != nil {
		return fmt.Errorf("%s: %w", config.ErrRegister, err)
	}

	slog.Debug(config.MsgRescheduled,
		config.LogKeyComponent, config.CompTrigger,
		config.LogKeyHandle, handle,
		config.LogKeyFireAt, fireAt.Format(config.LogTimeLayout),
		config.LogKeyExact, exact)
	return nil
}

// Cancel removes the pending registration of handle. Unknown handles are ignored.
func (h *QuartzHost) Cancel(handle string) error {
	err := h.sched.DeleteJob(jobKey(handle))
	if err != nil && !errors.Is(err, quartz.ErrJobNotFound) {
		return fmt.Errorf("%s: %w", config.ErrCancel, err)
	}
	if err == nil {
		slog.Debug(config.MsgTriggerCancel,
			config.LogKeyComponent, config.CompTrigger,
			config.LogKeyHandle, handle)
	}
	return nil
}

// NextFireTime returns the pending instant of handle.
func (h *QuartzHost) NextFireTime(handle string) (time.Time, bool) {
	job, err := h.sched.GetScheduledJob(jobKey(handle))
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, job.NextRunTime()), true
}

func (h *QuartzHost) fire(ctx context.Context, handle string) error {
	h.mu.RLock()
	fn := h.deliver
	h.mu.RUnlock()

	slog.InfoContext(ctx, config.MsgTriggerFired,
		config.LogKeyComponent, config.CompTrigger,
		config.LogKeyHandle, handle)

	if fn == nil {
		return nil
	}
	return fn(ctx, handle)
}

func jobKey(handle string) *quartz.JobKey {
	return quartz.NewJobKeyWithGroup(handle, config.TriggerGroup)
}

// alignUp rounds t up to a multiple of window.
func alignUp(t time.Time, window time.Duration) time.Time {
	if r := t.Truncate(window); !r.Equal(t) {
		return r.Add(window)
	}
	return t
}

// deliveryJob is the quartz.Job behind every registration.
type deliveryJob struct {
	host   *QuartzHost
	handle string
}

var _ quartz.Job = (*deliveryJob)(nil)

func (j *deliveryJob) Execute(ctx context.Context) error {
	return j.host.fire(ctx, j.handle)
}

func (j *deliveryJob) Description() string {
	return config.TriggerGroup + quartz.Sep + j.handle
}
