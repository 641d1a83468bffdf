package trigger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reugn/go-quartz/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/tartampluch/go-hijri/internal/engine"
)

const deliveryTimeout = 3 * time.Second

// startHost returns a running host whose deliveries are sent to the returned channel.
func startHost(t *testing.T, allowExact bool) (*QuartzHost, <-chan string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	host, err := NewQuartzHost(ctx, allowExact)
	require.NoError(t, err)

	fired := make(chan string, 8)
	host.OnDeliver(func(_ context.Context, handle string) error {
		fired <- handle
		return nil
	})
	host.Start(ctx)

	t.Cleanup(func() {
		cancel()
		host.Stop()
		waitCtx, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		host.Wait(waitCtx)
	})
	return host, fired
}

func TestQuartzHost_DeliversAtInstant(t *testing.T) {
	host, fired := startHost(t, true)

	require.NoError(t, host.Register(config.TriggerHandle, time.Now().Add(50*time.Millisecond), true))

	select {
	case h := <-fired:
		assert.Equal(t, config.TriggerHandle, h)
	case <-time.After(deliveryTimeout):
		t.Fatal("Trigger was not delivered")
	}
}

func TestQuartzHost_ReRegisterReplaces(t *testing.T) {
	host, fired := startHost(t, true)

	require.NoError(t, host.Register(config.TriggerHandle, time.Now().Add(time.Hour), true))
	require.NoError(t, host.Register(config.TriggerHandle, time.Now().Add(50*time.Millisecond), true))

	select {
	case <-fired:
	case <-time.After(deliveryTimeout):
		t.Fatal("Replacement trigger was not delivered")
	}

	// The one-hour registration was replaced, nothing is left.
	_, ok := host.NextFireTime(config.TriggerHandle)
	assert.False(t, ok)
}

func TestQuartzHost_Cancel(t *testing.T) {
	host, fired := startHost(t, true)

	require.NoError(t, host.Register(config.TriggerHandle, time.Now().Add(200*time.Millisecond), true))
	_, ok := host.NextFireTime(config.TriggerHandle)
	require.True(t, ok)

	require.NoError(t, host.Cancel(config.TriggerHandle))
	require.NoError(t, host.Cancel(config.TriggerHandle), "Cancelling an unknown handle is not an error")

	select {
	case <-fired:
		t.Fatal("Cancelled trigger was delivered")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestQuartzHost_ExactRefused(t *testing.T) {
	host, _ := startHost(t, false)

	err := host.Register(config.TriggerHandle, time.Now().Add(time.Hour), true)
	assert.True(t, errors.Is(err, engine.ErrSchedulingUnavailable))

	_, ok := host.NextFireTime(config.TriggerHandle)
	assert.False(t, ok, "A refused registration must not arm anything")

	fireAt := time.Now().Add(time.Hour)
	require.NoError(t, host.Register(config.TriggerHandle, fireAt, false))
	next, ok := host.NextFireTime(config.TriggerHandle)
	require.True(t, ok)
	assert.False(t, next.Before(fireAt), "Inexact delivery is never early")
	assert.True(t, next.Before(fireAt.Add(config.InexactWindow+time.Second)))
}

func TestQuartzHost_PastInstantFiresNow(t *testing.T) {
	host, fired := startHost(t, true)

	require.NoError(t, host.Register(config.TriggerHandle, time.Now().Add(-time.Minute), true))

	select {
	case <-fired:
	case <-time.After(deliveryTimeout):
		t.Fatal("Overdue trigger was not delivered")
	}
}

// overdueTrigger fires once, lag before the instant it was scheduled at.
type overdueTrigger struct {
	lag   time.Duration
	fired atomic.Bool
}

func (o *overdueTrigger) NextFireTime(prev int64) (int64, error) {
	if o.fired.Swap(true) {
		return 0, errors.New("expired")
	}
	return prev - o.lag.Nanoseconds(), nil
}

func (o *overdueTrigger) Description() string { return "overdue" }

func TestQuartzHost_LongOverdueStillDelivers(t *testing.T) {
	host, fired := startHost(t, true)

	// As seen after resuming from a two-day suspend.
	detail := quartz.NewJobDetail(&deliveryJob{host: host, handle: config.TriggerHandle}, jobKey(config.TriggerHandle))
	require.NoError(t, host.sched.ScheduleJob(detail, &overdueTrigger{lag: 48 * time.Hour}))

	select {
	case h := <-fired:
		assert.Equal(t, config.TriggerHandle, h)
	case <-time.After(deliveryTimeout):
		t.Fatal("Overdue trigger was dropped")
	}
}

func TestAlignUp(t *testing.T) {
	base := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, base, alignUp(base, time.Minute))
	assert.Equal(t, base.Add(time.Minute), alignUp(base.Add(time.Second), time.Minute))
	assert.Equal(t, base.Add(time.Minute), alignUp(base.Add(59*time.Second), time.Minute))
}
