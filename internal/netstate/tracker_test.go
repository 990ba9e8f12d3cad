package netstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(probe ReachabilityProbe, settings *Settings) (*Tracker, *fakeClock, *recorder) {
	clock := newFakeClock()
	tracker := NewTracker(Options{
		Clock:    clock,
		Probe:    probe,
		Logger:   testLogger(),
		Settings: settings,
	})

	rec := &recorder{}
	tracker.Subscribe(rec.listen)

	return tracker, clock, rec
}

// TestTracker_OfflineFailureRecoveryCycle walks the full loop: go offline,
// have an attempt blocked by the guard, come back online, and watch the
// debounced retry fire.
func TestTracker_OfflineFailureRecoveryCycle(t *testing.T) {
	t.Parallel()

	probe := &stubProbe{result: ReachableRemote}
	settings := DefaultSettings()
	settings.Debounce = 10 * time.Second
	settings.LogTransitions = false
	settings.LogRetries = false

	tracker, clock, rec := newTestTracker(probe, &settings)
	ctx := context.Background()

	tracker.Tick(ctx)
	require.True(t, tracker.IsOnline())
	require.Empty(t, rec.events)

	// Network drops.
	probe.result = Unreachable
	clock.advance(5 * time.Second)
	tracker.Tick(ctx)

	require.False(t, tracker.IsOnline())
	assert.Equal(t, StatusOfflineNoData, tracker.NetworkStatus())
	rec.reset()

	// An attempt while offline is denied and queues a retry.
	require.False(t, tracker.GuardAttempt())
	assert.True(t, tracker.HasPendingSyncData())
	assert.Equal(t, StatusOfflinePending, tracker.NetworkStatus())
	assert.Equal(t, 10*time.Second, tracker.RetryCountdown())

	// Network returns. Countdown reads zero once online.
	probe.result = ReachableRemote
	clock.advance(5 * time.Second)
	tracker.Tick(ctx)

	require.True(t, tracker.IsOnline())
	assert.Zero(t, tracker.RetryCountdown())
	assert.True(t, tracker.HasPendingSyncData())
	rec.reset()

	// Debounce still measured from the guard denial: 5s in, nothing yet.
	clock.advance(2 * time.Second)
	tracker.Tick(ctx)
	assert.Empty(t, rec.events)

	clock.advance(5 * time.Second)
	tracker.Tick(ctx)

	assert.Equal(t, []EventKind{EventRetryReady}, rec.kinds())
	assert.False(t, tracker.HasPendingSyncData())
}

func TestTracker_ReportFailureAndForceRetry(t *testing.T) {
	t.Parallel()

	probe := &stubProbe{result: ReachableRemote}
	tracker, _, rec := newTestTracker(probe, nil)

	tracker.ReportFailure()
	require.True(t, tracker.HasPendingSyncData())

	// Online status hides the pending flag.
	assert.Equal(t, StatusOnline, tracker.NetworkStatus())

	require.True(t, tracker.ForceRetryIfOnline())
	assert.Equal(t, []EventKind{EventRetryReady}, rec.kinds())
	assert.False(t, tracker.HasPendingSyncData())
}

func TestTracker_ReportSuccessPreventsRetry(t *testing.T) {
	t.Parallel()

	probe := &stubProbe{result: ReachableRemote}
	settings := DefaultSettings()
	settings.Debounce = 5 * time.Second

	tracker, clock, rec := newTestTracker(probe, &settings)
	ctx := context.Background()

	tracker.ReportFailure()
	tracker.ReportSuccess()

	clock.advance(time.Hour)
	tracker.Tick(ctx)

	for _, kind := range rec.kinds() {
		assert.NotEqual(t, EventRetryReady, kind)
	}
}

func TestTracker_ApplyUpdatesSettingsLive(t *testing.T) {
	t.Parallel()

	probe := &stubProbe{result: Unreachable}
	tracker, clock, _ := newTestTracker(probe, nil)
	ctx := context.Background()

	tracker.Tick(ctx)
	require.False(t, tracker.IsOnline())
	calls := probe.calls

	// Disable detection: ticks stop probing.
	s := DefaultSettings()
	s.DetectionEnabled = false
	tracker.Apply(s)

	clock.advance(time.Hour)
	tracker.Tick(ctx)
	assert.Equal(t, calls, probe.calls)

	// Re-enable with a debounce below the floor: clamped.
	s.DetectionEnabled = true
	s.Debounce = time.Second
	tracker.Apply(s)

	tracker.GuardAttempt()
	assert.Equal(t, MinDebounce, tracker.RetryCountdown())
}

func TestTracker_ForceProbeNow(t *testing.T) {
	t.Parallel()

	probe := &stubProbe{result: Unreachable}
	tracker, _, rec := newTestTracker(probe, nil)

	tracker.ForceProbeNow(context.Background())

	assert.False(t, tracker.IsOnline())
	assert.Contains(t, rec.kinds(), EventConnectionLost)
}
