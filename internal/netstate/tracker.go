package netstate

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Settings is the hot-updatable portion of the tracker configuration. The
// daemon rebuilds one from config on every reload and calls Apply; no
// restart is required for any field.
type Settings struct {
	DetectionEnabled bool
	Schedule         Schedule
	Debounce         time.Duration
	LogTransitions   bool
	LogRetries       bool
}

// DefaultSettings returns the stock settings: detection on, default
// schedule, default debounce, transition and retry logging on.
func DefaultSettings() Settings {
	return Settings{
		DetectionEnabled: true,
		Schedule:         DefaultSchedule(),
		Debounce:         DefaultDebounce,
		LogTransitions:   true,
		LogRetries:       true,
	}
}

// Options configures a Tracker. Probe is required; everything else has a
// usable zero/default.
type Options struct {
	Clock    Clock             // defaults to SystemClock
	Probe    ReachabilityProbe // required
	Logger   *slog.Logger      // defaults to a discard logger
	Settings *Settings         // nil means DefaultSettings
}

// Tracker pairs a Monitor with a retry Coordinator behind one clock and one
// event dispatcher. It is the construction root for the core: hosts build a
// Tracker, subscribe listeners, and drive Tick from their own scheduling
// primitive (the watch daemon uses a 1s time.Ticker).
type Tracker struct {
	clock   Clock
	events  *Dispatcher
	monitor *Monitor
	retry   *Coordinator
}

// NewTracker wires a monitor and coordinator together. The monitor starts
// Online with the clock's current time as the state entry point.
func NewTracker(opts Options) *Tracker {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	settings := DefaultSettings()
	if opts.Settings != nil {
		settings = *opts.Settings
	}

	events := NewDispatcher()
	monitor := NewMonitor(opts.Probe, events, opts.Logger, opts.Clock.Now())
	retry := NewCoordinator(events, opts.Logger)

	monitor.SetPendingFunc(retry.HasPendingSyncData)

	t := &Tracker{
		clock:   opts.Clock,
		events:  events,
		monitor: monitor,
		retry:   retry,
	}

	t.Apply(settings)

	return t
}

// Apply pushes hot-updatable settings into both components.
func (t *Tracker) Apply(s Settings) {
	t.monitor.SetEnabled(s.DetectionEnabled)
	t.monitor.SetSchedule(s.Schedule)
	t.monitor.SetLogTransitions(s.LogTransitions)
	t.retry.SetDebounce(s.Debounce)
	t.retry.SetLogRetries(s.LogRetries)
}

// Subscribe registers an event listener; see Dispatcher.Subscribe.
func (t *Tracker) Subscribe(fn func(Event)) (cancel func()) {
	return t.events.Subscribe(fn)
}

// Tick advances both components one time quantum: the monitor evaluates its
// probe schedule, then the coordinator evaluates the debounce window against
// the (possibly just-updated) connectivity state.
func (t *Tracker) Tick(ctx context.Context) {
	now := t.clock.Now()

	t.monitor.Tick(ctx, now)
	t.retry.Tick(now, t.monitor.IsOnline())
}

// ForceProbeNow probes immediately, bypassing the schedule.
func (t *Tracker) ForceProbeNow(ctx context.Context) {
	t.monitor.ForceProbeNow(ctx, t.clock.Now())
}

// ReportFailure records a failed sync attempt at the current time.
func (t *Tracker) ReportFailure() {
	t.retry.ReportFailure(t.clock.Now())
}

// ReportSuccess clears the pending retry.
func (t *Tracker) ReportSuccess() {
	t.retry.ReportSuccess()
}

// GuardAttempt gates a sync attempt on current connectivity; see
// Coordinator.GuardAttempt for the offline side effect.
func (t *Tracker) GuardAttempt() bool {
	return t.retry.GuardAttempt(t.monitor.IsOnline(), t.clock.Now())
}

// ForceRetryIfOnline fires retry_ready immediately when online with a retry
// pending. Returns whether a retry fired.
func (t *Tracker) ForceRetryIfOnline() bool {
	return t.retry.ForceRetryIfOnline(t.monitor.IsOnline())
}

// IsOnline reports the monitor's current verdict.
func (t *Tracker) IsOnline() bool { return t.monitor.IsOnline() }

// HasPendingSyncData reports whether a retry is queued.
func (t *Tracker) HasPendingSyncData() bool { return t.retry.HasPendingSyncData() }

// NetworkStatus returns the derived user-facing status.
func (t *Tracker) NetworkStatus() NetworkStatus { return t.monitor.Status() }

// RetryCountdown returns the remaining debounce wait; zero when nothing is
// pending or while online.
func (t *Tracker) RetryCountdown() time.Duration {
	return t.retry.RetryCountdown(t.clock.Now(), t.monitor.IsOnline())
}
