package netstate

import (
	"log/slog"
	"sync"
	"time"
)

// MinDebounce is the floor for the retry debounce interval. Shorter (or
// negative) configured values are clamped up to it rather than rejected.
const MinDebounce = 5 * time.Second

// DefaultDebounce is the debounce interval used when none is configured.
const DefaultDebounce = time.Minute

// Coordinator tracks a single pending sync retry and decides when it may
// fire. A failure arms the debounce timer; once online and the debounce
// window has elapsed, exactly one retry_ready event fires and the pending
// flag clears. All operations serialize on an internal mutex.
type Coordinator struct {
	events *Dispatcher
	logger *slog.Logger

	mu            sync.Mutex
	pending       bool
	hasFailure    bool // lastFailureAt holds a meaningful value
	lastFailureAt time.Time
	debounce      time.Duration
	logRetries    bool
}

// NewCoordinator creates a coordinator with the default debounce interval
// and nothing pending.
func NewCoordinator(events *Dispatcher, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		events:     events,
		logger:     logger,
		debounce:   DefaultDebounce,
		logRetries: true,
	}
}

// SetDebounce updates the debounce interval, clamping to MinDebounce.
// Hot-updatable; takes effect on the next tick evaluation.
func (c *Coordinator) SetDebounce(d time.Duration) {
	if d < MinDebounce {
		d = MinDebounce
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.debounce = d
}

// SetLogRetries toggles the Info log on retry signals. Hot-updatable.
func (c *Coordinator) SetLogRetries(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logRetries = v
}

// Debounce returns the effective (clamped) debounce interval.
func (c *Coordinator) Debounce() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.debounce
}

// HasPendingSyncData reports whether a failed sync awaits retry.
func (c *Coordinator) HasPendingSyncData() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pending
}

// Tick evaluates the debounce window. When a retry is pending, the host is
// online, and the window has elapsed since the last failure, the pending
// flag clears and a single retry_ready event fires. The flag clears before
// the event goes out so a re-check within the same tick cycle cannot
// double-fire.
func (c *Coordinator) Tick(now time.Time, isOnline bool) {
	c.mu.Lock()

	if !c.pending || !isOnline || !c.hasFailure || now.Sub(c.lastFailureAt) < c.debounce {
		c.mu.Unlock()

		return
	}

	c.pending = false
	waited := now.Sub(c.lastFailureAt)
	logRetries := c.logRetries

	c.mu.Unlock()

	if logRetries {
		c.logger.Info("retry debounce elapsed, signaling retry",
			slog.Duration("waited", waited),
		)
	}

	c.events.publish(Event{Kind: EventRetryReady})
}

// ReportFailure marks a sync attempt as failed. Repeated failures keep
// resetting the timestamp, so the debounce window always measures from the
// most recent failure.
func (c *Coordinator) ReportFailure(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = true
	c.hasFailure = true
	c.lastFailureAt = now
}

// ReportSuccess clears the pending flag. The failure timestamp is left
// alone; it is irrelevant once nothing is pending.
func (c *Coordinator) ReportSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = false
}

// GuardAttempt gates a sync attempt on connectivity. Online returns true
// with no side effect. Offline returns false and records the blocked
// attempt as a failure: pending is set and the failure timestamp resets.
//
// Treating a blocked attempt like a real failure means callers that poll
// the guard while offline keep pushing the debounce window out, which can
// starve the eventual retry. This mirrors the long-observed behavior of the
// system and is kept deliberately; see the starvation test.
func (c *Coordinator) GuardAttempt(isOnline bool, now time.Time) bool {
	if isOnline {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = true
	c.hasFailure = true
	c.lastFailureAt = now

	return false
}

// ForceRetryIfOnline fires retry_ready immediately when online with a retry
// pending, bypassing the debounce window. Returns whether a retry fired.
func (c *Coordinator) ForceRetryIfOnline(isOnline bool) bool {
	c.mu.Lock()

	if !isOnline || !c.pending {
		c.mu.Unlock()

		return false
	}

	c.pending = false
	logRetries := c.logRetries

	c.mu.Unlock()

	if logRetries {
		c.logger.Info("forced retry, bypassing debounce")
	}

	c.events.publish(Event{Kind: EventRetryReady})

	return true
}

/// RetryCountdown returns how long until the debounce window opens: zero when
// nothing is pending or when online (online retries fire on the next tick),
// otherwise the remaining wait measured from the last failure.
func (c *Coordinator) RetryCountdown(now time.Time, isOnline bool) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending || isOnline || !c.hasFailure {
		return 0
	}

	remaining := c.debounce - now.Sub(c.lastFailureAt)
	if remaining < 0 {
		return 0
	}

	return remaining
}
