package netstate

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Monitor owns the online/offline state and the adaptive probe loop. It is
// driven by Tick at whatever cadence the host chooses; the schedule decides
// when a tick actually probes. All mutating operations serialize on an
// internal mutex, so the driving loop and external callers (ForceProbeNow
// from a CLI handler, hot config updates) may race safely.
//
// The probe query itself runs outside the mutex: it is bounded I/O and must
// not block state reads for its full duration.
type Monitor struct {
	probe  ReachabilityProbe
	events *Dispatcher
	logger *slog.Logger

	// pending reports whether a sync retry is queued; injected by the
	// Tracker so status derivation can see the coordinator's flag without
	// this package growing a cross-dependency. Never nil.
	pending func() bool

	mu             sync.Mutex
	enabled        bool
	logTransitions bool
	schedule       Schedule
	state          ConnectionState
	stateEnteredAt time.Time
	lastProbeAt    time.Time
}

// NewMonitor creates a monitor that assumes Online at start. The zero
// lastProbeAt makes the first Tick probe immediately, so a daemon learns the
// real state within one tick of starting.
func NewMonitor(probe ReachabilityProbe, events *Dispatcher, logger *slog.Logger, start time.Time) *Monitor {
	return &Monitor{
		probe:          probe,
		events:         events,
		logger:         logger,
		pending:        func() bool { return false },
		enabled:        true,
		logTransitions: true,
		schedule:       DefaultSchedule(),
		state:          Online,
		stateEnteredAt: start,
	}
}

// SetPendingFunc injects the pending-sync query used for status derivation.
// Must be called before the monitor starts ticking.
func (m *Monitor) SetPendingFunc(fn func() bool) {
	if fn != nil {
		m.pending = fn
	}
}

// SetEnabled toggles detection. While disabled, Tick is a no-op; the state
// freezes at whatever it was. Hot-updatable.
func (m *Monitor) SetEnabled(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enabled = v
}

// SetLogTransitions toggles the Info log on state transitions. Hot-updatable.
func (m *Monitor) SetLogTransitions(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logTransitions = v
}

// SetSchedule replaces the probe interval schedule. Hot-updatable; bands are
// re-sorted so callers may pass them in any order.
func (m *Monitor) SetSchedule(s Schedule) {
	normalized := s.normalized()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.schedule = normalized
}

// IsOnline reports the current connectivity verdict.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state == Online
}

// State returns the current ConnectionState.
func (m *Monitor) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Status returns the derived NetworkStatus for the current state and
// pending-sync flag.
func (m *Monitor) Status() NetworkStatus {
	pending := m.pending()

	m.mu.Lock()
	defer m.mu.Unlock()

	return DeriveStatus(m.state, pending)
}

// StateEnteredAt returns when the current state began.
func (m *Monitor) StateEnteredAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stateEnteredAt
}

// Tick evaluates the schedule at the given instant and probes when due.
// No-op while detection is disabled.
func (m *Monitor) Tick(ctx context.Context, now time.Time) {
	m.mu.Lock()

	if !m.enabled {
		m.mu.Unlock()

		return
	}

	elapsed := now.Sub(m.stateEnteredAt)
	interval := m.schedule.IntervalFor(elapsed)

	if now.Sub(m.lastProbeAt) < interval {
		m.mu.Unlock()

		return
	}

	m.lastProbeAt = now
	m.mu.Unlock()

	m.Probe(ctx, now)
}

// ForceProbeNow probes immediately, bypassing the schedule. The next
// scheduled probe still keys off the last Tick-driven probe time.
func (m *Monitor) ForceProbeNow(ctx context.Context, now time.Time) {
	m.Probe(ctx, now)
}

// Probe queries the reachability probe and applies the classification.
// Unreachable maps to Offline, either reachable classification to Online,
// and anything else leaves the state untouched. On a transition the monitor
// emits connectivity_changed plus the matching lost/restored alias, and a
// status_changed event whenever the derived status moved.
func (m *Monitor) Probe(ctx context.Context, now time.Time) {
	classification := m.probe.Classify(ctx)

	var online bool

	switch classification {
	case Unreachable:
		online = false
	case ReachableRemote, ReachableLocal:
		online = true
	default:
		// Unknown classifications carry no signal either way.
		m.logger.Debug("probe returned unknown classification, state unchanged",
			slog.String("classification", classification.String()),
		)

		return
	}

	// Snapshot the pending flag once so previous and new status are derived
	// from the same value. Read before taking the mutex: the pending query
	// goes to the coordinator, which has its own lock.
	pending := m.pending()

	m.mu.Lock()

	wasOnline := m.state == Online
	previousStatus := DeriveStatus(m.state, pending)

	if online != wasOnline {
		if online {
			m.state = Online
		} else {
			m.state = Offline
		}

		m.stateEnteredAt = now
	}

	newStatus := DeriveStatus(m.state, pending)
	logTransitions := m.logTransitions

	m.mu.Unlock()

	// Notifications fire outside the mutex, from copied values only.
	if online != wasOnline {
		if logTransitions {
			m.logger.Info("connectivity state changed",
				slog.Bool("online", online),
				slog.String("classification", classification.String()),
			)
		}

		m.events.publish(Event{Kind: EventConnectivityChanged, Online: online})

		if online {
			m.events.publish(Event{Kind: EventConnectionRestored})
		} else {
			m.events.publish(Event{Kind: EventConnectionLost})
		}
	}

	if newStatus != previousStatus {
		m.events.publish(Event{Kind: EventStatusChanged, Status: newStatus})
	}
}
