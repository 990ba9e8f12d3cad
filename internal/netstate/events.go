package netstate

import "sync"

// EventKind discriminates the notifications published by the monitor and the
// retry coordinator.
type EventKind int

const (
	// EventConnectivityChanged carries the new online flag after a state
	// transition.
	EventConnectivityChanged EventKind = iota
	// EventStatusChanged carries the new derived NetworkStatus.
	EventStatusChanged
	// EventRetryReady signals that a debounced (or forced) retry may run now.
	EventRetryReady
	// EventConnectionLost is a convenience alias emitted alongside
	// EventConnectivityChanged(false) for listeners that only care about loss.
	EventConnectionLost
	// EventConnectionRestored is the alias emitted alongside
	// EventConnectivityChanged(true).
	EventConnectionRestored
)

// String returns the snake_case name used in logs and wire output.
func (k EventKind) String() string {
	switch k {
	case EventConnectivityChanged:
		return "connectivity_changed"
	case EventStatusChanged:
		return "status_changed"
	case EventRetryReady:
		return "retry_ready"
	case EventConnectionLost:
		return "connection_lost"
	default:
		return "connection_restored"
	}
}

// Event is a single notification. Online is meaningful only for
// EventConnectivityChanged, Status only for EventStatusChanged. Values are
// copied in by the emitter before listeners run, so an Event never aliases
// live component state.
type Event struct {
	Kind   EventKind
	Online bool
	Status NetworkStatus
}

// Dispatcher is an explicit subscriber registry. Listeners are invoked
// synchronously in registration order. Unsubscribing is deterministic: after
// the returned cancel function returns, the listener will not be invoked
// again.
//
// Listeners must not call back into the emitting component; re-entrant
// mutation is undefined behavior. Emitters copy whatever state the
// notification needs before publishing, so listeners only ever see values.
type Dispatcher struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

type subscription struct {
	id uint64
	fn func(Event)
}

// NewDispatcher returns an empty registry.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers fn and returns a cancel function that removes it.
// Calling cancel more than once is harmless.
func (d *Dispatcher) Subscribe(fn func(Event)) (cancel func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, subscription{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		for i, sub := range d.subs {
			if sub.id == id {
				d.subs = append(d.subs[:i], d.subs[i+1:]...)

				return
			}
		}
	}
}

// publish delivers ev to every listener registered at the moment of the
// call, in registration order. The registry lock is not held during
// delivery, so a listener may subscribe or unsubscribe other listeners
// without deadlocking (such changes take effect from the next publish).
func (d *Dispatcher) publish(ev Event) {
	d.mu.Lock()
	snapshot := make([]subscription, len(d.subs))
	copy(snapshot, d.subs)
	d.mu.Unlock()

	for _, sub := range snapshot {
		sub.fn(ev)
	}
}
