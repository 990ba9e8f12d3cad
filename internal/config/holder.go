package config

import "sync"

// Holder provides thread-safe access to a mutable *Runtime and an immutable
// config file path. The daemon's tick loop, the event server, and the
// reload path all read through one shared Holder, so a SIGHUP or file-watch
// reload updates config in exactly one place.
type Holder struct {
	mu   sync.RWMutex
	rt   *Runtime
	path string // immutable after construction
}

// NewHolder creates a Holder with the initial runtime and config file path.
func NewHolder(rt *Runtime, path string) *Holder {
	return &Holder{
		rt:   rt,
		path: path,
	}
}

// Runtime returns the current runtime snapshot. Thread-safe (read lock).
func (h *Holder) Runtime() *Runtime {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.rt
}

// Path returns the config file path. Thread-safe without locking because
// the path is immutable after construction.
func (h *Holder) Path() string {
	return h.path
}

// Update replaces the runtime. Thread-safe (write lock). Called on reload —
// one call updates config for all consumers.
func (h *Holder) Update(rt *Runtime) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.rt = rt
}
