// Package netstate implements the connectivity-state core: a monitor that
// adaptively probes network reachability, a retry coordinator that debounces
// a pending sync retry, and the event dispatcher both publish through.
//
// The package does no I/O of its own beyond the injected ReachabilityProbe
// query. Time comes from an injected Clock so every state transition is
// reproducible in tests.
package netstate

import "time"

// ConnectionState is the monitor's binary connectivity verdict. Exactly one
// state holds at any instant; transitions happen atomically inside a single
// probe evaluation.
type ConnectionState int

const (
	// Online means the most recent decisive probe saw the network as reachable.
	Online ConnectionState = iota
	// Offline means the most recent decisive probe saw the network as unreachable.
	Offline
)

// String returns the lowercase name used in logs and wire output.
func (s ConnectionState) String() string {
	if s == Online {
		return "online"
	}

	return "offline"
}

// NetworkStatus is the user-facing status derived from the connection state
// and the pending-sync flag. It is a pure function of those two inputs; see
// DeriveStatus.
type NetworkStatus int

const (
	// StatusOnline: connected; the pending flag is irrelevant while online.
	StatusOnline NetworkStatus = iota
	// StatusOfflinePending: offline with a failed sync awaiting retry.
	StatusOfflinePending
	// StatusOfflineNoData: offline with nothing queued for retry.
	StatusOfflineNoData
)

// String returns the snake_case name used in logs and wire output.
func (s NetworkStatus) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOfflinePending:
		return "offline_pending"
	default:
		return "offline_no_data"
	}
}

// DeriveStatus maps (state, pending) to a NetworkStatus. Online always maps
// to StatusOnline regardless of the pending flag.
func DeriveStatus(state ConnectionState, pending bool) NetworkStatus {
	if state == Online {
		return StatusOnline
	}

	if pending {
		return StatusOfflinePending
	}

	return StatusOfflineNoData
}

// Reachability is the coarse classification a probe returns. It is a
// network-layer signal, not a guarantee of endpoint availability.
type Reachability int

const (
	// ReachabilityUnknown (and any unrecognized value) never changes the
	// monitor's state. Only the three classifications below are decisive.
	ReachabilityUnknown Reachability = iota
	// Unreachable: no route to either the remote or the local target.
	Unreachable
	// ReachableRemote: the remote target answered.
	ReachableRemote
	// ReachableLocal: only the local/LAN target answered.
	ReachableLocal
)

// String returns the snake_case name used in logs and wire output.
func (r Reachability) String() string {
	switch r {
	case Unreachable:
		return "unreachable"
	case ReachableRemote:
		return "reachable_remote"
	case ReachableLocal:
		return "reachable_local"
	default:
		return "unknown"
	}
}

// Clock supplies the current time to the monitor and coordinator. Production
// code uses SystemClock; tests inject fixed or stepping clocks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
