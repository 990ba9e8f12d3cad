package netstate

import "context"

// ReachabilityProbe classifies current network reachability. Implementations
// must be infallible: any underlying error (dial failure, timeout, resolver
// trouble) is mapped to Unreachable before it reaches the monitor. Classify
// must bound its own latency; the monitor calls it synchronously from the
// tick path.
type ReachabilityProbe interface {
	Classify(ctx context.Context) Reachability
}

// ProbeFunc adapts a plain function to the ReachabilityProbe interface.
type ProbeFunc func(ctx context.Context) Reachability

// Classify calls f.
func (f ProbeFunc) Classify(ctx context.Context) Reachability { return f(ctx) }
