// Package probe provides ReachabilityProbe implementations. The dialer
// probe is the production adapter; it maps every failure to Unreachable so
// the monitor never sees an error.
package probe

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/tonimelisma/netstate-go/internal/netstate"
)

// Defaults for the dialer probe. The remote target is a public resolver
// that answers TCP on port 53; probing it proves wide-area reachability
// without depending on any one HTTP endpoint.
const (
	DefaultRemoteTarget = "1.1.1.1:53"
	DefaultTimeout      = 4 * time.Second
	defaultPort         = "53"
)

// Dialer classifies reachability by opening TCP connections. The remote
// target is tried first; success means ReachableRemote. When the remote
// target is down and a local target (typically the LAN gateway) is
// configured, reaching it classifies as ReachableLocal. Anything else is
// Unreachable.
type Dialer struct {
	remoteTarget string
	localTarget  string // empty disables the local fallback
	timeout      time.Duration
	logger       *slog.Logger

	// dial is swapped out in tests.
	dial func(ctx context.Context, address string, timeout time.Duration) error
}

// NewDialer creates a dialer probe. Empty remote target and zero timeout
// fall back to the defaults; an empty local target disables the
// ReachableLocal classification.
func NewDialer(remoteTarget, localTarget string, timeout time.Duration, logger *slog.Logger) *Dialer {
	if remoteTarget == "" {
		remoteTarget = DefaultRemoteTarget
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Dialer{
		remoteTarget: withDefaultPort(remoteTarget),
		localTarget:  withDefaultPort(localTarget),
		timeout:      timeout,
		logger:       logger,
		dial:         dialTCP,
	}
}

// Classify probes the remote target, then the local one. It never returns
// an error; dial failures are the offline signal, not a fault.
func (d *Dialer) Classify(ctx context.Context) netstate.Reachability {
	err := d.dial(ctx, d.remoteTarget, d.timeout)
	if err == nil {
		return netstate.ReachableRemote
	}

	d.logger.Debug("remote target unreachable",
		slog.String("target", d.remoteTarget),
		slog.String("error", err.Error()),
	)

	if d.localTarget != "" {
		err = d.dial(ctx, d.localTarget, d.timeout)
		if err == nil {
			return netstate.ReachableLocal
		}

		d.logger.Debug("local target unreachable",
			slog.String("target", d.localTarget),
			slog.String("error", err.Error()),
		)
	}

	return netstate.Unreachable
}

// dialTCP opens and immediately closes a TCP connection, bounded by both
// the context and the per-attempt timeout.
func dialTCP(ctx context.Context, address string, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}

	return conn.Close()
}

// withDefaultPort appends the default probe port when the target has none.
func withDefaultPort(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return ""
	}

	if _, _, err := net.SplitHostPort(target); err == nil {
		return target
	}

	return net.JoinHostPort(target, defaultPort)
}
