package netstate

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// fakeClock is a manually advanced Clock for deterministic tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// stubProbe returns a fixed classification until changed.
type stubProbe struct {
	result Reachability
	calls  int
}

func (p *stubProbe) Classify(context.Context) Reachability {
	p.calls++

	return p.result
}

// recorder collects every published event.
type recorder struct {
	events []Event
}

func (r *recorder) listen(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}

	return out
}

func (r *recorder) reset() { r.events = nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
