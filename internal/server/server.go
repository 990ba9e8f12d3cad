// Package server exposes the tracker over a local HTTP listener: a JSON
// status snapshot and a websocket event stream that doubles as a control
// channel (force retry, report failure/success, force probe). The listener
// is meant for loopback use by UI clients and the CLI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/tonimelisma/netstate-go/internal/netstate"
)

// eventBuffer is the per-client event queue depth. Events are dropped for a
// client that cannot keep up; the tick loop must never block on a slow
// websocket peer.
const eventBuffer = 64

// shutdownGrace bounds how long Run waits for the HTTP server to drain.
const shutdownGrace = 5 * time.Second

// Control actions accepted over the event socket.
const (
	ActionForceRetry    = "force_retry"
	ActionReportFailure = "report_failure"
	ActionReportSuccess = "report_success"
	ActionProbe         = "probe"
)

// Snapshot is the wire form of the tracker's query surface.
type Snapshot struct {
	Online                bool    `json:"online"`
	Status                string  `json:"status"`
	PendingSyncData       bool    `json:"pending_sync_data"`
	RetryCountdownSeconds float64 `json:"retry_countdown_seconds"`
}

// WireEvent is the wire form of a tracker event.
type WireEvent struct {
	Event  string `json:"event"`
	Online *bool  `json:"online,omitempty"`
	Status string `json:"status,omitempty"`
}

// ControlMessage is an inbound command on the event socket.
type ControlMessage struct {
	Action string `json:"action"`
}

// Server serves the snapshot and event endpoints for one tracker.
type Server struct {
	tracker *netstate.Tracker
	logger  *slog.Logger
}

// New creates a server for the given tracker.
func New(tracker *netstate.Tracker, logger *slog.Logger) *Server {
	return &Server{tracker: tracker, logger: logger}
}

// Handler returns the HTTP routes: GET /status and GET /events (websocket).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", getOnly(s.handleStatus))
	mux.HandleFunc("/events", getOnly(s.handleEvents))

	return mux
}

// getOnly restricts a handler to GET (and HEAD) requests, matching the
// "GET /path" ServeMux patterns introduced in Go 1.22.
func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// Run serves on addr until ctx is cancelled, then drains with a bounded
// grace period.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("event server listening", slog.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}
}

func (s *Server) snapshot() Snapshot {
	return Snapshot{
		Online:                s.tracker.IsOnline(),
		Status:                s.tracker.NetworkStatus().String(),
		PendingSyncData:       s.tracker.HasPendingSyncData(),
		RetryCountdownSeconds: s.tracker.RetryCountdown().Seconds(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(s.snapshot()); err != nil {
		s.logger.Warn("writing status response", slog.String("error", err.Error()))
	}
}

// handleEvents upgrades to a websocket, streams tracker events, and applies
// control messages the peer sends. The subscription is buffered: a stalled
// peer loses events rather than stalling the tick loop.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", slog.String("error", err.Error()))

		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	events := make(chan netstate.Event, eventBuffer)
	unsubscribe := s.tracker.Subscribe(func(ev netstate.Event) {
		select {
		case events <- ev:
		default:
			s.logger.Warn("dropping event for slow websocket client",
				slog.String("event", ev.Kind.String()),
			)
		}
	})
	defer unsubscribe()

	// Reader side: control messages until the peer goes away.
	readDone := make(chan struct{})

	go func() {
		defer close(readDone)

		for {
			var msg ControlMessage
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				return
			}

			s.applyControl(ctx, msg)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")

			return

		case <-readDone:
			return

		case ev := <-events:
			if err := wsjson.Write(ctx, conn, toWire(ev)); err != nil {
				return
			}
		}
	}
}

// applyControl maps a control message onto the tracker's operations.
// Unknown actions are logged and ignored; the socket stays open.
func (s *Server) applyControl(ctx context.Context, msg ControlMessage) {
	switch msg.Action {
	case ActionForceRetry:
		fired := s.tracker.ForceRetryIfOnline()
		s.logger.Info("control: force retry", slog.Bool("fired", fired))
	case ActionReportFailure:
		s.tracker.ReportFailure()
		s.logger.Info("control: failure reported")
	case ActionReportSuccess:
		s.tracker.ReportSuccess()
		s.logger.Info("control: success reported")
	case ActionProbe:
		s.tracker.ForceProbeNow(ctx)
		s.logger.Info("control: forced probe")
	default:
		s.logger.Warn("control: unknown action", slog.String("action", msg.Action))
	}
}

// toWire converts a tracker event to its wire form. Only the fields
// meaningful for the kind are populated.
func toWire(ev netstate.Event) WireEvent {
	out := WireEvent{Event: ev.Kind.String()}

	if ev.Kind == netstate.EventConnectivityChanged {
		online := ev.Online
		out.Online = &online
	}

	if ev.Kind == netstate.EventStatusChanged {
		out.Status = ev.Status.String()
	}

	return out
}
