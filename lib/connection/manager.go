// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/cado/lib/clock"
	"github.com/bureau-foundation/cado/lib/protocol"
)

var (
	// ErrNotConnected is returned by Send when no connection is open.
	ErrNotConnected = errors.New("not connected")

	// ErrStopped is returned by Start after Stop.
	ErrStopped = errors.New("connection manager stopped")
)

// Defaults applied by New for zero-valued Options fields.
const (
	DefaultReconnectAttempts = 150
	DefaultReconnectInterval = 2 * time.Second
)

// Options configures a Manager.
type Options struct {
	// URL is the WebSocket endpoint.
	URL string

	// ReconnectAttempts bounds consecutive failed dials. Negative
	// disables reconnection entirely; zero uses
	// DefaultReconnectAttempts.
	ReconnectAttempts int

	// ReconnectInterval is the fixed delay between dials. Zero uses
	// DefaultReconnectInterval.
	ReconnectInterval time.Duration

	Codec  protocol.Codec
	Dialer Dialer
	Clock  clock.Clock
	Logger *slog.Logger
}

// Manager maintains one connection to the notebook server. Create it
// with New, register handlers, then call Start.
type Manager struct {
	url           string
	attemptLimit  int
	retryInterval time.Duration
	codec         protocol.Codec
	dialer        Dialer
	clock         clock.Clock
	logger        *slog.Logger

	// closing is set by Stop before anything else happens, and read
	// at every retry decision.
	closing atomic.Bool

	// writeMutex serializes WriteMessage calls on the open connection.
	writeMutex sync.Mutex

	mutex          sync.Mutex
	status         Status
	conn           Conn
	retryTimer     *clock.Timer
	messageHandler func(protocol.Response)
	stateHandler   func(Status)
	started        bool
	cancel         context.CancelFunc
	done           chan struct{}
}

// New creates a Manager. Nothing is dialed until Start.
func New(options Options) *Manager {
	attemptLimit := options.ReconnectAttempts
	switch {
	case attemptLimit == 0:
		attemptLimit = DefaultReconnectAttempts
	case attemptLimit < 0:
		attemptLimit = 0
	}
	retryInterval := options.ReconnectInterval
	if retryInterval == 0 {
		retryInterval = DefaultReconnectInterval
	}
	dialer := options.Dialer
	if dialer == nil {
		dialer = WebSocketDialer{}
	}
	timeSource := options.Clock
	if timeSource == nil {
		timeSource = clock.Real()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		url:           options.URL,
		attemptLimit:  attemptLimit,
		retryInterval: retryInterval,
		codec:         options.Codec,
		dialer:        dialer,
		clock:         timeSource,
		logger:        logger,
		status:        Status{State: StateClosed},
	}
}

// OnMessage sets the handler that receives every decoded response,
// including protocol.Unknown. Responses are delivered one at a time
// from the manager's goroutine, in transport order. The handler may
// call Send.
func (manager *Manager) OnMessage(handler func(protocol.Response)) {
	manager.mutex.Lock()
	manager.messageHandler = handler
	manager.mutex.Unlock()
}

// OnStateChange sets the handler notified after every status change.
// A change to StateOpen is the signal to issue the initial request.
func (manager *Manager) OnStateChange(handler func(Status)) {
	manager.mutex.Lock()
	manager.stateHandler = handler
	manager.mutex.Unlock()
}

// Status returns the current status.
func (manager *Manager) Status() Status {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	return manager.status
}

// Start begins connecting in a background goroutine. Cancelling ctx
// has the same effect as Stop except that it does not wait.
func (manager *Manager) Start(ctx context.Context) error {
	if manager.closing.Load() {
		return ErrStopped
	}
	manager.mutex.Lock()
	if manager.started {
		manager.mutex.Unlock()
		return fmt.Errorf("connection manager already started")
	}
	manager.started = true
	ctx, cancel := context.WithCancel(ctx)
	manager.cancel = cancel
	manager.done = make(chan struct{})
	manager.mutex.Unlock()

	go manager.run(ctx)
	return nil
}

// Stop tears the connection down on purpose. It cancels any scheduled
// retry, closes the socket, and waits for the background goroutine to
// exit. Safe to call more than once and before Start.
func (manager *Manager) Stop() {
	if manager.closing.Swap(true) {
		manager.wait()
		return
	}

	manager.mutex.Lock()
	if manager.retryTimer != nil {
		manager.retryTimer.Stop()
		manager.retryTimer = nil
	}
	conn := manager.conn
	cancel := manager.cancel
	manager.mutex.Unlock()

	manager.logger.Info("closing connection", "url", manager.url)
	manager.setStatus(func(status *Status) { status.State = StateClosing })

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		manager.closeGracefully(conn)
	}
	manager.wait()
	manager.setStatus(func(status *Status) { status.State = StateClosed })
}

// wait blocks until the background goroutine has exited.
func (manager *Manager) wait() {
	manager.mutex.Lock()
	done := manager.done
	manager.mutex.Unlock()
	if done != nil {
		<-done
	}
}

// Send encodes request and writes it to the open connection.
func (manager *Manager) Send(request protocol.Request) error {
	frame, err := manager.codec.EncodeRequest(request)
	if err != nil {
		return err
	}

	manager.mutex.Lock()
	conn := manager.conn
	open := manager.status.State == StateOpen
	manager.mutex.Unlock()
	if conn == nil || !open {
		return fmt.Errorf("sending %s: %w", request.Kind(), ErrNotConnected)
	}

	manager.writeMutex.Lock()
	defer manager.writeMutex.Unlock()
	manager.logger.Debug("sending request", "type", request.Kind(), "bytes", len(frame))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("sending %s: %w", request.Kind(), err)
	}
	return nil
}

// run is the connection loop. It exits when the manager is stopped,
// ctx is cancelled, or retries are exhausted.
func (manager *Manager) run(ctx context.Context) {
	defer func() {
		manager.mutex.Lock()
		close(manager.done)
		manager.mutex.Unlock()
	}()

	for {
		manager.setStatus(func(status *Status) { status.State = StateConnecting })

		conn, err := manager.dialer.Dial(ctx, manager.url)
		if err == nil {
			if !manager.adopt(conn) {
				conn.Close()
				return
			}
			manager.logger.Info("connected", "url", manager.url)
			manager.setStatus(func(status *Status) {
				status.State = StateOpen
				status.Attempts = 0
				status.Exhausted = false
			})

			err = manager.readFrames(conn)
			manager.release(conn)
			if manager.stopping(ctx) {
				return
			}
			manager.logger.Warn("connection lost", "url", manager.url, "error", err)
		} else {
			if manager.stopping(ctx) {
				return
			}
			attempts := manager.recordFailure()
			manager.logger.Warn("connection attempt failed",
				"url", manager.url,
				"attempt", attempts,
				"limit", manager.attemptLimit,
				"error", err,
			)
		}

		if manager.Status().Attempts >= manager.attemptLimit {
			manager.logger.Error("giving up on connection", "url", manager.url, "attempts", manager.Status().Attempts)
			manager.setStatus(func(status *Status) {
				status.State = StateClosed
				status.Exhausted = true
			})
			return
		}
		if !manager.waitForRetry(ctx) {
			return
		}
	}
}

// stopping reports whether the loop must exit instead of retrying.
func (manager *Manager) stopping(ctx context.Context) bool {
	return manager.closing.Load() || ctx.Err() != nil
}

// adopt installs conn as the live connection unless teardown has
// begun. Stop reads manager.conn under the same lock, so either Stop
// sees the connection and closes it or adopt sees the closing flag.
func (manager *Manager) adopt(conn Conn) bool {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	if manager.closing.Load() {
		return false
	}
	manager.conn = conn
	return true
}

// release forgets conn and closes it.
func (manager *Manager) release(conn Conn) {
	manager.mutex.Lock()
	if manager.conn == conn {
		manager.conn = nil
	}
	manager.mutex.Unlock()
	conn.Close()
	manager.setStatus(func(status *Status) {
		if status.State == StateOpen {
			status.State = StateConnecting
		}
	})
}

// recordFailure counts one failed dial and returns the new count.
func (manager *Manager) recordFailure() int {
	var attempts int
	manager.setStatus(func(status *Status) {
		status.Attempts++
		attempts = status.Attempts
	})
	return attempts
}

// waitForRetry schedules the next dial and blocks until it is due.
// Returns false when the manager was stopped in the meantime.
func (manager *Manager) waitForRetry(ctx context.Context) bool {
	due := make(chan struct{})

	manager.mutex.Lock()
	if manager.closing.Load() {
		manager.mutex.Unlock()
		return false
	}
	manager.retryTimer = manager.clock.AfterFunc(manager.retryInterval, func() { close(due) })
	manager.mutex.Unlock()

	select {
	case <-due:
	case <-ctx.Done():
	}

	manager.mutex.Lock()
	if manager.retryTimer != nil {
		manager.retryTimer.Stop()
		manager.retryTimer = nil
	}
	manager.mutex.Unlock()
	return !manager.stopping(ctx)
}

// readFrames delivers decoded frames to the message handler until the
// connection fails.
func (manager *Manager) readFrames(conn Conn) error {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		response, err := manager.codec.DecodeResponse(frame)
		if err != nil {
			manager.logger.Warn("dropping undecodable frame", "error", err, "bytes", len(frame))
			continue
		}
		manager.logger.Debug("received response", "type", response.Kind())

		manager.mutex.Lock()
		handler := manager.messageHandler
		manager.mutex.Unlock()
		if handler != nil {
			handler(response)
		}
	}
}

// closeGracefully sends a close frame when the connection supports it,
// then closes the connection.
func (manager *Manager) closeGracefully(conn Conn) {
	type controlWriter interface {
		WriteControl(messageType int, data []byte, deadline time.Time) error
	}
	if writer, ok := conn.(controlWriter); ok {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing")
		_ = writer.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
	}
	conn.Close()
}

// setStatus applies mutate under the lock and notifies the state
// handler when anything changed.
func (manager *Manager) setStatus(mutate func(*Status)) {
	manager.mutex.Lock()
	before := manager.status
	mutate(&manager.status)
	after := manager.status
	handler := manager.stateHandler
	manager.mutex.Unlock()

	if after != before && handler != nil {
		handler(after)
	}
}
