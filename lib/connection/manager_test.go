// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package connection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bureau-foundation/cado/lib/clock"
	"github.com/bureau-foundation/cado/lib/protocol"
	"github.com/bureau-foundation/cado/lib/testutil"
)

const testTimeout = 5 * time.Second

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// failingDialer refuses every dial and reports each attempt on calls.
type failingDialer struct {
	calls chan string
}

func newFailingDialer() *failingDialer {
	return &failingDialer{calls: make(chan string, 64)}
}

func (dialer *failingDialer) Dial(_ context.Context, url string) (Conn, error) {
	dialer.calls <- url
	return nil, errors.New("connection refused")
}

// harness is a Manager under test plus channels observing it.
type harness struct {
	manager   *Manager
	clock     *clock.FakeClock
	statuses  chan Status
	responses chan protocol.Response
}

func newHarness(t *testing.T, options Options) *harness {
	t.Helper()
	fake := clock.Fake(epoch)
	options.Clock = fake
	options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := New(options)

	h := &harness{
		manager:   manager,
		clock:     fake,
		statuses:  make(chan Status, 256),
		responses: make(chan protocol.Response, 64),
	}
	manager.OnStateChange(func(status Status) { h.statuses <- status })
	manager.OnMessage(func(response protocol.Response) { h.responses <- response })
	t.Cleanup(manager.Stop)
	return h
}

// waitForState drains status notifications until one matches.
func (h *harness) waitForState(t *testing.T, match func(Status) bool, description string) Status {
	t.Helper()
	for {
		status := testutil.RequireReceive(t, h.statuses, testTimeout, "waiting for %s", description)
		if match(status) {
			return status
		}
	}
}

func isOpen(status Status) bool { return status.State == StateOpen }

func TestRetriesAreBounded(t *testing.T) {
	dialer := newFailingDialer()
	h := newHarness(t, Options{
		URL:               "ws://unreachable/stream",
		ReconnectAttempts: 3,
		ReconnectInterval: 2 * time.Second,
		Dialer:            dialer,
	})
	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	testutil.RequireReceive(t, dialer.calls, testTimeout, "first dial")
	for attempt := 2; attempt <= 3; attempt++ {
		h.clock.WaitForTimers(1)
		h.clock.Advance(2 * time.Second)
		testutil.RequireReceive(t, dialer.calls, testTimeout, "dial %d", attempt)
	}

	status := h.waitForState(t, func(status Status) bool { return status.Exhausted }, "exhaustion")
	if status.State != StateClosed || status.Attempts != 3 {
		t.Fatalf("status = %+v, want closed after 3 attempts", status)
	}
	if pending := h.clock.PendingCount(); pending != 0 {
		t.Fatalf("a retry is still scheduled after exhaustion (%d pending)", pending)
	}

	h.manager.Stop()
	h.clock.Advance(time.Hour)
	if len(dialer.calls) != 0 {
		t.Fatalf("dialed again after exhaustion and teardown")
	}
}

func TestStopCancelsScheduledRetry(t *testing.T) {
	dialer := newFailingDialer()
	h := newHarness(t, Options{
		URL:               "ws://unreachable/stream",
		ReconnectAttempts: 10,
		ReconnectInterval: time.Second,
		Dialer:            dialer,
	})
	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	testutil.RequireReceive(t, dialer.calls, testTimeout, "first dial")
	h.clock.WaitForTimers(1)

	h.manager.Stop()

	if pending := h.clock.PendingCount(); pending != 0 {
		t.Fatalf("retry timer survived Stop (%d pending)", pending)
	}
	h.clock.Advance(time.Minute)
	if len(dialer.calls) != 0 {
		t.Fatal("dialed after Stop")
	}
	if status := h.manager.Status(); status.State != StateClosed {
		t.Fatalf("State = %v, want closed", status.State)
	}
	if err := h.manager.Start(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("Start after Stop = %v, want ErrStopped", err)
	}
}

func TestNegativeAttemptsDisablesReconnect(t *testing.T) {
	dialer := newFailingDialer()
	h := newHarness(t, Options{URL: "ws://x/stream", ReconnectAttempts: -1, Dialer: dialer})
	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	testutil.RequireReceive(t, dialer.calls, testTimeout, "only dial")
	h.waitForState(t, func(status Status) bool { return status.Exhausted }, "exhaustion")
	if h.clock.PendingCount() != 0 {
		t.Fatal("a retry was scheduled with reconnection disabled")
	}
}

func TestSendAndReceiveOverWebSocket(t *testing.T) {
	server := testutil.NewWebSocketServer(t)
	h := newHarness(t, Options{
		URL:   server.URL(),
		Codec: protocol.Codec{Encoding: protocol.FrameAuto},
	})

	if err := h.manager.Send(protocol.GetNotebook{}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Send before Start = %v, want ErrNotConnected", err)
	}

	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	serverConn := server.Accept(t, testTimeout)
	h.waitForState(t, isOpen, "open")

	if err := h.manager.Send(protocol.RunCell{CellID: "c1"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	frame := serverConn.Receive(t, testTimeout)
	request, err := protocol.Codec{}.DecodeRequest(frame)
	if err != nil {
		t.Fatalf("server could not decode %s: %v", frame, err)
	}
	if request != (protocol.RunCell{CellID: "c1"}) {
		t.Fatalf("server received %#v", request)
	}

	// Double-encoded reply, then an unknown type, then a garbage
	// frame, then a single-encoded reply. The garbage frame is dropped;
	// everything else arrives in order.
	double, err := protocol.Codec{Encoding: protocol.FrameDouble}.EncodeResponse(protocol.ErrorResponse{Error: "boom"})
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	serverConn.Send(t, double)
	serverConn.Send(t, []byte(`{"type":"kernel-restarted"}`))
	serverConn.Send(t, []byte(`not json`))
	serverConn.Send(t, []byte(`{"type":"get-notebook-response","notebook":null}`))

	first := testutil.RequireReceive(t, h.responses, testTimeout, "error response")
	if first != (protocol.ErrorResponse{Error: "boom"}) {
		t.Fatalf("first response = %#v", first)
	}
	second := testutil.RequireReceive(t, h.responses, testTimeout, "unknown response")
	if _, ok := second.(protocol.Unknown); !ok {
		t.Fatalf("second response = %#v, want Unknown", second)
	}
	third := testutil.RequireReceive(t, h.responses, testTimeout, "notebook response")
	if get, ok := third.(protocol.GetNotebookResponse); !ok || get.Notebook != nil {
		t.Fatalf("third response = %#v", third)
	}
}

func TestReconnectsAfterDrop(t *testing.T) {
	server := testutil.NewWebSocketServer(t)
	h := newHarness(t, Options{
		URL:               server.URL(),
		ReconnectAttempts: 5,
		ReconnectInterval: 2 * time.Second,
	})
	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first := server.Accept(t, testTimeout)
	h.waitForState(t, isOpen, "first open")

	first.Close()
	h.waitForState(t, func(status Status) bool { return status.State == StateConnecting }, "connection loss")
	// A drop after a successful open is not a failed attempt.
	if attempts := h.manager.Status().Attempts; attempts != 0 {
		t.Fatalf("Attempts after a drop = %d, want 0", attempts)
	}
	if err := h.manager.Send(protocol.GetNotebook{}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Send while disconnected = %v, want ErrNotConnected", err)
	}

	h.clock.WaitForTimers(1)
	h.clock.Advance(2 * time.Second)
	second := server.Accept(t, testTimeout)
	h.waitForState(t, isOpen, "second open")

	if err := h.manager.Send(protocol.ListNotebooks{}); err != nil {
		t.Fatalf("Send after reconnect: %v", err)
	}
	if frame := second.Receive(t, testTimeout); string(frame) != `{"type":"list-notebooks"}` {
		t.Fatalf("frame = %s", frame)
	}
}

func TestRefusedDialsCountAsAttempts(t *testing.T) {
	server := testutil.NewWebSocketServer(t)
	server.Refuse(true)
	h := newHarness(t, Options{
		URL:               server.URL(),
		ReconnectAttempts: 2,
		ReconnectInterval: time.Second,
	})
	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h.waitForState(t, func(status Status) bool { return status.Attempts == 1 }, "first failure")

	server.Refuse(false)
	h.clock.WaitForTimers(1)
	h.clock.Advance(time.Second)
	server.Accept(t, testTimeout)
	status := h.waitForState(t, isOpen, "open")
	if status.Attempts != 0 {
		t.Fatalf("Attempts = %d after a successful open, want 0", status.Attempts)
	}
}

func TestStopClosesOpenConnection(t *testing.T) {
	server := testutil.NewWebSocketServer(t)
	h := newHarness(t, Options{URL: server.URL(), ReconnectInterval: time.Second})
	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	serverConn := server.Accept(t, testTimeout)
	h.waitForState(t, isOpen, "open")

	h.manager.Stop()
	testutil.RequireClosed(t, serverConn.Done(), testTimeout, "server side closed")

	if status := h.manager.Status(); status.State != StateClosed || status.Exhausted {
		t.Fatalf("status = %+v, want closed and not exhausted", status)
	}
	if h.clock.PendingCount() != 0 {
		t.Fatal("a retry was scheduled after an intentional close")
	}
	h.clock.Advance(time.Hour)
	testutil.RequireNoReceive(t, server.Connections(), 100*time.Millisecond, "reconnect after Stop")

	// Stop is idempotent.
	h.manager.Stop()
}

func TestStartTwice(t *testing.T) {
	h := newHarness(t, Options{URL: "ws://x/stream", Dialer: newFailingDialer(), ReconnectAttempts: -1})
	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := h.manager.Start(context.Background()); err == nil {
		t.Fatal("second Start succeeded")
	}
}

func TestStateString(t *testing.T) {
	for state, want := range map[State]string{
		StateConnecting: "connecting",
		StateOpen:       "open",
		StateClosing:    "closing",
		StateClosed:     "closed",
		State(42):       "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
