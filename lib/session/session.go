// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/cado/lib/connection"
	"github.com/bureau-foundation/cado/lib/navigation"
	"github.com/bureau-foundation/cado/lib/notebook"
	"github.com/bureau-foundation/cado/lib/notebookstore"
	"github.com/bureau-foundation/cado/lib/protocol"
	"github.com/bureau-foundation/cado/lib/reconcile"
)

// Transport carries requests to the server and reports responses and
// connection status. *connection.Manager implements it.
type Transport interface {
	Send(protocol.Request) error
	OnMessage(func(protocol.Response))
	OnStateChange(func(connection.Status))
}

// View is the top-level screen the session is showing.
type View string

const (
	ViewDisconnected View = "disconnected"
	ViewListing      View = "listing"
	ViewNotebook     View = "notebook"
)

// Focus names the cell field that currently has keyboard focus.
type Focus struct {
	CellID string
	Field  reconcile.Field
}

// Options configures a Session.
type Options struct {
	// Bindings are the key chords; nil uses
	// navigation.DefaultBindings.
	Bindings []navigation.Binding

	// Store receives server state; nil creates a new one.
	Store *notebookstore.Store

	Logger *slog.Logger
}

// Session is the client's orchestration layer.
type Session struct {
	transport Transport
	store     *notebookstore.Store
	logger    *slog.Logger

	mutex      sync.Mutex
	navigator  *navigation.Navigator
	detector   *navigation.Detector
	ledger     *reconcile.Ledger
	view       View
	connection connection.Status
	listing    []notebook.NotebookDetails
	focus      Focus

	// pendingInserts holds the index of every NewCell request not yet
	// answered, oldest first. nil entries are appends.
	pendingInserts []*int

	// pendingLogs collects records logged under mutex. unlock emits
	// them after releasing it, since a handler may read the session.
	pendingLogs []pendingLog

	subscriberMutex sync.Mutex
	subscribers     []chan struct{}
}

// pendingLog is a record waiting for the session lock to be released.
type pendingLog struct {
	level   slog.Level
	message string
	args    []any
}

// logLocked queues a record for emission by unlock. The session lock
// is held.
func (session *Session) logLocked(level slog.Level, message string, args ...any) {
	session.pendingLogs = append(session.pendingLogs, pendingLog{level: level, message: message, args: args})
}

// unlock releases the session lock and then emits the records queued
// while it was held.
func (session *Session) unlock() {
	records := session.pendingLogs
	session.pendingLogs = nil
	session.mutex.Unlock()
	for _, record := range records {
		session.logger.Log(context.Background(), record.level, record.message, record.args...)
	}
}

// New creates a session and registers its handlers on transport.
func New(transport Transport, options Options) (*Session, error) {
	bindings := options.Bindings
	if bindings == nil {
		bindings = navigation.DefaultBindings()
	}
	detector, err := navigation.NewDetector(bindings)
	if err != nil {
		return nil, fmt.Errorf("key bindings: %w", err)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	store := options.Store
	if store == nil {
		store = notebookstore.New()
	}

	session := &Session{
		transport:  transport,
		store:      store,
		logger:     logger,
		navigator:  navigation.NewNavigator(),
		detector:   detector,
		ledger:     reconcile.NewLedger(),
		view:       ViewDisconnected,
		connection: connection.Status{State: connection.StateClosed},
	}
	transport.OnMessage(session.HandleResponse)
	transport.OnStateChange(session.HandleStatus)
	return session, nil
}

// Store returns the authoritative notebook store.
func (session *Session) Store() *notebookstore.Store {
	return session.store
}

// Subscribe returns a channel that receives a value after any change
// visible in a Snapshot. Notifications coalesce: one pending value
// stands for any number of changes.
func (session *Session) Subscribe() <-chan struct{} {
	session.subscriberMutex.Lock()
	defer session.subscriberMutex.Unlock()
	channel := make(chan struct{}, 1)
	session.subscribers = append(session.subscribers, channel)
	return channel
}

// notify wakes every subscriber. Must be called without the session
// lock held.
func (session *Session) notify() {
	session.subscriberMutex.Lock()
	subscribers := session.subscribers
	session.subscriberMutex.Unlock()
	for _, subscriber := range subscribers {
		select {
		case subscriber <- struct{}{}:
		default:
		}
	}
}

// Snapshot is a render-ready copy of the session state.
type Snapshot struct {
	View       View
	Connection connection.Status

	// NotebookName and Cells describe the open notebook. Cells carry
	// local drafts in place of confirmed text.
	NotebookName string
	Cells        []notebook.Cell

	Navigation navigation.State
	Focus      Focus

	// Listing is sorted most recently updated first.
	Listing []notebook.NotebookDetails
}

// ActiveIndex returns the position of the active cell, or -1.
func (snapshot Snapshot) ActiveIndex() int {
	for index, cell := range snapshot.Cells {
		if cell.ID == snapshot.Navigation.ActiveCellID {
			return index
		}
	}
	return -1
}

// Snapshot returns the current state.
func (session *Session) Snapshot() Snapshot {
	session.mutex.Lock()
	defer session.unlock()

	snapshot := Snapshot{
		View:       session.view,
		Connection: session.connection,
		Navigation: session.navigator.State(),
		Focus:      session.focus,
		Listing:    append([]notebook.NotebookDetails(nil), session.listing...),
	}
	if current, ok := session.store.Notebook(); ok {
		snapshot.NotebookName = current.Name
		snapshot.Cells = make([]notebook.Cell, len(current.Cells))
		for index, cell := range current.Cells {
			snapshot.Cells[index] = session.ledger.Overlay(cell)
		}
	}
	return snapshot
}

// HandleStatus reacts to a connection status change. When the
// connection opens the session asks for the current notebook; while
// it is not open the disconnected view is shown.
func (session *Session) HandleStatus(status connection.Status) {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	previous := session.connection.State
	session.connection = status
	if status.State == connection.StateOpen {
		if previous != connection.StateOpen {
			session.sendLocked(protocol.GetNotebook{})
		}
		return
	}
	if session.view != ViewDisconnected && status.State != connection.StateClosing {
		session.logLocked(slog.LevelWarn, "lost connection to the notebook server", "state", status.State.String())
	}
	session.view = ViewDisconnected
	session.detector.Reset()
	session.pendingInserts = nil
}

// sendLocked sends a request, logging failures. The session lock is
// held; the transport never calls back into the session synchronously
// from Send.
func (session *Session) sendLocked(request protocol.Request) bool {
	if err := session.transport.Send(request); err != nil {
		session.logLocked(slog.LevelWarn, "request not sent", "type", request.Kind(), "error", err)
		return false
	}
	return true
}

// syncNavigatorLocked re-validates navigation against the store's cell
// order and drops focus that no longer applies.
func (session *Session) syncNavigatorLocked() {
	session.navigator.SetCells(session.store.IDs())
	session.syncFocusLocked()
}
