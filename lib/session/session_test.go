// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/cado/lib/connection"
	"github.com/bureau-foundation/cado/lib/navigation"
	"github.com/bureau-foundation/cado/lib/notebook"
	"github.com/bureau-foundation/cado/lib/protocol"
	"github.com/bureau-foundation/cado/lib/reconcile"
	"github.com/bureau-foundation/cado/lib/testutil"
)

// fakeTransport records sent requests and lets tests deliver
// responses and status changes through the registered handlers.
type fakeTransport struct {
	mutex     sync.Mutex
	sent      []protocol.Request
	failSends bool

	onMessage func(protocol.Response)
	onState   func(connection.Status)
}

func (transport *fakeTransport) Send(request protocol.Request) error {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	if transport.failSends {
		return connection.ErrNotConnected
	}
	transport.sent = append(transport.sent, request)
	return nil
}

func (transport *fakeTransport) OnMessage(handler func(protocol.Response)) {
	transport.onMessage = handler
}

func (transport *fakeTransport) OnStateChange(handler func(connection.Status)) {
	transport.onState = handler
}

// takeSent returns the requests sent since the last call.
func (transport *fakeTransport) takeSent() []protocol.Request {
	transport.mutex.Lock()
	defer transport.mutex.Unlock()
	sent := transport.sent
	transport.sent = nil
	return sent
}

func (transport *fakeTransport) deliver(response protocol.Response) {
	transport.onMessage(response)
}

func (transport *fakeTransport) setState(status connection.Status) {
	transport.onState(status)
}

// sessionReadingHandler records log messages. When a session is
// attached it reads a snapshot inside Handle, the way the terminal
// front end's event loop reads the session while log records arrive.
type sessionReadingHandler struct {
	session  atomic.Pointer[Session]
	mutex    sync.Mutex
	messages []string
}

func (handler *sessionReadingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (handler *sessionReadingHandler) Handle(_ context.Context, record slog.Record) error {
	if session := handler.session.Load(); session != nil {
		session.Snapshot()
	}
	handler.mutex.Lock()
	defer handler.mutex.Unlock()
	handler.messages = append(handler.messages, record.Message)
	return nil
}

func (handler *sessionReadingHandler) WithAttrs([]slog.Attr) slog.Handler { return handler }
func (handler *sessionReadingHandler) WithGroup(string) slog.Handler      { return handler }

func (handler *sessionReadingHandler) recorded() []string {
	handler.mutex.Lock()
	defer handler.mutex.Unlock()
	return append([]string(nil), handler.messages...)
}

func testNotebook(ids ...string) *notebook.Notebook {
	cells := make([]notebook.Cell, len(ids))
	for index, id := range ids {
		cells[index] = notebook.Cell{
			ID:         id,
			Code:       "code-" + id,
			Language:   notebook.LanguagePython,
			InputNames: []string{},
			Status:     notebook.StatusIdle,
		}
	}
	return &notebook.Notebook{ID: "nb", Name: "analysis", Cells: cells}
}

// openSession returns a connected session showing a notebook with the
// given cells. The first cell is active and nothing has been sent.
func openSession(t *testing.T, ids ...string) (*Session, *fakeTransport) {
	t.Helper()
	transport := &fakeTransport{}
	session, err := New(transport, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	transport.setState(connection.Status{State: connection.StateOpen})
	transport.deliver(protocol.GetNotebookResponse{Notebook: testNotebook(ids...)})
	transport.takeSent()
	return session, transport
}

// chord presses keys in order, then releases them in reverse. It
// returns the result of the last key-down.
func chord(session *Session, keys ...string) bool {
	var prevented bool
	for _, key := range keys {
		prevented = session.KeyDown(key)
	}
	for index := len(keys) - 1; index >= 0; index-- {
		session.KeyUp(keys[index])
	}
	return prevented
}

func requireSent(t *testing.T, transport *fakeTransport, want ...protocol.Request) {
	t.Helper()
	got := transport.takeSent()
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sent %#v, want %#v", got, want)
	}
}

func cellIDs(snapshot Snapshot) []string {
	ids := make([]string, len(snapshot.Cells))
	for index, cell := range snapshot.Cells {
		ids[index] = cell.ID
	}
	return ids
}

func TestConnectRequestsNotebook(t *testing.T) {
	transport := &fakeTransport{}
	session, err := New(transport, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if view := session.Snapshot().View; view != ViewDisconnected {
		t.Fatalf("initial view = %s", view)
	}

	transport.setState(connection.Status{State: connection.StateConnecting})
	requireSent(t, transport)

	transport.setState(connection.Status{State: connection.StateOpen})
	requireSent(t, transport, protocol.GetNotebook{})

	// A repeated open status does not ask again.
	transport.setState(connection.Status{State: connection.StateOpen})
	requireSent(t, transport)
}

func TestNoOpenNotebookShowsListing(t *testing.T) {
	transport := &fakeTransport{}
	session, err := New(transport, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	transport.setState(connection.Status{State: connection.StateOpen})
	transport.takeSent()

	transport.deliver(protocol.GetNotebookResponse{Notebook: nil})
	requireSent(t, transport, protocol.ListNotebooks{})
	if view := session.Snapshot().View; view != ViewListing {
		t.Fatalf("view = %s, want listing", view)
	}

	older, _ := notebook.ParseTimestamp("2026-01-01T00:00:00")
	newer, _ := notebook.ParseTimestamp("2026-03-01T00:00:00")
	transport.deliver(protocol.ListNotebooksResponse{NotebookDetails: []notebook.NotebookDetails{
		{ID: "old", Name: "old", Filepath: "old.json", Updated: older},
		{ID: "new", Name: "new", Filepath: "new.json", Updated: newer},
	}})
	listing := session.Snapshot().Listing
	if len(listing) != 2 || listing[0].ID != "new" || listing[1].ID != "old" {
		t.Fatalf("listing = %+v, want most recent first", listing)
	}
}

func TestOpeningNotebookActivatesFirstCell(t *testing.T) {
	session, _ := openSession(t, "c1", "c2")
	snapshot := session.Snapshot()
	if snapshot.View != ViewNotebook {
		t.Fatalf("view = %s", snapshot.View)
	}
	if snapshot.NotebookName != "analysis" {
		t.Fatalf("name = %q", snapshot.NotebookName)
	}
	if snapshot.Navigation != (navigation.State{ActiveCellID: "c1"}) {
		t.Fatalf("navigation = %+v", snapshot.Navigation)
	}
	if snapshot.ActiveIndex() != 0 {
		t.Fatalf("ActiveIndex() = %d", snapshot.ActiveIndex())
	}
}

func TestRunChordRunsActiveCell(t *testing.T) {
	session, transport := openSession(t, "c1", "c2")

	if !chord(session, "Shift", "Enter") {
		t.Fatal("Shift+Enter did not prevent the default")
	}
	requireSent(t, transport, protocol.RunCell{CellID: "c1"})
	if status := session.Snapshot().Cells[0].Status; status != notebook.StatusRunning {
		t.Fatalf("status after run = %s, want running", status)
	}

	result := testNotebook("c1").Cells[0]
	result.Stdout = "hello\n"
	transport.deliver(protocol.RunCellResponse{Cell: result})
	cell := session.Snapshot().Cells[0]
	if cell.Status != notebook.StatusOK || cell.Stdout != "hello\n" {
		t.Fatalf("cell after result = %+v", cell)
	}
}

func TestRunResultWithStderrIsError(t *testing.T) {
	session, transport := openSession(t, "c1")
	chord(session, "Shift", "Enter")

	result := testNotebook("c1").Cells[0]
	result.Stderr = "NameError"
	transport.deliver(protocol.RunCellResponse{Cell: result})
	if status := session.Snapshot().Cells[0].Status; status != notebook.StatusError {
		t.Fatalf("status = %s, want error", status)
	}
}

func TestArrowKeysMoveActiveCell(t *testing.T) {
	session, _ := openSession(t, "c1", "c2", "c3")

	chord(session, "ArrowDown")
	chord(session, "ArrowDown")
	chord(session, "ArrowDown")
	if active := session.Snapshot().Navigation.ActiveCellID; active != "c3" {
		t.Fatalf("active after three moves down = %q, want c3 (clamped)", active)
	}
	chord(session, "ArrowUp")
	if active := session.Snapshot().Navigation.ActiveCellID; active != "c2" {
		t.Fatalf("active after move up = %q", active)
	}
}

func TestEditThenEscapeFlushes(t *testing.T) {
	session, transport := openSession(t, "c1")

	chord(session, "Enter")
	snapshot := session.Snapshot()
	if !snapshot.Navigation.EditMode || snapshot.Focus != (Focus{CellID: "c1", Field: reconcile.FieldCode}) {
		t.Fatalf("after Enter: navigation %+v focus %+v", snapshot.Navigation, snapshot.Focus)
	}

	session.EditField("c1", reconcile.FieldCode, "x = 2")
	requireSent(t, transport)

	// Plain keys while editing never fire chords.
	if chord(session, "Shift", "Enter") {
		t.Fatal("Shift+Enter prevented the default while editing")
	}
	requireSent(t, transport)

	chord(session, "Escape")
	requireSent(t, transport, protocol.UpdateCellCode{CellID: "c1", Code: "x = 2"})
	snapshot = session.Snapshot()
	if snapshot.Navigation.EditMode || snapshot.Focus != (Focus{}) {
		t.Fatalf("after Escape: navigation %+v focus %+v", snapshot.Navigation, snapshot.Focus)
	}
	if code := snapshot.Cells[0].Code; code != "x = 2" {
		t.Fatalf("display before echo = %q, want the draft", code)
	}

	echo := testNotebook("c1").Cells[0]
	echo.Code = "x = 2"
	transport.deliver(protocol.UpdateCellResponse{Cell: echo})
	if code := session.Snapshot().Cells[0].Code; code != "x = 2" {
		t.Fatalf("display after echo = %q", code)
	}
	if session.ledger.Len() != 0 {
		t.Fatalf("ledger holds %d drafts after echo", session.ledger.Len())
	}
}

func TestUnchangedEditSendsNothing(t *testing.T) {
	session, transport := openSession(t, "c1")
	session.EditField("c1", reconcile.FieldCode, "code-c1")
	session.Blur()
	requireSent(t, transport)
}

func TestNewCellChordInsertsAfterActive(t *testing.T) {
	session, transport := openSession(t, "c1", "c2", "c3")

	if !chord(session, "Shift", "N") {
		t.Fatal("Shift+N did not prevent the default")
	}
	position := 1
	requireSent(t, transport, protocol.NewCell{Index: &position})

	created := notebook.Cell{ID: "c4", Language: notebook.LanguagePython, InputNames: []string{}, Status: notebook.StatusIdle}
	transport.deliver(protocol.NewCellResponse{Cell: created})
	snapshot := session.Snapshot()
	if ids := cellIDs(snapshot); !reflect.DeepEqual(ids, []string{"c1", "c4", "c2", "c3"}) {
		t.Fatalf("order = %v", ids)
	}
	if snapshot.Navigation.ActiveCellID != "c4" {
		t.Fatalf("active = %q, want the new cell", snapshot.Navigation.ActiveCellID)
	}
}

func TestNewCellInEmptyNotebookBecomesActive(t *testing.T) {
	session, transport := openSession(t)
	if active := session.Snapshot().Navigation.ActiveCellID; active != "" {
		t.Fatalf("empty notebook has active cell %q", active)
	}

	if !chord(session, "Shift", "N") {
		t.Fatal("Shift+N did not prevent the default")
	}
	requireSent(t, transport, protocol.NewCell{})

	transport.deliver(protocol.NewCellResponse{Cell: notebook.Cell{
		ID: "c1", Code: "", Language: notebook.LanguagePython, InputNames: []string{}, Status: notebook.StatusIdle,
	}})
	snapshot := session.Snapshot()
	if ids := cellIDs(snapshot); !reflect.DeepEqual(ids, []string{"c1"}) {
		t.Fatalf("cells = %v, want [c1]", ids)
	}
	if snapshot.Navigation.ActiveCellID != "c1" {
		t.Fatalf("active = %q, want c1", snapshot.Navigation.ActiveCellID)
	}
}

func TestNewCellWithoutActiveAppends(t *testing.T) {
	session, transport := openSession(t, "c1")
	session.ClickOutside()

	chord(session, "Shift", "N")
	requireSent(t, transport, protocol.NewCell{})

	transport.deliver(protocol.NewCellResponse{Cell: notebook.Cell{ID: "c2"}})
	if ids := cellIDs(session.Snapshot()); !reflect.DeepEqual(ids, []string{"c1", "c2"}) {
		t.Fatalf("order = %v", ids)
	}
}

func TestPendingInsertsAnswerInOrder(t *testing.T) {
	session, transport := openSession(t, "c1", "c2")

	first, second := 0, 2
	if err := session.NewCell(&first); err != nil {
		t.Fatalf("NewCell: %v", err)
	}
	if err := session.NewCell(&second); err != nil {
		t.Fatalf("NewCell: %v", err)
	}
	transport.takeSent()

	a, b := testutil.UniqueID("cell"), testutil.UniqueID("cell")
	transport.deliver(protocol.NewCellResponse{Cell: notebook.Cell{ID: a}})
	transport.deliver(protocol.NewCellResponse{Cell: notebook.Cell{ID: b}})
	if ids := cellIDs(session.Snapshot()); !reflect.DeepEqual(ids, []string{a, "c1", b, "c2"}) {
		t.Fatalf("order = %v", ids)
	}
}

func TestDeleteChordReassignsActive(t *testing.T) {
	session, transport := openSession(t, "c1", "c2", "c3")
	session.ClickCell("c2")

	if !chord(session, "Shift", "D") {
		t.Fatal("Shift+D did not prevent the default")
	}
	requireSent(t, transport, protocol.DeleteCell{CellID: "c2"})
	snapshot := session.Snapshot()
	if snapshot.Navigation.ActiveCellID != "c3" {
		t.Fatalf("active after delete = %q, want the next cell", snapshot.Navigation.ActiveCellID)
	}
	// The server's notebook update removes the cell.
	if len(snapshot.Cells) != 3 {
		t.Fatalf("cells removed locally before the server answered: %v", cellIDs(snapshot))
	}

	transport.deliver(protocol.GetNotebookResponse{Notebook: testNotebook("c1", "c3")})
	snapshot = session.Snapshot()
	if ids := cellIDs(snapshot); !reflect.DeepEqual(ids, []string{"c1", "c3"}) {
		t.Fatalf("order = %v", ids)
	}
	if snapshot.Navigation.ActiveCellID != "c3" {
		t.Fatalf("active after resync = %q", snapshot.Navigation.ActiveCellID)
	}

	// Deleting the last cell moves to the previous one.
	chord(session, "Shift", "D")
	requireSent(t, transport, protocol.DeleteCell{CellID: "c3"})
	if active := session.Snapshot().Navigation.ActiveCellID; active != "c1" {
		t.Fatalf("active after deleting the last cell = %q, want c1", active)
	}
}

func TestResyncDropsVanishedActiveCell(t *testing.T) {
	session, transport := openSession(t, "c1", "c2")
	session.ClickEditor("c2")
	session.EditField("c2", reconcile.FieldCode, "unsaved")

	transport.deliver(protocol.GetNotebookResponse{Notebook: testNotebook("c1")})
	snapshot := session.Snapshot()
	if snapshot.Navigation != (navigation.State{ActiveCellID: "c1"}) {
		t.Fatalf("navigation = %+v, want c1 active outside edit mode", snapshot.Navigation)
	}
	if snapshot.Focus != (Focus{}) {
		t.Fatalf("focus = %+v", snapshot.Focus)
	}
	if session.ledger.Len() != 0 {
		t.Fatal("draft for a vanished cell survived")
	}
}

func TestReorderIsOptimistic(t *testing.T) {
	session, transport := openSession(t, "c1", "c2", "c3")

	if err := session.Reorder([]string{"c3", "c1", "c2"}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	requireSent(t, transport, protocol.ReorderCells{CellIDs: []string{"c3", "c1", "c2"}})

	echo := testNotebook("c1").Cells[0]
	echo.Code = "changed"
	transport.deliver(protocol.UpdateCellResponse{Cell: echo})
	snapshot := session.Snapshot()
	if ids := cellIDs(snapshot); !reflect.DeepEqual(ids, []string{"c3", "c1", "c2"}) {
		t.Fatalf("order after upsert = %v", ids)
	}
	if snapshot.Cells[1].Code != "changed" {
		t.Fatalf("upsert not applied in place: %+v", snapshot.Cells[1])
	}
}

func TestMoveCell(t *testing.T) {
	session, transport := openSession(t, "c1", "c2", "c3")

	if err := session.MoveCell("c1", 1); err != nil {
		t.Fatalf("MoveCell: %v", err)
	}
	requireSent(t, transport, protocol.ReorderCells{CellIDs: []string{"c2", "c1", "c3"}})

	if err := session.MoveCell("c3", 10); err != nil {
		t.Fatalf("MoveCell past the end: %v", err)
	}
	requireSent(t, transport)

	if err := session.MoveCell("missing", 1); !errors.Is(err, ErrUnknownCell) {
		t.Fatalf("MoveCell(missing) = %v, want ErrUnknownCell", err)
	}
}

func TestErrorResponseResyncs(t *testing.T) {
	session, transport := openSession(t, "c1", "c2")
	before := session.Snapshot()

	transport.deliver(protocol.ErrorResponse{Error: "cell not found"})
	requireSent(t, transport, protocol.GetNotebook{})
	if after := session.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("error response changed state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestDisconnectShowsDisconnectedView(t *testing.T) {
	session, transport := openSession(t, "c1")

	transport.setState(connection.Status{State: connection.StateClosed, Attempts: 150, Exhausted: true})
	snapshot := session.Snapshot()
	if snapshot.View != ViewDisconnected || !snapshot.Connection.Exhausted {
		t.Fatalf("snapshot = %+v", snapshot)
	}
	if chord(session, "Shift", "Enter") {
		t.Fatal("chord fired while disconnected")
	}
	requireSent(t, transport)

	// Reconnecting asks for the notebook again.
	transport.setState(connection.Status{State: connection.StateOpen})
	requireSent(t, transport, protocol.GetNotebook{})
}

// Log handlers may read the session, so nothing is logged while the
// session lock is held.
func TestLogsAreEmittedOutsideTheLock(t *testing.T) {
	handler := &sessionReadingHandler{}
	transport := &fakeTransport{}
	session, err := New(transport, Options{Logger: slog.New(handler)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	handler.session.Store(session)

	done := make(chan struct{})
	go func() {
		defer close(done)
		transport.setState(connection.Status{State: connection.StateOpen})
		transport.deliver(protocol.GetNotebookResponse{Notebook: testNotebook("c1", "c1")})
		transport.deliver(protocol.ErrorResponse{Error: "boom"})
		transport.deliver(protocol.Unknown{Type: "cell-telemetry"})
		session.EditField("missing", reconcile.FieldCode, "x = 1")

		transport.mutex.Lock()
		transport.failSends = true
		transport.mutex.Unlock()
		chord(session, "Shift", "Enter")
		transport.setState(connection.Status{State: connection.StateClosed, Attempts: 1})
	}()
	testutil.RequireClosed(t, done, 5*time.Second, "session calls that log")

	recorded := handler.recorded()
	for _, want := range []string{
		"dropped duplicate cells from notebook",
		"server reported an error",
		"ignoring response of unknown type",
		"dropping edit for unknown cell",
		"request not sent",
		"lost connection to the notebook server",
	} {
		if !slices.Contains(recorded, want) {
			t.Fatalf("missing log %q in %q", want, recorded)
		}
	}
	if view := session.Snapshot().View; view != ViewDisconnected {
		t.Fatalf("view = %q, want disconnected", view)
	}
}

func TestIntentionalCloseIsNotReportedAsLoss(t *testing.T) {
	handler := &sessionReadingHandler{}
	transport := &fakeTransport{}
	session, err := New(transport, Options{Logger: slog.New(handler)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	transport.setState(connection.Status{State: connection.StateOpen})
	transport.deliver(protocol.GetNotebookResponse{Notebook: testNotebook("c1")})

	transport.setState(connection.Status{State: connection.StateClosing})
	transport.setState(connection.Status{State: connection.StateClosed})
	if view := session.Snapshot().View; view != ViewDisconnected {
		t.Fatalf("view = %q, want disconnected", view)
	}
	if slices.Contains(handler.recorded(), "lost connection to the notebook server") {
		t.Fatalf("intentional close logged as a loss: %q", handler.recorded())
	}
}

func TestChordsIgnoredInListing(t *testing.T) {
	transport := &fakeTransport{}
	session, err := New(transport, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	transport.setState(connection.Status{State: connection.StateOpen})
	transport.deliver(protocol.GetNotebookResponse{})
	transport.takeSent()

	if chord(session, "Shift", "N") {
		t.Fatal("chord prevented the default in the listing view")
	}
	requireSent(t, transport)
}

func TestCellResponseWithoutNotebookIsDropped(t *testing.T) {
	transport := &fakeTransport{}
	session, err := New(transport, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	transport.deliver(protocol.UpdateCellResponse{Cell: notebook.Cell{ID: "c1"}})
	transport.deliver(protocol.NewCellResponse{Cell: notebook.Cell{ID: "c2"}})
	if snapshot := session.Snapshot(); snapshot.Cells != nil {
		t.Fatalf("cells = %+v, want none", snapshot.Cells)
	}
}

func TestUnknownResponseIgnored(t *testing.T) {
	session, transport := openSession(t, "c1")
	before := session.Snapshot()
	transport.deliver(protocol.Unknown{Type: "kernel-restarted"})
	requireSent(t, transport)
	if after := session.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatal("unknown response changed state")
	}
}

func TestToggleLanguage(t *testing.T) {
	session, transport := openSession(t, "c1")
	if err := session.ToggleLanguage("c1"); err != nil {
		t.Fatalf("ToggleLanguage: %v", err)
	}
	requireSent(t, transport, protocol.UpdateCellLanguage{CellID: "c1", Language: notebook.LanguageMarkdown})

	if err := session.ToggleLanguage("missing"); !errors.Is(err, ErrUnknownCell) {
		t.Fatalf("ToggleLanguage(missing) = %v", err)
	}
}

func TestInputNamesFieldParsesOnBlur(t *testing.T) {
	session, transport := openSession(t, "c1")

	session.FocusField("c1", reconcile.FieldInputNames)
	session.EditField("c1", reconcile.FieldInputNames, " frame, rows ,")
	if names := session.Snapshot().Cells[0].InputNames; !reflect.DeepEqual(names, []string{"frame", "rows"}) {
		t.Fatalf("displayed input names = %v", names)
	}
	session.Blur()
	requireSent(t, transport, protocol.UpdateCellInputNames{CellID: "c1", InputNames: []string{"frame", "rows"}})
}

func TestSwitchingFieldsFlushesPrevious(t *testing.T) {
	session, transport := openSession(t, "c1")

	session.EditField("c1", reconcile.FieldOutputName, " total ")
	session.EditField("c1", reconcile.FieldCode, "code-c1 + 1")
	requireSent(t, transport, protocol.UpdateCellOutputName{CellID: "c1", OutputName: "total"})

	session.ClickOutside()
	requireSent(t, transport, protocol.UpdateCellCode{CellID: "c1", Code: "code-c1 + 1"})
	if active := session.Snapshot().Navigation.ActiveCellID; active != "" {
		t.Fatalf("active after click outside = %q", active)
	}
}

func TestRunFlushesDraftFirst(t *testing.T) {
	session, transport := openSession(t, "c1")
	session.EditField("c1", reconcile.FieldCode, "print(1)")

	if err := session.RunCell("c1"); err != nil {
		t.Fatalf("RunCell: %v", err)
	}
	requireSent(t, transport,
		protocol.UpdateCellCode{CellID: "c1", Code: "print(1)"},
		protocol.RunCell{CellID: "c1"},
	)
}

func TestFailedSendLeavesStatus(t *testing.T) {
	session, transport := openSession(t, "c1")
	transport.failSends = true

	if err := session.RunCell("c1"); err == nil {
		t.Fatal("RunCell succeeded with a failing transport")
	}
	if status := session.Snapshot().Cells[0].Status; status != notebook.StatusIdle {
		t.Fatalf("status = %s, want idle", status)
	}
}

func TestRenameNotebook(t *testing.T) {
	session, transport := openSession(t, "c1")

	if err := session.RenameNotebook("  "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("RenameNotebook(blank) = %v", err)
	}
	if err := session.RenameNotebook("results"); err != nil {
		t.Fatalf("RenameNotebook: %v", err)
	}
	requireSent(t, transport, protocol.UpdateNotebookName{Name: "results"})
	if name := session.Snapshot().NotebookName; name != "results" {
		t.Fatalf("name = %q", name)
	}
}

func TestExitNotebookFlushesEdit(t *testing.T) {
	session, transport := openSession(t, "c1")
	session.EditField("c1", reconcile.FieldCode, "draft")

	if err := session.ExitNotebook(); err != nil {
		t.Fatalf("ExitNotebook: %v", err)
	}
	requireSent(t, transport,
		protocol.UpdateCellCode{CellID: "c1", Code: "draft"},
		protocol.ExitNotebook{},
	)
}

func TestSubscribeNotifies(t *testing.T) {
	session, _ := openSession(t, "c1", "c2")
	changes := session.Subscribe()

	session.ClickCell("c2")
	testutil.RequireReceive(t, changes, time.Second, "change notification")

	// Notifications coalesce rather than block.
	session.ClickCell("c1")
	session.ClickCell("c2")
	testutil.RequireReceive(t, changes, time.Second, "coalesced notification")
	testutil.RequireNoReceive(t, changes, 10*time.Millisecond, "extra notification")
}

func TestDuplicateBindingsRejected(t *testing.T) {
	_, err := New(&fakeTransport{}, Options{Bindings: []navigation.Binding{
		{Pattern: "Shift+Enter", Command: navigation.CommandRun},
		{Pattern: "Enter+Shift", Command: navigation.CommandClear},
	}})
	if err == nil {
		t.Fatal("New accepted two bindings for the same chord")
	}
}
