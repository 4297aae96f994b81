// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"log/slog"

	"github.com/bureau-foundation/cado/lib/navigation"
	"github.com/bureau-foundation/cado/lib/reconcile"
)

// KeyDown handles a key-down event. Key names follow the DOM
// KeyboardEvent.key convention ("Enter", "Shift", "ArrowUp", "n").
// It returns true when the key's default handling should be
// suppressed, which happens only when a chord fired and its command
// applied. Chords are ignored outside the notebook view.
func (session *Session) KeyDown(key string) bool {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	if session.view != ViewNotebook {
		return false
	}
	match, ok := session.detector.Press(key)
	if !ok {
		return false
	}
	command := match.Binding.Command
	if command == navigation.CommandExitEdit && session.navigator.State().EditMode {
		session.flushFocusLocked()
	}

	action, applied := session.navigator.Apply(command)
	if !applied {
		return false
	}
	session.logLocked(slog.LevelDebug, "chord applied", "chord", match.Chord, "command", command)
	if command == navigation.CommandEnterEdit {
		session.focus = Focus{CellID: session.navigator.State().ActiveCellID, Field: reconcile.FieldCode}
	}
	session.performLocked(action)
	session.syncFocusLocked()
	return match.PreventDefault
}

// KeyUp handles a key-up event.
func (session *Session) KeyUp(key string) {
	session.mutex.Lock()
	defer session.unlock()
	session.detector.Release(key)
}

// ResetKeys forgets every held key. Call it when the window loses
// focus, since the matching key-up events will never arrive.
func (session *Session) ResetKeys() {
	session.mutex.Lock()
	defer session.unlock()
	session.detector.Reset()
}

// ClickCell makes cellID the active cell. Clicking another cell while
// editing flushes the edited field and leaves edit mode.
func (session *Session) ClickCell(cellID string) {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	if session.focus.CellID != "" && session.focus.CellID != cellID {
		session.flushFocusLocked()
	}
	session.navigator.ClickCell(cellID)
	session.syncFocusLocked()
}

// ClickEditor focuses a cell's code editor, entering edit mode.
func (session *Session) ClickEditor(cellID string) {
	session.FocusField(cellID, reconcile.FieldCode)
}

// ClickOutside deactivates every cell, flushing any edited field.
func (session *Session) ClickOutside() {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	session.flushFocusLocked()
	session.navigator.ClickOutside()
}

// FocusField gives keyboard focus to one text field of a cell. The
// cell becomes active and enters edit mode. A previously focused field
// loses focus and is flushed.
func (session *Session) FocusField(cellID string, field reconcile.Field) {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()
	session.focusLocked(cellID, field)
}

// EditField records the current text of a field. Nothing is sent until
// the field loses focus.
func (session *Session) EditField(cellID string, field reconcile.Field, text string) {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	if _, ok := session.store.Cell(cellID); !ok {
		session.logLocked(slog.LevelWarn, "dropping edit for unknown cell", "cell_id", cellID, "field", field)
		return
	}
	if session.focus != (Focus{CellID: cellID, Field: field}) {
		session.focusLocked(cellID, field)
	}
	session.ledger.SetDraft(cellID, field, text)
}

// Blur removes keyboard focus from the focused field, sending its
// change if it differs from the confirmed value, and leaves edit mode.
func (session *Session) Blur() {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	session.flushFocusLocked()
	session.navigator.Apply(navigation.CommandExitEdit)
}

// FieldValue returns the text an editor for the field should show:
// the local draft when one exists, otherwise the confirmed value.
func (session *Session) FieldValue(cellID string, field reconcile.Field) string {
	session.mutex.Lock()
	defer session.unlock()
	cell, ok := session.store.Cell(cellID)
	if !ok {
		return ""
	}
	return session.ledger.Value(cell, field)
}

func (session *Session) focusLocked(cellID string, field reconcile.Field) {
	if session.focus.CellID != "" && session.focus != (Focus{CellID: cellID, Field: field}) {
		session.flushFocusLocked()
	}
	if !session.navigator.ClickEditor(cellID) {
		return
	}
	session.focus = Focus{CellID: cellID, Field: field}
}

// flushFocusLocked sends the focused field's change, if any, and
// clears focus.
func (session *Session) flushFocusLocked() {
	focus := session.focus
	session.focus = Focus{}
	if focus.CellID == "" {
		return
	}
	cell, ok := session.store.Cell(focus.CellID)
	if !ok {
		session.ledger.Forget(focus.CellID)
		return
	}
	if request, ok := session.ledger.Flush(cell, focus.Field); ok {
		session.sendLocked(request)
	}
}

// flushCellLocked sends every changed field of one cell.
func (session *Session) flushCellLocked(cellID string) {
	cell, ok := session.store.Cell(cellID)
	if !ok {
		return
	}
	for _, field := range []reconcile.Field{reconcile.FieldCode, reconcile.FieldOutputName, reconcile.FieldInputNames} {
		if request, ok := session.ledger.Flush(cell, field); ok {
			session.sendLocked(request)
		}
	}
}

// syncFocusLocked clears focus that no longer matches the navigation
// state.
func (session *Session) syncFocusLocked() {
	state := session.navigator.State()
	if !state.EditMode || state.ActiveCellID != session.focus.CellID {
		session.focus = Focus{}
	}
}
