// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/bureau-foundation/cado/lib/navigation"
	"github.com/bureau-foundation/cado/lib/notebook"
	"github.com/bureau-foundation/cado/lib/notebookstore"
	"github.com/bureau-foundation/cado/lib/protocol"
)

// ErrUnknownCell is returned by cell commands naming a cell that is
// not in the open notebook.
var ErrUnknownCell = errors.New("unknown cell")

// ErrEmptyName is returned by RenameNotebook for a blank name.
var ErrEmptyName = errors.New("notebook name is empty")

// performLocked sends the request for a navigation action.
func (session *Session) performLocked(action navigation.Action) {
	switch action.Kind {
	case navigation.ActionNone:
	case navigation.ActionRunCell:
		session.runCellLocked(action.CellID)
	case navigation.ActionClearCell:
		session.sendLocked(protocol.ClearCell{CellID: action.CellID})
	case navigation.ActionNewCell:
		session.newCellLocked(action.Index)
	case navigation.ActionDeleteCell:
		session.deleteCellLocked(action.CellID)
	default:
		session.logLocked(slog.LevelWarn, "ignoring unknown navigation action", "action", action.Kind)
	}
}

// RunCell flushes the cell's edits, asks the server to execute it and
// marks it running until the result arrives.
func (session *Session) RunCell(cellID string) error {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	if _, ok := session.store.Cell(cellID); !ok {
		return fmt.Errorf("run %s: %w", cellID, ErrUnknownCell)
	}
	if !session.runCellLocked(cellID) {
		return fmt.Errorf("run %s: request not sent", cellID)
	}
	return nil
}

func (session *Session) runCellLocked(cellID string) bool {
	session.flushCellLocked(cellID)
	if !session.sendLocked(protocol.RunCell{CellID: cellID}) {
		return false
	}
	session.store.SetCellStatus(cellID, notebook.StatusRunning)
	return true
}

// ClearCell asks the server to discard a cell's output.
func (session *Session) ClearCell(cellID string) error {
	session.mutex.Lock()
	defer session.unlock()

	if _, ok := session.store.Cell(cellID); !ok {
		return fmt.Errorf("clear %s: %w", cellID, ErrUnknownCell)
	}
	return session.transport.Send(protocol.ClearCell{CellID: cellID})
}

// NewCell asks the server for an empty cell at index, or at the end
// when index is nil. The new cell becomes active when it arrives.
func (session *Session) NewCell(index *int) error {
	session.mutex.Lock()
	defer session.unlock()

	if !session.store.Loaded() {
		return fmt.Errorf("new cell: %w", notebookstore.ErrNoNotebook)
	}
	if !session.newCellLocked(index) {
		return errors.New("new cell: request not sent")
	}
	return nil
}

func (session *Session) newCellLocked(index *int) bool {
	if !session.sendLocked(protocol.NewCell{Index: index}) {
		return false
	}
	session.pendingInserts = append(session.pendingInserts, index)
	return true
}

// DeleteCell asks the server to remove a cell. If it is the active
// cell, the next cell (or the previous one) becomes active. The cell
// stays in the store until the server's notebook update removes it.
func (session *Session) DeleteCell(cellID string) error {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	if _, ok := session.store.Cell(cellID); !ok {
		return fmt.Errorf("delete %s: %w", cellID, ErrUnknownCell)
	}
	if session.navigator.State().ActiveCellID == cellID {
		session.focus = Focus{}
		session.navigator.Apply(navigation.CommandExitEdit)
		session.navigator.Apply(navigation.CommandDeleteCell)
	}
	if !session.deleteCellLocked(cellID) {
		return fmt.Errorf("delete %s: request not sent", cellID)
	}
	return nil
}

func (session *Session) deleteCellLocked(cellID string) bool {
	session.ledger.Forget(cellID)
	if session.focus.CellID == cellID {
		session.focus = Focus{}
	}
	return session.sendLocked(protocol.DeleteCell{CellID: cellID})
}

// ToggleLanguage switches a cell between python and markdown.
func (session *Session) ToggleLanguage(cellID string) error {
	session.mutex.Lock()
	defer session.unlock()

	cell, ok := session.store.Cell(cellID)
	if !ok {
		return fmt.Errorf("toggle language of %s: %w", cellID, ErrUnknownCell)
	}
	return session.transport.Send(protocol.UpdateCellLanguage{CellID: cellID, Language: cell.Language.Toggle()})
}

// MoveCell moves a cell delta positions, clamped to the notebook.
func (session *Session) MoveCell(cellID string, delta int) error {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	ids := session.store.IDs()
	from := slices.Index(ids, cellID)
	if from < 0 {
		return fmt.Errorf("move %s: %w", cellID, ErrUnknownCell)
	}
	to := min(max(from+delta, 0), len(ids)-1)
	if to == from {
		return nil
	}
	ids = slices.Delete(ids, from, from+1)
	ids = slices.Insert(ids, to, cellID)
	return session.reorderLocked(ids)
}

// Reorder rearranges the cells locally and sends the resulting order
// to the server. Unknown IDs are ignored and unlisted cells keep their
// relative order at the end.
func (session *Session) Reorder(cellIDs []string) error {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()
	return session.reorderLocked(cellIDs)
}

func (session *Session) reorderLocked(cellIDs []string) error {
	if err := session.store.Reorder(cellIDs); err != nil {
		return fmt.Errorf("reorder: %w", err)
	}
	session.syncNavigatorLocked()
	return session.transport.Send(protocol.ReorderCells{CellIDs: session.store.IDs()})
}

// OpenNotebook asks the server to open the notebook file at filepath.
func (session *Session) OpenNotebook(filepath string) error {
	return session.send(protocol.OpenNotebook{Filepath: filepath})
}

// NewNotebook asks the server to create and open an empty notebook.
func (session *Session) NewNotebook() error {
	return session.send(protocol.NewNotebook{})
}

// DeleteNotebook asks the server to delete a notebook file.
func (session *Session) DeleteNotebook(filepath string) error {
	return session.send(protocol.DeleteNotebook{Filepath: filepath})
}

// ExitNotebook flushes any edit in progress and asks the server to
// close the open notebook.
func (session *Session) ExitNotebook() error {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	session.flushFocusLocked()
	session.navigator.Apply(navigation.CommandExitEdit)
	return session.transport.Send(protocol.ExitNotebook{})
}

// RenameNotebook renames the open notebook locally and on the server.
func (session *Session) RenameNotebook(name string) error {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if err := session.store.SetName(name); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return session.transport.Send(protocol.UpdateNotebookName{Name: name})
}

// RefreshListing asks the server for the notebook listing.
func (session *Session) RefreshListing() error {
	return session.send(protocol.ListNotebooks{})
}

// Resync asks the server for the full notebook, replacing local state
// when it arrives.
func (session *Session) Resync() error {
	return session.send(protocol.GetNotebook{})
}

func (session *Session) send(request protocol.Request) error {
	session.mutex.Lock()
	defer session.unlock()
	if err := session.transport.Send(request); err != nil {
		return fmt.Errorf("%s: %w", request.Kind(), err)
	}
	return nil
}
