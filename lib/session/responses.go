// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"log/slog"

	"github.com/bureau-foundation/cado/lib/notebook"
	"github.com/bureau-foundation/cado/lib/protocol"
)

// HandleResponse applies one server response. Responses must be
// delivered in the order the server sent them.
func (session *Session) HandleResponse(response protocol.Response) {
	defer session.notify()
	session.mutex.Lock()
	defer session.unlock()

	switch response := response.(type) {
	case protocol.GetNotebookResponse:
		session.applyNotebookLocked(response.Notebook)

	case protocol.ListNotebooksResponse:
		session.applyListingLocked(response.NotebookDetails)

	case protocol.NewCellResponse:
		session.applyNewCellLocked(response.Cell)

	case protocol.RunCellResponse:
		session.applyCellLocked(response.Cell.WithRunResult(), response.Kind())

	case protocol.CellResponse:
		session.applyCellLocked(response.CellRecord(), response.Kind())

	case protocol.ErrorResponse:
		// The failed request's intent is unknown; local state stays
		// as it is and a full resync restores the server's view.
		session.logLocked(slog.LevelWarn, "server reported an error", "error", response.Error)
		session.sendLocked(protocol.GetNotebook{})

	case protocol.Unknown:
		session.logLocked(slog.LevelWarn, "ignoring response of unknown type", "type", response.Type)

	default:
		session.logLocked(slog.LevelWarn, "ignoring unhandled response", "type", response.Kind())
	}
}

// applyNotebookLocked replaces the whole notebook. A nil notebook means
// none is open: the listing view is shown and refreshed.
func (session *Session) applyNotebookLocked(replacement *notebook.Notebook) {
	if replacement == nil {
		session.store.Replace(nil)
		session.ledger.Reset()
		session.pendingInserts = nil
		session.navigator.SetCells(nil)
		session.focus = Focus{}
		session.view = ViewListing
		session.sendLocked(protocol.ListNotebooks{})
		return
	}

	before, beforeErr := session.store.Fingerprint()
	if dropped := session.store.Replace(replacement); dropped > 0 {
		session.logLocked(slog.LevelWarn, "dropped duplicate cells from notebook", "duplicates", dropped)
	}
	after, afterErr := session.store.Fingerprint()
	if err := errors.Join(beforeErr, afterErr); err != nil {
		session.logLocked(slog.LevelWarn, "cannot compare notebook versions", "error", err)
	}
	session.logLocked(slog.LevelDebug, "notebook replaced", "cells", len(replacement.Cells), "changed", before != after)

	ids := session.store.IDs()
	session.ledger.Retain(ids)
	opened := session.view != ViewNotebook
	session.syncNavigatorLocked()
	if opened && session.navigator.State().ActiveCellID == "" && len(ids) > 0 {
		session.navigator.Activate(ids[0])
	}
	session.view = ViewNotebook
}

// applyListingLocked records the notebook listing.
func (session *Session) applyListingLocked(details []notebook.NotebookDetails) {
	listing := append([]notebook.NotebookDetails(nil), details...)
	notebook.SortByUpdated(listing)
	session.listing = listing
	if !session.store.Loaded() {
		session.view = ViewListing
	}
}

// applyCellLocked replaces one cell by ID, appending it if it is new.
func (session *Session) applyCellLocked(cell notebook.Cell, kind protocol.Kind) {
	if _, err := session.store.UpsertCell(cell); err != nil {
		session.logLocked(slog.LevelWarn, "dropping cell update", "type", kind, "cell_id", cell.ID, "error", err)
		return
	}
	session.ledger.Confirm(cell)
	session.syncNavigatorLocked()
}

// applyNewCellLocked inserts a created cell where the oldest
// outstanding NewCell request asked for it, and makes it active unless
// the user is typing in a field.
func (session *Session) applyNewCellLocked(cell notebook.Cell) {
	if !session.store.Loaded() {
		session.logLocked(slog.LevelWarn, "dropping new cell", "cell_id", cell.ID, "error", "no notebook loaded")
		return
	}

	var index *int
	if len(session.pendingInserts) > 0 {
		index = session.pendingInserts[0]
		session.pendingInserts = session.pendingInserts[1:]
	}
	var err error
	if index == nil {
		_, err = session.store.UpsertCell(cell)
	} else {
		_, err = session.store.InsertCell(cell, *index)
	}
	if err != nil {
		session.logLocked(slog.LevelWarn, "dropping new cell", "cell_id", cell.ID, "error", err)
		return
	}
	session.ledger.Confirm(cell)
	session.syncNavigatorLocked()
	if session.focus.CellID == "" {
		session.navigator.Activate(cell.ID)
	}
}
