// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile keeps the user's in-progress edits apart from the
// server-confirmed notebook.
//
// Text fields (code, output name, input names) are edited locally and
// only sent when the editor loses focus. Until the server echoes the
// change back, the [Ledger] holds the draft so the display shows what
// the user typed rather than the stale confirmed value. There is no
// correlation between requests and responses: the first authoritative
// record for a cell after a flush settles that cell's pending drafts,
// and the last response to arrive wins.
package reconcile

import (
	"slices"
	"strings"

	"github.com/bureau-foundation/cado/lib/notebook"
	"github.com/bureau-foundation/cado/lib/protocol"
)

// Field is an editable text field of a cell.
type Field string

const (
	FieldCode       Field = "code"
	FieldOutputName Field = "output_name"
	FieldInputNames Field = "input_names"
)

type draftKey struct {
	cellID string
	field  Field
}

// draft is one local edit. A pending draft has been sent and awaits
// the server's echo.
type draft struct {
	value   string
	pending bool
}

// Ledger records local drafts. Not safe for concurrent use.
type Ledger struct {
	drafts map[draftKey]draft
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{drafts: make(map[draftKey]draft)}
}

// SetDraft records the current local text of a field. Editing a field
// that was already flushed makes it an unflushed draft again.
func (ledger *Ledger) SetDraft(cellID string, field Field, value string) {
	ledger.drafts[draftKey{cellID, field}] = draft{value: value}
}

// Draft returns the local text of a field, if any.
func (ledger *Ledger) Draft(cellID string, field Field) (string, bool) {
	entry, ok := ledger.drafts[draftKey{cellID, field}]
	return entry.value, ok
}

// Pending reports whether a flushed draft awaits confirmation.
func (ledger *Ledger) Pending(cellID string, field Field) bool {
	return ledger.drafts[draftKey{cellID, field}].pending
}

// Value returns the text to display for a field: the local draft when
// one exists, otherwise the confirmed value from cell.
func (ledger *Ledger) Value(cell notebook.Cell, field Field) string {
	if value, ok := ledger.Draft(cell.ID, field); ok {
		return value
	}
	return ConfirmedValue(cell, field)
}

// Overlay returns cell with every draft applied, for rendering.
func (ledger *Ledger) Overlay(cell notebook.Cell) notebook.Cell {
	overlaid := cell.Clone()
	if value, ok := ledger.Draft(cell.ID, FieldCode); ok {
		overlaid.Code = value
	}
	if value, ok := ledger.Draft(cell.ID, FieldOutputName); ok {
		overlaid.OutputName = value
	}
	if value, ok := ledger.Draft(cell.ID, FieldInputNames); ok {
		overlaid.InputNames = ParseInputNames(value)
	}
	return overlaid
}

// Flush is called when a field loses focus. If the draft differs from
// the confirmed value it returns the update request to send and marks
// the draft pending. A draft equal to the confirmed value is discarded
// and nothing is sent.
func (ledger *Ledger) Flush(cell notebook.Cell, field Field) (protocol.Request, bool) {
	key := draftKey{cell.ID, field}
	entry, ok := ledger.drafts[key]
	if !ok || entry.pending {
		return nil, false
	}
	if sameValue(cell, field, entry.value) {
		delete(ledger.drafts, key)
		return nil, false
	}
	ledger.drafts[key] = draft{value: entry.value, pending: true}

	switch field {
	case FieldCode:
		return protocol.UpdateCellCode{CellID: cell.ID, Code: entry.value}, true
	case FieldOutputName:
		return protocol.UpdateCellOutputName{CellID: cell.ID, OutputName: strings.TrimSpace(entry.value)}, true
	case FieldInputNames:
		return protocol.UpdateCellInputNames{CellID: cell.ID, InputNames: ParseInputNames(entry.value)}, true
	default:
		delete(ledger.drafts, key)
		return nil, false
	}
}

// Confirm applies an authoritative cell record: pending drafts for the
// cell are settled and dropped, and any unflushed draft that now
// matches the confirmed value is dropped too. Unflushed drafts that
// still differ survive, since the user is still typing.
func (ledger *Ledger) Confirm(cell notebook.Cell) {
	for key, entry := range ledger.drafts {
		if key.cellID != cell.ID {
			continue
		}
		if entry.pending || sameValue(cell, key.field, entry.value) {
			delete(ledger.drafts, key)
		}
	}
}

// Forget drops every draft for a cell, for example after it was
// deleted.
func (ledger *Ledger) Forget(cellID string) {
	for key := range ledger.drafts {
		if key.cellID == cellID {
			delete(ledger.drafts, key)
		}
	}
}

// Retain drops drafts for cells not in cellIDs and settles every
// pending draft. Called after a full notebook replacement, which is
// authoritative for every cell at once.
func (ledger *Ledger) Retain(cellIDs []string) {
	for key, entry := range ledger.drafts {
		if entry.pending || !slices.Contains(cellIDs, key.cellID) {
			delete(ledger.drafts, key)
		}
	}
}

// Reset drops every draft.
func (ledger *Ledger) Reset() {
	clear(ledger.drafts)
}

// Len returns the number of drafts held.
func (ledger *Ledger) Len() int {
	return len(ledger.drafts)
}

// ConfirmedValue returns a field of cell as editable text. Input names
// are joined with ", ".
func ConfirmedValue(cell notebook.Cell, field Field) string {
	switch field {
	case FieldCode:
		return cell.Code
	case FieldOutputName:
		return cell.OutputName
	case FieldInputNames:
		return strings.Join(cell.InputNames, ", ")
	default:
		return ""
	}
}

// ParseInputNames splits comma-separated text into names. Whitespace
// around names is trimmed and empty entries are dropped, so "" yields
// an empty list.
func ParseInputNames(text string) []string {
	names := []string{}
	for _, part := range strings.Split(text, ",") {
		name := strings.TrimSpace(part)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// sameValue reports whether value, as the text of field, means the
// same thing as the confirmed cell.
func sameValue(cell notebook.Cell, field Field, value string) bool {
	switch field {
	case FieldInputNames:
		return slices.Equal(ParseInputNames(value), normalizeNames(cell.InputNames))
	case FieldOutputName:
		return strings.TrimSpace(value) == cell.OutputName
	default:
		return value == ConfirmedValue(cell, field)
	}
}

func normalizeNames(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
