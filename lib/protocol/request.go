// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import "github.com/bureau-foundation/cado/lib/notebook"

// Request is a message sent from the client to the server. The set of
// implementations is closed.
type Request interface {
	Kind() Kind
	isRequest()
}

// GetNotebook asks for the currently open notebook. The server answers
// with a [GetNotebookResponse] whose notebook is null when none is
// open.
type GetNotebook struct{}

// ListNotebooks asks for the notebook listing.
type ListNotebooks struct{}

// OpenNotebook opens the notebook file at Filepath.
type OpenNotebook struct {
	Filepath string `json:"filepath"`
}

// NewNotebook creates and opens an empty notebook.
type NewNotebook struct{}

// DeleteNotebook deletes the notebook file at Filepath.
type DeleteNotebook struct {
	Filepath string `json:"filepath"`
}

// ExitNotebook closes the open notebook and returns to the listing.
type ExitNotebook struct{}

// UpdateNotebookName renames the open notebook.
type UpdateNotebookName struct {
	Name string `json:"name"`
}

// NewCell creates an empty cell. When Index is nil the server appends
// the cell; otherwise it is inserted at that position.
type NewCell struct {
	Index *int `json:"index,omitempty"`
}

// DeleteCell removes a cell.
type DeleteCell struct {
	CellID string `json:"cell_id"`
}

// UpdateCellCode replaces a cell's source text.
type UpdateCellCode struct {
	CellID string `json:"cell_id"`
	Code   string `json:"code"`
}

// UpdateCellLanguage switches a cell between python and markdown.
type UpdateCellLanguage struct {
	CellID   string            `json:"cell_id"`
	Language notebook.Language `json:"language"`
}

// UpdateCellOutputName sets the variable name a cell's output is bound
// to.
type UpdateCellOutputName struct {
	CellID     string `json:"cell_id"`
	OutputName string `json:"output_name"`
}

// UpdateCellInputNames sets the variable names a cell reads.
type UpdateCellInputNames struct {
	CellID     string   `json:"cell_id"`
	InputNames []string `json:"input_names"`
}

// RunCell executes a cell.
type RunCell struct {
	CellID string `json:"cell_id"`
}

// ClearCell discards a cell's output.
type ClearCell struct {
	CellID string `json:"cell_id"`
}

// ReorderCells replaces the notebook's cell order.
type ReorderCells struct {
	CellIDs []string `json:"cell_ids"`
}

func (GetNotebook) Kind() Kind          { return KindGetNotebook }
func (ListNotebooks) Kind() Kind        { return KindListNotebooks }
func (OpenNotebook) Kind() Kind         { return KindOpenNotebook }
func (NewNotebook) Kind() Kind          { return KindNewNotebook }
func (DeleteNotebook) Kind() Kind       { return KindDeleteNotebook }
func (ExitNotebook) Kind() Kind         { return KindExitNotebook }
func (UpdateNotebookName) Kind() Kind   { return KindUpdateNotebookName }
func (NewCell) Kind() Kind              { return KindNewCell }
func (DeleteCell) Kind() Kind           { return KindDeleteCell }
func (UpdateCellCode) Kind() Kind       { return KindUpdateCellCode }
func (UpdateCellLanguage) Kind() Kind   { return KindUpdateCellLanguage }
func (UpdateCellOutputName) Kind() Kind { return KindUpdateCellOutputName }
func (UpdateCellInputNames) Kind() Kind { return KindUpdateCellInputNames }
func (RunCell) Kind() Kind              { return KindRunCell }
func (ClearCell) Kind() Kind            { return KindClearCell }
func (ReorderCells) Kind() Kind         { return KindReorderCells }

func (GetNotebook) isRequest()          {}
func (ListNotebooks) isRequest()        {}
func (OpenNotebook) isRequest()         {}
func (NewNotebook) isRequest()          {}
func (DeleteNotebook) isRequest()       {}
func (ExitNotebook) isRequest()         {}
func (UpdateNotebookName) isRequest()   {}
func (NewCell) isRequest()              {}
func (DeleteCell) isRequest()           {}
func (UpdateCellCode) isRequest()       {}
func (UpdateCellLanguage) isRequest()   {}
func (UpdateCellOutputName) isRequest() {}
func (UpdateCellInputNames) isRequest() {}
func (RunCell) isRequest()              {}
func (ClearCell) isRequest()            {}
func (ReorderCells) isRequest()         {}

// requestDecoders maps each request kind to its decoder.
var requestDecoders = map[Kind]func([]byte) (Request, error){
	KindGetNotebook:          decodeAs[GetNotebook, Request],
	KindListNotebooks:        decodeAs[ListNotebooks, Request],
	KindOpenNotebook:         decodeAs[OpenNotebook, Request],
	KindNewNotebook:          decodeAs[NewNotebook, Request],
	KindDeleteNotebook:       decodeAs[DeleteNotebook, Request],
	KindExitNotebook:         decodeAs[ExitNotebook, Request],
	KindUpdateNotebookName:   decodeAs[UpdateNotebookName, Request],
	KindNewCell:              decodeAs[NewCell, Request],
	KindDeleteCell:           decodeAs[DeleteCell, Request],
	KindUpdateCellCode:       decodeAs[UpdateCellCode, Request],
	KindUpdateCellLanguage:   decodeAs[UpdateCellLanguage, Request],
	KindUpdateCellOutputName: decodeAs[UpdateCellOutputName, Request],
	KindUpdateCellInputNames: decodeAs[UpdateCellInputNames, Request],
	KindRunCell:              decodeAs[RunCell, Request],
	KindClearCell:            decodeAs[ClearCell, Request],
	KindReorderCells:         decodeAs[ReorderCells, Request],
}
