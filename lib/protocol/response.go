// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/json"

	"github.com/bureau-foundation/cado/lib/notebook"
)

// Response is a message sent from the server to the client. The set of
// implementations is closed; [Unknown] stands in for any discriminator
// this client does not recognize.
type Response interface {
	Kind() Kind
	isResponse()
}

// CellResponse is implemented by every response that carries one
// authoritative cell record.
type CellResponse interface {
	Response
	CellRecord() notebook.Cell
}

// GetNotebookResponse carries the open notebook, or nil when no
// notebook is open.
type GetNotebookResponse struct {
	Notebook *notebook.Notebook `json:"notebook"`
}

// ListNotebooksResponse carries the notebook listing.
type ListNotebooksResponse struct {
	NotebookDetails []notebook.NotebookDetails `json:"notebook_details"`
}

// GetCellResponse carries a cell in reply to a query.
type GetCellResponse struct {
	Cell notebook.Cell `json:"cell"`
}

// UpdateCellResponse carries a cell after an edit was applied.
type UpdateCellResponse struct {
	Cell notebook.Cell `json:"cell"`
}

// NewCellResponse carries a freshly created cell.
type NewCellResponse struct {
	Cell notebook.Cell `json:"cell"`
}

// RunCellResponse carries a cell after execution finished.
type RunCellResponse struct {
	Cell notebook.Cell `json:"cell"`
}

// ClearCellResponse carries a cell after its output was discarded.
type ClearCellResponse struct {
	Cell notebook.Cell `json:"cell"`
}

// ErrorResponse reports that the server rejected or failed a request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Unknown is a frame whose discriminator this client does not
// recognize. Raw holds the decoded frame body.
type Unknown struct {
	Type Kind
	Raw  json.RawMessage
}

func (GetNotebookResponse) Kind() Kind   { return KindGetNotebookResponse }
func (ListNotebooksResponse) Kind() Kind { return KindListNotebooksResponse }
func (GetCellResponse) Kind() Kind       { return KindGetCellResponse }
func (UpdateCellResponse) Kind() Kind    { return KindUpdateCellResponse }
func (NewCellResponse) Kind() Kind       { return KindNewCellResponse }
func (RunCellResponse) Kind() Kind       { return KindRunCellResponse }
func (ClearCellResponse) Kind() Kind     { return KindClearCellResponse }
func (ErrorResponse) Kind() Kind         { return KindErrorResponse }
func (unknown Unknown) Kind() Kind       { return unknown.Type }

func (GetNotebookResponse) isResponse()   {}
func (ListNotebooksResponse) isResponse() {}
func (GetCellResponse) isResponse()       {}
func (UpdateCellResponse) isResponse()    {}
func (NewCellResponse) isResponse()       {}
func (RunCellResponse) isResponse()       {}
func (ClearCellResponse) isResponse()     {}
func (ErrorResponse) isResponse()         {}
func (Unknown) isResponse()               {}

func (response GetCellResponse) CellRecord() notebook.Cell    { return response.Cell }
func (response UpdateCellResponse) CellRecord() notebook.Cell { return response.Cell }
func (response NewCellResponse) CellRecord() notebook.Cell    { return response.Cell }
func (response RunCellResponse) CellRecord() notebook.Cell    { return response.Cell }
func (response ClearCellResponse) CellRecord() notebook.Cell  { return response.Cell }

// responseDecoders maps each known response kind to its decoder.
var responseDecoders = map[Kind]func([]byte) (Response, error){
	KindGetNotebookResponse:   decodeAs[GetNotebookResponse, Response],
	KindListNotebooksResponse: decodeAs[ListNotebooksResponse, Response],
	KindGetCellResponse:       decodeAs[GetCellResponse, Response],
	KindUpdateCellResponse:    decodeAs[UpdateCellResponse, Response],
	KindNewCellResponse:       decodeAs[NewCellResponse, Response],
	KindRunCellResponse:       decodeAs[RunCellResponse, Response],
	KindClearCellResponse:     decodeAs[ClearCellResponse, Response],
	KindErrorResponse:         decodeAs[ErrorResponse, Response],
}
