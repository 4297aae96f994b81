// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

// Kind is the "type" discriminator carried by every message.
type Kind string

// Request kinds.
const (
	KindGetNotebook          Kind = "get-notebook"
	KindListNotebooks        Kind = "list-notebooks"
	KindOpenNotebook         Kind = "open-notebook"
	KindNewNotebook          Kind = "new-notebook"
	KindDeleteNotebook       Kind = "delete-notebook"
	KindExitNotebook         Kind = "exit-notebook"
	KindUpdateNotebookName   Kind = "update-notebook-name"
	KindNewCell              Kind = "new-cell"
	KindDeleteCell           Kind = "delete-cell"
	KindUpdateCellCode       Kind = "update-cell-code"
	KindUpdateCellLanguage   Kind = "update-cell-language"
	KindUpdateCellOutputName Kind = "update-cell-output-name"
	KindUpdateCellInputNames Kind = "update-cell-input-names"
	KindRunCell              Kind = "run-cell"
	KindClearCell            Kind = "clear-cell"
	KindReorderCells         Kind = "reorder-cells"
)

// Response kinds.
const (
	KindGetNotebookResponse   Kind = "get-notebook-response"
	KindListNotebooksResponse Kind = "list-notebooks-response"
	KindGetCellResponse       Kind = "get-cell-response"
	KindUpdateCellResponse    Kind = "update-cell-response"
	KindNewCellResponse       Kind = "new-cell-response"
	KindRunCellResponse       Kind = "run-cell-response"
	KindClearCellResponse     Kind = "clear-cell-response"
	KindErrorResponse         Kind = "error-response"
)

// requestKinds lists every request discriminator.
var requestKinds = []Kind{
	KindGetNotebook,
	KindListNotebooks,
	KindOpenNotebook,
	KindNewNotebook,
	KindDeleteNotebook,
	KindExitNotebook,
	KindUpdateNotebookName,
	KindNewCell,
	KindDeleteCell,
	KindUpdateCellCode,
	KindUpdateCellLanguage,
	KindUpdateCellOutputName,
	KindUpdateCellInputNames,
	KindRunCell,
	KindClearCell,
	KindReorderCells,
}

// responseKinds lists every response discriminator.
var responseKinds = []Kind{
	KindGetNotebookResponse,
	KindListNotebooksResponse,
	KindGetCellResponse,
	KindUpdateCellResponse,
	KindNewCellResponse,
	KindRunCellResponse,
	KindClearCellResponse,
	KindErrorResponse,
}

// RequestKinds returns every request discriminator this client sends.
func RequestKinds() []Kind { return append([]Kind(nil), requestKinds...) }

// ResponseKinds returns every response discriminator this client
// understands.
func ResponseKinds() []Kind { return append([]Kind(nil), responseKinds...) }
