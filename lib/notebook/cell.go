// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Language identifies how a cell's code is interpreted. The set is
// closed: executable Python or narrative markdown.
type Language string

const (
	LanguagePython   Language = "python"
	LanguageMarkdown Language = "markdown"
)

// IsKnown reports whether the language is one the server understands.
func (language Language) IsKnown() bool {
	switch language {
	case LanguagePython, LanguageMarkdown:
		return true
	default:
		return false
	}
}

// Toggle returns the other language: python becomes markdown and
// markdown becomes python. Unknown languages toggle to python.
func (language Language) Toggle() Language {
	if language == LanguagePython {
		return LanguageMarkdown
	}
	return LanguagePython
}

// Executable reports whether cells of this language can be run.
func (language Language) Executable() bool {
	return language != LanguageMarkdown
}

// Status is the execution state of a cell.
type Status string

const (
	// StatusIdle is a cell that has not been run, or whose output was
	// cleared.
	StatusIdle Status = "idle"

	// StatusExpired is a cell whose output is out of date because an
	// upstream cell changed. The server uses it interchangeably with
	// idle after a clear.
	StatusExpired Status = "expired"

	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusError   Status = "error"
)

// Terminal reports whether the status is the result of a completed
// run.
func (status Status) Terminal() bool {
	return status == StatusOK || status == StatusError
}

// Cell is one unit of a notebook. Output is an opaque JSON value
// produced by the server; an empty or null Output means the cell has
// never produced a value.
type Cell struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Language   Language        `json:"language"`
	OutputName string          `json:"output_name"`
	InputNames []string        `json:"input_names"`
	Output     json.RawMessage `json:"output,omitempty"`
	Stdout     string          `json:"stdout"`
	Stderr     string          `json:"stderr"`
	Status     Status          `json:"status"`
}

// cellWire is the decoding target for Cell. Older servers send the
// captured standard output under "printed" instead of "stdout".
type cellWire struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Language   Language        `json:"language"`
	OutputName string          `json:"output_name"`
	InputNames []string        `json:"input_names"`
	Output     json.RawMessage `json:"output"`
	Stdout     *string         `json:"stdout"`
	Printed    *string         `json:"printed"`
	Stderr     string          `json:"stderr"`
	Status     Status          `json:"status"`
}

// UnmarshalJSON decodes a cell, accepting the legacy "printed" field.
func (cell *Cell) UnmarshalJSON(data []byte) error {
	var wire cellWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.ID == "" {
		return fmt.Errorf("cell has no id")
	}
	*cell = Cell{
		ID:         wire.ID,
		Code:       wire.Code,
		Language:   wire.Language,
		OutputName: wire.OutputName,
		InputNames: wire.InputNames,
		Output:     wire.Output,
		Stderr:     wire.Stderr,
		Status:     wire.Status,
	}
	switch {
	case wire.Stdout != nil:
		cell.Stdout = *wire.Stdout
	case wire.Printed != nil:
		cell.Stdout = *wire.Printed
	}
	if cell.Language == "" {
		cell.Language = LanguagePython
	}
	if cell.InputNames == nil {
		cell.InputNames = []string{}
	}
	return nil
}

// HasOutput reports whether the cell carries a non-null output value.
func (cell Cell) HasOutput() bool {
	trimmed := bytes.TrimSpace(cell.Output)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Console returns the captured console text to display for the cell.
// Standard error takes priority over standard output: when stderr is
// non-empty it is returned with isError set, otherwise stdout is
// returned.
func (cell Cell) Console() (text string, isError bool) {
	if cell.Stderr != "" {
		return cell.Stderr, true
	}
	return cell.Stdout, false
}

// Stale reports whether the displayed output may be out of date. Any
// cell that is not currently running can be stale.
func (cell Cell) Stale() bool {
	return cell.Status != StatusRunning
}

// WithRunResult returns the cell with a terminal status filled in. A
// run result that already carries ok or error is returned unchanged;
// otherwise the status is derived from whether anything was written to
// standard error.
func (cell Cell) WithRunResult() Cell {
	if cell.Status.Terminal() {
		return cell
	}
	if cell.Stderr != "" {
		cell.Status = StatusError
	} else {
		cell.Status = StatusOK
	}
	return cell
}

// Clone returns a deep copy of the cell.
func (cell Cell) Clone() Cell {
	clone := cell
	if cell.InputNames != nil {
		clone.InputNames = append([]string(nil), cell.InputNames...)
	}
	if cell.Output != nil {
		clone.Output = append(json.RawMessage(nil), cell.Output...)
	}
	return clone
}

// Equal reports whether two cells carry identical content.
func (cell Cell) Equal(other Cell) bool {
	if cell.ID != other.ID ||
		cell.Code != other.Code ||
		cell.Language != other.Language ||
		cell.OutputName != other.OutputName ||
		cell.Stdout != other.Stdout ||
		cell.Stderr != other.Stderr ||
		cell.Status != other.Status {
		return false
	}
	if len(cell.InputNames) != len(other.InputNames) {
		return false
	}
	for index := range cell.InputNames {
		if cell.InputNames[index] != other.InputNames[index] {
			return false
		}
	}
	return bytes.Equal(bytes.TrimSpace(cell.Output), bytes.TrimSpace(other.Output))
}
