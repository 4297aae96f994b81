// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebook

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCellUnmarshalDefaults(t *testing.T) {
	var cell Cell
	if err := json.Unmarshal([]byte(`{"id":"c1","code":"x = 1"}`), &cell); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cell.Language != LanguagePython {
		t.Errorf("Language = %q, want python", cell.Language)
	}
	if cell.InputNames == nil || len(cell.InputNames) != 0 {
		t.Errorf("InputNames = %#v, want empty non-nil", cell.InputNames)
	}
	if cell.HasOutput() {
		t.Error("HasOutput() = true for a cell without output")
	}
}

func TestCellUnmarshalLegacyPrinted(t *testing.T) {
	var cell Cell
	if err := json.Unmarshal([]byte(`{"id":"c1","printed":"hello\n"}`), &cell); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cell.Stdout != "hello\n" {
		t.Errorf("Stdout = %q, want the legacy printed text", cell.Stdout)
	}

	// stdout wins when both are present.
	if err := json.Unmarshal([]byte(`{"id":"c1","printed":"old","stdout":"new"}`), &cell); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cell.Stdout != "new" {
		t.Errorf("Stdout = %q, want %q", cell.Stdout, "new")
	}
}

func TestCellUnmarshalRequiresID(t *testing.T) {
	var cell Cell
	if err := json.Unmarshal([]byte(`{"code":"x"}`), &cell); err == nil {
		t.Fatal("expected an error for a cell without an id")
	}
}

func TestCellNullOutput(t *testing.T) {
	var cell Cell
	if err := json.Unmarshal([]byte(`{"id":"c1","output":null}`), &cell); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cell.HasOutput() {
		t.Error("HasOutput() = true for null output")
	}
	if err := json.Unmarshal([]byte(`{"id":"c1","output":42}`), &cell); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !cell.HasOutput() || string(cell.Output) != "42" {
		t.Errorf("Output = %s, want 42", cell.Output)
	}
}

func TestCellConsolePrefersStderr(t *testing.T) {
	tests := []struct {
		name      string
		cell      Cell
		wantText  string
		wantError bool
	}{
		{"stdout only", Cell{Stdout: "out"}, "out", false},
		{"stderr only", Cell{Stderr: "boom"}, "boom", true},
		{"both", Cell{Stdout: "out", Stderr: "boom"}, "boom", true},
		{"neither", Cell{}, "", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			text, isError := test.cell.Console()
			if text != test.wantText || isError != test.wantError {
				t.Errorf("Console() = (%q, %v), want (%q, %v)", text, isError, test.wantText, test.wantError)
			}
		})
	}
}

func TestCellWithRunResult(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want Status
	}{
		{"server ok kept", Cell{Status: StatusOK, Stderr: "warning"}, StatusOK},
		{"server error kept", Cell{Status: StatusError}, StatusError},
		{"missing status, clean run", Cell{}, StatusOK},
		{"missing status, stderr", Cell{Stderr: "Traceback"}, StatusError},
		{"running echoed back", Cell{Status: StatusRunning}, StatusOK},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.cell.WithRunResult().Status; got != test.want {
				t.Errorf("status = %q, want %q", got, test.want)
			}
		})
	}
}

func TestLanguageToggle(t *testing.T) {
	if got := LanguagePython.Toggle(); got != LanguageMarkdown {
		t.Errorf("python toggles to %q", got)
	}
	if got := LanguageMarkdown.Toggle(); got != LanguagePython {
		t.Errorf("markdown toggles to %q", got)
	}
	if LanguageMarkdown.Executable() {
		t.Error("markdown should not be executable")
	}
}

func TestCellCloneIsIndependent(t *testing.T) {
	original := Cell{ID: "c1", InputNames: []string{"a"}, Output: json.RawMessage("1")}
	clone := original.Clone()
	clone.InputNames[0] = "b"
	clone.Output[0] = '2'
	if original.InputNames[0] != "a" || string(original.Output) != "1" {
		t.Fatal("mutating the clone changed the original")
	}
	if !original.Equal(original.Clone()) {
		t.Fatal("a fresh clone should be Equal to its source")
	}
}

func TestNotebookDedupe(t *testing.T) {
	notebook := Notebook{Cells: []Cell{{ID: "a", Code: "1"}, {ID: "b"}, {ID: "a", Code: "2"}}}
	deduped, dropped := notebook.Dedupe()
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	ids := deduped.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("IDs = %v, want [a b]", ids)
	}
	if deduped.Cells[0].Code != "1" {
		t.Errorf("kept code %q, want the first occurrence", deduped.Cells[0].Code)
	}
	if notebook.Index("b") != 1 || notebook.Index("missing") != -1 {
		t.Error("Index returned the wrong position")
	}
}

func TestSortByUpdated(t *testing.T) {
	var details []NotebookDetails
	err := json.Unmarshal([]byte(`[
		{"id":"1","name":"old","filepath":"old.py","created":"2024-01-01T10:00:00","updated":"2024-01-01T10:00:00"},
		{"id":"2","name":"new","filepath":"new.py","created":"2024-01-01T10:00:00","updated":"2024-03-01T09:30:00.123456"},
		{"id":"3","name":"mid","filepath":"mid.py","created":"2024-01-01T10:00:00Z","updated":"2024-02-01T10:00:00+02:00"}
	]`), &details)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	SortByUpdated(details)
	var names []string
	for _, detail := range details {
		names = append(names, detail.Name)
	}
	if names[0] != "new" || names[1] != "mid" || names[2] != "old" {
		t.Fatalf("order = %v, want [new mid old]", names)
	}
	want := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	if !details[1].Updated.Equal(want) {
		t.Errorf("zoned timestamp = %v, want %v", details[1].Updated, want)
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Fatal("expected an error")
	}
}
