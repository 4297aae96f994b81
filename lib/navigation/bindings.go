// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package navigation

// Command is a navigation intent triggered by a chord.
type Command string

const (
	CommandEnterEdit  Command = "enter-edit"
	CommandExitEdit   Command = "exit-edit"
	CommandRun        Command = "run"
	CommandClear      Command = "clear"
	CommandMoveUp     Command = "move-up"
	CommandMoveDown   Command = "move-down"
	CommandNewCell    Command = "new-cell"
	CommandDeleteCell Command = "delete-cell"
)

// Binding attaches a chord pattern to a command. Patterns name keys
// joined with "+", for example "Shift+Enter". Several bindings may
// share a command.
type Binding struct {
	Pattern string
	Command Command

	// AllowDefault lets the key's default handling run even when the
	// chord fires.
	AllowDefault bool

	// Help is a short description for key hints.
	Help string
}

// DefaultBindings returns the standard notebook chords.
func DefaultBindings() []Binding {
	return []Binding{
		{Pattern: "Enter", Command: CommandEnterEdit, Help: "edit"},
		{Pattern: "Shift+Enter", Command: CommandRun, Help: "run"},
		{Pattern: "Escape", Command: CommandExitEdit, Help: "stop editing"},
		{Pattern: "ArrowUp", Command: CommandMoveUp, Help: "previous cell"},
		{Pattern: "ArrowDown", Command: CommandMoveDown, Help: "next cell"},
		{Pattern: "Shift+Backspace", Command: CommandClear, Help: "clear output"},
		{Pattern: "Shift+N", Command: CommandNewCell, Help: "new cell"},
		{Pattern: "Shift+D", Command: CommandDeleteCell, Help: "delete cell"},
	}
}
