// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebookui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/bureau-foundation/cado/lib/navigation"
)

// KeyMap defines the viewer's own key bindings. Notebook chords (run,
// move, new, delete) are not here: they go through the session's
// chord detector, see TerminalBindings.
type KeyMap struct {
	Quit key.Binding

	// Listing view.
	Up             key.Binding
	Down           key.Binding
	Open           key.Binding
	NewNotebook    key.Binding
	DeleteNotebook key.Binding
	Refresh        key.Binding
	FilterActivate key.Binding
	FilterClear    key.Binding

	// Notebook view, outside edit mode.
	ToggleLanguage key.Binding
	MoveCellUp     key.Binding
	MoveCellDown   key.Binding
	CellMenu       key.Binding
	Rename         key.Binding
	ExitNotebook   key.Binding
	Resync         key.Binding

	// Notebook view, while editing.
	NextField key.Binding

	// Dialogs and menus.
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open"),
	),
	NewNotebook: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	DeleteNotebook: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear filter"),
	),
	ToggleLanguage: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "python/markdown"),
	),
	MoveCellUp: key.NewBinding(
		key.WithKeys("K", "ctrl+up"),
		key.WithHelp("K", "move cell up"),
	),
	MoveCellDown: key.NewBinding(
		key.WithKeys("J", "ctrl+down"),
		key.WithHelp("J", "move cell down"),
	),
	CellMenu: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "cell menu"),
	),
	Rename: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "rename"),
	),
	ExitNotebook: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "close notebook"),
	),
	Resync: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("C-g", "resync"),
	),
	NextField: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "next field"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
}

// TerminalBindings returns the notebook chords for a terminal. They
// extend navigation.DefaultBindings with chords a terminal can
// deliver: most terminals cannot report Shift+Enter or
// Shift+Backspace.
func TerminalBindings() []navigation.Binding {
	return append(navigation.DefaultBindings(),
		navigation.Binding{Pattern: "Alt+Enter", Command: navigation.CommandRun, Help: "run"},
		navigation.Binding{Pattern: "Control+R", Command: navigation.CommandRun, Help: "run"},
		navigation.Binding{Pattern: "Control+K", Command: navigation.CommandClear, Help: "clear output"},
	)
}
