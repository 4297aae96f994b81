// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package navigation

// State is the navigation state. EditMode is only ever true while a
// cell is active.
type State struct {
	// ActiveCellID is empty when no cell is active.
	ActiveCellID string
	EditMode     bool
}

// ActionKind names the server-side effect of a command.
type ActionKind string

const (
	ActionNone       ActionKind = ""
	ActionRunCell    ActionKind = "run-cell"
	ActionClearCell  ActionKind = "clear-cell"
	ActionNewCell    ActionKind = "new-cell"
	ActionDeleteCell ActionKind = "delete-cell"
)

// Action is what the caller must ask the server to do after a command.
type Action struct {
	Kind   ActionKind
	CellID string

	// Index is the insertion position for ActionNewCell, or nil to
	// append.
	Index *int
}

// Navigator tracks the active cell over an ordered list of cell IDs.
type Navigator struct {
	state State
	cells []string
}

// NewNavigator returns a navigator with no cells and nothing active.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// State returns the current state.
func (navigator *Navigator) State() State {
	return navigator.state
}

// SetCells replaces the cell order and re-validates the active cell.
// If the active cell is gone, the first cell becomes active (or none
// when the list is empty) and edit mode ends.
func (navigator *Navigator) SetCells(cellIDs []string) {
	navigator.cells = append(navigator.cells[:0:0], cellIDs...)
	if navigator.state.ActiveCellID != "" && navigator.indexOf(navigator.state.ActiveCellID) < 0 {
		navigator.state = State{}
		if len(navigator.cells) > 0 {
			navigator.state.ActiveCellID = navigator.cells[0]
		}
	}
	if navigator.state.ActiveCellID == "" {
		navigator.state.EditMode = false
	}
}

// Activate makes cellID the active cell without entering edit mode.
// Returns false when the cell is unknown.
func (navigator *Navigator) Activate(cellID string) bool {
	if navigator.indexOf(cellID) < 0 {
		return false
	}
	if navigator.state.ActiveCellID != cellID {
		navigator.state = State{ActiveCellID: cellID}
	}
	return true
}

// ClickCell handles a click on a cell body: the cell becomes active.
// Clicking a different cell leaves edit mode.
func (navigator *Navigator) ClickCell(cellID string) bool {
	return navigator.Activate(cellID)
}

// ClickEditor handles a click inside a cell's editor: the cell becomes
// active and enters edit mode.
func (navigator *Navigator) ClickEditor(cellID string) bool {
	if navigator.indexOf(cellID) < 0 {
		return false
	}
	navigator.state = State{ActiveCellID: cellID, EditMode: true}
	return true
}

// ClickOutside handles a click outside every cell: nothing is active.
func (navigator *Navigator) ClickOutside() {
	navigator.state = State{}
}

// Apply performs command. It returns the action the caller must send
// to the server (Kind is ActionNone for pure navigation) and whether
// the command applied at all.
func (navigator *Navigator) Apply(command Command) (Action, bool) {
	active := navigator.state.ActiveCellID
	editing := navigator.state.EditMode

	switch command {
	case CommandEnterEdit:
		if active == "" || editing {
			return Action{}, false
		}
		navigator.state.EditMode = true
		return Action{}, true

	case CommandExitEdit:
		if !editing {
			return Action{}, false
		}
		navigator.state.EditMode = false
		return Action{}, true

	case CommandRun:
		if active == "" || editing {
			return Action{}, false
		}
		return Action{Kind: ActionRunCell, CellID: active}, true

	case CommandClear:
		if active == "" || editing {
			return Action{}, false
		}
		return Action{Kind: ActionClearCell, CellID: active}, true

	case CommandMoveUp, CommandMoveDown:
		if editing || len(navigator.cells) == 0 {
			return Action{}, false
		}
		index := navigator.indexOf(active)
		switch {
		case index < 0:
			index = 0
		case command == CommandMoveUp:
			index = max(index-1, 0)
		default:
			index = min(index+1, len(navigator.cells)-1)
		}
		navigator.state.ActiveCellID = navigator.cells[index]
		return Action{}, true

	case CommandNewCell:
		if editing {
			return Action{}, false
		}
		action := Action{Kind: ActionNewCell}
		if index := navigator.indexOf(active); index >= 0 {
			position := index + 1
			action.Index = &position
		}
		return action, true

	case CommandDeleteCell:
		if active == "" || editing {
			return Action{}, false
		}
		navigator.state = State{ActiveCellID: navigator.neighbor(active)}
		return Action{Kind: ActionDeleteCell, CellID: active}, true

	default:
		return Action{}, false
	}
}

// neighbor returns the cell that should become active when cellID is
// deleted: the next cell, else the previous one, else none.
func (navigator *Navigator) neighbor(cellID string) string {
	index := navigator.indexOf(cellID)
	switch {
	case index < 0:
		return ""
	case index+1 < len(navigator.cells):
		return navigator.cells[index+1]
	case index > 0:
		return navigator.cells[index-1]
	default:
		return ""
	}
}

func (navigator *Navigator) indexOf(cellID string) int {
	if cellID == "" {
		return -1
	}
	for index, id := range navigator.cells {
		if id == cellID {
			return index
		}
	}
	return -1
}
