// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package navigation

import "testing"

func navigatorWith(ids ...string) *Navigator {
	navigator := NewNavigator()
	navigator.SetCells(ids)
	return navigator
}

func TestEnterAndExitEdit(t *testing.T) {
	navigator := navigatorWith("a", "b")
	if _, applied := navigator.Apply(CommandEnterEdit); applied {
		t.Fatal("EnterEdit applied with nothing active")
	}
	navigator.Activate("a")
	if _, applied := navigator.Apply(CommandEnterEdit); !applied {
		t.Fatal("EnterEdit not applied")
	}
	if !navigator.State().EditMode {
		t.Fatal("not in edit mode")
	}
	if _, applied := navigator.Apply(CommandEnterEdit); applied {
		t.Fatal("EnterEdit applied twice")
	}
	if _, applied := navigator.Apply(CommandExitEdit); !applied || navigator.State().EditMode {
		t.Fatal("ExitEdit did not leave edit mode")
	}
	if _, applied := navigator.Apply(CommandExitEdit); applied {
		t.Fatal("ExitEdit applied outside edit mode")
	}
}

func TestRunAndClearRequireActiveNotEditing(t *testing.T) {
	navigator := navigatorWith("a", "b")
	for _, command := range []Command{CommandRun, CommandClear} {
		if _, applied := navigator.Apply(command); applied {
			t.Errorf("%s applied with nothing active", command)
		}
	}

	navigator.Activate("b")
	action, applied := navigator.Apply(CommandRun)
	if !applied || action != (Action{Kind: ActionRunCell, CellID: "b"}) {
		t.Fatalf("Run = %+v (applied=%v)", action, applied)
	}
	action, applied = navigator.Apply(CommandClear)
	if !applied || action != (Action{Kind: ActionClearCell, CellID: "b"}) {
		t.Fatalf("Clear = %+v (applied=%v)", action, applied)
	}

	navigator.Apply(CommandEnterEdit)
	if _, applied := navigator.Apply(CommandRun); applied {
		t.Fatal("Run applied in edit mode")
	}
}

func TestMovesClampAtBounds(t *testing.T) {
	navigator := navigatorWith("a", "b", "c")

	navigator.Apply(CommandMoveDown)
	if got := navigator.State().ActiveCellID; got != "a" {
		t.Fatalf("first move activated %q, want a", got)
	}
	navigator.Apply(CommandMoveDown)
	navigator.Apply(CommandMoveDown)
	navigator.Apply(CommandMoveDown)
	if got := navigator.State().ActiveCellID; got != "c" {
		t.Fatalf("after moving past the end active = %q, want c", got)
	}
	navigator.Apply(CommandMoveUp)
	if got := navigator.State().ActiveCellID; got != "b" {
		t.Fatalf("active = %q, want b", got)
	}
	navigator.Apply(CommandMoveUp)
	navigator.Apply(CommandMoveUp)
	if got := navigator.State().ActiveCellID; got != "a" {
		t.Fatalf("after moving past the start active = %q, want a", got)
	}

	navigator.Apply(CommandEnterEdit)
	if _, applied := navigator.Apply(CommandMoveDown); applied {
		t.Fatal("move applied in edit mode")
	}
	if _, applied := navigatorWith().Apply(CommandMoveDown); applied {
		t.Fatal("move applied with no cells")
	}
}

func TestNewCellIndex(t *testing.T) {
	navigator := navigatorWith("a", "b", "c")

	action, applied := navigator.Apply(CommandNewCell)
	if !applied || action.Kind != ActionNewCell || action.Index != nil {
		t.Fatalf("with nothing active = %+v, want append", action)
	}

	navigator.Activate("b")
	action, _ = navigator.Apply(CommandNewCell)
	if action.Index == nil || *action.Index != 2 {
		t.Fatalf("after b: index = %v, want 2", action.Index)
	}

	navigator.Apply(CommandEnterEdit)
	if _, applied := navigator.Apply(CommandNewCell); applied {
		t.Fatal("new cell applied in edit mode")
	}
}

func TestDeleteReassignsActiveFirst(t *testing.T) {
	tests := []struct {
		name       string
		active     string
		wantActive string
	}{
		{"middle moves to next", "b", "c"},
		{"last moves to previous", "c", "b"},
		{"first moves to next", "a", "b"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			navigator := navigatorWith("a", "b", "c")
			navigator.Activate(test.active)
			action, applied := navigator.Apply(CommandDeleteCell)
			if !applied || action != (Action{Kind: ActionDeleteCell, CellID: test.active}) {
				t.Fatalf("Delete = %+v (applied=%v)", action, applied)
			}
			if got := navigator.State().ActiveCellID; got != test.wantActive {
				t.Fatalf("active = %q, want %q", got, test.wantActive)
			}
		})
	}

	navigator := navigatorWith("only")
	navigator.Activate("only")
	navigator.Apply(CommandDeleteCell)
	if got := navigator.State(); got != (State{}) {
		t.Fatalf("after deleting the only cell state = %+v", got)
	}
}

func TestSetCellsRevalidates(t *testing.T) {
	navigator := navigatorWith("a", "b")
	navigator.ClickEditor("b")

	// Unrelated change keeps the active cell and edit mode.
	navigator.SetCells([]string{"b", "a", "c"})
	if got := navigator.State(); got != (State{ActiveCellID: "b", EditMode: true}) {
		t.Fatalf("state = %+v", got)
	}

	// The active cell disappears: reset to the first cell.
	navigator.SetCells([]string{"c", "a"})
	if got := navigator.State(); got != (State{ActiveCellID: "c"}) {
		t.Fatalf("state = %+v, want c active and not editing", got)
	}

	navigator.SetCells(nil)
	if got := navigator.State(); got != (State{}) {
		t.Fatalf("state = %+v, want empty", got)
	}
}

func TestClicks(t *testing.T) {
	navigator := navigatorWith("a", "b")

	if !navigator.ClickEditor("a") || navigator.State() != (State{ActiveCellID: "a", EditMode: true}) {
		t.Fatalf("ClickEditor: state = %+v", navigator.State())
	}
	// Clicking the same cell's body keeps editing.
	navigator.ClickCell("a")
	if !navigator.State().EditMode {
		t.Fatal("clicking the active cell left edit mode")
	}
	navigator.ClickCell("b")
	if navigator.State() != (State{ActiveCellID: "b"}) {
		t.Fatalf("ClickCell(b): state = %+v", navigator.State())
	}
	if navigator.ClickCell("missing") {
		t.Fatal("clicked an unknown cell")
	}
	navigator.ClickOutside()
	if navigator.State() != (State{}) {
		t.Fatalf("ClickOutside: state = %+v", navigator.State())
	}
}

func TestChordsDriveNavigator(t *testing.T) {
	detector, err := NewDetector(DefaultBindings())
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	navigator := navigatorWith("a", "b")
	navigator.Activate("a")

	// Shift down, Enter down: exactly one run request for a.
	var actions []Action
	for _, key := range []string{"Shift", "Enter"} {
		if match, ok := detector.Press(key); ok {
			if action, applied := navigator.Apply(match.Binding.Command); applied && action.Kind != ActionNone {
				actions = append(actions, action)
			}
		}
	}
	if len(actions) != 1 || actions[0] != (Action{Kind: ActionRunCell, CellID: "a"}) {
		t.Fatalf("actions = %+v", actions)
	}
	if navigator.State().EditMode {
		t.Fatal("run chord entered edit mode")
	}
}
