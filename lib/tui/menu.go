// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// MenuOption is a single selectable item in a menu overlay.
type MenuOption struct {
	Label string // Display text.
	Value string // Action identifier returned on selection.
	Hint  string // Optional key hint shown right-aligned.
}

// Menu is a floating list anchored at a screen position. The model
// owns it and routes keyboard input to it while it is open (up/down
// to move, enter to select, escape to dismiss).
type Menu struct {
	Options []MenuOption
	Cursor  int
	AnchorX int
	AnchorY int

	// Target identifies what the menu acts on, such as a cell ID.
	Target string
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (menu *Menu) MoveUp() {
	if len(menu.Options) == 0 {
		return
	}
	menu.Cursor = (menu.Cursor - 1 + len(menu.Options)) % len(menu.Options)
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (menu *Menu) MoveDown() {
	if len(menu.Options) == 0 {
		return
	}
	menu.Cursor = (menu.Cursor + 1) % len(menu.Options)
}

// Selected returns the highlighted option. ok is false for an empty
// menu.
func (menu *Menu) Selected() (option MenuOption, ok bool) {
	if menu.Cursor < 0 || menu.Cursor >= len(menu.Options) {
		return MenuOption{}, false
	}
	return menu.Options[menu.Cursor], true
}

// Width returns the visible width of the rendered menu in columns.
func (menu *Menu) Width() int {
	labelWidth, hintWidth := 0, 0
	for _, option := range menu.Options {
		labelWidth = max(labelWidth, ansi.StringWidth(option.Label))
		hintWidth = max(hintWidth, ansi.StringWidth(option.Hint))
	}
	// " > LABEL  HINT "
	width := 3 + labelWidth + 1
	if hintWidth > 0 {
		width += 2 + hintWidth
	}
	return width
}

// Render produces the menu lines for overlay splicing. Every line has
// the same visible width and a solid background; the highlighted
// option uses the selection colors.
func (menu *Menu) Render(theme Theme) []string {
	width := menu.Width()
	labelWidth := 0
	for _, option := range menu.Options {
		labelWidth = max(labelWidth, ansi.StringWidth(option.Label))
	}

	normal := lipgloss.NewStyle().
		Foreground(theme.DialogForeground).
		Background(theme.DialogBackground)
	selected := lipgloss.NewStyle().
		Foreground(theme.SelectedForeground).
		Background(theme.SelectedBackground)
	hint := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.DialogBackground)

	lines := make([]string, 0, len(menu.Options))
	for index, option := range menu.Options {
		style := normal
		marker := " "
		if index == menu.Cursor {
			style = selected
			marker = ">"
		}
		label := option.Label + strings.Repeat(" ", labelWidth-ansi.StringWidth(option.Label))
		line := style.Render(" " + marker + " " + label + " ")
		if option.Hint != "" {
			line += style.Render(" ") + hint.Render(" "+option.Hint)
		}
		if lineWidth := ansi.StringWidth(line); lineWidth < width {
			line += style.Render(strings.Repeat(" ", width-lineWidth))
		}
		lines = append(lines, line)
	}
	return lines
}
