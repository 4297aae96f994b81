// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// editorTab is inserted for the Tab key in multi-line editors.
const editorTab = "    "

// Editor is a small text editor with cursor tracking, used for cell
// source and the single-line name fields. It holds no styling; the
// caller renders it with Render.
type Editor struct {
	// SingleLine rejects line breaks: Enter is not consumed and pasted
	// newlines become spaces.
	SingleLine bool

	lines   [][]rune // Each line is a slice of runes.
	cursorY int      // Current line index.
	cursorX int      // Cursor position within the current line.
}

// NewEditor returns an editor holding value with the cursor at the
// end.
func NewEditor(value string, singleLine bool) Editor {
	editor := Editor{SingleLine: singleLine}
	editor.SetValue(value)
	return editor
}

// SetValue replaces the text and moves the cursor to the end.
func (editor *Editor) SetValue(value string) {
	if editor.SingleLine {
		value = strings.ReplaceAll(value, "\n", " ")
	}
	parts := strings.Split(value, "\n")
	editor.lines = make([][]rune, len(parts))
	for index, part := range parts {
		editor.lines[index] = []rune(part)
	}
	editor.cursorY = len(editor.lines) - 1
	editor.cursorX = len(editor.lines[editor.cursorY])
}

// Value returns the current text.
func (editor Editor) Value() string {
	if len(editor.lines) == 0 {
		return ""
	}
	parts := make([]string, len(editor.lines))
	for index, line := range editor.lines {
		parts[index] = string(line)
	}
	return strings.Join(parts, "\n")
}

// Cursor returns the cursor's line and column.
func (editor Editor) Cursor() (line, column int) {
	return editor.cursorY, editor.cursorX
}

// Update applies a key to the editor. It returns true when the text
// changed. Keys the editor does not handle are ignored.
func (editor *Editor) Update(message tea.KeyMsg) bool {
	if len(editor.lines) == 0 {
		editor.lines = [][]rune{{}}
	}
	switch message.Type {
	case tea.KeyRunes, tea.KeySpace:
		if message.Type == tea.KeySpace && len(message.Runes) == 0 {
			editor.insertRune(' ')
			return true
		}
		for _, character := range message.Runes {
			if character == '\n' || character == '\r' {
				if editor.SingleLine {
					editor.insertRune(' ')
				} else {
					editor.splitLine()
				}
				continue
			}
			editor.insertRune(character)
		}
		return len(message.Runes) > 0

	case tea.KeyTab:
		if editor.SingleLine {
			return false
		}
		for _, character := range editorTab {
			editor.insertRune(character)
		}
		return true

	case tea.KeyEnter:
		if editor.SingleLine {
			return false
		}
		editor.splitLine()
		return true

	case tea.KeyBackspace:
		if editor.cursorX > 0 {
			line := editor.lines[editor.cursorY]
			editor.lines[editor.cursorY] = append(line[:editor.cursorX-1], line[editor.cursorX:]...)
			editor.cursorX--
			return true
		}
		if editor.cursorY > 0 {
			// Merge with previous line.
			previousLine := editor.lines[editor.cursorY-1]
			currentLine := editor.lines[editor.cursorY]
			editor.cursorX = len(previousLine)
			editor.lines[editor.cursorY-1] = append(previousLine, currentLine...)
			editor.lines = append(editor.lines[:editor.cursorY], editor.lines[editor.cursorY+1:]...)
			editor.cursorY--
			return true
		}
		return false

	case tea.KeyDelete:
		line := editor.lines[editor.cursorY]
		if editor.cursorX < len(line) {
			editor.lines[editor.cursorY] = append(line[:editor.cursorX], line[editor.cursorX+1:]...)
			return true
		}
		if editor.cursorY < len(editor.lines)-1 {
			// Merge with next line.
			nextLine := editor.lines[editor.cursorY+1]
			editor.lines[editor.cursorY] = append(line, nextLine...)
			editor.lines = append(editor.lines[:editor.cursorY+1], editor.lines[editor.cursorY+2:]...)
			return true
		}
		return false

	case tea.KeyLeft:
		if editor.cursorX > 0 {
			editor.cursorX--
		} else if editor.cursorY > 0 {
			editor.cursorY--
			editor.cursorX = len(editor.lines[editor.cursorY])
		}

	case tea.KeyRight:
		if editor.cursorX < len(editor.lines[editor.cursorY]) {
			editor.cursorX++
		} else if editor.cursorY < len(editor.lines)-1 {
			editor.cursorY++
			editor.cursorX = 0
		}

	case tea.KeyUp:
		if editor.cursorY > 0 {
			editor.cursorY--
			editor.cursorX = min(editor.cursorX, len(editor.lines[editor.cursorY]))
		}

	case tea.KeyDown:
		if editor.cursorY < len(editor.lines)-1 {
			editor.cursorY++
			editor.cursorX = min(editor.cursorX, len(editor.lines[editor.cursorY]))
		}

	case tea.KeyHome, tea.KeyCtrlA:
		editor.cursorX = 0

	case tea.KeyEnd, tea.KeyCtrlE:
		editor.cursorX = len(editor.lines[editor.cursorY])
	}
	return false
}

// splitLine breaks the current line at the cursor.
func (editor *Editor) splitLine() {
	line := editor.lines[editor.cursorY]
	before := make([]rune, editor.cursorX)
	copy(before, line[:editor.cursorX])
	after := make([]rune, len(line)-editor.cursorX)
	copy(after, line[editor.cursorX:])

	editor.lines[editor.cursorY] = before
	newLines := make([][]rune, len(editor.lines)+1)
	copy(newLines, editor.lines[:editor.cursorY+1])
	newLines[editor.cursorY+1] = after
	copy(newLines[editor.cursorY+2:], editor.lines[editor.cursorY+1:])
	editor.lines = newLines
	editor.cursorY++
	editor.cursorX = 0
}

// insertRune inserts a single rune at the cursor position.
func (editor *Editor) insertRune(character rune) {
	line := editor.lines[editor.cursorY]
	newLine := make([]rune, len(line)+1)
	copy(newLine, line[:editor.cursorX])
	newLine[editor.cursorX] = character
	copy(newLine[editor.cursorX+1:], line[editor.cursorX:])
	editor.lines[editor.cursorY] = newLine
	editor.cursorX++
}

// Render returns the editor's lines styled with textStyle, each padded
// to width, with the cursor shown in reverse video. At most height
// lines are returned, scrolled to keep the cursor visible; height <= 0
// returns every line. Lines wider than width scroll horizontally on
// the cursor line and are truncated elsewhere.
func (editor Editor) Render(width, height int, textStyle lipgloss.Style) []string {
	if width < 1 {
		width = 1
	}
	lines := editor.lines
	if len(lines) == 0 {
		lines = [][]rune{{}}
	}
	cursorStyle := lipgloss.NewStyle().Reverse(true)

	first, last := 0, len(lines)
	if height > 0 && len(lines) > height {
		if editor.cursorY >= height {
			first = editor.cursorY - height + 1
		}
		last = first + height
	}

	var rendered []string
	for lineIndex := first; lineIndex < last; lineIndex++ {
		line := lines[lineIndex]
		var text string
		if lineIndex == editor.cursorY {
			offset := 0
			if editor.cursorX >= width {
				offset = editor.cursorX - width + 1
			}
			visible := line[offset:]
			cursor := editor.cursorX - offset
			if cursor >= len(visible) {
				text = textStyle.Render(string(visible)) + cursorStyle.Render(" ")
			} else {
				text = textStyle.Render(string(visible[:cursor])) +
					cursorStyle.Render(string(visible[cursor:cursor+1])) +
					textStyle.Render(string(visible[cursor+1:]))
			}
		} else {
			text = textStyle.Render(string(line))
		}
		if ansi.StringWidth(text) > width {
			text = ansi.Truncate(text, width, "…")
		}
		if padding := width - ansi.StringWidth(text); padding > 0 {
			text += textStyle.Render(strings.Repeat(" ", padding))
		}
		rendered = append(rendered, text)
	}
	return rendered
}
