// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebookui

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

// terminalKeyNames maps bubbletea key names to the KeyboardEvent.key
// names the chord detector uses.
var terminalKeyNames = map[string]string{
	"enter":     "Enter",
	"esc":       "Escape",
	"tab":       "Tab",
	"backspace": "Backspace",
	"delete":    "Delete",
	"insert":    "Insert",
	"up":        "ArrowUp",
	"down":      "ArrowDown",
	"left":      "ArrowLeft",
	"right":     "ArrowRight",
	"home":      "Home",
	"end":       "End",
	"pgup":      "PageUp",
	"pgdown":    "PageDown",
	"space":     "Space",
	" ":         "Space",
}

// terminalModifiers maps bubbletea modifier prefixes to modifier key
// names.
var terminalModifiers = map[string]string{
	"ctrl":  "Control",
	"alt":   "Alt",
	"shift": "Shift",
}

// keySequence translates a terminal key event into the key-down
// sequence a browser would report: modifiers first, then the key.
// Terminals deliver whole chords, so the caller presses every key in
// order and releases them in reverse. Pastes and multi-rune events
// return nil; they are text, not chords.
func keySequence(message tea.KeyMsg) []string {
	if message.Paste {
		return nil
	}

	var keys []string
	if message.Alt {
		keys = append(keys, "Alt")
	}

	switch message.Type {
	case tea.KeyRunes:
		if len(message.Runes) != 1 {
			return nil
		}
		character := message.Runes[0]
		if unicode.IsUpper(character) {
			keys = append(keys, "Shift")
		}
		return append(keys, string(character))
	case tea.KeySpace:
		return append(keys, "Space")
	}

	tokens := strings.Split(strings.TrimPrefix(message.String(), "alt+"), "+")
	name := tokens[len(tokens)-1]
	for _, token := range tokens[:len(tokens)-1] {
		modifier, ok := terminalModifiers[token]
		if !ok {
			return nil
		}
		keys = append(keys, modifier)
	}

	if mapped, ok := terminalKeyNames[name]; ok {
		return append(keys, mapped)
	}
	if len(name) > 1 && name[0] == 'f' && strings.Trim(name[1:], "0123456789") == "" {
		return append(keys, "F"+name[1:])
	}
	// Control combinations with a printable key, such as "ctrl+r".
	if len(tokens) > 1 && len([]rune(name)) == 1 {
		return append(keys, name)
	}
	return nil
}
