// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package navigation

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// modifierOrder is the position of each modifier in a canonical chord.
var modifierOrder = map[string]int{
	"Control": 0,
	"Alt":     1,
	"Meta":    2,
	"Shift":   3,
}

// keyAliases maps alternative key names to their canonical form.
var keyAliases = map[string]string{
	"Ctrl":    "Control",
	"Command": "Meta",
	"Cmd":     "Meta",
	"Option":  "Alt",
	"Esc":     "Escape",
	"Return":  "Enter",
	"Up":      "ArrowUp",
	"Down":    "ArrowDown",
	"Left":    "ArrowLeft",
	"Right":   "ArrowRight",
	" ":       "Space",
}

// NormalizeKey returns the canonical name of a key: aliases are
// resolved and single-character keys are lower-cased, so "N" pressed
// with Shift matches a "Shift+N" pattern.
func NormalizeKey(key string) string {
	if key == " " {
		return "Space"
	}
	key = strings.TrimSpace(key)
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	if utf8.RuneCountInString(key) == 1 {
		return strings.ToLower(key)
	}
	return key
}

// IsModifier reports whether key is a modifier key. Releasing a
// modifier clears every held key.
func IsModifier(key string) bool {
	_, ok := modifierOrder[NormalizeKey(key)]
	return ok
}

// Canonical returns the canonical chord for a set of keys: modifiers
// in a fixed order, then the remaining keys sorted, joined with "+".
func Canonical(keys []string) string {
	normalized := make([]string, 0, len(keys))
	for _, key := range keys {
		normalized = append(normalized, NormalizeKey(key))
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		left, leftIsModifier := modifierOrder[normalized[i]]
		right, rightIsModifier := modifierOrder[normalized[j]]
		switch {
		case leftIsModifier && rightIsModifier:
			return left < right
		case leftIsModifier != rightIsModifier:
			return leftIsModifier
		default:
			return normalized[i] < normalized[j]
		}
	})
	return strings.Join(normalized, "+")
}

// ParsePattern validates a chord pattern such as "Shift+Enter" and
// returns its canonical form.
func ParsePattern(pattern string) (string, error) {
	parts := strings.Split(pattern, "+")
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		key := NormalizeKey(part)
		if key == "" {
			return "", fmt.Errorf("chord %q has an empty key", pattern)
		}
		if seen[key] {
			return "", fmt.Errorf("chord %q repeats %s", pattern, key)
		}
		seen[key] = true
	}
	return Canonical(parts), nil
}

// Match is a chord that fired.
type Match struct {
	Binding Binding

	// Chord is the canonical held-key set that fired.
	Chord string

	// PreventDefault is true unless the binding opts out.
	PreventDefault bool
}

// Detector recognizes bound chords in a stream of key events.
type Detector struct {
	bindings map[string]Binding
	held     []string
}

// NewDetector builds a detector for bindings. Two bindings with the
// same canonical chord are an error.
func NewDetector(bindings []Binding) (*Detector, error) {
	detector := &Detector{bindings: make(map[string]Binding, len(bindings))}
	for _, binding := range bindings {
		chord, err := ParsePattern(binding.Pattern)
		if err != nil {
			return nil, err
		}
		if existing, duplicate := detector.bindings[chord]; duplicate {
			return nil, fmt.Errorf("chord %s bound to both %s and %s", chord, existing.Command, binding.Command)
		}
		detector.bindings[chord] = binding
	}
	return detector, nil
}

// Press records a key-down. It returns the binding whose chord equals
// the held set after adding key. A key-down for a key that is already
// held, such as auto-repeat, never fires.
func (detector *Detector) Press(key string) (Match, bool) {
	key = NormalizeKey(key)
	if key == "" {
		return Match{}, false
	}
	for _, held := range detector.held {
		if held == key {
			return Match{}, false
		}
	}
	detector.held = append(detector.held, key)

	chord := Canonical(detector.held)
	binding, ok := detector.bindings[chord]
	if !ok {
		return Match{}, false
	}
	return Match{Binding: binding, Chord: chord, PreventDefault: !binding.AllowDefault}, true
}

// Release records a key-up. Releasing a modifier clears the held set;
// releasing any other key removes only that key.
func (detector *Detector) Release(key string) {
	key = NormalizeKey(key)
	if IsModifier(key) {
		detector.held = nil
		return
	}
	for index, held := range detector.held {
		if held == key {
			detector.held = append(detector.held[:index], detector.held[index+1:]...)
			return
		}
	}
}

// Reset forgets every held key, for example when the window loses
// focus and key-up events will never arrive.
func (detector *Detector) Reset() {
	detector.held = nil
}

// Held returns the canonical chord of the currently held keys.
func (detector *Detector) Held() string {
	return Canonical(detector.held)
}
