// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"
)

// HighlightDuration is how long an item stays marked after a change.
const HighlightDuration = 3 * time.Second

// HighlightTickInterval is the re-render interval while any item is
// marked.
const HighlightTickInterval = 250 * time.Millisecond

// ChangeHighlighter remembers when items last changed so the view can
// mark them briefly. Intensity decays linearly from 1 to 0 over
// [HighlightDuration]. Not safe for concurrent use.
type ChangeHighlighter struct {
	marks map[string]time.Time
}

// NewChangeHighlighter returns an empty highlighter.
func NewChangeHighlighter() *ChangeHighlighter {
	return &ChangeHighlighter{marks: make(map[string]time.Time)}
}

// Mark records a change to itemID at now, restarting its decay.
func (highlighter *ChangeHighlighter) Mark(itemID string, now time.Time) {
	highlighter.marks[itemID] = now
}

// Intensity returns how strongly itemID should be marked at now.
func (highlighter *ChangeHighlighter) Intensity(itemID string, now time.Time) float64 {
	marked, exists := highlighter.marks[itemID]
	if !exists {
		return 0
	}
	elapsed := now.Sub(marked)
	if elapsed >= HighlightDuration || elapsed < 0 {
		return 0
	}
	return 1 - float64(elapsed)/float64(HighlightDuration)
}

// Active reports whether any item is still marked, dropping expired
// marks as it goes.
func (highlighter *ChangeHighlighter) Active(now time.Time) bool {
	active := false
	for itemID, marked := range highlighter.marks {
		if now.Sub(marked) < HighlightDuration {
			active = true
			continue
		}
		delete(highlighter.marks, itemID)
	}
	return active
}
