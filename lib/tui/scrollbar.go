// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar returns a single-column scrollbar, one string per
// row. The thumb marks the visible region within the total content and
// spans the whole height when everything fits.
func RenderScrollbar(theme Theme, height, totalLines, visibleLines, scrollOffset int) []string {
	if height <= 0 {
		return nil
	}
	trackStyle := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumbStyle := lipgloss.NewStyle().Foreground(theme.ActiveBorder)

	rows := make([]string, height)
	if totalLines <= visibleLines || totalLines <= 0 {
		for index := range rows {
			rows[index] = trackStyle.Render("│")
		}
		return rows
	}

	// Thumb size is proportional to visible/total, at least one row.
	thumbSize := max(height*visibleLines/totalLines, 1)
	scrollableRange := totalLines - visibleLines
	trackRange := height - thumbSize
	thumbOffset := 0
	if scrollableRange > 0 && trackRange > 0 {
		thumbOffset = scrollOffset * trackRange / scrollableRange
	}
	thumbOffset = min(thumbOffset, height-thumbSize)

	for index := range rows {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			rows[index] = thumbStyle.Render("┃")
		} else {
			rows[index] = trackStyle.Render("│")
		}
	}
	return rows
}
