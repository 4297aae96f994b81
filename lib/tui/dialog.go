// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Dialog chrome overhead: 2 columns border + 2 columns padding
// horizontally; 2 lines border + title + footer vertically.
const (
	dialogChromeWidth  = 4
	dialogChromeHeight = 4
	dialogMaxWidth     = 64
	dialogMinWidth     = 24
)

// Dialog is a centered modal box with a title, a body, and a footer
// hint. The body is either an Editor (for text prompts) or fixed
// message lines.
type Dialog struct {
	Title  string
	Footer string

	// Message is shown when Editor is nil.
	Message []string
	Editor  *Editor
}

// Render produces the dialog lines for splicing onto the view, and
// the anchor position (top-left corner in screen coordinates).
func (dialog Dialog) Render(theme Theme, screenWidth, screenHeight int) ([]string, int, int) {
	width := min(dialogMaxWidth, screenWidth-4)
	width = max(width, min(dialogMinWidth, screenWidth))
	innerWidth := max(width-dialogChromeWidth, 1)

	background := lipgloss.NewStyle().Background(theme.DialogBackground)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.HeaderForeground).
		Background(theme.DialogBackground)
	footerStyle := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.DialogBackground)
	textStyle := lipgloss.NewStyle().
		Foreground(theme.DialogForeground).
		Background(theme.DialogBackground)

	pad := func(line string) string {
		if lineWidth := ansi.StringWidth(line); lineWidth < innerWidth {
			line += background.Render(strings.Repeat(" ", innerWidth-lineWidth))
		}
		return line
	}

	lines := []string{pad(titleStyle.Render(ansi.Truncate(dialog.Title, innerWidth, "…")))}
	if dialog.Editor != nil {
		lines = append(lines, dialog.Editor.Render(innerWidth, 1, textStyle)...)
	} else {
		for _, message := range dialog.Message {
			for _, wrapped := range strings.Split(ansi.Wrap(message, innerWidth, " "), "\n") {
				lines = append(lines, pad(textStyle.Render(wrapped)))
			}
		}
	}
	lines = append(lines, pad(footerStyle.Render(ansi.Truncate(dialog.Footer, innerWidth, "…"))))

	maxBody := screenHeight - dialogChromeHeight
	if maxBody > 0 && len(lines) > maxBody+2 {
		lines = append(lines[:maxBody+1], lines[len(lines)-1])
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Background(theme.DialogBackground).
		Padding(0, 1)
	rendered := strings.Split(border.Render(strings.Join(lines, "\n")), "\n")

	renderedWidth := 0
	if len(rendered) > 0 {
		renderedWidth = ansi.StringWidth(rendered[0])
	}
	anchorX := max((screenWidth-renderedWidth)/2, 0)
	anchorY := max((screenHeight-len(rendered))/2, 0)
	return rendered, anchorX, anchorY
}
