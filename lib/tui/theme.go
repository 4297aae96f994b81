// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/cado/lib/notebook"
)

// Theme defines the color palette for cado's terminal UI. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	ErrorText  lipgloss.Color

	// Selected row in the notebook listing.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Cell gutter: the active cell, and the active cell while editing.
	ActiveBorder  lipgloss.Color
	EditingBorder lipgloss.Color

	// Cell status colors.
	StatusIdle    lipgloss.Color
	StatusRunning lipgloss.Color
	StatusOK      lipgloss.Color
	StatusError   lipgloss.Color

	// Language badges.
	PythonBadge   lipgloss.Color
	MarkdownBadge lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Fuzzy filter match highlighting.
	MatchForeground lipgloss.Color

	// Dialog boxes.
	DialogForeground lipgloss.Color
	DialogBackground lipgloss.Color
}

// StatusColor returns the color for a cell status. Unknown values
// return FaintText.
func (theme Theme) StatusColor(status notebook.Status) lipgloss.Color {
	switch status {
	case notebook.StatusIdle, notebook.StatusExpired:
		return theme.StatusIdle
	case notebook.StatusRunning:
		return theme.StatusRunning
	case notebook.StatusOK:
		return theme.StatusOK
	case notebook.StatusError:
		return theme.StatusError
	default:
		return theme.FaintText
	}
}

// LanguageColor returns the badge color for a cell language.
func (theme Theme) LanguageColor(language notebook.Language) lipgloss.Color {
	if language == notebook.LanguageMarkdown {
		return theme.MarkdownBadge
	}
	return theme.PythonBadge
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	ErrorText:  lipgloss.Color("203"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	ActiveBorder:  lipgloss.Color("75"),  // blue
	EditingBorder: lipgloss.Color("114"), // green

	StatusIdle:    lipgloss.Color("245"), // gray
	StatusRunning: lipgloss.Color("220"), // amber
	StatusOK:      lipgloss.Color("114"), // green
	StatusError:   lipgloss.Color("196"), // red

	PythonBadge:   lipgloss.Color("75"),
	MarkdownBadge: lipgloss.Color("141"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	MatchForeground: lipgloss.Color("220"),

	DialogForeground: lipgloss.Color("252"),
	DialogBackground: lipgloss.Color("237"),
}
