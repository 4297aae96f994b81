// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebookui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/cado/lib/notebook"
	"github.com/bureau-foundation/cado/lib/tui"
)

// listingEntry is one notebook shown in the listing view, with the
// fuzzy match positions within its name.
type listingEntry struct {
	details   notebook.NotebookDetails
	score     int
	positions []int
}

// filterListing returns the notebooks matching pattern. An empty
// pattern keeps every notebook in the given order; otherwise entries
// match against "name filepath" and are ordered by descending score.
func filterListing(listing []notebook.NotebookDetails, pattern string, slab *util.Slab) []listingEntry {
	pattern = strings.TrimSpace(pattern)
	entries := make([]listingEntry, 0, len(listing))
	if pattern == "" {
		for _, details := range listing {
			entries = append(entries, listingEntry{details: details})
		}
		return entries
	}

	runes := []rune(pattern)
	for _, details := range listing {
		result := tui.FuzzyMatch(details.Name+" "+details.Filepath, runes, slab)
		if result.Score <= 0 {
			continue
		}
		nameLength := len([]rune(details.Name))
		var positions []int
		for _, position := range result.Positions {
			if position < nameLength {
				positions = append(positions, position)
			}
		}
		entries = append(entries, listingEntry{details: details, score: result.Score, positions: positions})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})
	return entries
}

// relativeAge formats how long ago updated was, relative to now.
func relativeAge(updated, now time.Time) string {
	if updated.IsZero() {
		return "never"
	}
	elapsed := now.Sub(updated)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed/time.Minute))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed/time.Hour))
	case elapsed < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(elapsed/(24*time.Hour)))
	default:
		return updated.Format("2006-01-02")
	}
}

// highlightPositions renders text with the runes at positions in the
// match color.
func highlightPositions(text string, positions []int, base, match lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(text)
	}
	marked := make(map[int]bool, len(positions))
	for _, position := range positions {
		marked[position] = true
	}
	var builder strings.Builder
	for index, character := range []rune(text) {
		if marked[index] {
			builder.WriteString(match.Render(string(character)))
		} else {
			builder.WriteString(base.Render(string(character)))
		}
	}
	return builder.String()
}

// renderListing renders the notebook listing into exactly height
// lines of the given width.
func (model Model) renderListing(width, height int) []string {
	theme := model.theme
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	title := header.Render("Notebooks")
	if model.filterActive || model.filter.Value() != "" {
		prompt := faint.Render("  / ")
		editorWidth := max(width-ansi.StringWidth(title)-ansi.StringWidth(prompt), 1)
		filterText := model.filter.Value()
		if model.filterActive {
			filterText = model.filter.Render(editorWidth, 1, lipgloss.NewStyle().Foreground(theme.NormalText))[0]
		}
		title += prompt + filterText
	}
	lines := []string{title, ""}

	entries := model.listingEntries()
	if len(entries) == 0 {
		if len(model.snapshot.Listing) == 0 {
			lines = append(lines, faint.Render("No notebooks. Press n to create one."))
		} else {
			lines = append(lines, faint.Render("No notebooks match the filter."))
		}
		return padLines(lines, width, height)
	}

	visible := max(height-len(lines), 1)
	first := 0
	if model.listCursor >= visible {
		first = model.listCursor - visible + 1
	}
	now := model.clock.Now()
	for index := first; index < len(entries) && index < first+visible; index++ {
		entry := entries[index]
		selected := index == model.listCursor

		base := lipgloss.NewStyle().Foreground(theme.NormalText)
		dim := faint
		if selected {
			base = base.Foreground(theme.SelectedForeground).Background(theme.SelectedBackground)
			dim = dim.Background(theme.SelectedBackground)
		}
		match := base.Foreground(theme.MatchForeground).Bold(true)

		name := entry.details.Name
		if name == "" {
			name = "untitled"
		}
		age := relativeAge(entry.details.Updated.Time, now)
		line := base.Render(" ") + highlightPositions(name, entry.positions, base, match) +
			dim.Render("  "+entry.details.Filepath)
		ageWidth := ansi.StringWidth(age) + 1
		if ansi.StringWidth(line) > width-ageWidth {
			line = ansi.Truncate(line, max(width-ageWidth, 1), "…")
		}
		if padding := width - ageWidth - ansi.StringWidth(line); padding > 0 {
			line += dim.Render(strings.Repeat(" ", padding))
		}
		line += dim.Render(age + " ")
		lines = append(lines, line)
	}
	return padLines(lines, width, height)
}

// listingEntries is the filtered listing the cursor indexes into.
func (model Model) listingEntries() []listingEntry {
	return filterListing(model.snapshot.Listing, model.filter.Value(), model.slab)
}

// padLines truncates or pads lines to exactly height entries, each no
// wider than width.
func padLines(lines []string, width, height int) []string {
	if height >= 0 && len(lines) > height {
		lines = lines[:height]
	}
	for index, line := range lines {
		if ansi.StringWidth(line) > width {
			lines[index] = ansi.Truncate(line, width, "")
		}
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}
