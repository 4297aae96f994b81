// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebookui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/cado/lib/notebook"
	"github.com/bureau-foundation/cado/lib/reconcile"
	"github.com/bureau-foundation/cado/lib/tui"
)

const (
	// gutterWidth is the columns left of each cell: a bar for the
	// active cell and a space.
	gutterWidth = 2

	// excerptLines caps console and output excerpts per cell.
	excerptLines = 6

	// highlightThreshold is the intensity above which a recent change
	// is drawn in the match color instead of faint.
	highlightThreshold = 0.5
)

// cellBlock is one cell laid out for display. Rows are relative to the
// first row of the cell area before scrolling.
type cellBlock struct {
	cellID string
	top    int
	lines  []string

	// bodyStart and bodyEnd delimit the code rows within lines.
	bodyStart int
	bodyEnd   int
}

// contains reports whether row falls within the block.
func (block cellBlock) contains(row int) bool {
	return row >= block.top && row < block.top+len(block.lines)
}

// inBody reports whether row falls on the block's code.
func (block cellBlock) inBody(row int) bool {
	relative := row - block.top
	return relative >= block.bodyStart && relative < block.bodyEnd
}

// layoutCells renders every cell of the snapshot for a content area of
// the given width (scrollbar excluded).
func (model Model) layoutCells(width int) []cellBlock {
	contentWidth := max(width-gutterWidth, 10)
	now := model.clock.Now()
	blocks := make([]cellBlock, 0, len(model.snapshot.Cells))
	row := 0
	for index, cell := range model.snapshot.Cells {
		block := model.renderCell(index, cell, contentWidth, model.highlighter.Intensity(cell.ID, now))
		block.top = row
		row += len(block.lines)
		blocks = append(blocks, block)
	}
	return blocks
}

func (model Model) renderCell(index int, cell notebook.Cell, width int, intensity float64) cellBlock {
	theme := model.theme
	navigation := model.snapshot.Navigation
	focus := model.snapshot.Focus
	active := navigation.ActiveCellID == cell.ID
	editing := active && navigation.EditMode

	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)

	block := cellBlock{cellID: cell.ID}
	var lines []string

	// Header: position, language, status, data flow, change marker.
	// Markdown cells never run, so they carry no status or data flow.
	header := faint.Render(fmt.Sprintf("[%d] ", index+1)) +
		lipgloss.NewStyle().Foreground(theme.LanguageColor(cell.Language)).Bold(true).Render(string(cell.Language))
	if cell.Language.Executable() {
		header += "  " + lipgloss.NewStyle().Foreground(theme.StatusColor(cell.Status)).Render("● "+string(cell.Status))
		if cell.OutputName != "" {
			header += faint.Render("  out: ") + normal.Render(cell.OutputName)
		}
		if len(cell.InputNames) > 0 {
			header += faint.Render("  in: ") + normal.Render(strings.Join(cell.InputNames, ", "))
		}
	}
	if intensity > 0 {
		marker := faint
		if intensity > highlightThreshold {
			marker = lipgloss.NewStyle().Foreground(theme.MatchForeground).Bold(true)
		}
		header += marker.Render("  • updated")
	}
	lines = append(lines, header)

	// Name fields get an inline editor while focused.
	for _, field := range []reconcile.Field{reconcile.FieldOutputName, reconcile.FieldInputNames} {
		if focus.CellID != cell.ID || focus.Field != field {
			continue
		}
		label := faint.Render(fieldLabel(field) + ": ")
		editorWidth := max(width-ansi.StringWidth(label), 1)
		lines = append(lines, label+model.editor.Render(editorWidth, 1, normal)[0])
	}

	// Code.
	block.bodyStart = len(lines)
	switch {
	case focus.CellID == cell.ID && focus.Field == reconcile.FieldCode:
		lines = append(lines, model.editor.Render(width, max(model.height/2, 3), normal)...)
	case strings.TrimSpace(cell.Code) == "":
		lines = append(lines, faint.Italic(true).Render("empty cell"))
	case cell.Language == notebook.LanguageMarkdown && !editing:
		lines = append(lines, renderMarkdown(cell.Code, theme, width)...)
	case cell.Language == notebook.LanguageMarkdown:
		lines = append(lines, strings.Split(normal.Render(cell.Code), "\n")...)
	default:
		lines = append(lines, highlightPython(cell.Code, theme)...)
	}
	block.bodyEnd = len(lines)

	// Console: stderr takes priority over stdout.
	if console, isError := cell.Console(); strings.TrimSpace(console) != "" {
		style := normal
		if isError {
			style = lipgloss.NewStyle().Foreground(theme.ErrorText)
		}
		excerpt, omitted := tui.ExtractExcerpt(console, width, excerptLines)
		for _, line := range excerpt {
			lines = append(lines, style.Render(line))
		}
		if omitted > 0 {
			lines = append(lines, faint.Render(fmt.Sprintf("… %d more lines", omitted)))
		}
	}

	// Output value, faint when out of date.
	if cell.HasOutput() {
		style := normal
		if cell.Stale() && !cell.Status.Terminal() {
			style = faint
		}
		excerpt, omitted := tui.ExtractExcerpt(formatOutput(cell.Output), max(width-2, 1), excerptLines)
		for index, line := range excerpt {
			prefix := "  "
			if index == 0 {
				prefix = "⇒ "
			}
			lines = append(lines, faint.Render(prefix)+style.Render(line))
		}
		if omitted > 0 {
			lines = append(lines, faint.Render(fmt.Sprintf("  … %d more lines", omitted)))
		}
	}

	gutter := "  "
	switch {
	case editing:
		gutter = lipgloss.NewStyle().Foreground(theme.EditingBorder).Render("┃ ")
	case active:
		gutter = lipgloss.NewStyle().Foreground(theme.ActiveBorder).Render("┃ ")
	}
	for index, line := range lines {
		if ansi.StringWidth(line) > width {
			line = ansi.Truncate(line, width, "…")
		}
		lines[index] = gutter + line
	}
	block.lines = append(lines, "")
	return block
}

// fieldLabel names a cell field for display.
func fieldLabel(field reconcile.Field) string {
	switch field {
	case reconcile.FieldOutputName:
		return "output name"
	case reconcile.FieldInputNames:
		return "inputs"
	default:
		return "code"
	}
}

// formatOutput renders a cell's JSON output for display. Strings are
// shown unquoted; other values are indented JSON.
func formatOutput(output json.RawMessage) string {
	var text string
	if err := json.Unmarshal(output, &text); err == nil {
		return text
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, output, "", "  "); err != nil {
		return string(output)
	}
	return indented.String()
}

// renderNotebook renders the cell area: exactly height lines of width
// columns, the last column a scrollbar.
func (model Model) renderNotebook(width, height int) []string {
	blocks := model.layoutCells(width - 1)
	var all []string
	for _, block := range blocks {
		all = append(all, block.lines...)
	}
	if len(all) == 0 {
		faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
		all = []string{faint.Render("  This notebook has no cells. Press Shift+N to add one.")}
	}

	offset := min(model.scrollOffset, max(len(all)-height, 0))
	visible := all[offset:min(offset+height, len(all))]
	scrollbar := tui.RenderScrollbar(model.theme, height, len(all), height, offset)

	lines := make([]string, height)
	for row := range lines {
		line := ""
		if row < len(visible) {
			line = visible[row]
		}
		if lineWidth := ansi.StringWidth(line); lineWidth < width-1 {
			line += strings.Repeat(" ", width-1-lineWidth)
		} else if lineWidth > width-1 {
			line = ansi.Truncate(line, width-1, "")
		}
		lines[row] = line + scrollbar[row]
	}
	return lines
}

// scrollToActive returns the scroll offset that keeps the active cell
// in view, moving as little as possible from the current offset.
func (model Model) scrollToActive(blocks []cellBlock, height int) int {
	offset := model.scrollOffset
	total := 0
	if len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		total = last.top + len(last.lines)
	}
	for _, block := range blocks {
		if block.cellID != model.snapshot.Navigation.ActiveCellID {
			continue
		}
		bottom := block.top + len(block.lines)
		if bottom-offset > height {
			offset = bottom - height
		}
		if block.top < offset {
			offset = block.top
		}
		break
	}
	return max(min(offset, total-height), 0)
}
