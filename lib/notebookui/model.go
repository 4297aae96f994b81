// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebookui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/cado/lib/clock"
	"github.com/bureau-foundation/cado/lib/connection"
	"github.com/bureau-foundation/cado/lib/notebookstore"
	"github.com/bureau-foundation/cado/lib/reconcile"
	"github.com/bureau-foundation/cado/lib/session"
	"github.com/bureau-foundation/cado/lib/tui"
)

// sessionChangedMsg is sent when the session reports a change.
type sessionChangedMsg struct{}

// storeEventMsg carries one notebook store event.
type storeEventMsg struct {
	event notebookstore.Event
}

// highlightTickMsg drives re-rendering while recent changes are
// marked.
type highlightTickMsg struct{}

// promptKind identifies what a dialog asks for.
type promptKind int

const (
	promptRename promptKind = iota
	promptDeleteNotebook
)

// prompt is an open dialog and what confirming it does.
type prompt struct {
	kind   promptKind
	target string
	dialog tui.Dialog
}

// Options configures the viewer.
type Options struct {
	// Theme defaults to tui.DefaultTheme.
	Theme *tui.Theme

	// Keys defaults to DefaultKeyMap.
	Keys *KeyMap

	// Clock defaults to the real clock.
	Clock clock.Clock

	// Logger receives failed user actions. The viewer shows warnings
	// when it is wired through a LogHandler.
	Logger *slog.Logger
}

// Model is the bubbletea model for the notebook viewer. It renders a
// session's snapshots and turns terminal input into session calls.
type Model struct {
	session *session.Session
	theme   tui.Theme
	keys    KeyMap
	clock   clock.Clock
	logger  *slog.Logger

	sessionChanges <-chan struct{}
	storeEvents    <-chan notebookstore.Event

	snapshot session.Snapshot
	width    int
	height   int
	ready    bool

	// Listing view.
	listCursor   int
	filter       tui.Editor
	filterActive bool
	slab         *util.Slab

	// Notebook view. editor holds the text of the focused field;
	// editorFocus is the field it was loaded from.
	editor           tui.Editor
	editorFocus      session.Focus
	scrollOffset     int
	highlighter      *tui.ChangeHighlighter
	highlightTicking bool

	menu   *tui.Menu
	prompt *prompt

	statusMessage  string
	statusLevel    slog.Level
	statusSequence int
}

// New creates the viewer for a session. Subscriptions are taken here
// so no change between construction and Init is missed.
func New(notebookSession *session.Session, options Options) Model {
	theme := tui.DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}
	keys := DefaultKeyMap
	if options.Keys != nil {
		keys = *options.Keys
	}
	viewerClock := options.Clock
	if viewerClock == nil {
		viewerClock = clock.Real()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	model := Model{
		session:        notebookSession,
		theme:          theme,
		keys:           keys,
		clock:          viewerClock,
		logger:         logger,
		sessionChanges: notebookSession.Subscribe(),
		storeEvents:    notebookSession.Store().Subscribe(),
		filter:         tui.NewEditor("", true),
		slab:           tui.NewFuzzySlab(),
		highlighter:    tui.NewChangeHighlighter(),
	}
	return model.refresh()
}

// Init starts listening for session and store changes.
func (model Model) Init() tea.Cmd {
	return tea.Batch(
		listenForSessionChange(model.sessionChanges),
		listenForStoreEvent(model.storeEvents),
	)
}

func listenForSessionChange(channel <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-channel; !ok {
			return nil
		}
		return sessionChangedMsg{}
	}
}

func listenForStoreEvent(channel <-chan notebookstore.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-channel
		if !ok {
			return nil
		}
		return storeEventMsg{event: event}
	}
}

func scheduleHighlightTick() tea.Cmd {
	return tea.Tick(tui.HighlightTickInterval, func(time.Time) tea.Msg {
		return highlightTickMsg{}
	})
}

// Update handles a message.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		return model.refresh(), nil

	case sessionChangedMsg:
		return model.refresh(), listenForSessionChange(model.sessionChanges)

	case storeEventMsg:
		commands := []tea.Cmd{listenForStoreEvent(model.storeEvents)}
		if message.event.Kind == notebookstore.EventPut && message.event.CellID != "" {
			model.highlighter.Mark(message.event.CellID, model.clock.Now())
			if !model.highlightTicking {
				model.highlightTicking = true
				commands = append(commands, scheduleHighlightTick())
			}
		}
		return model, tea.Batch(commands...)

	case highlightTickMsg:
		if model.highlighter.Active(model.clock.Now()) {
			return model, scheduleHighlightTick()
		}
		model.highlightTicking = false
		return model, nil

	case logRecordMsg:
		model.statusSequence++
		model.statusMessage = message.Summary
		model.statusLevel = message.Level
		sequence := model.statusSequence
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{sequence: sequence}
		})

	case logRecordFadeMsg:
		if message.sequence == model.statusSequence {
			model.statusMessage = ""
		}
		return model, nil

	case tea.BlurMsg:
		// Key-up events for keys held while focus left will never
		// arrive.
		model.session.ResetKeys()
		return model, nil

	case tea.MouseMsg:
		return model.handleMouse(message)

	case tea.KeyMsg:
		return model.handleKey(message)
	}
	return model, nil
}

// refresh re-reads the session snapshot and brings the editor, the
// listing cursor, and the scroll position in line with it.
func (model Model) refresh() Model {
	model.snapshot = model.session.Snapshot()

	focus := model.snapshot.Focus
	if focus != model.editorFocus {
		model.editorFocus = focus
		if focus.CellID != "" {
			value := model.session.FieldValue(focus.CellID, focus.Field)
			model.editor = tui.NewEditor(value, focus.Field != reconcile.FieldCode)
		}
	}

	entries := len(model.listingEntries())
	model.listCursor = max(min(model.listCursor, entries-1), 0)

	switch model.snapshot.View {
	case session.ViewNotebook:
		blocks := model.layoutCells(model.width - 1)
		model.scrollOffset = model.scrollToActive(blocks, model.cellAreaHeight())
	default:
		model.menu = nil
		if model.prompt != nil && model.prompt.kind == promptRename {
			model.prompt = nil
		}
		model.scrollOffset = 0
	}
	return model
}

// cellAreaHeight is the number of rows between the title and the help
// bar.
func (model Model) cellAreaHeight() int {
	return max(model.height-2, 1)
}

// report logs a failed user action.
func (model Model) report(action string, err error) {
	if err != nil {
		model.logger.Warn(action+" failed", "error", err)
	}
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.Type == tea.KeyCtrlC {
		return model, tea.Quit
	}
	if model.prompt != nil {
		return model.handlePromptKey(message)
	}
	if model.menu != nil {
		return model.handleMenuKey(message)
	}
	switch model.snapshot.View {
	case session.ViewListing:
		return model.handleListingKey(message)
	case session.ViewNotebook:
		return model.handleNotebookKey(message)
	}
	if key.Matches(message, model.keys.Quit) {
		return model, tea.Quit
	}
	return model, nil
}

func (model Model) handleListingKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := model.listingEntries()

	if model.filterActive {
		switch message.Type {
		case tea.KeyEsc:
			model.filterActive = false
			model.filter.SetValue("")
			model.listCursor = 0
		case tea.KeyEnter:
			model.filterActive = false
		case tea.KeyUp:
			model.listCursor = max(model.listCursor-1, 0)
		case tea.KeyDown:
			model.listCursor = min(model.listCursor+1, max(len(entries)-1, 0))
		default:
			if model.filter.Update(message) {
				model.listCursor = 0
			}
		}
		return model, nil
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Up):
		model.listCursor = max(model.listCursor-1, 0)
	case key.Matches(message, model.keys.Down):
		model.listCursor = min(model.listCursor+1, max(len(entries)-1, 0))
	case key.Matches(message, model.keys.Open):
		if model.listCursor < len(entries) {
			model.report("open notebook", model.session.OpenNotebook(entries[model.listCursor].details.Filepath))
		}
	case key.Matches(message, model.keys.NewNotebook):
		model.report("create notebook", model.session.NewNotebook())
	case key.Matches(message, model.keys.DeleteNotebook):
		if model.listCursor < len(entries) {
			details := entries[model.listCursor].details
			model.prompt = &prompt{
				kind:   promptDeleteNotebook,
				target: details.Filepath,
				dialog: tui.Dialog{
					Title:   "Delete notebook",
					Message: []string{fmt.Sprintf("Delete %q?", details.Name), details.Filepath},
					Footer:  "Enter delete  Esc cancel",
				},
			}
		}
	case key.Matches(message, model.keys.Refresh):
		model.report("refresh listing", model.session.RefreshListing())
	case key.Matches(message, model.keys.FilterActivate):
		model.filterActive = true
	case key.Matches(message, model.keys.FilterClear):
		model.filter.SetValue("")
		model.listCursor = 0
	}
	return model, nil
}

// pressChord feeds a terminal key to the session's chord detector as
// a full press and release. It returns true when a chord consumed the
// key.
func (model Model) pressChord(message tea.KeyMsg) bool {
	keys := keySequence(message)
	prevented := false
	for _, name := range keys {
		if model.session.KeyDown(name) {
			prevented = true
		}
	}
	for index := len(keys) - 1; index >= 0; index-- {
		model.session.KeyUp(keys[index])
	}
	return prevented
}

func (model Model) handleNotebookKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.pressChord(message) {
		return model.refresh(), nil
	}
	model = model.refresh()

	if focus := model.snapshot.Focus; focus.CellID != "" {
		switch {
		case key.Matches(message, model.keys.NextField):
			model.session.FocusField(focus.CellID, nextField(focus.Field))
		case message.Type == tea.KeyEnter && focus.Field != reconcile.FieldCode:
			model.session.Blur()
		default:
			if model.editor.Update(message) {
				model.session.EditField(focus.CellID, focus.Field, model.editor.Value())
			}
			return model, nil
		}
		return model.refresh(), nil
	}

	active := model.snapshot.Navigation.ActiveCellID
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.ToggleLanguage):
		if active != "" {
			model.report("toggle language", model.session.ToggleLanguage(active))
		}
	case key.Matches(message, model.keys.MoveCellUp):
		if active != "" {
			model.report("move cell", model.session.MoveCell(active, -1))
		}
	case key.Matches(message, model.keys.MoveCellDown):
		if active != "" {
			model.report("move cell", model.session.MoveCell(active, 1))
		}
	case key.Matches(message, model.keys.CellMenu):
		if active != "" {
			model.menu = model.cellMenu(active)
		}
	case key.Matches(message, model.keys.Rename):
		editor := tui.NewEditor(model.snapshot.NotebookName, true)
		model.prompt = &prompt{
			kind:   promptRename,
			dialog: tui.Dialog{Title: "Rename notebook", Footer: "Enter save  Esc cancel", Editor: &editor},
		}
	case key.Matches(message, model.keys.ExitNotebook):
		model.report("close notebook", model.session.ExitNotebook())
	case key.Matches(message, model.keys.Resync):
		model.report("resync", model.session.Resync())
	case message.Type == tea.KeyEsc:
		model.session.ClickOutside()
	case message.Type == tea.KeyPgUp:
		model.scrollOffset = max(model.scrollOffset-model.cellAreaHeight()/2, 0)
		return model, nil
	case message.Type == tea.KeyPgDown:
		model.scrollOffset += model.cellAreaHeight() / 2
		return model, nil
	default:
		return model, nil
	}
	return model.refresh(), nil
}

// nextField cycles code, output name, inputs.
func nextField(field reconcile.Field) reconcile.Field {
	switch field {
	case reconcile.FieldCode:
		return reconcile.FieldOutputName
	case reconcile.FieldOutputName:
		return reconcile.FieldInputNames
	default:
		return reconcile.FieldCode
	}
}

// cellMenu builds the action menu for a cell, anchored below its
// header.
func (model Model) cellMenu(cellID string) *tui.Menu {
	executable := true
	for _, cell := range model.snapshot.Cells {
		if cell.ID == cellID {
			executable = cell.Language.Executable()
			break
		}
	}
	var options []tui.MenuOption
	if executable {
		options = append(options,
			tui.MenuOption{Label: "Run", Value: "run", Hint: "C-r"},
			tui.MenuOption{Label: "Clear output", Value: "clear", Hint: "C-k"},
		)
	}
	options = append(options, tui.MenuOption{Label: "Edit code", Value: "edit", Hint: "Enter"})
	if executable {
		options = append(options,
			tui.MenuOption{Label: "Edit output name", Value: "output"},
			tui.MenuOption{Label: "Edit inputs", Value: "inputs"},
		)
	}
	options = append(options,
		tui.MenuOption{Label: "Toggle language", Value: "language", Hint: "l"},
		tui.MenuOption{Label: "Move up", Value: "up", Hint: "K"},
		tui.MenuOption{Label: "Move down", Value: "down", Hint: "J"},
		tui.MenuOption{Label: "Insert cell below", Value: "insert", Hint: "N"},
		tui.MenuOption{Label: "Delete cell", Value: "delete", Hint: "D"},
	)
	menu := &tui.Menu{
		Target:  cellID,
		Options: options,
		AnchorX: gutterWidth + 4,
		AnchorY: 2,
	}
	for _, block := range model.layoutCells(model.width - 1) {
		if block.cellID == cellID {
			menu.AnchorY = max(block.top-model.scrollOffset+2, 1)
			break
		}
	}
	if overflow := menu.AnchorY + len(menu.Options) - (model.height - 1); overflow > 0 {
		menu.AnchorY = max(menu.AnchorY-overflow, 0)
	}
	return menu
}

func (model Model) handleMenuKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.menu = nil
	case key.Matches(message, model.keys.Up):
		model.menu.MoveUp()
	case key.Matches(message, model.keys.Down):
		model.menu.MoveDown()
	case key.Matches(message, model.keys.Confirm):
		option, ok := model.menu.Selected()
		target := model.menu.Target
		model.menu = nil
		if ok {
			model.runMenuAction(option.Value, target)
		}
		return model.refresh(), nil
	}
	return model, nil
}

func (model Model) runMenuAction(action, cellID string) {
	switch action {
	case "run":
		model.report("run cell", model.session.RunCell(cellID))
	case "clear":
		model.report("clear cell", model.session.ClearCell(cellID))
	case "edit":
		model.session.FocusField(cellID, reconcile.FieldCode)
	case "output":
		model.session.FocusField(cellID, reconcile.FieldOutputName)
	case "inputs":
		model.session.FocusField(cellID, reconcile.FieldInputNames)
	case "language":
		model.report("toggle language", model.session.ToggleLanguage(cellID))
	case "up":
		model.report("move cell", model.session.MoveCell(cellID, -1))
	case "down":
		model.report("move cell", model.session.MoveCell(cellID, 1))
	case "insert":
		for index, cell := range model.snapshot.Cells {
			if cell.ID == cellID {
				position := index + 1
				model.report("insert cell", model.session.NewCell(&position))
				return
			}
		}
	case "delete":
		model.report("delete cell", model.session.DeleteCell(cellID))
	}
}

func (model Model) handlePromptKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	current := model.prompt
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.prompt = nil
	case key.Matches(message, model.keys.Confirm):
		model.prompt = nil
		switch current.kind {
		case promptRename:
			model.report("rename notebook", model.session.RenameNotebook(current.dialog.Editor.Value()))
		case promptDeleteNotebook:
			model.report("delete notebook", model.session.DeleteNotebook(current.target))
		}
		return model.refresh(), nil
	default:
		if current.dialog.Editor != nil {
			current.dialog.Editor.Update(message)
		}
	}
	return model, nil
}

func (model Model) handleMouse(message tea.MouseMsg) (tea.Model, tea.Cmd) {
	if model.snapshot.View != session.ViewNotebook || model.prompt != nil {
		return model, nil
	}
	blocks := model.layoutCells(model.width - 1)
	total := 0
	if len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		total = last.top + len(last.lines)
	}

	switch message.Button {
	case tea.MouseButtonWheelUp:
		model.scrollOffset = max(model.scrollOffset-3, 0)
		return model, nil
	case tea.MouseButtonWheelDown:
		model.scrollOffset = max(min(model.scrollOffset+3, total-model.cellAreaHeight()), 0)
		return model, nil
	case tea.MouseButtonLeft:
		if message.Action != tea.MouseActionPress {
			return model, nil
		}
	default:
		return model, nil
	}

	model.menu = nil
	if message.Y < 1 || message.Y > model.cellAreaHeight() {
		return model, nil
	}
	row := message.Y - 1 + model.scrollOffset
	for _, block := range blocks {
		if !block.contains(row) {
			continue
		}
		if block.inBody(row) {
			model.session.ClickEditor(block.cellID)
		} else {
			model.session.ClickCell(block.cellID)
		}
		return model.refresh(), nil
	}
	model.session.ClickOutside()
	return model.refresh(), nil
}

// View renders the screen.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	var lines []string
	switch model.snapshot.View {
	case session.ViewListing:
		lines = model.renderListing(model.width, model.height-1)
	case session.ViewNotebook:
		lines = append([]string{model.renderTitle()}, model.renderNotebook(model.width, model.cellAreaHeight())...)
	default:
		lines = model.renderDisconnected(model.width, model.height-1)
	}
	lines = append(lines, model.renderHelp())
	output := strings.Join(lines, "\n")

	if model.menu != nil {
		output = tui.SpliceOverlay(output, model.menu.Render(model.theme), model.menu.AnchorX, model.menu.AnchorY)
	}
	if model.prompt != nil {
		dialogLines, anchorX, anchorY := model.prompt.dialog.Render(model.theme, model.width, model.height)
		output = tui.SpliceOverlay(output, dialogLines, anchorX, anchorY)
	}
	return output
}

func (model Model) renderTitle() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	name := model.snapshot.NotebookName
	if name == "" {
		name = "untitled"
	}
	line := title.Render(" "+name) + faint.Render(fmt.Sprintf("  %d cells", len(model.snapshot.Cells)))
	if model.snapshot.Navigation.EditMode && model.snapshot.Focus.CellID != "" {
		editing := lipgloss.NewStyle().Foreground(model.theme.EditingBorder)
		line += editing.Render("  editing " + fieldLabel(model.snapshot.Focus.Field))
	}
	if ansi.StringWidth(line) > model.width {
		line = ansi.Truncate(line, model.width, "…")
	}
	return line
}

func (model Model) renderDisconnected(width, height int) []string {
	status := model.snapshot.Connection
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	headline := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)

	var message []string
	switch {
	case status.Exhausted:
		message = []string{
			lipgloss.NewStyle().Bold(true).Foreground(model.theme.ErrorText).Render("Lost connection to the cado server."),
			faint.Render(fmt.Sprintf("Gave up after %d attempts. Press q to quit.", status.Attempts)),
		}
	case status.State == connection.StateConnecting && status.Attempts > 0:
		message = []string{
			headline.Render("Reconnecting to the notebook server…"),
			faint.Render(fmt.Sprintf("%d failed attempts so far", status.Attempts)),
		}
	case status.State == connection.StateConnecting, status.State == connection.StateOpen:
		message = []string{headline.Render("Connecting to the notebook server…")}
	default:
		message = []string{
			headline.Render("Lost connection to the cado server."),
			faint.Render("Waiting to reconnect."),
		}
	}

	lines := make([]string, 0, height)
	for range max((height-len(message))/2, 0) {
		lines = append(lines, "")
	}
	for _, line := range message {
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
	}
	return padLines(lines, width, height)
}

// helpEntry formats a binding's help as "key description".
func helpEntry(binding key.Binding) string {
	help := binding.Help()
	return help.Key + " " + help.Desc
}

func (model Model) renderHelp() string {
	if model.statusMessage != "" {
		color := model.theme.HelpText
		switch {
		case model.statusLevel >= slog.LevelError:
			color = model.theme.ErrorText
		case model.statusLevel >= slog.LevelWarn:
			color = model.theme.StatusRunning
		}
		line := " " + model.statusMessage
		if ansi.StringWidth(line) > model.width {
			line = ansi.Truncate(line, model.width, "…")
		}
		return lipgloss.NewStyle().Foreground(color).Render(line)
	}

	var entries []string
	switch model.snapshot.View {
	case session.ViewListing:
		if model.filterActive {
			entries = []string{"Enter apply", "Esc clear", "↑↓ select"}
		} else {
			entries = []string{
				helpEntry(model.keys.Up), helpEntry(model.keys.Down), helpEntry(model.keys.Open),
				helpEntry(model.keys.NewNotebook), helpEntry(model.keys.DeleteNotebook),
				helpEntry(model.keys.Refresh), helpEntry(model.keys.FilterActivate), helpEntry(model.keys.Quit),
			}
		}
	case session.ViewNotebook:
		if model.snapshot.Focus.CellID != "" {
			entries = []string{"Esc done", helpEntry(model.keys.NextField)}
		} else {
			entries = []string{
				"Enter edit", "C-r run", "↑↓ select", "N new", "D delete", "C-k clear",
				helpEntry(model.keys.ToggleLanguage), "K/J move", helpEntry(model.keys.CellMenu),
				helpEntry(model.keys.Rename), helpEntry(model.keys.ExitNotebook), helpEntry(model.keys.Quit),
			}
		}
	default:
		entries = []string{helpEntry(model.keys.Quit)}
	}

	line := " " + strings.Join(entries, "  ")
	if ansi.StringWidth(line) > model.width {
		line = ansi.Truncate(line, model.width, "…")
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(line)
}
