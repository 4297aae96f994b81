// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebookui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/bureau-foundation/cado/lib/tui"
)

var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once

	// forcedRenderer always emits ANSI256 escapes. Without a forced
	// profile lipgloss re-detects the environment and renders no color
	// when there is no TTY.
	forcedRenderer     *lipgloss.Renderer
	forcedRendererOnce sync.Once
)

func markdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParserInstance
}

func colorRenderer() *lipgloss.Renderer {
	forcedRendererOnce.Do(func() {
		forcedRenderer = lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
		forcedRenderer.SetColorProfile(termenv.ANSI256)
	})
	return forcedRenderer
}

// highlightPython syntax-highlights cell source. On failure the source
// is returned in FaintText.
func highlightPython(code string, theme tui.Theme) []string {
	code = strings.TrimRight(code, "\n")
	var buffer strings.Builder
	if err := quick.Highlight(&buffer, code, "python", "terminal256", "monokai"); err != nil {
		faint := colorRenderer().NewStyle().Foreground(theme.FaintText)
		return strings.Split(faint.Render(code), "\n")
	}
	// Trailing reset sequences may land after the final newline; fold
	// them into the last source line.
	lines := strings.Split(buffer.String(), "\n")
	if want := strings.Count(code, "\n") + 1; len(lines) > want {
		lines[want-1] += strings.Join(lines[want:], "")
		lines = lines[:want]
	}
	return lines
}

// renderMarkdown renders a markdown cell for the terminal, wrapped to
// width. Soft line breaks reflow; headings, lists, quotes and fenced
// code keep their structure.
func renderMarkdown(source string, theme tui.Theme, width int) []string {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	data := []byte(source)
	document := markdownParser().Parser().Parse(text.NewReader(data))
	renderer := &markdownRenderer{source: data, theme: theme, styles: colorRenderer()}
	renderer.blocks(document, "", max(width, 10))
	for len(renderer.lines) > 0 && renderer.lines[len(renderer.lines)-1] == "" {
		renderer.lines = renderer.lines[:len(renderer.lines)-1]
	}
	return renderer.lines
}

// markdownRenderer renders block nodes to lines. Each block is
// rendered with the prefix of its enclosing containers.
type markdownRenderer struct {
	source []byte
	theme  tui.Theme
	styles *lipgloss.Renderer
	lines  []string
}

func (renderer *markdownRenderer) blankLine() {
	if len(renderer.lines) > 0 && renderer.lines[len(renderer.lines)-1] != "" {
		renderer.lines = append(renderer.lines, "")
	}
}

// emit appends content wrapped to width, the first line prefixed with
// first and the rest with rest.
func (renderer *markdownRenderer) emit(content, first, rest string, width int) {
	available := max(width-ansi.StringWidth(rest), 10)
	for index, line := range strings.Split(ansi.Wrap(content, available, " ,.;-+|"), "\n") {
		prefix := rest
		if index == 0 {
			prefix = first
		}
		renderer.lines = append(renderer.lines, prefix+line)
	}
}

func (renderer *markdownRenderer) blocks(parent ast.Node, prefix string, width int) {
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		renderer.block(child, prefix, prefix, width)
	}
}

func (renderer *markdownRenderer) block(node ast.Node, first, rest string, width int) {
	switch node := node.(type) {
	case *ast.Heading:
		style := renderer.styles.NewStyle().Bold(true).Foreground(renderer.theme.HeaderForeground)
		if node.Level > 2 {
			style = style.Foreground(renderer.theme.NormalText)
		}
		renderer.blankLine()
		renderer.emit(style.Render(ansi.Strip(renderer.inline(node, inlineStyle{}))), first, rest, width)
		renderer.blankLine()

	case *ast.Paragraph, *ast.TextBlock:
		renderer.emit(renderer.inline(node, inlineStyle{}), first, rest, width)
		if _, tight := node.(*ast.TextBlock); !tight {
			renderer.blankLine()
		}

	case *ast.FencedCodeBlock:
		code := renderer.rawLines(node)
		language := string(node.Language(renderer.source))
		var highlighted []string
		if language == "python" || language == "py" {
			highlighted = highlightPython(code, renderer.theme)
		} else {
			faint := renderer.styles.NewStyle().Foreground(renderer.theme.FaintText)
			highlighted = strings.Split(faint.Render(strings.TrimRight(code, "\n")), "\n")
		}
		for index, line := range highlighted {
			if index == 0 {
				renderer.lines = append(renderer.lines, first+"  "+line)
			} else {
				renderer.lines = append(renderer.lines, rest+"  "+line)
			}
		}
		renderer.blankLine()

	case *ast.CodeBlock:
		faint := renderer.styles.NewStyle().Foreground(renderer.theme.FaintText)
		for _, line := range strings.Split(strings.TrimRight(renderer.rawLines(node), "\n"), "\n") {
			renderer.lines = append(renderer.lines, rest+"  "+faint.Render(line))
		}
		renderer.blankLine()

	case *ast.Blockquote:
		bar := renderer.styles.NewStyle().Foreground(renderer.theme.BorderColor).Render("│ ")
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			renderer.block(child, rest+bar, rest+bar, width)
		}

	case *ast.List:
		counter := node.Start
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			bullet := "• "
			if node.IsOrdered() {
				bullet = strconv.Itoa(counter) + ". "
				counter++
			}
			if paragraph := item.FirstChild(); paragraph != nil {
				if _, ok := paragraph.FirstChild().(*extast.TaskCheckBox); ok {
					bullet = ""
				}
			}
			indent := strings.Repeat(" ", ansi.StringWidth(bullet))
			itemFirst := rest + bullet
			for child := item.FirstChild(); child != nil; child = child.NextSibling() {
				renderer.block(child, itemFirst, rest+indent, width)
				itemFirst = rest + indent
			}
		}
		renderer.blankLine()

	case *extast.Table:
		separator := renderer.styles.NewStyle().Foreground(renderer.theme.BorderColor).Render(" │ ")
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, renderer.inline(cell, inlineStyle{bold: row.Kind() == extast.KindTableHeader}))
			}
			renderer.emit(strings.Join(cells, separator), rest, rest, width)
		}
		renderer.blankLine()

	case *ast.ThematicBreak:
		rule := renderer.styles.NewStyle().Foreground(renderer.theme.BorderColor)
		renderer.lines = append(renderer.lines, rest+rule.Render(strings.Repeat("─", max(width-ansi.StringWidth(rest), 1))))
		renderer.blankLine()

	case *ast.HTMLBlock:
		renderer.emit(renderer.rawLines(node), first, rest, width)

	default:
		renderer.blocks(node, rest, width)
	}
}

func (renderer *markdownRenderer) rawLines(node ast.Node) string {
	var builder strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		builder.Write(segment.Value(renderer.source))
	}
	return builder.String()
}

type inlineStyle struct {
	bold, italic, strikethrough bool
}

// inline renders the inline children of node as one styled string.
func (renderer *markdownRenderer) inline(node ast.Node, style inlineStyle) string {
	var builder strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			builder.WriteString(renderer.styled(string(child.Segment.Value(renderer.source)), style))
			if child.SoftLineBreak() {
				builder.WriteString(" ")
			}
			if child.HardLineBreak() {
				builder.WriteString("\n")
			}
		case *ast.String:
			builder.WriteString(renderer.styled(string(child.Value), style))
		case *ast.Emphasis:
			nested := style
			if child.Level >= 2 {
				nested.bold = true
			} else {
				nested.italic = true
			}
			builder.WriteString(renderer.inline(child, nested))
		case *extast.Strikethrough:
			nested := style
			nested.strikethrough = true
			builder.WriteString(renderer.inline(child, nested))
		case *ast.CodeSpan:
			code := renderer.styles.NewStyle().Foreground(renderer.theme.MatchForeground)
			builder.WriteString(code.Render(ansi.Strip(renderer.inline(child, inlineStyle{}))))
		case *ast.Link:
			builder.WriteString(renderer.inline(child, style))
			if destination := string(child.Destination); destination != "" {
				faint := renderer.styles.NewStyle().Foreground(renderer.theme.FaintText)
				builder.WriteString(" " + faint.Render("("+destination+")"))
			}
		case *ast.AutoLink:
			builder.WriteString(renderer.styled(string(child.URL(renderer.source)), style))
		case *extast.TaskCheckBox:
			if child.IsChecked {
				builder.WriteString("[x] ")
			} else {
				builder.WriteString("[ ] ")
			}
		default:
			builder.WriteString(renderer.inline(child, style))
		}
	}
	return builder.String()
}

func (renderer *markdownRenderer) styled(content string, style inlineStyle) string {
	rendered := renderer.styles.NewStyle().
		Foreground(renderer.theme.NormalText).
		Bold(style.bold).
		Italic(style.italic).
		Strikethrough(style.strikethrough)
	return rendered.Render(content)
}
