// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ui styles terminal output for the codemap CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/petar-djukic/go-codemap/internal/theme"
	"github.com/petar-djukic/go-codemap/pkg/types"
)

// Palette
var (
	ColorAccent  = lipgloss.Color("#20B9B4")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#6C7A89")
)

// Styles holds the styles used by a Printer.
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	OK      lipgloss.Style
}

// DefaultStyles returns the coloured styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Heading: lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		OK:      lipgloss.NewStyle().Foreground(ColorAccent),
	}
}

// Printer writes styled text when its writer is a terminal and plain text
// otherwise.
type Printer struct {
	w      io.Writer
	color  bool
	styles Styles
}

// NewPrinter returns a Printer for w. Colour is enabled only when w is a
// terminal file and NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: IsTerminal(w) && os.Getenv("NO_COLOR") == "", styles: DefaultStyles()}
}

// NewPlainPrinter returns a Printer that never colours.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: DefaultStyles()}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// Report prints a report produced by package report, highlighting
// section headings and diagnostic lines.
func (p *Printer) Report(text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case strings.HasPrefix(body, "## "):
			body = p.render(p.styles.Heading, body)
		case strings.HasPrefix(body, "- ["):
			body = p.render(p.styles.Warning, body)
		case strings.HasPrefix(body, "- ..."):
			body = p.render(p.styles.Muted, body)
		}
		fmt.Fprint(p.w, body+nl)
	}
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(p.styles.Error, "error: "+fmt.Sprintf(format, args...)))
}

// Successf prints a confirmation line.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(p.styles.OK, fmt.Sprintf(format, args...)))
}

// Swatch renders a sample of cs as it would appear in a diagram node.
func (p *Printer) Swatch(cs types.ColorScheme) string {
	label := fmt.Sprintf(" %-8s ", cs.Name)
	if !p.color {
		return fmt.Sprintf("[%s] fill %s stroke %s text %s", strings.TrimSpace(label), cs.Fill, cs.Stroke, cs.Text)
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(cs.Fill)).
		Foreground(lipgloss.Color(cs.Text)).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(cs.Stroke)).
		Render(label)
}

// Theme prints the schemes of t.
func (p *Printer) Theme(t *theme.Theme, current bool) {
	title := t.Name
	if current {
		title += " (selected)"
	}
	fmt.Fprintln(p.w, p.render(p.styles.Title, title))

	line := func(role string, schemes ...types.ColorScheme) {
		parts := make([]string, len(schemes))
		for i, cs := range schemes {
			parts[i] = p.Swatch(cs)
		}
		joined := strings.Join(parts, "  ")
		if p.color {
			joined = lipgloss.JoinHorizontal(lipgloss.Center, parts...)
		}
		fmt.Fprintf(p.w, "  %s %s\n", p.render(p.styles.Muted, fmt.Sprintf("%-8s", role)), joined)
	}
	line("palette", t.Palette...)
	line("entry", t.Entry)
	line("node", t.Node)
	line("file", t.File)
	line("class", t.Class)
}
