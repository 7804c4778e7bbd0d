package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	red     = lipgloss.ANSIColor(1)
	green   = lipgloss.ANSIColor(2)
	yellow  = lipgloss.ANSIColor(3)
	blue    = lipgloss.ANSIColor(4)
	magenta = lipgloss.ANSIColor(5)
)

type styles struct {
	header  lipgloss.Style
	subject lipgloss.Style
	reason  lipgloss.Style
	repo    lipgloss.Style
	ts      lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

// newStyles binds styles to w so color is only emitted when w is a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header:  r.NewStyle().Bold(true),
		subject: r.NewStyle(),
		reason:  r.NewStyle().Foreground(yellow),
		repo:    r.NewStyle().Foreground(magenta).Italic(true),
		ts:      r.NewStyle().Foreground(blue).Italic(true),
		success: r.NewStyle().Foreground(green),
		failure: r.NewStyle().Foreground(red),
	}
}
