package client

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles are bound to one writer so colour is only emitted to terminals.
type styles struct {
	help  lipgloss.Style
	error lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		help:  r.NewStyle().Faint(true),
		error: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}
