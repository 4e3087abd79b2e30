// Package watch implements the ghrelay live delivery watch TUI. It polls
// /healthz and tails the /events SSE stream of a running relay.
package watch

import "github.com/charmbracelet/lipgloss"

// Theme centralizes all styling for the watch TUI.
// Even with a single default theme, this keeps all colors in one place
// and makes future theme support trivial.
type Theme struct {
	// Outcome colors
	StatusOK       lipgloss.Style
	StatusFailed   lipgloss.Style
	StatusSkipped  lipgloss.Style
	StatusRejected lipgloss.Style

	// UI elements
	Border    lipgloss.Style
	Title     lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style

	// Indicators
	PulseActive   lipgloss.Style
	PulseInactive lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		StatusOK:       lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		StatusFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		StatusSkipped:  lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		StatusRejected: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),

		PulseActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		PulseInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
	}
}
