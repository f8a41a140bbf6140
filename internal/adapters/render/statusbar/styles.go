package statusbar

import "github.com/charmbracelet/lipgloss"

type styles struct {
	app        lipgloss.Style
	title      lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	empty      lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	barLabel   lipgloss.Style
}

func newStyles() styles {
	return styles{
		app:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		title:      lipgloss.NewStyle().Bold(true),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		empty:      lipgloss.NewStyle().Faint(true),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		barLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}
