package tui

import "github.com/charmbracelet/lipgloss"

// Styles collects the lipgloss styles used by the trial screen.
type Styles struct {
	Title   lipgloss.Style
	Status  lipgloss.Style
	Safe    lipgloss.Style
	Bombed  lipgloss.Style
	Closed  lipgloss.Style
	Opened  lipgloss.Style
	Bomb    lipgloss.Style
	Help    lipgloss.Style
	Warning lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Status:  lipgloss.NewStyle().Bold(true),
		Safe:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Bombed:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Closed:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Opened:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Bomb:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}
