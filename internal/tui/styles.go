package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#101F38")
	colorAccent  = lipgloss.Color("#8BC34A")
	colorMuted   = lipgloss.Color("#6B7280")
	colorError   = lipgloss.Color("#e53935")
	colorBorder  = lipgloss.Color("#dce0e5")
)

// Styles holds the lipgloss styles used by the views.
type Styles struct {
	Title   lipgloss.Style
	Status  lipgloss.Style
	Muted   lipgloss.Style
	Label   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Help    lipgloss.Style
	Panel   lipgloss.Style
	Spinner lipgloss.Style
}

// DefaultStyles returns the styles for a light or dark terminal alike.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(colorPrimary).
			Padding(0, 1),
		Status:  lipgloss.NewStyle().Foreground(colorMuted),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
		Label:   lipgloss.NewStyle().Bold(true).Width(8),
		Error:   lipgloss.NewStyle().Foreground(colorError),
		Success: lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		Help:    lipgloss.NewStyle().Foreground(colorMuted),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		Spinner: lipgloss.NewStyle().Foreground(colorAccent),
	}
}
