package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorOK    = lipgloss.Color("42")
	colorWarn  = lipgloss.Color("220")
	colorError = lipgloss.Color("196")
	colorMuted = lipgloss.Color("244")
	colorTitle = lipgloss.Color("33")
)

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func bold(text string, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colorTitle).Render(text)
}
