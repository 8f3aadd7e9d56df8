package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle styles table titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)

	statusStyles = map[string]lipgloss.Style{
		"found":      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"system":     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"cache":      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"download":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"installed":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"resolving":  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"installing": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		"cannot-install":         lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"platform-not-supported": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"skipped":                lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"pending": lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
