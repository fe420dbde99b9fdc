package tui

import "github.com/charmbracelet/lipgloss"

// Pane styles
var (
	focusedColor = lipgloss.Color("#04B575")
	mutedColor   = lipgloss.Color("#626262")

	LogPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor)

	SidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	ActionPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(focusedColor).
			Padding(0, 1)

	PromptStyle = lipgloss.NewStyle().
			Foreground(focusedColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)
