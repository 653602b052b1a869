package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	colorError   = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}
	colorDone    = lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#5FD787"}
	colorHigh    = lipgloss.AdaptiveColor{Light: "#C05600", Dark: "#FFAF5F"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	doneStyle = lipgloss.NewStyle().
			Foreground(colorDone).
			Strikethrough(true)

	highStyle = lipgloss.NewStyle().
			Foreground(colorHigh)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(13)

	focusedLabelStyle = labelStyle.
				Foreground(colorPrimary).
				Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)
)
