// Package ui renders task and goal lists for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	dateStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("244"))
	pendingStyle   = lipgloss.NewStyle()
	recurringMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	phraseStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("250"))
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	offlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// Goal periodicities keep the color coding users know from the app.
	periodicityStyles = map[string]lipgloss.Style{
		"daily":      lipgloss.NewStyle().Foreground(lipgloss.Color("3")),   // yellow
		"weekly":     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),   // green
		"monthly":    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),   // blue
		"quarterly":  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),   // red
		"semiannual": lipgloss.NewStyle().Foreground(lipgloss.Color("5")),   // purple
		"annual":     lipgloss.NewStyle().Foreground(lipgloss.Color("240")), // near black
	}

	periodicityDefault = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)
