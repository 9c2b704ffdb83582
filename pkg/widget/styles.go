package widget

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Base colors
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	errorColor   = lipgloss.Color("196")

	// Collapsed badge
	badgeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	remainingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Bold(true)
	completedStyle = lipgloss.NewStyle().Foreground(successColor)

	// Expanded panel
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)

	// Item rows
	doneTextStyle    = lipgloss.NewStyle().Foreground(mutedColor).Strikethrough(true)
	busyMarkerStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))

	// Footer and notices
	helpStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	noticeStyle  = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(primaryColor)
)
