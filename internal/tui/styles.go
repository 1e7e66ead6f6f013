package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/chukwudi34/task-manager/internal/model"
)

// ------- minimal styling helpers (Lip Gloss) -------
var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	badgeProStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	badgeFreeStyle = lipgloss.NewStyle().Faint(true)
	bannerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// statusStyle picks the label color for a task status.
func statusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusCompleted:
		return successStyle
	case model.StatusInProgress:
		return progressStyle
	default:
		return pendingStyle
	}
}

func panelString(inner string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(inner)
}
