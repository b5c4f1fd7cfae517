// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ingestkit/ingestkit/internal/analysis"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6B7280")).
				Padding(0, 1)

	errorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	noticeStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#10B981"))
	subtleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	severityStyles = map[analysis.Severity]lipgloss.Style{
		analysis.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		analysis.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		analysis.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		analysis.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
	}
)

func renderStatus(m analysis.StatusMessage) string {
	style, ok := severityStyles[m.Severity]
	if !ok {
		style = severityStyles[analysis.SeverityInfo]
	}
	return style.Render(m.Text)
}
