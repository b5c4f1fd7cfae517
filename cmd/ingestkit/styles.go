// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ingestkit/ingestkit/internal/analysis"
)

// Color palette shared by every command.
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorHighlight = lipgloss.Color("#3B82F6") // Blue
	ColorVerbose   = lipgloss.Color("#9CA3AF") // Light gray
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	VerboseStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)

	VerboseHighlightStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight)
)

// severityStyle picks the style used to print a status message.
func severityStyle(sev analysis.Severity) lipgloss.Style {
	switch sev {
	case analysis.SeveritySuccess:
		return SuccessStyle
	case analysis.SeverityWarning:
		return WarningStyle
	case analysis.SeverityError:
		return ErrorStyle
	default:
		return VerboseStyle
	}
}
