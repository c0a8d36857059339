// Package style holds the lipgloss and pterm styles shared by the terminal
// renderer and the CLI.
package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	CodeStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

// Step styles
var (
	CopyStyle = lipgloss.NewStyle().
			Foreground(CopyColor).
			Bold(true)

	SymlinkStyle = lipgloss.NewStyle().
			Foreground(SymlinkColor).
			Bold(true)

	ArchiveStyle = lipgloss.NewStyle().
			Foreground(ArchiveColor).
			Bold(true)
)

// Operation indicators
var (
	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	PendingIndicator = MutedStyle.Render("○")
)

// StepStyle returns the style used for a step's label.
func StepStyle(step string) lipgloss.Style {
	switch step {
	case "link-alt-profile":
		return SymlinkStyle
	case "build-archive":
		return ArchiveStyle
	case "deploy-profile", "deploy-shell-rc":
		return CopyStyle
	default:
		return MutedStyle
	}
}

func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
