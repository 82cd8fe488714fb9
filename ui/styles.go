package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")

	// User message style
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	// Assistant message style
	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Timestamp and attribution style
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	BorderStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)
)

// ApplyColorScheme adjusts the palette for light terminals. The default
// palette targets dark backgrounds.
func ApplyColorScheme(scheme string) {
	if scheme != "light" {
		return
	}
	accentColor = lipgloss.Color("4")
	dimColor = lipgloss.Color("8")
	UserStyle = UserStyle.Foreground(lipgloss.Color("2"))
	AssistantStyle = AssistantStyle.Foreground(accentColor)
	DimStyle = DimStyle.Foreground(dimColor)
	StatusStyle = StatusStyle.Foreground(dimColor)
}

// FormatFooter renders alternating key/description pairs for screen
// footers. Usage: FormatFooter("j/k", "Navigate", "Enter", "Select").
func FormatFooter(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, pairs[i]+" "+AssistantStyle.Bold(true).Render(pairs[i+1]))
	}
	return HelpString(strings.Join(parts, "  "))
}

// HelpString dims a footer line.
func HelpString(s string) string {
	return DimStyle.Render(s)
}
