package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	landFg    = lipgloss.Color("#4B6B52")
	markerFg  = lipgloss.Color("#38BDF8")
	hoverFg   = lipgloss.Color("#FFA500")
	errorFg   = lipgloss.Color("#F87171")
	borderCol = lipgloss.Color("#243141")

	appStyle      = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(baseDimFg)
	landStyle     = lipgloss.NewStyle().Foreground(landFg)
	markerStyle   = lipgloss.NewStyle().Foreground(markerFg).Bold(true)
	hoverStyle    = lipgloss.NewStyle().Foreground(hoverFg).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(errorFg)
)

const (
	markerGlyph   = "●"
	hoverGlyph    = "◯"
	selectedGlyph = "◉"
)
