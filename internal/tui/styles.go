package tui

import (
	"github.com/charmbracelet/lipgloss"

	"candedit/internal/diagram"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")
	errorFg   = lipgloss.Color("#EF4444")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
	errStyle   = lipgloss.NewStyle().Foreground(errorFg)

	// mesh layers
	soilStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	ifaceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#38BDF8"))
	beamStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	hoverStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	selectedStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dragStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
)

func materialColor(n int) lipgloss.Color {
	return lipgloss.Color(diagram.Hex(n))
}
