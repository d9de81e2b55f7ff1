package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	area, contentWidth, contentHeight := m.layout()

	// Update list size with accurate content height when sidebar visible
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, contentHeight-2)
	}

	// Header
	title := " candedit ─ CANDE deck editor "
	if m.deck != nil {
		title += "─ " + filepath.Base(m.selPath) + " "
		if m.dirty {
			title += "[modified] "
		}
	}
	header := lipgloss.NewStyle().Width(contentWidth).Padding(0).Render(titleStyle.Render(title))

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	}

	var mapView string
	if m.showTable {
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 2
		}
		maxW := min(area.w, max(32, colW+4))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(area.h-4, 20))
		tableBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(area.w, area.h, lipgloss.Center, lipgloss.Center, tableBox)
	} else {
		mapView = lipgloss.NewStyle().Width(area.w).Height(area.h).Render(m.renderMeshMap(area.w, area.h))
	}

	// info popup replaces the sidebar column while open
	popup := ""
	if m.infoPopup != "" && !m.showTable {
		maxPopupW := max(20, min(52, contentWidth/2))
		popup = boxStyle.MaxWidth(maxPopupW).Render(m.infoPopup)
	}

	var body string
	switch {
	case popup != "":
		body = lipgloss.Place(contentWidth, contentHeight, lipgloss.Left, lipgloss.Center, popup)
	case m.showSidebar:
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	default:
		body = mapView
	}

	footer := lipgloss.JoinVertical(lipgloss.Left, m.renderStatusLine(contentWidth), m.renderHelp())
	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// renderStatusLine shows the prompt while typing, otherwise the status with
// the cursor position on the right.
func (m Model) renderStatusLine(width int) string {
	if m.prompting {
		return lipgloss.NewStyle().Width(width).Render(m.input.View())
	}
	style := dimStyle
	if strings.HasPrefix(m.status, "error:") {
		style = errStyle
	}
	left := style.Render(" " + m.status + " ")
	coords := ""
	if m.hovering {
		coords = fmt.Sprintf("x=%.3f y=%.3f", m.hoverX, m.hoverY)
		if m.hoverElem.ok && m.deck != nil {
			if e, ok := m.deck.Model.Element(m.hoverElem.id); ok {
				coords += fmt.Sprintf("  #%d %s mat=%d step=%d", e.ID, e.Kind(), e.Material, e.Step)
			}
		}
		coords = dimStyle.Render("  " + coords + "  ")
	}
	spacerW := max(0, width-lipgloss.Width(left)-lipgloss.Width(coords))
	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, strings.Repeat(" ", spacerW), coords)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"click/drag select",
		"↑↓←→ pan",
		"+/- zoom",
		"1/2/3 layers",
		": command",
		"t table",
		"i info",
		"w save",
		"Tab decks",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
