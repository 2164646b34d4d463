package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 28

// layout is the screen geometry shared by View and mouse handling.
type layout struct {
	contentW int
	contentH int
	sidebarW int
	mapX     int
	mapY     int
	mapW     int
	mapH     int
}

func (m Model) layout() layout {
	var lay layout
	if m.showSidebar {
		lay.sidebarW = sidebarWidth
	}
	headerHeight := 1
	footerHeight := 2
	lay.contentH = max(4, m.height-headerHeight-footerHeight)
	lay.contentW = max(10, m.width)
	lay.mapW = max(8, lay.contentW-lay.sidebarW-1)
	lay.mapH = lay.contentH
	lay.mapY = headerHeight
	if m.showSidebar {
		lay.mapX = lay.sidebarW + 1
	}
	return lay
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lay := m.layout()

	// Header
	header := titleStyle.Render(" slmap ─ Second Life marker map ")
	header = lipgloss.NewStyle().Width(lay.contentW).Padding(0).Render(header)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(lay.sidebarW).Render(m.l.View())
	}

	var mapView string
	switch {
	case m.showAttrs:
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(lay.mapW, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(max(1, min(lay.mapH-2, 20)))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, attrsBox)
	case m.pasteMode:
		m.ta.SetWidth(lay.mapW)
		m.ta.SetHeight(min(lay.mapH, 12))
		mapView = lipgloss.NewStyle().Width(lay.mapW).Height(lay.mapH).Render(m.ta.View())
	default:
		mapView = lipgloss.NewStyle().Width(lay.mapW).Height(lay.mapH).Render(m.renderMap(lay.mapW, lay.mapH))
	}

	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	// Footer / help
	help := m.renderHelp()
	status := dimStyle.Render(" " + m.status + " ")
	if strings.Contains(m.status, "error") {
		status = errorStyle.Render(" " + m.status + " ")
	}
	coords := ""
	if m.hovering {
		g := m.proj.Grid(m.hoverPixel)
		coords = dimStyle.Render(fmt.Sprintf("  px=%.0f,%.0f  grid=%d,%d  local=%.0f,%.0f  ",
			m.hoverPixel.Col, m.hoverPixel.Row, g.GridX, g.GridY, g.X, g.Y))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, status, help)
	spacerW := max(0, lay.contentW-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	footer := lipgloss.NewStyle().Width(lay.contentW).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(lay.contentW).Height(m.height).Render(ui)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"Tab markers",
		"i inspect",
		"o open",
		"y copy",
		"p paste",
		"a table",
		"1/2/3/l layers",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
