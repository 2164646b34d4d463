package tui

import (
	"fmt"
	"log/slog"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.l.SetSize(sidebarWidth-2, m.layout().contentH-2)
		return m, nil
	case backgroundLoadedMsg:
		if msg.err != nil {
			slog.Error("Background load failed", "error", msg.err)
			m.status = "background error: " + msg.err.Error()
			return m, nil
		}
		m.bg = msg.bg
		return m, nil
	case markersLoadedMsg:
		if msg.err != nil {
			// background stays; markers are simply absent
			slog.Error("Marker load failed", "error", msg.err)
			m.status = "marker load error: " + msg.err.Error()
			return m, nil
		}
		m.addMarkers(msg.markers)
		m.status = "loaded " + markerCount(msg.result.Added)
		if n := len(msg.result.Skipped); n > 0 {
			m.status += fmt.Sprintf(", %s skipped", humanize.Comma(int64(n)))
		}
		return m, nil
	case pastedMsg:
		if msg.err != nil {
			m.status = "paste error: " + msg.err.Error()
			return m, nil
		}
		m.addMarkers(msg.markers)
		m.status = "added " + markerCount(len(msg.markers))
		if len(msg.markers) > 0 {
			m.focusMarker(len(m.markers) - 1)
		}
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		if m.showAttrs {
			switch msg.String() {
			case "up", "down", "pgup", "pgdown", "home", "end", "k", "j":
				var cmd tea.Cmd
				m.tbl, cmd = m.tbl.Update(msg)
				return m, cmd
			case "enter":
				i := m.tbl.Cursor()
				m.showAttrs = false
				m.focusMarker(i)
				return m, nil
			}
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			m.inspectPopup = ""
			m.inspected = -1
			m.showAttrs = false
		case "1":
			m.showMarkers = !m.showMarkers
			m.status = fmt.Sprintf("markers: %v", m.showMarkers)
		case "2":
			m.showBackground = !m.showBackground
			m.status = fmt.Sprintf("background: %v", m.showBackground)
		case "3":
			m.showGrid = !m.showGrid
			m.status = fmt.Sprintf("region grid: %v", m.showGrid)
		case "l":
			all := m.showMarkers && m.showBackground
			m.showMarkers = !all
			m.showBackground = !all
			m.status = fmt.Sprintf("layers: markers=%v background=%v", m.showMarkers, m.showBackground)
		case "+", "=":
			m.setZoom(m.zoom + 1)
		case "-", "_":
			m.setZoom(m.zoom - 1)
		case "0":
			m.zoom = m.cfg.Zoom.Initial
			m.offsetX, m.offsetY = 0, 0
			m.status = "view reset"
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.l.SetSize(sidebarWidth-2, m.layout().contentH-2)
			}
		case "p":
			if m.resolver == nil {
				m.status = "paste unavailable: no region resolver"
				break
			}
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			return m, m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrs()
			}
		case "i":
			if i, ok := m.inspectNearest(); ok {
				m.inspect(i)
			} else {
				m.inspected = -1
				m.inspectPopup = "no marker nearby"
				m.status = m.inspectPopup
			}
		case "o":
			if mk, ok := m.current(); ok {
				return m, openURLCmd(m.openURL, mk.popup.Link)
			}
			m.status = "nothing to open: inspect a marker first"
		case "y":
			if mk, ok := m.current(); ok {
				return m, copyCmd(m.copyText, mk.popup.Link)
			}
			m.status = "nothing to copy: inspect a marker first"
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(markerItem); ok {
					m.focusMarker(it.index)
				}
				return m, nil
			}
		case "up":
			m.offsetY -= 1
		case "down":
			m.offsetY += 1
		case "left":
			m.offsetX -= 2
		case "right":
			m.offsetX += 2
		}
	case tea.MouseMsg:
		m.trackHover(msg.X, msg.Y)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		m.status = "view mode"
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.ta.Value())
		if text == "" {
			m.status = "paste: empty"
			return m, nil
		}
		entries, err := parsePaste(text)
		if err != nil {
			m.status = "paste error: " + err.Error()
			return m, nil
		}
		m.pasteMode = false
		m.ta.Blur()
		m.status = fmt.Sprintf("resolving %d SLURLs", len(entries))
		return m, resolvePasteCmd(m.resolver, m.proj, entries)
	case "ctrl+j":
		// newline inside the paste box
		m.ta.InsertString("\n")
		return m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m *Model) setZoom(z int) {
	m.zoom = clamp(z, m.cfg.Zoom.Min, m.cfg.Zoom.Max)
	m.status = fmt.Sprintf("zoom: %gx", m.scale())
}

// current returns the inspected marker.
func (m Model) current() (marker, bool) {
	if m.inspected < 0 || m.inspected >= len(m.markers) {
		return marker{}, false
	}
	return m.markers[m.inspected], true
}

// trackHover records the map cell under the mouse and the marker near it.
func (m *Model) trackHover(x, y int) {
	lay := m.layout()
	if x < lay.mapX || x >= lay.mapX+lay.mapW || y < lay.mapY || y >= lay.mapY+lay.mapH {
		m.hovering = false
		m.hoverMarker = -1
		return
	}
	m.hovering = true
	m.hoverCellX = x - lay.mapX
	m.hoverCellY = y - lay.mapY
	m.hoverPixel = m.cellToPixel(m.hoverCellX, m.hoverCellY, lay.mapW, lay.mapH)
	m.hoverMarker = m.nearestMarker(m.hoverCellX*2, m.hoverCellY*4, lay.mapW, lay.mapH, hoverRadius)
}
