package tui

import (
	"fmt"

	list "github.com/charmbracelet/bubbles/list"
	"github.com/dustin/go-humanize"
)

type markerItem struct {
	title, desc string
	index       int
}

func (i markerItem) Title() string       { return i.title }
func (i markerItem) Description() string { return i.desc }
func (i markerItem) FilterValue() string { return i.title + " " + i.desc }

// refreshList rebuilds the sidebar items from the placed markers.
func (m *Model) refreshList() {
	items := make([]list.Item, 0, len(m.markers))
	for i, mk := range m.markers {
		r := mk.popup.Record
		items = append(items, markerItem{
			title: mk.popup.Name,
			desc:  fmt.Sprintf("%s (%d, %d)", mk.popup.Region, r.GridX, r.GridY),
			index: i,
		})
	}
	m.l.SetItems(items)
}

// addMarkers takes over markers produced by a load command.
func (m *Model) addMarkers(ms []marker) {
	m.markers = append(m.markers, ms...)
	m.refreshList()
	if m.showAttrs {
		m.refreshAttrs()
	}
}

// focusMarker centers the view on marker i and opens its popup.
func (m *Model) focusMarker(i int) {
	if i < 0 || i >= len(m.markers) {
		return
	}
	lay := m.layout()
	// recenter with no pan, then shift by the marker's distance from the middle
	m.offsetX, m.offsetY = 0, 0
	mx, my := m.screenXYMicro(m.markers[i].pos, lay.mapW, lay.mapH)
	m.offsetX = (lay.mapW - mx) / 2
	m.offsetY = (lay.mapH*2 - my) / 4
	m.inspect(i)
}

func (m *Model) inspect(i int) {
	m.inspected = i
	m.inspectPopup = m.popupText(m.markers[i])
	m.status = "inspect: " + m.markers[i].popup.Name
}

func markerCount(n int) string {
	if n == 1 {
		return "1 marker"
	}
	return humanize.Comma(int64(n)) + " markers"
}
