package tui

import (
	"fmt"
	"strconv"

	table "github.com/charmbracelet/bubbles/table"
	"github.com/samber/lo"
)

var attrColumns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "name", Width: 24},
	{Title: "region", Width: 18},
	{Title: "grid", Width: 11},
	{Title: "local", Width: 14},
	{Title: "marker", Width: 10},
}

// refreshAttrs rebuilds the marker table.
func (m *Model) refreshAttrs() {
	if len(m.markers) == 0 {
		m.showAttrs = false
		m.status = "no markers loaded"
		return
	}
	rows := lo.Map(m.markers, func(mk marker, i int) table.Row {
		r := mk.popup.Record
		return table.Row{
			strconv.Itoa(i + 1),
			mk.popup.Name,
			mk.popup.Region,
			fmt.Sprintf("%d,%d", r.GridX, r.GridY),
			fmt.Sprintf("%g,%g,%g", r.X, r.Y, r.Z),
			mk.popup.Marker,
		}
	})
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(attrColumns)
	m.tbl.SetRows(rows)
}
