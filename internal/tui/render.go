package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"slmap/internal/geom"
)

// hoverRadius is the squared micro-pixel distance within which a marker counts as hovered.
const hoverRadius = 6 * 6

// minGridStep is the smallest region cell width, in micro-pixels, that gets outlined.
const minGridStep = 8

// scale is the magnification of the fitted view.
func (m Model) scale() float64 {
	return math.Ldexp(1, m.zoom)
}

// screenXYMicro maps a frame pixel into a 2x4 microgrid per cell for braille rendering.
func (m Model) screenXYMicro(p geom.Pixel, w, h int) (int, int) {
	f := m.proj.Frame()
	nx := p.Col / float64(f.Width)
	ny := p.Row / float64(f.Height)
	s := m.scale()
	zx := 0.5 + (nx-0.5)*s
	zy := 0.5 + (ny-0.5)*s
	sx := int(math.Floor(zx*float64(w*2-1))) + m.offsetX*2
	sy := int(math.Floor(zy*float64(h*4-1))) + m.offsetY*4
	return sx, sy
}

// microToPixel converts a microgrid coordinate back to a frame pixel using zoom and pan.
func (m Model) microToPixel(mx, my, w, h int) geom.Pixel {
	f := m.proj.Frame()
	s := m.scale()
	zx := float64(mx-m.offsetX*2) / float64(w*2-1)
	zy := float64(my-m.offsetY*4) / float64(h*4-1)
	nx := 0.5 + (zx-0.5)/s
	ny := 0.5 + (zy-0.5)/s
	return geom.Pixel{Row: ny * float64(f.Height), Col: nx * float64(f.Width)}
}

func (m Model) cellToPixel(cx, cy, w, h int) geom.Pixel {
	return m.microToPixel(cx*2, cy*4, w, h)
}

func (m Model) renderMap(w, h int) string {
	br := newBrailleBuf(w, h)
	if m.showBackground && m.bg != nil {
		thr := m.cfg.Image.Threshold
		for my := 0; my < h*4; my++ {
			for mx := 0; mx < w*2; mx++ {
				if v, ok := m.bg.luminance(m.microToPixel(mx, my, w, h)); ok && v >= thr {
					br.setPixel(mx, my)
				}
			}
		}
	}
	if m.showGrid {
		m.drawGrid(br, w, h)
	}

	// styled cells drawn over the canvas, per row
	over := make([]map[int]string, h)
	if m.showMarkers {
		for i, mk := range m.markers {
			mx, my := m.screenXYMicro(mk.pos, w, h)
			if mx < 0 || my < 0 {
				continue
			}
			cx, cy := mx/2, my/4
			if cx >= w || cy >= h {
				continue
			}
			if over[cy] == nil {
				over[cy] = map[int]string{}
			}
			switch {
			case i == m.inspected:
				over[cy][cx] = selectedStyle.Render(selectedGlyph)
			case i == m.hoverMarker:
				over[cy][cx] = hoverStyle.Render(hoverGlyph)
			default:
				if _, taken := over[cy][cx]; !taken {
					over[cy][cx] = markerStyle.Render(markerGlyph)
				}
			}
		}
	}

	var popup []string
	popupW := 0
	if m.inspectPopup != "" {
		maxPopupW := max(20, min(48, w/2))
		box := boxStyle.MaxWidth(maxPopupW).Render(m.inspectPopup)
		popup = strings.Split(box, "\n")
		popupW = lipgloss.Width(box)
		if popupW >= w || len(popup) > h {
			popup = nil
		}
	}
	top := max(0, (h-len(popup))/2)

	canvas := br.toLines()
	lines := make([]string, h)
	for y := 0; y < h; y++ {
		row := []rune(canvas[y])
		if i := y - top; popup != nil && i >= 0 && i < len(popup) {
			lines[y] = popup[i] + renderRow(row, over[y], popupW)
			continue
		}
		lines[y] = renderRow(row, over[y], 0)
	}
	return strings.Join(lines, "\n")
}

// drawGrid outlines region cells once they are far enough apart to read.
func (m Model) drawGrid(br *brailleBuf, w, h int) {
	g := m.proj.Frame().Grid
	x0, _ := m.screenXYMicro(m.proj.Pixel(g.MinX, g.MinY, 0, 0), w, h)
	x1, _ := m.screenXYMicro(m.proj.Pixel(g.MinX+1, g.MinY, 0, 0), w, h)
	if x1-x0 < minGridStep {
		return
	}
	for gx := g.MinX; gx <= g.MaxX; gx++ {
		ax, ay := m.screenXYMicro(m.proj.Pixel(gx, g.MinY, 0, 0), w, h)
		bx, by := m.screenXYMicro(m.proj.Pixel(gx, g.MaxY, 0, 0), w, h)
		if ax < 0 || ax >= w*2 {
			continue
		}
		br.drawLineMicro(ax, clamp(ay, -1, h*4), bx, clamp(by, -1, h*4))
	}
	for gy := g.MinY; gy <= g.MaxY; gy++ {
		ax, ay := m.screenXYMicro(m.proj.Pixel(g.MinX, gy, 0, 0), w, h)
		bx, by := m.screenXYMicro(m.proj.Pixel(g.MaxX, gy, 0, 0), w, h)
		if ay < 0 || ay >= h*4 {
			continue
		}
		br.drawLineMicro(clamp(ax, -1, w*2), ay, clamp(bx, -1, w*2), by)
	}
}

// renderRow draws canvas cells from column `from` on, replacing overlaid cells.
func renderRow(row []rune, over map[int]string, from int) string {
	var sb strings.Builder
	run := make([]rune, 0, len(row))
	flush := func() {
		if len(run) > 0 {
			sb.WriteString(landStyle.Render(string(run)))
			run = run[:0]
		}
	}
	for x := from; x < len(row); x++ {
		if s, ok := over[x]; ok {
			flush()
			sb.WriteString(s)
			continue
		}
		run = append(run, row[x])
	}
	flush()
	return sb.String()
}

// nearestMarker returns the index of the marker closest to a microgrid point,
// limited to a squared distance of limit when limit >= 0.
func (m Model) nearestMarker(mx, my, w, h, limit int) int {
	best, bestD := -1, math.MaxInt
	for i, mk := range m.markers {
		sx, sy := m.screenXYMicro(mk.pos, w, h)
		dx, dy := sx-mx, sy-my
		d := dx*dx + dy*dy
		if d < bestD {
			best, bestD = i, d
		}
	}
	if limit >= 0 && bestD > limit {
		return -1
	}
	return best
}

// inspectNearest finds the marker closest to the viewport center.
func (m Model) inspectNearest() (int, bool) {
	lay := m.layout()
	i := m.nearestMarker(lay.mapW, lay.mapH*2, lay.mapW, lay.mapH, -1)
	return i, i >= 0
}

func (m Model) popupText(mk marker) string {
	p := mk.popup
	r := p.Record
	lines := []string{
		titleStyle.Render(p.Name),
		fmt.Sprintf("region: %s (%d, %d)", p.Region, r.GridX, r.GridY),
		fmt.Sprintf("local: %g, %g, %g", r.X, r.Y, r.Z),
	}
	if p.Marker != "" {
		lines = append(lines, "marker: "+p.Marker)
	}
	lines = append(lines, p.Link, dimStyle.Render("o open  y copy  esc close"))
	return strings.Join(lines, "\n")
}
