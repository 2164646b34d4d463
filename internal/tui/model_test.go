package tui

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slmap/internal/config"
	"slmap/internal/geom"
	"slmap/internal/httpclient"
	"slmap/internal/points"
	"slmap/internal/regions"
)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Config.Grid.CellSize == 0 {
		opts.Config = config.Default()
	}
	m, err := New(opts)
	require.NoError(t, err)
	return send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testMarker(name string, pos geom.Pixel) marker {
	return marker{pos: pos, popup: points.Popup{
		Name:   name,
		Region: "Nautilus",
		Link:   "https://maps.secondlife.com/secondlife/Nautilus/128/128/30",
		Record: points.Record{Region: "Nautilus", GridX: 1000, GridY: 1000, X: 128, Y: 128, Z: 30, Name: name},
	}}
}

func TestNew(t *testing.T) {
	t.Run("should reject an invalid frame", func(t *testing.T) {
		cfg := config.Default()
		cfg.Grid.MaxX = cfg.Grid.MinX
		_, err := New(Options{Config: cfg})
		assert.ErrorIs(t, err, geom.ErrInvalidFrame)
	})
	t.Run("should start at the configured zoom", func(t *testing.T) {
		cfg := config.Default()
		cfg.Zoom.Initial = 2
		m := newTestModel(t, Options{Config: cfg})
		assert.Equal(t, 2, m.zoom)
		assert.Equal(t, 4.0, m.scale())
	})
}

func TestZoom(t *testing.T) {
	t.Run("should stay inside configured levels", func(t *testing.T) {
		m := newTestModel(t, Options{})
		for range 10 {
			m = send(m, key("+"))
		}
		assert.Equal(t, 4, m.zoom)
		for range 20 {
			m = send(m, key("-"))
		}
		assert.Equal(t, -3, m.zoom)
	})
	t.Run("should reset view", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m = send(m, key("+"))
		m.offsetX = 7
		m = send(m, key("0"))
		assert.Equal(t, 0, m.zoom)
		assert.Equal(t, 0, m.offsetX)
	})
}

func TestLoadMessages(t *testing.T) {
	t.Run("should keep the background when markers fail to load", func(t *testing.T) {
		m := newTestModel(t, Options{})
		bg := &background{img: image.NewGray(image.Rect(0, 0, 4, 4)), frameW: 8192, frameH: 8192}
		m = send(m, backgroundLoadedMsg{bg: bg})
		m = send(m, markersLoadedMsg{err: points.ErrFetch})
		assert.Same(t, bg, m.bg)
		assert.Empty(t, m.markers)
		assert.Contains(t, m.status, "marker load error")
	})
	t.Run("should add loaded markers to the list", func(t *testing.T) {
		m := newTestModel(t, Options{})
		ms := []marker{testMarker("Alpha", geom.Pixel{Row: 10, Col: 10}), testMarker("Beta", geom.Pixel{Row: 20, Col: 20})}
		m = send(m, markersLoadedMsg{markers: ms, result: points.Result{Added: 2, Skipped: []points.Skipped{{Index: 2, Reason: "bad"}}}})
		assert.Len(t, m.markers, 2)
		assert.Len(t, m.l.Items(), 2)
		assert.Equal(t, "loaded 2 markers, 1 skipped", m.status)
	})
	t.Run("should report background errors", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m = send(m, backgroundLoadedMsg{err: errors.New("boom")})
		assert.Nil(t, m.bg)
		assert.Equal(t, "background error: boom", m.status)
	})
}

func TestLoadMarkersCmd(t *testing.T) {
	p := filepath.Join(t.TempDir(), "slurls.json")
	data := `[
		{"region":"Nautilus","grid_x":1000,"grid_y":1000,"x":128,"y":128,"z":30,"name":"Alpha"},
		{"region":"Nautilus","grid_x":1000,"name":"Broken"}
	]`
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	proj, err := geom.NewProjection(config.Default().Frame())
	require.NoError(t, err)
	msg := loadMarkersCmd(points.NewLoader(proj, points.FileSource{Path: p}))()
	got, ok := msg.(markersLoadedMsg)
	require.True(t, ok)
	require.NoError(t, got.err)
	require.Len(t, got.markers, 1)
	assert.Equal(t, "Alpha", got.markers[0].popup.Name)
	assert.InDelta(t, 4136.96, got.markers[0].pos.Col, 1e-9)
	assert.Len(t, got.result.Skipped, 1)
}

func TestInspect(t *testing.T) {
	center := geom.Pixel{Row: 4096, Col: 4096}
	t.Run("should inspect the marker nearest the center", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m.markers = []marker{testMarker("Corner", geom.Pixel{}), testMarker("Middle", center)}
		m = send(m, key("i"))
		assert.Equal(t, 1, m.inspected)
		assert.Contains(t, m.inspectPopup, "Middle")
		assert.Contains(t, m.inspectPopup, "https://maps.secondlife.com/secondlife/Nautilus/128/128/30")
		m = send(m, key("esc"))
		assert.Equal(t, -1, m.inspected)
		assert.Empty(t, m.inspectPopup)
	})
	t.Run("should report when there are no markers", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m = send(m, key("i"))
		assert.Equal(t, "no marker nearby", m.status)
	})
	t.Run("should open and copy the inspected link", func(t *testing.T) {
		m := newTestModel(t, Options{})
		var opened, copied string
		m.openURL = func(s string) error { opened = s; return nil }
		m.copyText = func(s string) error { copied = s; return nil }
		m.markers = []marker{testMarker("Middle", center)}
		m = send(m, key("i"))
		_, cmd := m.Update(key("o"))
		require.NotNil(t, cmd)
		m = send(m, cmd())
		_, cmd = m.Update(key("y"))
		require.NotNil(t, cmd)
		m = send(m, cmd())
		assert.Equal(t, m.markers[0].popup.Link, opened)
		assert.Equal(t, m.markers[0].popup.Link, copied)
		assert.Equal(t, "copied "+copied, m.status)
	})
	t.Run("should not open without an inspected marker", func(t *testing.T) {
		m := newTestModel(t, Options{})
		_, cmd := m.Update(key("o"))
		assert.Nil(t, cmd)
	})
}

func TestSidebar(t *testing.T) {
	m := newTestModel(t, Options{})
	m = send(m, markersLoadedMsg{
		markers: []marker{testMarker("Far", geom.Pixel{Row: 1000, Col: 7000})},
		result:  points.Result{Added: 1},
	})
	m = send(m, key("tab"))
	require.True(t, m.showSidebar)
	m = send(m, key("enter"))
	assert.Equal(t, 0, m.inspected)
	lay := m.layout()
	mx, my := m.screenXYMicro(m.markers[0].pos, lay.mapW, lay.mapH)
	assert.InDelta(t, lay.mapW, mx, 2)
	assert.InDelta(t, lay.mapH*2, my, 4)
}

func TestHover(t *testing.T) {
	m := newTestModel(t, Options{})
	m.markers = []marker{testMarker("Middle", geom.Pixel{Row: 4096, Col: 4096})}
	lay := m.layout()
	mx, my := m.screenXYMicro(m.markers[0].pos, lay.mapW, lay.mapH)
	m = send(m, tea.MouseMsg{X: lay.mapX + mx/2, Y: lay.mapY + my/4, Action: tea.MouseActionMotion})
	assert.True(t, m.hovering)
	assert.Equal(t, 0, m.hoverMarker)
	assert.InDelta(t, 4096, m.hoverPixel.Col, 200)
	m = send(m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	assert.False(t, m.hovering)
	assert.Equal(t, -1, m.hoverMarker)
}

func TestLayers(t *testing.T) {
	m := newTestModel(t, Options{})
	m = send(m, key("1"))
	assert.False(t, m.showMarkers)
	m = send(m, key("l"))
	assert.True(t, m.showMarkers)
	assert.True(t, m.showBackground)
	m = send(m, key("l"))
	assert.False(t, m.showMarkers)
	assert.False(t, m.showBackground)
}

func TestAttrs(t *testing.T) {
	t.Run("should not open an empty table", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m = send(m, key("a"))
		assert.False(t, m.showAttrs)
		assert.Equal(t, "no markers loaded", m.status)
	})
	t.Run("should list markers and focus the selected one", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m.markers = []marker{testMarker("Alpha", geom.Pixel{Row: 4096, Col: 4096})}
		m = send(m, key("a"))
		require.True(t, m.showAttrs)
		require.Len(t, m.tbl.Rows(), 1)
		assert.Equal(t, "Alpha", m.tbl.Rows()[0][1])
		m = send(m, key("enter"))
		assert.False(t, m.showAttrs)
		assert.Equal(t, 0, m.inspected)
	})
}

func TestPaste(t *testing.T) {
	t.Run("should be unavailable without resolver", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m = send(m, key("p"))
		assert.False(t, m.pasteMode)
	})
	t.Run("should resolve pasted SLURLs into markers", func(t *testing.T) {
		cache, err := regions.OpenCache("")
		require.NoError(t, err)
		defer cache.Close()
		require.NoError(t, cache.Put("Nautilus", regions.Coords{X: 1000, Y: 1000}))
		r := regions.NewResolver(httpclient.New(httpclient.Options{}), cache)
		m := newTestModel(t, Options{Resolver: r})
		m = send(m, key("p"))
		require.True(t, m.pasteMode)
		m.ta.SetValue("Dock | http://maps.secondlife.com/secondlife/Nautilus/10/20/30")
		m2, cmd := m.Update(key("enter"))
		m = m2.(Model)
		require.NotNil(t, cmd)
		assert.False(t, m.pasteMode)
		m = send(m, cmd())
		require.Len(t, m.markers, 1)
		assert.Equal(t, "Dock", m.markers[0].popup.Name)
		assert.Equal(t, 0, m.inspected)
		assert.Equal(t, "https://maps.secondlife.com/secondlife/Nautilus/10/20/30", m.markers[0].popup.Link)
	})
}

func TestParsePaste(t *testing.T) {
	t.Run("should accept named and bare SLURLs", func(t *testing.T) {
		got, err := parsePaste("Dock | http://maps.secondlife.com/secondlife/Nautilus/10/20/30\n\n  https://maps.secondlife.com/secondlife/Bay%20City/1/2/3  ")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Dock", got[0].name)
		assert.Equal(t, "Nautilus", got[0].loc.Region)
		assert.Equal(t, "Bay City", got[1].name)
	})
	t.Run("should name the bad line", func(t *testing.T) {
		_, err := parsePaste("http://maps.secondlife.com/secondlife/A/1/2/3\nnot a slurl")
		assert.ErrorContains(t, err, "line 2")
	})
	t.Run("should reject empty input", func(t *testing.T) {
		_, err := parsePaste(" \n ")
		assert.Error(t, err)
	})
}

func TestRenderMap(t *testing.T) {
	t.Run("should draw marker glyphs", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m.markers = []marker{testMarker("Middle", geom.Pixel{Row: 4096, Col: 4096})}
		out := m.renderMap(20, 10)
		assert.Contains(t, out, markerGlyph)
		assert.Len(t, strings.Split(out, "\n"), 10)
	})
	t.Run("should skip markers off the canvas", func(t *testing.T) {
		m := newTestModel(t, Options{})
		m.markers = []marker{testMarker("Away", geom.Pixel{Row: -5000, Col: 20000})}
		assert.NotContains(t, m.renderMap(20, 10), markerGlyph)
	})
	t.Run("should draw the background by threshold", func(t *testing.T) {
		m := newTestModel(t, Options{})
		img := image.NewGray(image.Rect(0, 0, 2, 2))
		for i := range img.Pix {
			img.Pix[i] = 255
		}
		m.bg = &background{img: img, frameW: 8192, frameH: 8192}
		assert.Contains(t, m.renderMap(10, 5), "⣿")
		m = send(m, key("2"))
		assert.NotContains(t, m.renderMap(10, 5), "⣿")
	})
	t.Run("should render the full view", func(t *testing.T) {
		m := newTestModel(t, Options{})
		assert.Contains(t, m.View(), "slmap")
	})
}

func TestBraille(t *testing.T) {
	b := newBrailleBuf(2, 1)
	b.setPixel(0, 0)
	b.setPixel(3, 3)
	b.setPixel(-1, 0)
	b.setPixel(4, 0)
	assert.Equal(t, []string{"⠁⢀"}, b.toLines())
}

func TestBackground(t *testing.T) {
	t.Run("should load and sample an image", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for y := range 4 {
			for x := range 4 {
				c := color.RGBA{A: 255}
				if x >= 2 {
					c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
				}
				img.Set(x, y, c)
			}
		}
		p := filepath.Join(t.TempDir(), "map.png")
		f, err := os.Create(p)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())

		bg, err := loadBackground(p, geom.Frame{Width: 8192, Height: 8192})
		require.NoError(t, err)
		v, ok := bg.luminance(geom.Pixel{Row: 100, Col: 100})
		assert.True(t, ok)
		assert.Less(t, v, uint8(10))
		v, ok = bg.luminance(geom.Pixel{Row: 100, Col: 8000})
		assert.True(t, ok)
		assert.Greater(t, v, uint8(240))
		_, ok = bg.luminance(geom.Pixel{Row: -1, Col: 0})
		assert.False(t, ok)
	})
	t.Run("should fail for a missing file", func(t *testing.T) {
		_, err := loadBackground(filepath.Join(t.TempDir(), "nope.png"), geom.Frame{Width: 1, Height: 1})
		assert.Error(t, err)
	})
	t.Run("should keep aspect when downsampling", func(t *testing.T) {
		w, h := downsampledSize(8192, 4096, 1024)
		assert.Equal(t, 1024, w)
		assert.Equal(t, 512, h)
		w, h = downsampledSize(100, 50, 1024)
		assert.Equal(t, 100, w)
		assert.Equal(t, 50, h)
	})
}
