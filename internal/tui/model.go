package tui

import (
	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atotto/clipboard"
	"github.com/toqueteos/webbrowser"

	"slmap/internal/config"
	"slmap/internal/geom"
	"slmap/internal/points"
	"slmap/internal/regions"
)

// marker is a placed point of interest.
type marker struct {
	pos   geom.Pixel
	popup points.Popup
}

// Options wire the model to its data sources.
type Options struct {
	Config config.Config
	Loader *points.Loader
	// Resolver enables pasting SLURLs. May be nil.
	Resolver *regions.Resolver
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	zoom    int // power of two relative to the fitted view
	offsetX int
	offsetY int

	status string

	// marker list
	l list.Model

	cfg      config.Config
	proj     geom.Projection
	loader   *points.Loader
	resolver *regions.Resolver

	// Data
	bg      *background
	markers []marker

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// layer visibility
	showMarkers    bool
	showBackground bool
	showGrid       bool

	// inspect popup
	inspectPopup string
	inspected    int

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverMarker int
	hoverPixel  geom.Pixel

	// marker table
	showAttrs bool
	tbl       table.Model

	openURL  func(string) error
	copyText func(string) error
}

func New(opts Options) (Model, error) {
	proj, err := geom.NewProjection(opts.Config.Frame())
	if err != nil {
		return Model{}, err
	}
	m := Model{
		showSidebar:    false,
		helpVisible:    true,
		zoom:           opts.Config.Zoom.Initial,
		status:         "slmap ready",
		cfg:            opts.Config,
		proj:           proj,
		loader:         opts.Loader,
		resolver:       opts.Resolver,
		showMarkers:    true,
		showBackground: true,
		inspected:      -1,
		hoverMarker:    -1,
		openURL:        webbrowser.Open,
		copyText:       clipboard.WriteAll,
	}
	// list setup
	d := list.NewDefaultDelegate()
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Markers"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste SLURLs, one per line, optionally as \"Name | SLURL\". Enter to add; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	return m, nil
}

// Init starts the background and marker loads independently.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadBackgroundCmd(m.cfg.Image.Path, m.proj.Frame())}
	if m.loader != nil {
		cmds = append(cmds, loadMarkersCmd(m.loader))
	}
	return tea.Batch(cmds...)
}
