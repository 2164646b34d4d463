package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"slmap/internal/geom"
	"slmap/internal/points"
	"slmap/internal/regions"
	"slmap/internal/slurl"
)

type backgroundLoadedMsg struct {
	bg  *background
	err error
}

type markersLoadedMsg struct {
	markers []marker
	result  points.Result
	err     error
}

type pastedMsg struct {
	markers []marker
	err     error
}

type statusMsg string

// layer collects markers off the UI goroutine; the model takes them over in Update.
type layer struct {
	markers []marker
}

func (l *layer) AddMarker(pos geom.Pixel, p points.Popup) {
	l.markers = append(l.markers, marker{pos: pos, popup: p})
}

func loadBackgroundCmd(path string, f geom.Frame) tea.Cmd {
	return func() tea.Msg {
		bg, err := loadBackground(path, f)
		return backgroundLoadedMsg{bg: bg, err: err}
	}
}

func loadMarkersCmd(l *points.Loader) tea.Cmd {
	return func() tea.Msg {
		var ly layer
		res, err := l.Load(context.Background(), &ly)
		return markersLoadedMsg{markers: ly.markers, result: res, err: err}
	}
}

// pasteEntry is one line of paste input.
type pasteEntry struct {
	name string
	loc  slurl.Location
}

// parsePaste reads "Name | SLURL" or bare SLURL lines; a bare SLURL is named after its region.
func parsePaste(text string) ([]pasteEntry, error) {
	var entries []pasteEntry
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, raw, found := strings.Cut(line, "|")
		if !found {
			raw, name = name, ""
		}
		loc, err := slurl.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = loc.Region
		}
		entries = append(entries, pasteEntry{name: name, loc: loc})
	}
	if len(entries) == 0 {
		return nil, errors.New("no SLURLs")
	}
	return entries, nil
}

func resolvePasteCmd(r *regions.Resolver, proj geom.Projection, entries []pasteEntry) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		l := points.NewLoader(proj, nil)
		var ly layer
		for _, e := range entries {
			c, err := r.Resolve(ctx, e.loc.Region)
			if err != nil {
				return pastedMsg{err: err}
			}
			l.Place(&ly, points.Record{
				Region: e.loc.Region,
				GridX:  c.X,
				GridY:  c.Y,
				X:      float64(e.loc.X),
				Y:      float64(e.loc.Y),
				Z:      float64(e.loc.Z),
				Name:   e.name,
			})
		}
		return pastedMsg{markers: ly.markers}
	}
}

func openURLCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if err := open(url); err != nil {
			return statusMsg("open error: " + err.Error())
		}
		return statusMsg("opened " + url)
	}
}

func copyCmd(copyText func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		if err := copyText(text); err != nil {
			return statusMsg("copy error: " + err.Error())
		}
		return statusMsg("copied " + text)
	}
}
