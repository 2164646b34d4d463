package points_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slmap/internal/geom"
	"slmap/internal/httpclient"
	"slmap/internal/points"
)

type addedMarker struct {
	pos   geom.Pixel
	popup points.Popup
}

// recorder is a Surface which remembers every call.
type recorder struct {
	markers []addedMarker
}

func (r *recorder) AddMarker(pos geom.Pixel, p points.Popup) {
	r.markers = append(r.markers, addedMarker{pos: pos, popup: p})
}

func newProjection(t *testing.T) geom.Projection {
	t.Helper()
	p, err := geom.NewProjection(geom.Frame{
		Width:    8192,
		Height:   8192,
		Grid:     geom.GridBox{MinX: 950, MinY: 950, MaxX: 1050, MaxY: 1050},
		CellSize: 256,
	})
	require.NoError(t, err)
	return p
}

func TestLoaderHTTP(t *testing.T) {
	const url = "https://www.example.com/slurls.json"
	proj := newProjection(t)
	client := httpclient.New(httpclient.Options{RetryMax: 0})
	httpmock.ActivateNonDefault(client.HTTPClient)
	defer httpmock.DeactivateAndReset()
	ctx := context.Background()

	t.Run("should add marker with transformed position and link", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder("GET", url, httpmock.NewStringResponder(http.StatusOK,
			`[{"region":"Nautilus","grid_x":1000,"grid_y":1000,"x":128,"y":128,"z":30,"name":"Test"}]`))
		l := points.NewLoader(proj, points.NewSource(url, client))
		var s recorder
		// when
		res, err := l.Load(ctx, &s)
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, 1, res.Added)
			assert.Empty(t, res.Skipped)
			if assert.Len(t, s.markers, 1) {
				m := s.markers[0]
				assert.Equal(t, proj.Pixel(1000, 1000, 128, 128), m.pos)
				assert.Equal(t, "https://maps.secondlife.com/secondlife/Nautilus/128/128/30", m.popup.Link)
				assert.Equal(t, "Test", m.popup.Name)
				assert.Equal(t, "Nautilus", m.popup.Region)
			}
			assert.Equal(t, 1, httpmock.GetTotalCallCount())
		}
	})
	t.Run("should add nothing for zero records", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder("GET", url, httpmock.NewStringResponder(http.StatusOK, `[]`))
		l := points.NewLoader(proj, points.NewSource(url, client))
		var s recorder
		// when
		res, err := l.Load(ctx, &s)
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, 0, res.Added)
			assert.Empty(t, s.markers)
		}
	})
	t.Run("should keep resource order and skip bad records", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder("GET", url, httpmock.NewStringResponder(http.StatusOK, `[
			{"region":"A","grid_x":1000,"grid_y":1000,"x":1,"y":1,"z":1,"name":"first"},
			{"region":"B","x":1,"y":1,"z":1,"name":"broken"},
			{"region":"C","grid_x":1001,"grid_y":1000,"x":1,"y":1,"z":1,"name":"second"}
		]`))
		l := points.NewLoader(proj, points.NewSource(url, client))
		var s recorder
		// when
		res, err := l.Load(ctx, &s)
		// then
		if assert.NoError(t, err) {
			assert.Equal(t, 2, res.Added)
			if assert.Len(t, res.Skipped, 1) {
				assert.Equal(t, 1, res.Skipped[0].Index)
			}
			if assert.Len(t, s.markers, 2) {
				assert.Equal(t, "first", s.markers[0].popup.Name)
				assert.Equal(t, "second", s.markers[1].popup.Name)
			}
		}
	})
	t.Run("should add no marker on malformed JSON", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder("GET", url, httpmock.NewStringResponder(http.StatusOK, `[{"region":`))
		l := points.NewLoader(proj, points.NewSource(url, client))
		var s recorder
		// when
		_, err := l.Load(ctx, &s)
		// then
		assert.ErrorIs(t, err, points.ErrParse)
		assert.Empty(t, s.markers)
	})
	t.Run("should report HTTP errors", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder("GET", url, httpmock.NewStringResponder(http.StatusNotFound, "gone"))
		l := points.NewLoader(proj, points.NewSource(url, client))
		var s recorder
		// when
		_, err := l.Load(ctx, &s)
		// then
		assert.ErrorIs(t, err, points.ErrFetch)
		assert.Empty(t, s.markers)
	})
	t.Run("should report network errors", func(t *testing.T) {
		// given
		httpmock.Reset()
		httpmock.RegisterResponder("GET", url, httpmock.NewErrorResponder(errors.New("connection refused")))
		l := points.NewLoader(proj, points.NewSource(url, client))
		var s recorder
		// when
		_, err := l.Load(ctx, &s)
		// then
		assert.ErrorIs(t, err, points.ErrFetch)
		assert.Empty(t, s.markers)
	})
}

func TestLoaderFile(t *testing.T) {
	proj := newProjection(t)
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("should load JSON file", func(t *testing.T) {
		p := filepath.Join(dir, "slurls.json")
		require.NoError(t, os.WriteFile(p, []byte(`[{"region":"Nautilus City","grid_x":990,"grid_y":1020,"x":5,"y":6,"z":7,"name":"Pier"}]`), 0o644))
		l := points.NewLoader(proj, points.NewSource(p, nil))
		var s recorder
		res, err := l.Load(ctx, &s)
		if assert.NoError(t, err) {
			assert.Equal(t, 1, res.Added)
			assert.Equal(t, "https://maps.secondlife.com/secondlife/Nautilus%20City/5/6/7", s.markers[0].popup.Link)
		}
	})
	t.Run("should load CSV file", func(t *testing.T) {
		p := filepath.Join(dir, "slurls.csv")
		require.NoError(t, os.WriteFile(p, []byte("region,grid_x,grid_y,x,y,z,name\nNautilus,1000,1000,128,128,30,Test\n"), 0o644))
		l := points.NewLoader(proj, points.NewSource(p, nil))
		var s recorder
		res, err := l.Load(ctx, &s)
		if assert.NoError(t, err) {
			assert.Equal(t, 1, res.Added)
			assert.Equal(t, proj.Pixel(1000, 1000, 128, 128), s.markers[0].pos)
		}
	})
	t.Run("should report missing file", func(t *testing.T) {
		l := points.NewLoader(proj, points.NewSource(filepath.Join(dir, "missing.json"), nil))
		var s recorder
		_, err := l.Load(ctx, &s)
		assert.ErrorIs(t, err, points.ErrFetch)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestNewSource(t *testing.T) {
	assert.IsType(t, points.HTTPSource{}, points.NewSource("HTTPS://example.com/a.json", nil))
	assert.IsType(t, points.FileSource{}, points.NewSource("slurls.json", nil))
}
