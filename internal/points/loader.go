package points

import (
	"context"
	"log/slog"

	"slmap/internal/geom"
	"slmap/internal/slurl"
)

// Popup is the information attached to a marker.
type Popup struct {
	Name   string
	Region string
	Link   string
	Marker string
	Record Record
}

// Surface receives markers. Implementations need not be safe for concurrent use;
// Load calls AddMarker from the calling goroutine only.
type Surface interface {
	AddMarker(pos geom.Pixel, p Popup)
}

// Result reports the outcome of a successful Load.
type Result struct {
	Added   int
	Skipped []Skipped
}

// Loader places the records of one resource onto a surface.
type Loader struct {
	proj geom.Projection
	src  Source
}

func NewLoader(proj geom.Projection, src Source) *Loader {
	return &Loader{proj: proj, src: src}
}

// Source returns the loader's source.
func (l *Loader) Source() Source { return l.src }

// Records fetches and decodes the resource.
func (l *Loader) Records(ctx context.Context) ([]Record, []Skipped, error) {
	data, err := l.src.Fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	records, skipped, err := decoderFor(l.src.Name())(data)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range skipped {
		slog.Warn("Skipping record", "resource", l.src.Name(), "index", s.Index, "reason", s.Reason)
	}
	return records, skipped, nil
}

// Load fetches the resource and adds one marker per valid record to s, in resource order.
// Fetch and parse failures abort before any marker is added.
func (l *Loader) Load(ctx context.Context, s Surface) (Result, error) {
	records, skipped, err := l.Records(ctx)
	if err != nil {
		return Result{}, err
	}
	for _, r := range records {
		l.Place(s, r)
	}
	slog.Info("Markers loaded", "resource", l.src.Name(), "added", len(records), "skipped", len(skipped))
	return Result{Added: len(records), Skipped: skipped}, nil
}

// Place transforms a single record and adds it to s.
func (l *Loader) Place(s Surface, r Record) {
	pos := l.proj.Pixel(r.GridX, r.GridY, r.X, r.Y)
	s.AddMarker(pos, Popup{
		Name:   r.Name,
		Region: r.Region,
		Link:   slurl.Link(r.Region, r.X, r.Y, r.Z),
		Marker: r.Marker,
		Record: r,
	})
}
