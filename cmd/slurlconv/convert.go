package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"slmap/internal/points"
	"slmap/internal/regions"
	"slmap/internal/slurl"
	"slmap/internal/stations"
)

const (
	formatJSON     = "json"
	formatGeoJSON  = "geojson"
	formatStations = "stations"
)

// station is the record of the stations output format.
type station struct {
	Name    string     `json:"name"`
	URL     string     `json:"url"`
	Region  string     `json:"region"`
	Marker  string     `json:"marker"`
	GridPos [2]float64 `json:"grid_pos"`
}

// convert resolves the regions of entries and returns one record per entry, in list order.
func convert(ctx context.Context, r *regions.Resolver, entries []stations.Entry) ([]points.Record, error) {
	names := lo.Map(entries, func(e stations.Entry, _ int) string { return e.Location.Region })
	coords, err := r.ResolveAll(ctx, names)
	if err != nil {
		return nil, err
	}
	records := lo.Map(entries, func(e stations.Entry, _ int) points.Record {
		c := coords[e.Location.Region]
		return points.Record{
			Region: e.Location.Region,
			GridX:  c.X,
			GridY:  c.Y,
			X:      float64(e.Location.X),
			Y:      float64(e.Location.Y),
			Z:      float64(e.Location.Z),
			Name:   e.Name,
			Marker: e.Marker,
		}
	})
	return records, nil
}

func encode(format string, records []points.Record) ([]byte, error) {
	switch format {
	case formatJSON:
		return encodeIndent(records)
	case formatGeoJSON:
		return points.EncodeGeoJSON(records)
	case formatStations:
		out := lo.Map(records, func(r points.Record, _ int) station {
			loc := slurl.Location{Region: r.Region, X: int(r.X), Y: int(r.Y), Z: int(r.Z)}
			return station{
				Name:    r.Name,
				URL:     loc.Native(),
				Region:  r.Region,
				Marker:  r.Marker,
				GridPos: slurl.GridPos(r.GridX, r.GridY, r.X, r.Y),
			}
		})
		return encodeIndent(out)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func encodeIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
