package points

import (
	"encoding/json"

	"slmap/internal/slurl"
)

type geoFeature struct {
	Type       string         `json:"type"`
	Geometry   geoPoint       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type geoCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

// EncodeGeoJSON writes records as a FeatureCollection of Points.
// Coordinates are fractional grid positions (region cell + offset/256), so
// any planar GeoJSON viewer lays them out like the world map.
func EncodeGeoJSON(records []Record) ([]byte, error) {
	fc := geoCollection{Type: "FeatureCollection", Features: make([]geoFeature, 0, len(records))}
	for _, r := range records {
		props := map[string]any{
			"name":   r.Name,
			"region": r.Region,
			"grid_x": r.GridX,
			"grid_y": r.GridY,
			"x":      r.X,
			"y":      r.Y,
			"z":      r.Z,
			"slurl":  slurl.Link(r.Region, r.X, r.Y, r.Z),
		}
		if r.Marker != "" {
			props["marker"] = r.Marker
		}
		fc.Features = append(fc.Features, geoFeature{
			Type:       "Feature",
			Geometry:   geoPoint{Type: "Point", Coordinates: slurl.GridPos(r.GridX, r.GridY, r.X, r.Y)},
			Properties: props,
		})
	}
	return json.MarshalIndent(fc, "", "  ")
}
