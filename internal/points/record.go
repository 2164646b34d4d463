// Package points loads point-of-interest records and places them as markers on a map surface.
package points

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors returned by Loader.Load. Both abort the whole batch.
var (
	ErrFetch = errors.New("fetch failed")
	ErrParse = errors.New("parse failed")
)

// Record is one point of interest as found in the resource.
type Record struct {
	Region string  `json:"region"`
	GridX  int     `json:"grid_x"`
	GridY  int     `json:"grid_y"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Name   string  `json:"name"`
	Marker string  `json:"marker,omitempty"`
}

// Skipped describes a record which was dropped during decoding.
type Skipped struct {
	Index  int // position in the resource, starting at 0
	Reason string
}

// rawRecord detects absent fields.
type rawRecord struct {
	Region *string  `json:"region"`
	GridX  *int     `json:"grid_x"`
	GridY  *int     `json:"grid_y"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Z      *float64 `json:"z"`
	Name   *string  `json:"name"`
	Marker *string  `json:"marker"`
}

func (r rawRecord) record() (Record, error) {
	var missing []string
	if r.Region == nil || strings.TrimSpace(*r.Region) == "" {
		missing = append(missing, "region")
	}
	if r.GridX == nil {
		missing = append(missing, "grid_x")
	}
	if r.GridY == nil {
		missing = append(missing, "grid_y")
	}
	if r.X == nil {
		missing = append(missing, "x")
	}
	if r.Y == nil {
		missing = append(missing, "y")
	}
	if r.Z == nil {
		missing = append(missing, "z")
	}
	if r.Name == nil {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return Record{}, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	rec := Record{
		Region: *r.Region,
		GridX:  *r.GridX,
		GridY:  *r.GridY,
		X:      *r.X,
		Y:      *r.Y,
		Z:      *r.Z,
		Name:   *r.Name,
	}
	if r.Marker != nil {
		rec.Marker = *r.Marker
	}
	return rec, nil
}

// DecodeJSON parses a JSON array of records.
// A body which is not a JSON array fails with ErrParse.
// Elements which are not valid records are skipped and reported.
func DecodeJSON(data []byte) ([]Record, []Skipped, error) {
	if t := bytes.TrimSpace(data); len(t) == 0 || t[0] != '[' {
		return nil, nil, fmt.Errorf("%w: expected a JSON array", ErrParse)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	records := make([]Record, 0, len(elems))
	var skipped []Skipped
	for i, el := range elems {
		var raw rawRecord
		if err := json.Unmarshal(el, &raw); err != nil {
			skipped = append(skipped, Skipped{Index: i, Reason: err.Error()})
			continue
		}
		rec, err := raw.record()
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// DecodeCSV parses records from a CSV with a header row.
// Column names are matched case-insensitively; marker is optional.
func DecodeCSV(data []byte) ([]Record, []Skipped, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(recs) == 0 {
		return nil, nil, fmt.Errorf("%w: empty csv", ErrParse)
	}
	idx := map[string]int{}
	for i, h := range recs[0] {
		k := strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[k]; !ok {
			idx[k] = i
		}
	}
	for _, col := range []string{"region", "grid_x", "grid_y", "x", "y", "z", "name"} {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("%w: csv: column %q not found", ErrParse, col)
		}
	}
	records := make([]Record, 0, len(recs)-1)
	var skipped []Skipped
	for i, row := range recs[1:] {
		rec, err := csvRecord(idx, row)
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func csvRecord(idx map[string]int, row []string) (Record, error) {
	field := func(name string) (string, bool) {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}
	var raw rawRecord
	if s, ok := field("region"); ok {
		raw.Region = &s
	}
	if s, ok := field("name"); ok {
		raw.Name = &s
	}
	if s, ok := field("marker"); ok && s != "" {
		raw.Marker = &s
	}
	for _, f := range []struct {
		name string
		dst  **int
	}{{"grid_x", &raw.GridX}, {"grid_y", &raw.GridY}} {
		s, ok := field(f.name)
		if !ok || s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return Record{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = &v
	}
	for _, f := range []struct {
		name string
		dst  **float64
	}{{"x", &raw.X}, {"y", &raw.Y}, {"z", &raw.Z}} {
		s, ok := field(f.name)
		if !ok || s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Record{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = &v
	}
	return raw.record()
}
