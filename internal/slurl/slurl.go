// Package slurl builds and parses Second Life map links (SLURLs).
package slurl

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// MapBase is the prefix of every web SLURL.
const MapBase = "https://maps.secondlife.com/secondlife/"

// ErrInvalid is returned by Parse for strings that are not web SLURLs.
var ErrInvalid = errors.New("invalid SLURL")

var slurlRE = regexp.MustCompile(`(?i)^https?://maps\.secondlife\.com/secondlife/([^/]+)/(\d+)/(\d+)/(\d+)$`)

// Location is a parsed SLURL.
type Location struct {
	Region string
	X      int
	Y      int
	Z      int
}

// Link returns the web SLURL for a point inside region.
func Link(region string, x, y, z float64) string {
	return MapBase + EscapeRegion(region) + "/" + formatNumber(x) + "/" + formatNumber(y) + "/" + formatNumber(z)
}

// EscapeRegion percent-encodes a region name as a single URI component.
// Spaces become %20, not '+'.
func EscapeRegion(region string) string {
	return strings.ReplaceAll(url.QueryEscape(region), "+", "%20")
}

// Parse reads a web SLURL like https://maps.secondlife.com/secondlife/Nautilus/128/128/30.
func Parse(raw string) (Location, error) {
	s := strings.TrimSpace(raw)
	m := slurlRE.FindStringSubmatch(s)
	if m == nil {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	region, err := url.PathUnescape(m[1])
	if err != nil {
		return Location{}, fmt.Errorf("%w: region %q: %w", ErrInvalid, m[1], err)
	}
	var coords [3]int
	for i := range coords {
		v, err := strconv.Atoi(m[i+2])
		if err != nil {
			return Location{}, fmt.Errorf("%w: %q: %w", ErrInvalid, raw, err)
		}
		coords[i] = v
	}
	return Location{Region: region, X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// String returns the web SLURL of l.
func (l Location) String() string {
	return Link(l.Region, float64(l.X), float64(l.Y), float64(l.Z))
}

// Native returns the secondlife:// form understood by viewers.
func (l Location) Native() string {
	return fmt.Sprintf("secondlife://%s/%d/%d/%d", EscapeRegion(l.Region), l.X, l.Y, l.Z)
}

// GridPos returns the fractional grid position of a point, rounded to 6 decimals.
func GridPos(regionX, regionY int, x, y float64) [2]float64 {
	round := func(v float64) float64 { return math.Round(v*1e6) / 1e6 }
	return [2]float64{
		round(float64(regionX) + x/256.0),
		round(float64(regionY) + y/256.0),
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
