// Package stations reads station lists: plain text files with one
// name, SLURL and marker tag per three non-blank lines.
package stations

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"slmap/internal/slurl"
)

// Entry is one station of the list.
type Entry struct {
	Name     string
	URL      string
	Marker   string
	Location slurl.Location
}

// Read parses a station list. Blank lines are ignored.
func Read(r io.Reader) ([]Entry, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			lines = append(lines, s)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lines)%3 != 0 {
		return nil, fmt.Errorf("number of non-blank lines (%d) is not a multiple of 3", len(lines))
	}
	entries := make([]Entry, 0, len(lines)/3)
	for i := 0; i < len(lines); i += 3 {
		loc, err := slurl.Parse(lines[i+1])
		if err != nil {
			return nil, fmt.Errorf("station %q: %w", lines[i], err)
		}
		entries = append(entries, Entry{
			Name:     lines[i],
			URL:      lines[i+1],
			Marker:   lines[i+2],
			Location: loc,
		})
	}
	return entries, nil
}
