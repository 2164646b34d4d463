package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/sanity-io/litter"

	"slmap/internal/geom"
	"slmap/internal/points"
)

var dumpOptions = litter.Options{StripPackageNames: true, HidePrivateFields: true}

type dumpEntry struct {
	Name   string
	Region string
	Link   string
	Marker string
	Row    float64
	Col    float64
}

// printer is a surface that writes each marker as it is added.
type printer struct {
	w io.Writer
}

func (p printer) AddMarker(pos geom.Pixel, popup points.Popup) {
	fmt.Fprintln(p.w, dumpOptions.Sdump(dumpEntry{
		Name:   popup.Name,
		Region: popup.Region,
		Link:   popup.Link,
		Marker: popup.Marker,
		Row:    pos.Row,
		Col:    pos.Col,
	}))
}

// runDump places all markers of the resource on a printer.
func runDump(ctx context.Context, w io.Writer, l *points.Loader) error {
	res, err := l.Load(ctx, printer{w: w})
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "skipped record %d: %s\n", s.Index, s.Reason)
	}
	fmt.Fprintf(w, "%s added, %s skipped\n", humanize.Comma(int64(res.Added)), humanize.Comma(int64(len(res.Skipped))))
	return nil
}
