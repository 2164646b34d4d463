package tui

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"

	"slmap/internal/geom"
)

// maxBackgroundSide bounds the decoded background kept in memory.
const maxBackgroundSide = 1024

// background is a grayscale, downsampled copy of the map image addressed in
// frame pixels.
type background struct {
	img    image.Image
	frameW float64
	frameH float64
}

func loadBackground(path string, f geom.Frame) (*background, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open background %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() != f.Width || b.Dy() != f.Height {
		slog.Warn("Background size differs from configured map size",
			"path", path, "width", b.Dx(), "height", b.Dy(), "wantWidth", f.Width, "wantHeight", f.Height)
	}
	if w, h := downsampledSize(b.Dx(), b.Dy(), maxBackgroundSide); w != b.Dx() || h != b.Dy() {
		img = transform.Resize(img, w, h, transform.Linear)
	}
	return &background{
		img:    effect.Grayscale(img),
		frameW: float64(f.Width),
		frameH: float64(f.Height),
	}, nil
}

// downsampledSize scales w x h so the longer side is at most limit.
func downsampledSize(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// luminance returns the gray value under a frame pixel, or false outside the frame.
func (b *background) luminance(p geom.Pixel) (uint8, bool) {
	if p.Col < 0 || p.Row < 0 || p.Col >= b.frameW || p.Row >= b.frameH {
		return 0, false
	}
	r := b.img.Bounds()
	x := r.Min.X + int(p.Col/b.frameW*float64(r.Dx()))
	y := r.Min.Y + int(p.Row/b.frameH*float64(r.Dy()))
	return color.GrayModel.Convert(b.img.At(x, y)).(color.Gray).Y, true
}
