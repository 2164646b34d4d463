package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFrame is returned by NewProjection for frames that cannot be projected.
var ErrInvalidFrame = errors.New("invalid map frame")

// Projection converts region grid coordinates into image pixels for a fixed Frame.
// The zero value is not usable; use NewProjection.
type Projection struct {
	frame  Frame
	scaleX float64
	scaleY float64
}

// NewProjection validates f and precomputes the pixel scale per local unit.
func NewProjection(f Frame) (Projection, error) {
	switch {
	case f.Width <= 0 || f.Height <= 0:
		return Projection{}, fmt.Errorf("%w: image size %dx%d", ErrInvalidFrame, f.Width, f.Height)
	case f.CellSize <= 0:
		return Projection{}, fmt.Errorf("%w: cell size %d", ErrInvalidFrame, f.CellSize)
	case f.Grid.SpanX() <= 0 || f.Grid.SpanY() <= 0:
		return Projection{}, fmt.Errorf("%w: grid span %dx%d", ErrInvalidFrame, f.Grid.SpanX(), f.Grid.SpanY())
	}
	p := Projection{
		frame:  f,
		scaleX: float64(f.Width) / float64(f.Grid.SpanX()*f.CellSize),
		scaleY: float64(f.Height) / float64(f.Grid.SpanY()*f.CellSize),
	}
	return p, nil
}

// Frame returns the frame the projection was built for.
func (p Projection) Frame() Frame { return p.frame }

// Pixel maps a grid cell and a local offset inside it to an image pixel.
// Positions outside the grid box are not clamped and land off the image.
func (p Projection) Pixel(gridX, gridY int, x, y float64) Pixel {
	worldX := float64((gridX-p.frame.Grid.MinX)*p.frame.CellSize) + x
	worldY := float64((gridY-p.frame.Grid.MinY)*p.frame.CellSize) + y
	// image rows grow downward, grid Y grows upward
	return Pixel{
		Row: float64(p.frame.Height) - worldY*p.scaleY,
		Col: worldX * p.scaleX,
	}
}

// Grid is the inverse of Pixel.
func (p Projection) Grid(px Pixel) GridPos {
	worldX := px.Col / p.scaleX
	worldY := (float64(p.frame.Height) - px.Row) / p.scaleY
	cell := float64(p.frame.CellSize)
	cx := math.Floor(worldX / cell)
	cy := math.Floor(worldY / cell)
	return GridPos{
		GridX: p.frame.Grid.MinX + int(cx),
		GridY: p.frame.Grid.MinY + int(cy),
		X:     worldX - cx*cell,
		Y:     worldY - cy*cell,
	}
}

// Contains reports whether px lies on the image.
func (p Projection) Contains(px Pixel) bool {
	return px.Row >= 0 && px.Col >= 0 && px.Row <= float64(p.frame.Height) && px.Col <= float64(p.frame.Width)
}
