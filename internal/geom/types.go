package geom

// GridBox is the inclusive range of region grid cells covered by the map image.
type GridBox struct {
	MinX int
	MinY int
	MaxX int
	MaxY int
}

// SpanX is the number of cells between MinX and MaxX.
func (b GridBox) SpanX() int { return b.MaxX - b.MinX }

// SpanY is the number of cells between MinY and MaxY.
func (b GridBox) SpanY() int { return b.MaxY - b.MinY }

// Frame ties the grid box to the pixel size of the background image.
type Frame struct {
	Width    int // image width in pixels
	Height   int // image height in pixels
	Grid     GridBox
	CellSize int // local units per grid cell
}

// Pixel is a position in image space: origin top-left, row grows downward.
type Pixel struct {
	Row float64
	Col float64
}

// GridPos is a position in region grid space: a cell plus the local offset inside it.
type GridPos struct {
	GridX int
	GridY int
	X     float64
	Y     float64
}
