package grid

import (
	"errors"
	"fmt"
)

// MaxDimension is the largest supported column or row count. The texture
// cache is sized to MaxDimension x MaxDimension cells.
const MaxDimension = 32

var (
	// ErrGridEmpty is returned for a grid with no columns or no rows.
	ErrGridEmpty = errors.New("viewport grid is empty")
	// ErrGridTooLarge is returned for a grid wider or taller than MaxDimension.
	ErrGridTooLarge = errors.New("viewport grid exceeds 32x32")
	// ErrOutOfRange is returned for a viewport coordinate outside the grid.
	ErrOutOfRange = errors.New("viewport coordinate out of range")
)

// Size is the dimension of the virtual desktop grid.
type Size struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// Coord addresses one viewport cell.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Screen is the output size in pixels.
type Screen struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect is a pixel rectangle in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Columns, s.Rows)
}

// Validate reports whether the grid fits the supported bounds.
func (s Size) Validate() error {
	if s.Columns < 1 || s.Rows < 1 {
		return fmt.Errorf("%w: %s", ErrGridEmpty, s)
	}
	if s.Columns > MaxDimension || s.Rows > MaxDimension {
		return fmt.Errorf("%w: %s", ErrGridTooLarge, s)
	}
	return nil
}

// Contains reports whether c is a cell of the grid.
func (s Size) Contains(c Coord) bool {
	return c.X >= 0 && c.X < s.Columns && c.Y >= 0 && c.Y < s.Rows
}

// Check returns ErrOutOfRange when c is not a cell of the grid.
func (s Size) Check(c Coord) error {
	if !s.Contains(c) {
		return fmt.Errorf("%w: %s not in %s grid", ErrOutOfRange, c, s)
	}
	return nil
}

// Cells returns the number of viewports in the grid.
func (s Size) Cells() int {
	return s.Columns * s.Rows
}

// IndexOf returns the row-major desktop index of c.
func (s Size) IndexOf(c Coord) int {
	return c.Y*s.Columns + c.X
}

// CoordAt returns the cell for a row-major desktop index.
func (s Size) CoordAt(index int) Coord {
	if s.Columns <= 0 {
		return Coord{}
	}
	return Coord{X: index % s.Columns, Y: index / s.Columns}
}

// SizeForCount derives a grid from a desktop count and a preferred column
// count, filling rows as needed.
func SizeForCount(count, columns int) Size {
	if count <= 0 {
		return Size{}
	}
	if columns <= 0 || columns > count {
		columns = count
	}
	rows := (count + columns - 1) / columns
	return Size{Columns: columns, Rows: rows}
}

// CellSize returns the pixel size of one tile while the whole grid is shown.
func CellSize(screen Screen, size Size) (int, int) {
	return screen.Width / size.Columns, screen.Height / size.Rows
}

// ScreenToViewport maps an overview screen pixel to the cell under it and
// the pixel position inside that cell's tile. Results are not clamped.
func ScreenToViewport(px, py int, screen Screen, size Size) (cell Coord, localX, localY int) {
	cw, ch := CellSize(screen, size)
	if cw <= 0 || ch <= 0 {
		return Coord{}, px, py
	}
	return Coord{X: px / cw, Y: py / ch}, px % cw, py % ch
}

// CellScreenOrigin returns the origin of cell's full-size viewport relative
// to the active viewport. Tiles laid out with these origins sit edge to edge.
func CellScreenOrigin(cell, active Coord, screen Screen) (ox, oy int) {
	return (cell.X - active.X) * screen.Width, (cell.Y - active.Y) * screen.Height
}

// CellRect is the full-size viewport rectangle of cell relative to active.
func CellRect(cell, active Coord, screen Screen) Rect {
	ox, oy := CellScreenOrigin(cell, active, screen)
	return Rect{X: ox, Y: oy, Width: screen.Width, Height: screen.Height}
}

// ActiveSpacePoint maps an overview screen pixel into the coordinate space
// of the active viewport, where windows on other viewports sit at whole
// screen offsets.
func ActiveSpacePoint(px, py int, screen Screen, size Size, active Coord) (x, y int) {
	cell, lx, ly := ScreenToViewport(px, py, screen, size)
	ox, oy := CellScreenOrigin(cell, active, screen)
	return ox + lx*size.Columns, oy + ly*size.Rows
}
