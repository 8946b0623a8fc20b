package platform

import (
	"github.com/1broseidon/tileexpo/internal/grid"
	"github.com/1broseidon/tileexpo/internal/x11"
)

// Layout maps EWMH desktop numbers onto grid cells.
type Layout struct {
	Size     grid.Size
	Vertical bool
	Count    int
}

// ResolveLayout derives the grid from _NET_DESKTOP_LAYOUT when the window
// manager publishes it, else from fallbackColumns, else one row of all
// desktops.
func ResolveLayout(l x11.DesktopLayout, published bool, count, fallbackColumns int) Layout {
	if count <= 0 {
		return Layout{}
	}
	if !published || (l.Columns <= 0 && l.Rows <= 0) {
		return Layout{Size: grid.SizeForCount(count, fallbackColumns), Count: count}
	}

	cols, rows := l.Columns, l.Rows
	switch {
	case cols <= 0:
		cols = (count + rows - 1) / rows
	case rows <= 0:
		rows = (count + cols - 1) / cols
	}
	return Layout{
		Size:     grid.Size{Columns: cols, Rows: rows},
		Vertical: l.Orientation == x11.OrientationVertical,
		Count:    count,
	}
}

// Coord returns the cell showing desktop.
func (l Layout) Coord(desktop int) grid.Coord {
	if l.Size.Columns <= 0 || l.Size.Rows <= 0 || desktop < 0 {
		return grid.Coord{}
	}
	if l.Vertical {
		return grid.Coord{X: desktop / l.Size.Rows, Y: desktop % l.Size.Rows}
	}
	return l.Size.CoordAt(desktop)
}

// Desktop returns the desktop shown in c, or -1 for an empty cell.
func (l Layout) Desktop(c grid.Coord) int {
	if !l.Size.Contains(c) {
		return -1
	}
	var idx int
	if l.Vertical {
		idx = c.X*l.Size.Rows + c.Y
	} else {
		idx = l.Size.IndexOf(c)
	}
	if idx >= l.Count {
		return -1
	}
	return idx
}
