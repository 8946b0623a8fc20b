package platform

import (
	"github.com/1broseidon/tileexpo/internal/expo"
	"github.com/1broseidon/tileexpo/internal/grid"
	"github.com/1broseidon/tileexpo/internal/x11"
)

// SceneWindow is a client window in monitor-relative pixels.
type SceneWindow struct {
	ID      expo.WindowID
	Desktop int
	Rect    grid.Rect
}

// Sticky reports whether the window is shown on every desktop.
func (w SceneWindow) Sticky() bool {
	return w.Desktop == x11.Sticky
}

// Scene is the stacking-ordered window list, bottom first.
type Scene []SceneWindow

// NewScene converts root-relative client windows to mon-relative ones.
func NewScene(windows []x11.ClientWindow, mon x11.Monitor) Scene {
	out := make(Scene, 0, len(windows))
	for _, w := range windows {
		out = append(out, SceneWindow{
			ID:      expo.WindowID(w.ID),
			Desktop: w.Desktop,
			Rect:    grid.Rect{X: w.X - mon.X, Y: w.Y - mon.Y, Width: w.Width, Height: w.Height},
		})
	}
	return out
}

// OnDesktop returns the windows drawn on desktop, bottom first.
func (s Scene) OnDesktop(desktop int) []SceneWindow {
	var out []SceneWindow
	for _, w := range s {
		if w.Desktop == desktop || w.Sticky() {
			out = append(out, w)
		}
	}
	return out
}

// Find returns the window with id.
func (s Scene) Find(id expo.WindowID) (SceneWindow, bool) {
	for _, w := range s {
		if w.ID == id {
			return w, true
		}
	}
	return SceneWindow{}, false
}

// HitTest finds the topmost window under (x, y) in the active viewport's
// coordinate space.
func (s Scene) HitTest(layout Layout, active grid.Coord, screen grid.Screen, x, y int) (expo.WindowID, bool) {
	if screen.Width <= 0 || screen.Height <= 0 {
		return 0, false
	}
	cell := grid.Coord{
		X: active.X + floorDiv(x, screen.Width),
		Y: active.Y + floorDiv(y, screen.Height),
	}
	desktop := layout.Desktop(cell)
	if desktop < 0 {
		return 0, false
	}
	ox, oy := grid.CellScreenOrigin(cell, active, screen)
	lx, ly := x-ox, y-oy

	for i := len(s) - 1; i >= 0; i-- {
		w := s[i]
		if w.Desktop != desktop && !w.Sticky() {
			continue
		}
		r := w.Rect
		if lx >= r.X && lx < r.X+r.Width && ly >= r.Y && ly < r.Y+r.Height {
			return w.ID, true
		}
	}
	return 0, false
}

// Drop is where a dragged window lands.
type Drop struct {
	Desktop int
	X       int
	Y       int
}

// DropTarget computes the landing desktop and monitor-relative position for a
// window dragged across the overview from screen point from to screen point
// to. ok is false when the drop lands outside any desktop.
func DropTarget(w SceneWindow, layout Layout, screen grid.Screen, from, to expo.Point) (Drop, bool) {
	size := layout.Size
	if size.Validate() != nil || screen.Width <= 0 || screen.Height <= 0 {
		return Drop{}, false
	}
	cell, _, _ := grid.ScreenToViewport(to.X, to.Y, screen, size)
	desktop := layout.Desktop(cell)
	if desktop < 0 {
		return Drop{}, false
	}

	// Pointer travel in full-size pixels, wrapped into the target cell.
	fx, fy := grid.ActiveSpacePoint(from.X, from.Y, screen, size, grid.Coord{})
	tx, ty := grid.ActiveSpacePoint(to.X, to.Y, screen, size, grid.Coord{})
	startCell := layout.Coord(w.Desktop)
	if w.Sticky() {
		startCell, _, _ = grid.ScreenToViewport(from.X, from.Y, screen, size)
	}
	sx, sy := grid.CellScreenOrigin(startCell, grid.Coord{}, screen)
	ex, ey := grid.CellScreenOrigin(cell, grid.Coord{}, screen)

	x := sx + w.Rect.X + (tx - fx) - ex
	y := sy + w.Rect.Y + (ty - fy) - ey
	if w.Sticky() {
		desktop = x11.Sticky
	}
	return Drop{Desktop: desktop, X: x, Y: y}, true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
