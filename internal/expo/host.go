package expo

import (
	"github.com/1broseidon/tileexpo/internal/grid"
	"github.com/1broseidon/tileexpo/internal/texcache"
)

// WindowID is a host window identifier.
type WindowID uint32

// Point is a screen position in pixels.
type Point struct {
	X int
	Y int
}

// Host supplies the desktop grid and exclusive input/render ownership.
type Host interface {
	GridSize() grid.Size
	ActiveViewport() grid.Coord
	ScreenSize() grid.Screen
	// AcquireOwnership grabs input and output for the overview. It returns
	// false when another client holds them.
	AcquireOwnership() bool
	ReleaseOwnership()
	SwitchViewport(c grid.Coord) error
}

// WindowLookup finds the window under a point in the active viewport's
// coordinate space. Points on other viewports lie at whole-screen offsets.
type WindowLookup interface {
	WindowAt(x, y int) (WindowID, bool)
}

// MoveRequester asks the window manager to start an interactive move.
type MoveRequester interface {
	RequestMove(win WindowID, p Point) error
}

// Renderer draws captured viewport textures.
type Renderer interface {
	BeginFrame() error
	// DrawTexture draws slot into geom after applying t. With flipY the
	// texture is sampled bottom-up.
	DrawTexture(slot texcache.Slot, geom grid.Rect, t Transform, flipY bool) error
	EndFrame() error
}

// ScaleChanged is published once per completed transition with the number
// of viewports visible per axis.
type ScaleChanged struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// Capabilities is the surface a host wires its frame clock and input
// callbacks to.
type Capabilities interface {
	OnFrameTick() error
	Toggle() error
	PressAt(px, py int) error
	DragAt(px, py int) error
	OnViewportChanged(c grid.Coord) error
}

var _ Capabilities = (*Controller)(nil)
