package expo

import (
	"math"

	"github.com/1broseidon/tileexpo/internal/grid"
	"github.com/1broseidon/tileexpo/internal/transition"
)

// Transform is a uniform translate-then-scale in normalized device
// coordinates, where the screen spans [-1,1] on both axes with y up.
type Transform struct {
	ScaleX float64
	ScaleY float64
	OffX   float64
	OffY   float64
}

// NewTransform builds the frame transform from the interpolated params.
func NewTransform(p transition.Params) Transform {
	return Transform{ScaleX: p.ScaleX, ScaleY: p.ScaleY, OffX: p.OffX, OffY: p.OffY}
}

// Apply maps a normalized point.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.ScaleX + t.OffX, y*t.ScaleY + t.OffY
}

// Project maps a pixel rectangle, laid out relative to the active viewport,
// through the transform and back into screen pixels.
func (t Transform) Project(geom grid.Rect, screen grid.Screen) grid.Rect {
	w, h := float64(screen.Width), float64(screen.Height)
	if w <= 0 || h <= 0 {
		return grid.Rect{}
	}

	left := float64(geom.X)/w*2 - 1
	right := float64(geom.X+geom.Width)/w*2 - 1
	top := 1 - float64(geom.Y)/h*2
	bottom := 1 - float64(geom.Y+geom.Height)/h*2

	l, tp := t.Apply(left, top)
	r, b := t.Apply(right, bottom)

	x0 := int(math.Round((l + 1) / 2 * w))
	x1 := int(math.Round((r + 1) / 2 * w))
	y0 := int(math.Round((1 - tp) / 2 * h))
	y1 := int(math.Round((1 - b) / 2 * h))

	return grid.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
