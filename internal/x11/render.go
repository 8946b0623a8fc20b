package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
)

// Surface is an offscreen pixmap with a RENDER picture on it.
type Surface struct {
	Pixmap  xproto.Pixmap
	Picture render.Picture
	Width   int
	Height  int
}

// Rect is a pixel rectangle.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Compositor wraps the RENDER extension for the root visual.
type Compositor struct {
	conn   *Connection
	format render.Pictformat
	gc     xproto.Gcontext
}

// NewCompositor initializes RENDER and finds the picture format matching the
// root visual.
func (c *Connection) NewCompositor() (*Compositor, error) {
	xc := c.XUtil.Conn()
	if err := render.Init(xc); err != nil {
		return nil, fmt.Errorf("render init failed: %w", err)
	}

	formats, err := render.QueryPictFormats(xc).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query picture formats: %w", err)
	}
	format, ok := findVisualFormat(formats, c.XUtil.Screen().RootVisual)
	if !ok {
		return nil, fmt.Errorf("no picture format for root visual %d", c.XUtil.Screen().RootVisual)
	}

	// Copies from the root include child windows.
	gc, err := xproto.NewGcontextId(xc)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateGCChecked(xc, gc, xproto.Drawable(c.Root),
		xproto.GcSubwindowMode, []uint32{xproto.SubwindowModeIncludeInferiors}).Check(); err != nil {
		return nil, fmt.Errorf("failed to create copy gc: %w", err)
	}

	return &Compositor{conn: c, format: format, gc: gc}, nil
}

func findVisualFormat(reply *render.QueryPictFormatsReply, visual xproto.Visualid) (render.Pictformat, bool) {
	for _, screen := range reply.Screens {
		for _, depth := range screen.Depths {
			for _, v := range depth.Visuals {
				if v.Visual == visual {
					return v.Format, true
				}
			}
		}
	}
	return 0, false
}

// NewSurface allocates a width x height surface with bilinear sampling.
func (m *Compositor) NewSurface(width, height int) (*Surface, error) {
	xc := m.conn.XUtil.Conn()
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	pix, err := xproto.NewPixmapId(xc)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreatePixmapChecked(xc, m.conn.XUtil.Screen().RootDepth, pix,
		xproto.Drawable(m.conn.Root), uint16(width), uint16(height)).Check(); err != nil {
		return nil, fmt.Errorf("failed to create pixmap: %w", err)
	}

	pic, err := render.NewPictureId(xc)
	if err != nil {
		xproto.FreePixmap(xc, pix)
		return nil, err
	}
	if err := render.CreatePictureChecked(xc, pic, xproto.Drawable(pix), m.format, 0, nil).Check(); err != nil {
		xproto.FreePixmap(xc, pix)
		return nil, fmt.Errorf("failed to create picture: %w", err)
	}
	const filter = "bilinear"
	render.SetPictureFilter(xc, pic, uint16(len(filter)), filter, nil)

	return &Surface{Pixmap: pix, Picture: pic, Width: width, Height: height}, nil
}

// FreeSurface releases a surface's server resources.
func (m *Compositor) FreeSurface(s *Surface) {
	if s == nil {
		return
	}
	xc := m.conn.XUtil.Conn()
	render.FreePicture(xc, s.Picture)
	xproto.FreePixmap(xc, s.Pixmap)
}

// Fill paints rects on dst with a 0xRRGGBB color.
func (m *Compositor) Fill(dst *Surface, pixel uint32, rects ...Rect) {
	if len(rects) == 0 {
		return
	}
	xrects := make([]xproto.Rectangle, 0, len(rects))
	for _, r := range rects {
		if r.Width <= 0 || r.Height <= 0 {
			continue
		}
		xrects = append(xrects, xproto.Rectangle{
			X:      clamp16(r.X),
			Y:      clamp16(r.Y),
			Width:  uint16(min(r.Width, math.MaxUint16)),
			Height: uint16(min(r.Height, math.MaxUint16)),
		})
	}
	render.FillRectangles(m.conn.XUtil.Conn(), render.PictOpSrc, dst.Picture, RenderColor(pixel), xrects)
}

// Snapshot copies the screen area under mon into dst.
func (m *Compositor) Snapshot(dst *Surface, mon Monitor) {
	xproto.CopyArea(m.conn.XUtil.Conn(), xproto.Drawable(m.conn.Root), xproto.Drawable(dst.Pixmap), m.gc,
		clamp16(mon.X), clamp16(mon.Y), 0, 0, uint16(dst.Width), uint16(dst.Height))
}

// Copy composites src onto dst unscaled.
func (m *Compositor) Copy(src, dst *Surface) {
	xc := m.conn.XUtil.Conn()
	render.SetPictureTransform(xc, src.Picture, ScaleTransform(1, 1))
	render.Composite(xc, render.PictOpSrc, src.Picture, render.PictureNone, dst.Picture,
		0, 0, 0, 0, 0, 0, uint16(dst.Width), uint16(dst.Height))
}

// Draw composites the whole of src scaled into r on dst.
func (m *Compositor) Draw(src, dst *Surface, r Rect) {
	if r.Width <= 0 || r.Height <= 0 || src.Width <= 0 || src.Height <= 0 {
		return
	}
	xc := m.conn.XUtil.Conn()
	sx := float64(r.Width) / float64(src.Width)
	sy := float64(r.Height) / float64(src.Height)
	render.SetPictureTransform(xc, src.Picture, ScaleTransform(sx, sy))
	render.Composite(xc, render.PictOpOver, src.Picture, render.PictureNone, dst.Picture,
		0, 0, 0, 0, clamp16(r.X), clamp16(r.Y),
		uint16(min(r.Width, math.MaxUint16)), uint16(min(r.Height, math.MaxUint16)))
}

// Present copies a surface onto a window.
func (m *Compositor) Present(src *Surface, win xproto.Window, gc xproto.Gcontext) {
	xproto.CopyArea(m.conn.XUtil.Conn(), xproto.Drawable(src.Pixmap), xproto.Drawable(win), gc,
		0, 0, 0, 0, uint16(src.Width), uint16(src.Height))
}

// Close frees the copy gc.
func (m *Compositor) Close() {
	xproto.FreeGC(m.conn.XUtil.Conn(), m.gc)
}

// ScaleTransform returns the picture transform that samples a source scaled
// by (sx, sy). RENDER transforms map destination to source coordinates, so
// the matrix holds the inverse scale.
func ScaleTransform(sx, sy float64) render.Transform {
	return render.Transform{
		Matrix11: ToFixed(1 / sx),
		Matrix22: ToFixed(1 / sy),
		Matrix33: ToFixed(1),
	}
}

// ToFixed converts to RENDER's 16.16 fixed point.
func ToFixed(f float64) render.Fixed {
	return render.Fixed(math.Round(f * 65536))
}

// RenderColor expands a 0xRRGGBB pixel to an opaque RENDER color.
func RenderColor(pixel uint32) render.Color {
	return render.Color{
		Red:   uint16(pixel>>16&0xff) * 0x101,
		Green: uint16(pixel>>8&0xff) * 0x101,
		Blue:  uint16(pixel&0xff) * 0x101,
		Alpha: 0xffff,
	}
}

func clamp16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
