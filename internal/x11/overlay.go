package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

const overlayEventMask = xproto.EventMaskKeyPress |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskExposure

// Overlay is a borderless override-redirect window covering one monitor.
type Overlay struct {
	conn    *Connection
	Window  xproto.Window
	GC      xproto.Gcontext
	Bounds  Monitor
	created bool
	mapped  bool
}

// NewOverlay creates the overlay window unmapped.
func (c *Connection) NewOverlay(background uint32) (*Overlay, error) {
	o := &Overlay{conn: c}
	if err := o.create(background); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Overlay) create(background uint32) error {
	conn := o.conn.XUtil.Conn()
	screen := o.conn.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}

	// Value list order follows the bit positions of the mask (low to high).
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		o.conn.Root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{background, 1, overlayEventMask},
	).Check()
	if err != nil {
		return fmt.Errorf("failed to create overlay window: %w", err)
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(wid), 0, nil).Check(); err != nil {
		xproto.DestroyWindow(conn, wid)
		return fmt.Errorf("failed to create overlay gc: %w", err)
	}

	o.Window = wid
	o.GC = gc
	o.created = true
	return nil
}

// Show places the overlay over mon, raises and maps it.
func (o *Overlay) Show(mon Monitor) error {
	if !o.created {
		return fmt.Errorf("overlay destroyed")
	}
	conn := o.conn.XUtil.Conn()
	width, height := mon.Width, mon.Height
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	xproto.ConfigureWindow(
		conn,
		o.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(mon.X),
			uint32(mon.Y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove,
		},
	)
	if err := xproto.MapWindowChecked(conn, o.Window).Check(); err != nil {
		return fmt.Errorf("failed to map overlay: %w", err)
	}
	o.Bounds = mon
	o.mapped = true
	return nil
}

// Hide unmaps the overlay.
func (o *Overlay) Hide() {
	if !o.mapped {
		return
	}
	xproto.UnmapWindow(o.conn.XUtil.Conn(), o.Window)
	o.mapped = false
}

// Mapped reports whether the overlay is on screen.
func (o *Overlay) Mapped() bool {
	return o.mapped
}

// Destroy frees the overlay window.
func (o *Overlay) Destroy() {
	if !o.created {
		return
	}
	conn := o.conn.XUtil.Conn()
	xproto.FreeGC(conn, o.GC)
	xproto.DestroyWindow(conn, o.Window)
	o.created = false
	o.mapped = false
}
