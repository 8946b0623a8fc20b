package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ClientWindow is a managed top-level window and its root-relative frame.
type ClientWindow struct {
	ID      xproto.Window
	Desktop int
	X       int
	Y       int
	Width   int
	Height  int
}

// ListClientWindows returns normal, visible client windows bottom to top.
func (c *Connection) ListClientWindows() ([]ClientWindow, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		clients, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return nil, fmt.Errorf("failed to get client list: %w", err)
		}
	}

	out := make([]ClientWindow, 0, len(clients))
	for _, win := range clients {
		if !c.IsNormalWindow(win) || c.isHidden(win) {
			continue
		}
		desktop, err := c.GetWindowDesktop(win)
		if err != nil {
			continue
		}
		x, y, w, h, err := c.WindowFrame(win)
		if err != nil {
			continue
		}
		out = append(out, ClientWindow{ID: win, Desktop: desktop, X: x, Y: y, Width: w, Height: h})
	}
	return out, nil
}

// WindowFrame returns the root-relative geometry of a window including its
// decorations.
func (c *Connection) WindowFrame(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	left, right, top, bottom, _ := c.GetFrameExtents(windowID)
	x = int(translate.DstX) - left
	y = int(translate.DstY) - top
	width = int(geom.Width) + left + right
	height = int(geom.Height) + top + bottom
	return x, y, width, height, nil
}

// MoveWindow moves a window keeping its size.
func (c *Connection) MoveWindow(windowID xproto.Window, x, y int) error {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return fmt.Errorf("failed to get window geometry: %w", err)
	}
	return c.MoveResizeWindow(windowID, x, y, int(geom.Width), int(geom.Height))
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	win := xwindow.New(c.XUtil, windowID)

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		win.MoveResize(x, y, width, height)
	}
	return nil
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int, err error) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		// No frame extents available, return zeros
		return 0, 0, 0, 0, nil
	}

	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom), nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

func (c *Connection) isHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
