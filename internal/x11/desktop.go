package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Source indication for EWMH requests: pager/direct action.
const sourceIndication = 2

// Sticky is returned by GetWindowDesktop for windows on all desktops.
const Sticky = -1

// Orientation of _NET_DESKTOP_LAYOUT.
const (
	OrientationHorizontal = 0
	OrientationVertical   = 1
)

// DesktopLayout mirrors _NET_DESKTOP_LAYOUT. Columns or Rows may be zero,
// meaning "derive from the desktop count".
type DesktopLayout struct {
	Orientation    int
	Columns        int
	Rows           int
	StartingCorner int
}

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom. Returns 0 with an error if detection fails.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// GetWindowDesktop returns the desktop number a window is on.
// Uses _NET_WM_DESKTOP atom. Returns Sticky for windows visible on all desktops.
func (c *Connection) GetWindowDesktop(windowID xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	// 0xFFFFFFFF means the window is on all desktops (sticky)
	if desktop == 0xFFFFFFFF {
		return Sticky, nil
	}
	return int(desktop), nil
}

// GetDesktopCount returns the number of virtual desktops.
func (c *Connection) GetDesktopCount() (int, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get desktop count: %w", err)
	}
	return int(count), nil
}

// GetDesktopLayout reads _NET_DESKTOP_LAYOUT from the root window.
func (c *Connection) GetDesktopLayout() (DesktopLayout, error) {
	vals, err := xprop.PropValNums(xprop.GetProperty(c.XUtil, c.Root, "_NET_DESKTOP_LAYOUT"))
	if err != nil {
		return DesktopLayout{}, fmt.Errorf("failed to get desktop layout: %w", err)
	}
	if len(vals) < 3 {
		return DesktopLayout{}, fmt.Errorf("desktop layout has %d values, want at least 3", len(vals))
	}
	layout := DesktopLayout{
		Orientation: int(vals[0]),
		Columns:     int(vals[1]),
		Rows:        int(vals[2]),
	}
	if len(vals) > 3 {
		layout.StartingCorner = int(vals[3])
	}
	return layout, nil
}

// SwitchDesktop asks the window manager to show desktop.
func (c *Connection) SwitchDesktop(desktop int) error {
	if err := c.sendRootMessage(c.Root, "_NET_CURRENT_DESKTOP", []uint32{uint32(desktop), 0}); err != nil {
		return fmt.Errorf("failed to switch to desktop %d: %w", desktop, err)
	}
	return nil
}

// SetWindowDesktop moves a window to the specified virtual desktop.
// Sends a _NET_WM_DESKTOP client message to the root window per EWMH spec.
func (c *Connection) SetWindowDesktop(windowID xproto.Window, desktop int) error {
	return c.sendRootMessage(windowID, "_NET_WM_DESKTOP", []uint32{uint32(desktop), sourceIndication})
}

// WatchCurrentDesktop calls fn from the event loop whenever
// _NET_CURRENT_DESKTOP changes.
func (c *Connection) WatchCurrentDesktop(fn func(desktop int)) error {
	atom, err := c.Atom("_NET_CURRENT_DESKTOP")
	if err != nil {
		return err
	}
	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != atom {
			return
		}
		desktop, err := c.GetCurrentDesktop()
		if err != nil {
			return
		}
		fn(desktop)
	}).Connect(c.XUtil, c.Root)
	return nil
}
