package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xevent"
)

// ErrAlreadyGrabbed is returned when another client holds the grab.
var ErrAlreadyGrabbed = errors.New("input already grabbed by another client")

const pointerGrabMask = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion

// GrabInput grabs keyboard and pointer for win and redirects key events to it.
func (c *Connection) GrabInput(win xproto.Window) error {
	if err := c.grabKeyboard(win); err != nil {
		return err
	}
	if err := c.grabPointer(win); err != nil {
		xproto.UngrabKeyboard(c.XUtil.Conn(), xproto.TimeCurrentTime)
		return err
	}
	xevent.RedirectKeyEvents(c.XUtil, win)
	return nil
}

// UngrabInput releases the grabs taken by GrabInput.
func (c *Connection) UngrabInput() {
	xproto.UngrabPointer(c.XUtil.Conn(), xproto.TimeCurrentTime)
	xproto.UngrabKeyboard(c.XUtil.Conn(), xproto.TimeCurrentTime)
	xevent.RedirectKeyEvents(c.XUtil, 0)
}

func (c *Connection) grabKeyboard(win xproto.Window) error {
	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(
			c.XUtil.Conn(),
			false,
			win,
			xproto.TimeCurrentTime,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Reply()
	}

	reply, err := grab()
	if err != nil {
		return fmt.Errorf("keyboard grab failed: %w", err)
	}

	// When entered from a globally grabbed hotkey, the keyboard may already
	// be grabbed by this client. If so, ungrab and retry.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(c.XUtil.Conn(), xproto.TimeCurrentTime)
		reply, err = grab()
		if err != nil {
			return fmt.Errorf("keyboard grab failed: %w", err)
		}
	}
	return grabStatusError("keyboard", reply.Status)
}

func (c *Connection) grabPointer(win xproto.Window) error {
	grab := func() (*xproto.GrabPointerReply, error) {
		return xproto.GrabPointer(
			c.XUtil.Conn(),
			false,
			win,
			pointerGrabMask,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
			0, // confine_to
			0, // cursor
			xproto.TimeCurrentTime,
		).Reply()
	}

	reply, err := grab()
	if err != nil {
		return fmt.Errorf("pointer grab failed: %w", err)
	}
	// Same as the keyboard: a button chord leaves our own passive grab active.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabPointer(c.XUtil.Conn(), xproto.TimeCurrentTime)
		reply, err = grab()
		if err != nil {
			return fmt.Errorf("pointer grab failed: %w", err)
		}
	}
	return grabStatusError("pointer", reply.Status)
}

func grabStatusError(what string, status byte) error {
	switch status {
	case xproto.GrabStatusSuccess:
		return nil
	case xproto.GrabStatusAlreadyGrabbed, xproto.GrabStatusFrozen:
		return fmt.Errorf("%s: %w", what, ErrAlreadyGrabbed)
	default:
		return fmt.Errorf("%s grab failed with status %d", what, status)
	}
}
