package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// buttonMasks are pointer button bits that appear in event state.
const buttonMasks = xproto.ButtonMask1 | xproto.ButtonMask2 | xproto.ButtonMask3 |
	xproto.ButtonMask4 | xproto.ButtonMask5

// Overview is what the bindings drive.
type Overview interface {
	ToggleAsync()
	PressAt(x, y int)
	DragAt(x, y int)
}

// Dropper finishes a window drag started by DragAt.
type Dropper interface {
	Dragging() bool
	DropAt(x, y int)
}

// PointMapper converts root coordinates to overlay coordinates.
type PointMapper func(rootX, rootY int) (int, int)

// OverlayBindings are the chords active while the overlay owns input.
type OverlayBindings struct {
	Toggle string
	Select string
	Move   string
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:   xu,
		root: root,
	}
}

// RegisterToggle binds the global activation key chord.
func (h *Handler) RegisterToggle(keySequence string, ov Overview) error {
	if err := h.RegisterFunc(keySequence, func() {
		log.Println("Overview hotkey triggered")
		ov.ToggleAsync()
	}); err != nil {
		return fmt.Errorf("failed to register overview hotkey: %w", err)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// RegisterButtonFunc grabs a button chord on the root window.
func (h *Handler) RegisterButtonFunc(buttonSequence string, callback func()) error {
	return mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		callback()
	}).Connect(h.xu, h.root, buttonSequence, false, true)
}

// Unregister drops every global binding made through this handler.
func (h *Handler) Unregister() {
	keybind.Detach(h.xu, h.root)
	mousebind.Detach(h.xu, h.root)
}

// AttachOverlay routes key and button events on the overlay window. The
// toggle chord and Escape close the overview, the select button picks a tile
// and the move button drags a window.
func (h *Handler) AttachOverlay(win xproto.Window, b OverlayBindings, ov Overview, drop Dropper, toOverlay PointMapper) error {
	selMods, selButton, err := mousebind.ParseString(h.xu, b.Select)
	if err != nil {
		return fmt.Errorf("invalid select button %q: %w", b.Select, err)
	}
	var moveMods uint16
	var moveButton xproto.Button
	if b.Move != "" {
		moveMods, moveButton, err = mousebind.ParseString(h.xu, b.Move)
		if err != nil {
			return fmt.Errorf("invalid move button %q: %w", b.Move, err)
		}
	}

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		mods := CleanMods(ev.State, xevent.IgnoreMods)
		if keybind.KeyMatch(xu, "Escape", mods, ev.Detail) || keybind.KeyMatch(xu, b.Toggle, mods, ev.Detail) {
			ov.ToggleAsync()
		}
	}).Connect(h.xu, win)

	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		mods := CleanMods(ev.State, xevent.IgnoreMods)
		x, y := toOverlay(int(ev.RootX), int(ev.RootY))
		switch {
		case moveButton != 0 && ev.Detail == moveButton && mods == moveMods:
			ov.DragAt(x, y)
		case ev.Detail == selButton && mods == selMods:
			ov.PressAt(x, y)
		}
	}).Connect(h.xu, win)

	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if drop == nil || !drop.Dragging() {
			return
		}
		x, y := toOverlay(int(ev.RootX), int(ev.RootY))
		drop.DropAt(x, y)
	}).Connect(h.xu, win)

	return nil
}

// DetachOverlay removes the overlay handlers.
func (h *Handler) DetachOverlay(win xproto.Window) {
	xevent.Detach(h.xu, win)
}

// CleanMods strips lock modifiers and pointer button bits from an event
// state so it can be compared with a parsed chord.
func CleanMods(state uint16, ignore []uint16) uint16 {
	var mask uint16
	for _, m := range ignore {
		mask |= m
	}
	return state &^ (mask | buttonMasks)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = IgnoreMasks(caps, numLock, scrollLock)
}

// IgnoreMasks returns every combination of the given lock masks, including
// none, skipping zero and duplicate masks.
func IgnoreMasks(locks ...uint16) []uint16 {
	var base []uint16
	for _, m := range locks {
		if m == 0 {
			continue
		}
		dup := false
		for _, b := range base {
			if b == m {
				dup = true
				break
			}
		}
		if !dup {
			base = append(base, m)
		}
	}

	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
