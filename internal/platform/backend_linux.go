//go:build linux

package platform

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/tileexpo/internal/expo"
	"github.com/1broseidon/tileexpo/internal/grid"
	"github.com/1broseidon/tileexpo/internal/texcache"
	"github.com/1broseidon/tileexpo/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// sceneMaxAge bounds how often the window list is re-read while animating.
const sceneMaxAge = 100 * time.Millisecond

// ErrNoDesktop is returned when switching to an empty grid cell.
var ErrNoDesktop = errors.New("no desktop in that cell")

// Options configures the backend.
type Options struct {
	FallbackColumns int
	Background      uint32
	WindowColor     uint32
	ActiveColor     uint32
	Logger          *slog.Logger
}

type dragState struct {
	window SceneWindow
	from   expo.Point
}

// LinuxBackend implements the overview host on an EWMH window manager.
type LinuxBackend struct {
	conn    *x11.Connection
	comp    *x11.Compositor
	overlay *x11.Overlay
	logger  *slog.Logger

	mu       sync.Mutex
	opts     Options
	monitor  x11.Monitor
	layout   Layout
	owned    bool
	back     *x11.Surface
	snapshot *x11.Surface
	snapDesk int
	slots    map[uint32]*x11.Surface
	scene    Scene
	sceneAt  time.Time
	activeID expo.WindowID
	drag     *dragState
}

var (
	_ expo.Host          = (*LinuxBackend)(nil)
	_ expo.WindowLookup  = (*LinuxBackend)(nil)
	_ expo.MoveRequester = (*LinuxBackend)(nil)
	_ expo.Renderer      = (*LinuxBackend)(nil)
	_ texcache.Capturer  = (*LinuxBackend)(nil)
	_ texcache.Releaser  = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, opts Options) (*LinuxBackend, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	comp, err := conn.NewCompositor()
	if err != nil {
		return nil, err
	}
	overlay, err := conn.NewOverlay(opts.Background)
	if err != nil {
		comp.Close()
		return nil, err
	}
	mon, err := conn.PrimaryMonitor()
	if err != nil {
		overlay.Destroy()
		comp.Close()
		return nil, err
	}

	b := &LinuxBackend{
		conn:     conn,
		comp:     comp,
		overlay:  overlay,
		logger:   opts.Logger,
		opts:     opts,
		monitor:  mon,
		snapDesk: -1,
		slots:    make(map[uint32]*x11.Surface),
	}
	b.refreshLayout()
	opts.Logger.Info("x11 backend ready", "monitor", mon.Name, "width", mon.Width, "height", mon.Height,
		"grid", b.layout.Size.String())
	return b, nil
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(opts Options) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	b, err := NewLinuxBackend(conn, opts)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

// Disconnect frees server resources and closes the X11 connection.
func (b *LinuxBackend) Disconnect() {
	b.mu.Lock()
	b.releaseLocked()
	for key, s := range b.slots {
		b.comp.FreeSurface(s)
		delete(b.slots, key)
	}
	b.mu.Unlock()

	b.overlay.Destroy()
	b.comp.Close()
	b.conn.Close()
}

// Connection returns the underlying X11 connection.
func (b *LinuxBackend) Connection() *x11.Connection {
	return b.conn
}

// OverlayWindow returns the window that receives input while the overview
// owns the screen.
func (b *LinuxBackend) OverlayWindow() xproto.Window {
	return b.overlay.Window
}

// Configure applies new colors and fallback grid width.
func (b *LinuxBackend) Configure(opts Options) {
	b.mu.Lock()
	defer b.mu.Unlock()
	opts.Logger = b.opts.Logger
	b.opts = opts
	b.refreshLayoutLocked()
}

func (b *LinuxBackend) refreshLayout() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshLayoutLocked()
}

func (b *LinuxBackend) refreshLayoutLocked() {
	count, err := b.conn.GetDesktopCount()
	if err != nil {
		b.logger.Warn("desktop count unavailable", "error", err)
		count = 1
	}
	layout, err := b.conn.GetDesktopLayout()
	published := err == nil
	b.layout = ResolveLayout(layout, published, count, b.opts.FallbackColumns)
}

// GridSize returns the desktop grid.
func (b *LinuxBackend) GridSize() grid.Size {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshLayoutLocked()
	return b.layout.Size
}

// ActiveViewport returns the cell of the current desktop.
func (b *LinuxBackend) ActiveViewport() grid.Coord {
	desktop, err := b.conn.GetCurrentDesktop()
	if err != nil {
		b.logger.Warn("current desktop unavailable", "error", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.layout.Coord(desktop)
}

// CoordForDesktop maps a desktop number to its cell.
func (b *LinuxBackend) CoordForDesktop(desktop int) grid.Coord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.layout.Coord(desktop)
}

// ScreenSize returns the overlay monitor size.
func (b *LinuxBackend) ScreenSize() grid.Screen {
	b.mu.Lock()
	defer b.mu.Unlock()
	return grid.Screen{Width: b.monitor.Width, Height: b.monitor.Height}
}

// ScreenPoint converts root coordinates to overlay coordinates.
func (b *LinuxBackend) ScreenPoint(rootX, rootY int) expo.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return expo.Point{X: rootX - b.monitor.X, Y: rootY - b.monitor.Y}
}

// AcquireOwnership snapshots the current desktop, maps the overlay and grabs
// keyboard and pointer.
func (b *LinuxBackend) AcquireOwnership() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owned {
		return true
	}

	if mon, err := b.conn.PrimaryMonitor(); err == nil {
		b.monitor = mon
	}

	snap, err := b.comp.NewSurface(b.monitor.Width, b.monitor.Height)
	if err != nil {
		b.logger.Warn("snapshot surface failed", "error", err)
	} else {
		b.comp.Snapshot(snap, b.monitor)
		b.snapshot = snap
		if desktop, err := b.conn.GetCurrentDesktop(); err == nil {
			b.snapDesk = desktop
		}
	}

	if err := b.overlay.Show(b.monitor); err != nil {
		b.logger.Warn("overlay failed", "error", err)
		b.releaseLocked()
		return false
	}
	if err := b.conn.GrabInput(b.overlay.Window); err != nil {
		b.logger.Info("input grab denied", "error", err)
		b.releaseLocked()
		return false
	}

	b.owned = true
	b.sceneAt = time.Time{}
	return true
}

// ReleaseOwnership ungrabs input and hides the overlay.
func (b *LinuxBackend) ReleaseOwnership() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()
}

func (b *LinuxBackend) releaseLocked() {
	if b.owned {
		b.conn.UngrabInput()
	}
	b.overlay.Hide()
	if b.snapshot != nil {
		b.comp.FreeSurface(b.snapshot)
		b.snapshot = nil
	}
	b.snapDesk = -1
	if b.back != nil {
		b.comp.FreeSurface(b.back)
		b.back = nil
	}
	b.owned = false
	b.drag = nil
}

// SwitchViewport makes c the current desktop.
func (b *LinuxBackend) SwitchViewport(c grid.Coord) error {
	b.mu.Lock()
	desktop := b.layout.Desktop(c)
	b.mu.Unlock()
	if desktop < 0 {
		return fmt.Errorf("switch to %s: %w", c, ErrNoDesktop)
	}
	return b.conn.SwitchDesktop(desktop)
}

func (b *LinuxBackend) refreshSceneLocked(force bool) {
	if !force && time.Since(b.sceneAt) < sceneMaxAge {
		return
	}
	windows, err := b.conn.ListClientWindows()
	if err != nil {
		b.logger.Debug("window list unavailable", "error", err)
		return
	}
	b.scene = NewScene(windows, b.monitor)
	if active, err := b.conn.GetActiveWindow(); err == nil {
		b.activeID = expo.WindowID(active)
	}
	b.sceneAt = time.Now()
}

// WindowAt finds the window under a point in active-viewport space.
func (b *LinuxBackend) WindowAt(x, y int) (expo.WindowID, bool) {
	desktop, err := b.conn.GetCurrentDesktop()
	if err != nil {
		return 0, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshSceneLocked(true)
	screen := grid.Screen{Width: b.monitor.Width, Height: b.monitor.Height}
	return b.scene.HitTest(b.layout, b.layout.Coord(desktop), screen, x, y)
}

// RequestMove starts dragging win. The drag ends with FinishMove.
func (b *LinuxBackend) RequestMove(win expo.WindowID, p expo.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.owned {
		return fmt.Errorf("move window %d: overview does not own input", win)
	}
	w, ok := b.scene.Find(win)
	if !ok {
		return fmt.Errorf("move window %d: not in client list", win)
	}
	b.drag = &dragState{window: w, from: p}
	return nil
}

// Dragging reports whether a move is in progress.
func (b *LinuxBackend) Dragging() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drag != nil
}

// FinishMove drops the dragged window at overlay point p, moving it to the
// desktop under p.
func (b *LinuxBackend) FinishMove(p expo.Point) error {
	b.mu.Lock()
	drag := b.drag
	b.drag = nil
	layout := b.layout
	screen := grid.Screen{Width: b.monitor.Width, Height: b.monitor.Height}
	mon := b.monitor
	b.sceneAt = time.Time{}
	b.mu.Unlock()

	if drag == nil {
		return nil
	}
	drop, ok := DropTarget(drag.window, layout, screen, drag.from, p)
	if !ok {
		return nil
	}

	win := xproto.Window(drag.window.ID)
	if drop.Desktop != drag.window.Desktop {
		if err := b.conn.SetWindowDesktop(win, drop.Desktop); err != nil {
			return fmt.Errorf("move window %d to desktop %d: %w", win, drop.Desktop, err)
		}
	}
	if err := b.conn.MoveWindow(win, drop.X+mon.X, drop.Y+mon.Y); err != nil {
		return fmt.Errorf("move window %d: %w", win, err)
	}
	b.logger.Debug("window dropped", "window", win, "desktop", drop.Desktop, "x", drop.X, "y", drop.Y)
	return nil
}

// DropAt ends a drag at overlay point (x, y).
func (b *LinuxBackend) DropAt(x, y int) {
	if err := b.FinishMove(expo.Point{X: x, Y: y}); err != nil {
		b.logger.Warn("window drop failed", "error", err)
	}
}

// CaptureViewport draws the desktop in cell into an offscreen surface.
func (b *LinuxBackend) CaptureViewport(cell grid.Coord, prev texcache.Slot) (texcache.Slot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	surf := b.slots[prev.Texture]
	if surf != nil && (surf.Width != b.monitor.Width || surf.Height != b.monitor.Height) {
		b.comp.FreeSurface(surf)
		delete(b.slots, prev.Texture)
		surf = nil
	}
	if surf == nil {
		s, err := b.comp.NewSurface(b.monitor.Width, b.monitor.Height)
		if err != nil {
			return prev, fmt.Errorf("capture %s: %w", cell, err)
		}
		surf = s
		b.slots[uint32(s.Picture)] = s
	}

	full := x11.Rect{Width: surf.Width, Height: surf.Height}
	desktop := b.layout.Desktop(cell)
	switch {
	case desktop < 0:
		b.comp.Fill(surf, b.opts.Background, full)
	case desktop == b.snapDesk && b.snapshot != nil:
		b.comp.Copy(b.snapshot, surf)
	default:
		b.comp.Fill(surf, b.opts.Background, full)
		for _, w := range b.scene.OnDesktop(desktop) {
			color := b.opts.WindowColor
			if w.ID == b.activeID {
				color = b.opts.ActiveColor
			}
			b.comp.Fill(surf, color, x11.Rect(w.Rect))
		}
	}

	return texcache.Slot{Framebuffer: uint32(surf.Pixmap), Texture: uint32(surf.Picture)}, nil
}

// ReleaseSlot frees the surface behind s.
func (b *LinuxBackend) ReleaseSlot(s texcache.Slot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if surf, ok := b.slots[s.Texture]; ok {
		b.comp.FreeSurface(surf)
		delete(b.slots, s.Texture)
	}
}

// BeginFrame clears the back buffer.
func (b *LinuxBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.owned {
		return nil
	}
	if b.back == nil || b.back.Width != b.monitor.Width || b.back.Height != b.monitor.Height {
		if b.back != nil {
			b.comp.FreeSurface(b.back)
		}
		s, err := b.comp.NewSurface(b.monitor.Width, b.monitor.Height)
		if err != nil {
			return fmt.Errorf("back buffer: %w", err)
		}
		b.back = s
	}
	b.refreshSceneLocked(false)
	b.comp.Fill(b.back, b.opts.Background, x11.Rect{Width: b.back.Width, Height: b.back.Height})
	return nil
}

// DrawTexture composites a captured viewport into the back buffer. Pixmaps
// are stored top-down, matching Project's output, so flipY needs no extra
// transform here.
func (b *LinuxBackend) DrawTexture(slot texcache.Slot, geom grid.Rect, t expo.Transform, flipY bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.back == nil {
		return nil
	}
	surf, ok := b.slots[slot.Texture]
	if !ok {
		return fmt.Errorf("draw: unknown texture %d", slot.Texture)
	}
	screen := grid.Screen{Width: b.monitor.Width, Height: b.monitor.Height}
	dst := t.Project(geom, screen)
	if !visible(dst, screen) {
		return nil
	}
	b.comp.Draw(surf, b.back, x11.Rect(dst))
	return nil
}

// EndFrame presents the back buffer on the overlay.
func (b *LinuxBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.back == nil || !b.overlay.Mapped() {
		return nil
	}
	b.comp.Present(b.back, b.overlay.Window, b.overlay.GC)
	return nil
}

func visible(r grid.Rect, screen grid.Screen) bool {
	return r.Width > 0 && r.Height > 0 &&
		r.X < screen.Width && r.Y < screen.Height &&
		r.X+r.Width > 0 && r.Y+r.Height > 0
}
